//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderPromptDefaultTemplate verifies the built-in template is used
// when none is supplied.
func TestRenderPromptDefaultTemplate(t *testing.T) {
	prompt, err := renderPrompt("", "What is RAG?", "Context 1: retrieval text")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Question: What is RAG?")
	assert.Contains(t, prompt, "Context 1: retrieval text")
	assert.NotContains(t, prompt, "{contexts}")
	assert.NotContains(t, prompt, "{query}")
}

// TestRenderPromptPlaceholderSpellings verifies both brace styles and the
// placeholder aliases.
func TestRenderPromptPlaceholderSpellings(t *testing.T) {
	for _, template := range []string{
		"Q: {query}\nC: {contexts}",
		"Q: {{query}}\nC: {{contexts}}",
		"Q: {question}\nC: {chunks}",
		"Q: {{question}}\nC: {{chunks}}",
	} {
		prompt, err := renderPrompt(template, "the query", "the contexts")
		require.NoError(t, err, template)
		assert.Equal(t, "Q: the query\nC: the contexts", prompt, template)
	}
}

// TestRenderPromptUnknownPlaceholder verifies fail-fast with the missing
// name and the available set.
func TestRenderPromptUnknownPlaceholder(t *testing.T) {
	_, err := renderPrompt("Answer {prompt} to {query} using {contexts}", "q", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{prompt}")
	assert.Contains(t, err.Error(), "chunks, contexts, query, question")
}

// TestRenderPromptRequiresPlaceholders verifies a template without a query
// or contexts reference is rejected, naming what is missing.
func TestRenderPromptRequiresPlaceholders(t *testing.T) {
	_, err := renderPrompt("Just answer from memory.", "q", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required placeholders")
	assert.Contains(t, err.Error(), "{query}")
	assert.Contains(t, err.Error(), "{contexts}")

	_, err = renderPrompt("Use {contexts} wisely.", "q", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{query}")
	assert.NotContains(t, err.Error(), "{contexts}")

	_, err = renderPrompt("Answer {question}.", "q", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{contexts}")
	assert.NotContains(t, err.Error(), "{query}")

	// Either alias of each pair satisfies the requirement.
	prompt, err := renderPrompt("Q {question} C {chunks}", "the query", "the contexts")
	require.NoError(t, err)
	assert.Equal(t, "Q the query C the contexts", prompt)
}

// TestFormatContexts verifies contexts are numbered from one.
func TestFormatContexts(t *testing.T) {
	text := formatContexts([]Context{
		{ChunkID: "a", Content: "first chunk"},
		{ChunkID: "b", Content: "second chunk"},
	})
	assert.Equal(t, "Context 1: first chunk\n\nContext 2: second chunk", text)
	assert.Empty(t, formatContexts(nil))
}
