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
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// defaultPromptTemplate is used when a run supplies no template.
const defaultPromptTemplate = `You are a helpful assistant. Answer the user's question based on the provided contexts.

Retrieved Contexts:
{contexts}

Question: {query}

Provide a clear, accurate answer based on the contexts above.`

// generationSystemPrompt frames the generation request.
const generationSystemPrompt = "You are a helpful assistant that answers questions based on provided contexts."

var placeholderRE = regexp.MustCompile(`\{(\w+)\}`)

// renderPrompt fills the template's placeholders. Both single and double
// brace spellings are accepted, and {chunks}/{question} are aliases of
// {contexts}/{query}. The template must reference both a contexts and a
// query placeholder, and a placeholder outside that set fails the render.
func renderPrompt(template, query, contextsText string) (string, error) {
	if template == "" {
		template = defaultPromptTemplate
	}
	values := map[string]string{
		"contexts": contextsText,
		"chunks":   contextsText,
		"query":    query,
		"question": query,
	}
	normalized := strings.NewReplacer(
		"{{chunks}}", "{chunks}",
		"{{contexts}}", "{contexts}",
		"{{query}}", "{query}",
		"{{question}}", "{question}",
	).Replace(template)

	var required []string
	if !strings.Contains(normalized, "{query}") && !strings.Contains(normalized, "{question}") {
		required = append(required, "{query}")
	}
	if !strings.Contains(normalized, "{contexts}") && !strings.Contains(normalized, "{chunks}") {
		required = append(required, "{contexts}")
	}
	if len(required) > 0 {
		return "", fmt.Errorf("prompt template missing required placeholders: %s",
			strings.Join(required, ", "))
	}

	var missing string
	rendered := placeholderRE.ReplaceAllStringFunc(normalized, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := values[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if missing != "" {
		available := make([]string, 0, len(values))
		for name := range values {
			available = append(available, name)
		}
		sort.Strings(available)
		return "", fmt.Errorf("prompt template missing {%s}, available placeholders: %s",
			missing, strings.Join(available, ", "))
	}
	return rendered, nil
}

// formatContexts numbers the retrieved contexts for the prompt.
func formatContexts(contexts []Context) string {
	parts := make([]string, len(contexts))
	for i, ctx := range contexts {
		parts[i] = fmt.Sprintf("Context %d: %s", i+1, ctx.Content)
	}
	return strings.Join(parts, "\n\n")
}
