//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package judge

import (
	"fmt"
	"strings"
)

// systemPrompt frames the judge as a strict evaluator.
const systemPrompt = "You are an expert RAG system evaluator. " +
	"Provide thorough, critical assessments with detailed reasoning."

// buildPrompt renders the RAG triad grading instructions with the query,
// the numbered contexts, and the answer under evaluation.
func buildPrompt(query string, contexts []string, answer string) string {
	var numbered strings.Builder
	for i, ctx := range contexts {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, ctx)
	}
	return fmt.Sprintf(`Evaluate this RAG system output across three dimensions using the RAG Triad framework.

Query: %s

Retrieved Contexts:
%s
Generated Answer: %s

Evaluate step-by-step:

1. CONTEXT RELEVANCE (0-3 scale)
Think step by step: Are the retrieved contexts relevant to answering the query?
Score 0 (bad): No relevance
Score 1 (average): Low relevance, slight connection
Score 2 (good): Medium relevance, partial coverage
Score 3 (excellent): High relevance, can answer query
Rate each context individually, then provide overall assessment.

2. GROUNDEDNESS (0-3 scale)
Think step by step: Is the answer faithful to the contexts?
- Extract all factual claims from the answer
- Verify each claim against the contexts
- Count supported vs unsupported claims
Score 0 (bad): Multiple hallucinations or completely unsupported
Score 1 (average): Some unsupported claims
Score 2 (good): Mostly supported with minor unsupported details
Score 3 (excellent): Fully supported by contexts

3. ANSWER RELEVANCE (0-3 scale)
Think step by step: Does the answer fully address the query?
Score 0 (bad): Doesn't address query or refusal
Score 1 (average): Partially addresses query
Score 2 (good): Mostly addresses query with minor gaps
Score 3 (excellent): Completely addresses query

Provide detailed reasoning for each dimension before scoring. Be critical and strict with ratings.
`, query, numbered.String(), answer)
}
