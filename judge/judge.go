//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package judge implements LLM-as-a-judge evaluation of RAG output using
// the RAG triad: context relevance, groundedness, and answer relevance.
// Each dimension is graded on an ordinal 0-3 scale and the overall score
// is the mean of the three.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ragmark/ragmark/model"
)

// Grade is an ordinal quality rating on the 0-3 scale.
type Grade string

// Grade constants from worst to best.
const (
	GradeBad       Grade = "bad"       // 0
	GradeAverage   Grade = "average"   // 1
	GradeGood      Grade = "good"      // 2
	GradeExcellent Grade = "excellent" // 3
)

// Numeric converts the grade to its numeric value. Unknown grades map to 0.
func (g Grade) Numeric() float64 {
	switch g {
	case GradeAverage:
		return 1
	case GradeGood:
		return 2
	case GradeExcellent:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether the grade is one of the defined constants.
func (g Grade) IsValid() bool {
	switch g {
	case GradeBad, GradeAverage, GradeGood, GradeExcellent:
		return true
	default:
		return false
	}
}

// ParseGrade parses a grade string, tolerating case and whitespace.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("invalid grade %q", s)
	}
	return g, nil
}

// ContextRelevance grades whether the retrieved contexts can answer the query.
type ContextRelevance struct {
	// Explanation is the judge's step-by-step reasoning.
	Explanation string `json:"explanation"`
	// Grade is the overall context relevance grade.
	Grade Grade `json:"score"`
	// PerContextScores rates each retrieved context individually.
	PerContextScores []float64 `json:"per_context_scores"`
}

// Groundedness grades whether the answer is faithful to the contexts.
type Groundedness struct {
	// Explanation is the judge's claim-by-claim analysis.
	Explanation string `json:"explanation"`
	// Grade is the groundedness grade.
	Grade Grade `json:"score"`
	// SupportedClaims is the number of claims verified against the contexts.
	SupportedClaims int `json:"supported_claims"`
	// TotalClaims is the total number of claims found in the answer.
	TotalClaims int `json:"total_claims"`
}

// AnswerRelevance grades whether the answer fully addresses the query.
type AnswerRelevance struct {
	// Explanation is the judge's analysis of answer quality.
	Explanation string `json:"explanation"`
	// Grade is the answer relevance grade.
	Grade Grade `json:"score"`
}

// Evaluation is a complete RAG triad verdict.
type Evaluation struct {
	// ContextRelevance grades the retrieved contexts against the query.
	ContextRelevance ContextRelevance `json:"context_relevance"`
	// Groundedness grades the answer against the contexts.
	Groundedness Groundedness `json:"groundedness"`
	// AnswerRelevance grades the answer against the query.
	AnswerRelevance AnswerRelevance `json:"answer_relevance"`
	// OverallScore is the mean of the three dimension scores, in [0, 3].
	// It is computed locally, never trusted from the model.
	OverallScore float64 `json:"overall_score"`
}

// options contains configuration options for the judge.
type options struct {
	temperature *float64
	maxTokens   *int
}

// Option configures the judge.
type Option func(*options)

// WithTemperature sets the sampling temperature of judge requests.
// Deterministic grading wants 0.
func WithTemperature(temperature float64) Option {
	return func(o *options) {
		o.temperature = &temperature
	}
}

// WithMaxTokens caps the judge response length.
func WithMaxTokens(maxTokens int) Option {
	return func(o *options) {
		o.maxTokens = &maxTokens
	}
}

// Judge grades RAG output with an LLM.
type Judge struct {
	model model.Model
	opts  options
}

// New creates a judge backed by the given model.
func New(m model.Model, opt ...Option) *Judge {
	j := &Judge{model: m}
	for _, o := range opt {
		o(&j.opts)
	}
	return j
}

// Evaluate grades the answer for the query against the retrieved contexts.
func (j *Judge) Evaluate(ctx context.Context, query string, contexts []string, answer string) (*Evaluation, error) {
	request := &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage(systemPrompt),
			model.NewUserMessage(buildPrompt(query, contexts, answer)),
		},
		GenerationConfig: model.GenerationConfig{
			Temperature: j.opts.temperature,
			MaxTokens:   j.opts.maxTokens,
		},
		StructuredOutput: &model.StructuredOutput{
			Type: model.StructuredOutputJSONSchema,
			JSONSchema: &model.JSONSchema{
				Name:        "rag_evaluation",
				Description: "A graded RAG triad evaluation.",
				Strict:      true,
				Schema:      evaluationSchema(),
			},
		},
	}

	response, err := j.model.GenerateContent(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("judge request: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("judge returned no choices")
	}
	return parseEvaluation(response.Choices[0].Message.Content)
}

// parseEvaluation decodes and validates the judge's JSON verdict, then
// recomputes the overall score from the three dimension grades.
func parseEvaluation(content string) (*Evaluation, error) {
	evaluation := &Evaluation{}
	if err := json.Unmarshal([]byte(content), evaluation); err != nil {
		return nil, fmt.Errorf("parse judge verdict: %w", err)
	}

	grades := map[string]*Grade{
		"context_relevance": &evaluation.ContextRelevance.Grade,
		"groundedness":      &evaluation.Groundedness.Grade,
		"answer_relevance":  &evaluation.AnswerRelevance.Grade,
	}
	for dimension, grade := range grades {
		parsed, err := ParseGrade(string(*grade))
		if err != nil {
			return nil, fmt.Errorf("judge verdict %s: %w", dimension, err)
		}
		*grade = parsed
	}

	evaluation.OverallScore = (evaluation.ContextRelevance.Grade.Numeric() +
		evaluation.Groundedness.Grade.Numeric() +
		evaluation.AnswerRelevance.Grade.Numeric()) / 3
	return evaluation, nil
}

// evaluationSchema is the JSON schema the judge response must follow.
func evaluationSchema() map[string]any {
	gradeEnum := map[string]any{
		"type": "string",
		"enum": []string{
			string(GradeBad), string(GradeAverage),
			string(GradeGood), string(GradeExcellent),
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"context_relevance": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"explanation":        map[string]any{"type": "string"},
					"score":              gradeEnum,
					"per_context_scores": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
				},
				"required":             []string{"explanation", "score", "per_context_scores"},
				"additionalProperties": false,
			},
			"groundedness": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"explanation":      map[string]any{"type": "string"},
					"score":            gradeEnum,
					"supported_claims": map[string]any{"type": "integer"},
					"total_claims":     map[string]any{"type": "integer"},
				},
				"required":             []string{"explanation", "score", "supported_claims", "total_claims"},
				"additionalProperties": false,
			},
			"answer_relevance": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"explanation": map[string]any{"type": "string"},
					"score":       gradeEnum,
				},
				"required":             []string{"explanation", "score"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"context_relevance", "groundedness", "answer_relevance"},
		"additionalProperties": false,
	}
}
