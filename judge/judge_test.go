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
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragmark/ragmark/model"
)

// fakeModel returns a canned response and records the last request.
type fakeModel struct {
	lastRequest *model.Request
	content     string
	err         error
}

func (f *fakeModel) GenerateContent(ctx context.Context, request *model.Request) (*model.Response, error) {
	f.lastRequest = request
	if f.err != nil {
		return nil, f.err
	}
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.NewAssistantMessage(f.content),
		}},
	}, nil
}

func (f *fakeModel) Info() model.Info {
	return model.Info{Name: "fake-judge"}
}

func verdictJSON(contextGrade, groundedGrade, answerGrade string) string {
	return fmt.Sprintf(`{
		"context_relevance": {
			"explanation": "contexts cover the query",
			"score": %q,
			"per_context_scores": [3, 2]
		},
		"groundedness": {
			"explanation": "all claims supported",
			"score": %q,
			"supported_claims": 4,
			"total_claims": 4
		},
		"answer_relevance": {
			"explanation": "fully addresses the query",
			"score": %q
		},
		"overall_score": 99
	}`, contextGrade, groundedGrade, answerGrade)
}

// TestGradeNumeric verifies the ordinal grade mapping.
func TestGradeNumeric(t *testing.T) {
	assert.Equal(t, 0.0, GradeBad.Numeric())
	assert.Equal(t, 1.0, GradeAverage.Numeric())
	assert.Equal(t, 2.0, GradeGood.Numeric())
	assert.Equal(t, 3.0, GradeExcellent.Numeric())
}

// TestParseGrade verifies tolerant grade parsing.
func TestParseGrade(t *testing.T) {
	g, err := ParseGrade(" Excellent ")
	require.NoError(t, err)
	assert.Equal(t, GradeExcellent, g)

	_, err = ParseGrade("superb")
	require.Error(t, err)
}

// TestEvaluate verifies a full grading round trip with a fake model.
func TestEvaluate(t *testing.T) {
	fake := &fakeModel{content: verdictJSON("excellent", "good", "excellent")}
	j := New(fake, WithTemperature(0), WithMaxTokens(2048))

	evaluation, err := j.Evaluate(context.Background(),
		"What are the symptoms of type 2 diabetes?",
		[]string{"Type 2 diabetes symptoms include thirst.", "Fatigue is common."},
		"Common symptoms include thirst and fatigue.")
	require.NoError(t, err)

	assert.Equal(t, GradeExcellent, evaluation.ContextRelevance.Grade)
	assert.Equal(t, GradeGood, evaluation.Groundedness.Grade)
	assert.Equal(t, GradeExcellent, evaluation.AnswerRelevance.Grade)
	assert.Equal(t, 4, evaluation.Groundedness.SupportedClaims)
	assert.Equal(t, []float64{3, 2}, evaluation.ContextRelevance.PerContextScores)
	// (3 + 2 + 3) / 3, recomputed locally over the model-reported value.
	assert.InDelta(t, 8.0/3.0, evaluation.OverallScore, 1e-9)
}

// TestEvaluateRequestShape verifies the prompt and structured output wiring.
func TestEvaluateRequestShape(t *testing.T) {
	fake := &fakeModel{content: verdictJSON("bad", "bad", "bad")}
	j := New(fake, WithTemperature(0))

	_, err := j.Evaluate(context.Background(),
		"the query", []string{"first context", "second context"}, "the answer")
	require.NoError(t, err)

	request := fake.lastRequest
	require.Len(t, request.Messages, 2)
	assert.Equal(t, model.RoleSystem, request.Messages[0].Role)
	assert.Contains(t, request.Messages[1].Content, "Query: the query")
	assert.Contains(t, request.Messages[1].Content, "1. first context")
	assert.Contains(t, request.Messages[1].Content, "2. second context")
	assert.Contains(t, request.Messages[1].Content, "Generated Answer: the answer")

	require.NotNil(t, request.StructuredOutput)
	assert.Equal(t, model.StructuredOutputJSONSchema, request.StructuredOutput.Type)
	require.NotNil(t, request.StructuredOutput.JSONSchema)
	assert.Equal(t, "rag_evaluation", request.StructuredOutput.JSONSchema.Name)
	assert.True(t, request.StructuredOutput.JSONSchema.Strict)

	require.NotNil(t, request.Temperature)
	assert.Equal(t, 0.0, *request.Temperature)
}

// TestEvaluateAllBadIsZero verifies the floor of the overall score.
func TestEvaluateAllBadIsZero(t *testing.T) {
	fake := &fakeModel{content: verdictJSON("bad", "bad", "bad")}
	j := New(fake)

	evaluation, err := j.Evaluate(context.Background(), "q", []string{"c"}, "a")
	require.NoError(t, err)
	assert.Zero(t, evaluation.OverallScore)
}

// TestEvaluateInvalidGrade verifies unknown grades are rejected.
func TestEvaluateInvalidGrade(t *testing.T) {
	fake := &fakeModel{content: verdictJSON("excellent", "mediocre", "good")}
	j := New(fake)

	_, err := j.Evaluate(context.Background(), "q", []string{"c"}, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groundedness")
}

// TestEvaluateMalformedJSON verifies parse failures surface as errors.
func TestEvaluateMalformedJSON(t *testing.T) {
	fake := &fakeModel{content: "not json at all"}
	j := New(fake)

	_, err := j.Evaluate(context.Background(), "q", []string{"c"}, "a")
	require.Error(t, err)
}

// TestEvaluateModelError verifies transport errors are wrapped.
func TestEvaluateModelError(t *testing.T) {
	fake := &fakeModel{err: fmt.Errorf("boom")}
	j := New(fake)

	_, err := j.Evaluate(context.Background(), "q", []string{"c"}, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judge request")
}

// TestGradeCaseInsensitiveVerdict verifies tolerant parsing of grades in
// the verdict payload.
func TestGradeCaseInsensitiveVerdict(t *testing.T) {
	fake := &fakeModel{content: verdictJSON("Excellent", "GOOD", "average")}
	j := New(fake)

	evaluation, err := j.Evaluate(context.Background(), "q", []string{"c"}, "a")
	require.NoError(t, err)
	assert.Equal(t, GradeExcellent, evaluation.ContextRelevance.Grade)
	assert.Equal(t, GradeGood, evaluation.Groundedness.Grade)
	assert.InDelta(t, 2.0, evaluation.OverallScore, 1e-9)
}
