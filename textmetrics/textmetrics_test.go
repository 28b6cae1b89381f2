//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package textmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"the", "cat", "sat", "."}, tokenize("The cat sat."))
	assert.Equal(t, []string{"it", "'", "s", "42", "!"}, tokenize("It's 42!"))
	assert.Empty(t, tokenize("   "))
	assert.Empty(t, tokenize(""))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cat sat on mat", normalize("The cat sat on a mat."))
	assert.Equal(t, "paris is capital of france",
		normalize("Paris is the capital of France."))
	assert.Equal(t, "", normalize(" ... "))
}

func TestContentTokens(t *testing.T) {
	got := contentTokens(tokenize("It is 42 degrees in Paris now!"))
	assert.Equal(t, []string{"degrees", "paris", "now"}, got)
}

func TestBLEUIdentical(t *testing.T) {
	score := BLEU("the quick brown fox jumps", []string{"the quick brown fox jumps"})
	assert.InDelta(t, 1.0, score.Score, 1e-9)
	assert.InDelta(t, 1.0, score.BrevityPenalty, 1e-9)
	for _, p := range score.Precisions {
		assert.InDelta(t, 1.0, p, 1e-9)
	}
}

func TestBLEUPartialOverlap(t *testing.T) {
	score := BLEU("The cat sat on the mat.",
		[]string{"The cat is sitting on the mat."})
	assert.Greater(t, score.Score, 0.0)
	assert.Less(t, score.Score, 1.0)
	// Higher orders lose precision on diverging phrasing.
	assert.Greater(t, score.Precisions[0], score.Precisions[2])
	assert.Greater(t, score.Precisions[0], score.Precisions[3])
	// The candidate is one token shorter than the reference.
	assert.Less(t, score.BrevityPenalty, 1.0)
}

func TestBLEUEmptyInputs(t *testing.T) {
	assert.Zero(t, BLEU("", []string{"reference text"}).Score)
	assert.Zero(t, BLEU("candidate text", nil).Score)
	assert.Zero(t, BLEU("candidate text", []string{"", "  "}).Score)
}

func TestBLEUMultiReferenceClipping(t *testing.T) {
	// "the the the" clips against the maximum count in any single
	// reference, not the sum across references.
	score := BLEU("the the the", []string{"the cat", "the dog"},
		WithMaxN(1), WithSmoothing(false))
	require.Len(t, score.Precisions, 1)
	assert.InDelta(t, 1.0/3.0, score.Precisions[0], 1e-9)
}

func TestBLEUSmoothing(t *testing.T) {
	// Overlapping unigrams but no shared 4-gram: unsmoothed BLEU collapses
	// to zero, smoothed BLEU stays positive.
	cand := "cats like warm places"
	refs := []string{"dogs like cold places"}
	assert.Zero(t, BLEU(cand, refs, WithSmoothing(false)).Score)
	assert.Greater(t, BLEU(cand, refs).Score, 0.0)
}

func TestBLEUNoOverlap(t *testing.T) {
	// Smoothing leaves a small positive floor; without it the score is zero.
	smoothed := BLEU("alpha beta gamma", []string{"one two three"})
	assert.Greater(t, smoothed.Score, 0.0)
	assert.Less(t, smoothed.Score, 0.5)
	assert.Zero(t, BLEU("alpha beta gamma", []string{"one two three"},
		WithSmoothing(false)).Score)
}

func TestRougeLIdentical(t *testing.T) {
	score := RougeL("exact same words", []string{"exact same words"})
	assert.InDelta(t, 1.0, score.Precision, 1e-9)
	assert.InDelta(t, 1.0, score.Recall, 1e-9)
	assert.InDelta(t, 1.0, score.F1, 1e-9)
	assert.Equal(t, 3, score.LCS)
}

func TestRougeLSubsequence(t *testing.T) {
	score := RougeL("the cat sat", []string{"the big cat quietly sat"})
	assert.Equal(t, 3, score.LCS)
	assert.InDelta(t, 1.0, score.Precision, 1e-9)
	assert.InDelta(t, 0.6, score.Recall, 1e-9)
	// Balanced F1 by default: 2pr/(p+r) = 2*1*0.6/1.6.
	assert.InDelta(t, 0.75, score.F1, 1e-9)
}

func TestRougeLBetaBiasesRecall(t *testing.T) {
	balanced := RougeL("the cat sat", []string{"the big cat quietly sat"})
	biased := RougeL("the cat sat", []string{"the big cat quietly sat"}, WithBeta(1.2))
	assert.Less(t, biased.F1, balanced.F1)
	assert.InDelta(t, balanced.Precision, biased.Precision, 1e-9)
	assert.InDelta(t, balanced.Recall, biased.Recall, 1e-9)
}

func TestRougeLBestReference(t *testing.T) {
	score := RougeL("the cat sat",
		[]string{"totally unrelated words", "the cat sat"})
	assert.InDelta(t, 1.0, score.F1, 1e-9)
}

// TestRougeLSymmetry checks that swapping candidate and reference swaps
// precision and recall while the default balanced F1 stays put.
func TestRougeLSymmetry(t *testing.T) {
	forward := RougeL("the cat sat", []string{"the big cat quietly sat"})
	backward := RougeL("the big cat quietly sat", []string{"the cat sat"})
	assert.InDelta(t, forward.Precision, backward.Recall, 1e-9)
	assert.InDelta(t, forward.Recall, backward.Precision, 1e-9)
	assert.InDelta(t, forward.F1, backward.F1, 1e-9)
}

// TestBestOfReferencesMonotonic checks that adding a reference identical to
// the candidate never lowers a best-of-references metric.
func TestBestOfReferencesMonotonic(t *testing.T) {
	candidate := "the cat sat on the mat"
	refs := []string{"a dog slept on the rug"}
	augmented := append([]string{candidate}, refs...)

	assert.GreaterOrEqual(t, RougeL(candidate, augmented).F1, RougeL(candidate, refs).F1)
	assert.GreaterOrEqual(t, BLEU(candidate, augmented).Score, BLEU(candidate, refs).Score)
	assert.GreaterOrEqual(t, TokenF1(candidate, augmented), TokenF1(candidate, refs))
	assert.GreaterOrEqual(t, ExactMatch(candidate, augmented), ExactMatch(candidate, refs))
	assert.InDelta(t, 1.0, RougeL(candidate, augmented).F1, 1e-9)
	assert.InDelta(t, 1.0, ExactMatch(candidate, augmented), 1e-9)
}

func TestRougeLEmptyInputs(t *testing.T) {
	assert.Zero(t, RougeL("", []string{"reference"}).F1)
	assert.Zero(t, RougeL("candidate", nil).F1)
	assert.Zero(t, RougeL("candidate", []string{""}).F1)
}

func TestExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, ExactMatch("The answer is Paris.", []string{"answer is paris"}))
	assert.Equal(t, 1.0, ExactMatch("wrong", []string{"right", "WRONG!"}))
	assert.Equal(t, 0.0, ExactMatch("close enough", []string{"close"}))
}

func TestTokenF1WordOrderInsensitive(t *testing.T) {
	f1 := TokenF1("Paris is the capital of France.",
		[]string{"The capital of France is Paris."})
	assert.InDelta(t, 1.0, f1, 1e-9)
}

func TestTokenF1Partial(t *testing.T) {
	f1 := TokenF1("paris france", []string{"paris germany"})
	assert.InDelta(t, 0.5, f1, 1e-9)
}

func TestContentF1IgnoresShortAndNumericTokens(t *testing.T) {
	// "is", "at" and "42" carry no content; overlap is judged on
	// "paris" and "located" only.
	score := ContentF1("Paris is located at 42", []string{"located in Paris"})
	assert.InDelta(t, 1.0, score.Recall, 1e-9)
	assert.InDelta(t, 1.0, score.Precision, 1e-9)
}

func TestContentF1Empty(t *testing.T) {
	assert.Zero(t, ContentF1("a an it 42", []string{"reference words"}).F1)
	assert.Zero(t, ContentF1("", []string{"reference words"}).F1)
}

func TestScoreAggregatesWithDefaultWeights(t *testing.T) {
	result := Score("same answer text", []string{"same answer text"})
	assert.InDelta(t, 1.0, result.BLEU.Score, 1e-9)
	assert.InDelta(t, 1.0, result.RougeL.F1, 1e-9)
	assert.Equal(t, 1.0, result.ExactMatch)
	assert.InDelta(t, 1.0, result.TokenF1, 1e-9)
	assert.InDelta(t, 1.0, result.ContentF1.F1, 1e-9)
	// Weighted blend of all-ones equals the sum of the default weights.
	assert.InDelta(t, 1.0, result.Aggregate, 1e-9)
}

func TestScoreCustomWeightsUnvalidated(t *testing.T) {
	// Weights are applied as given even when they do not sum to one.
	result := Score("same text", []string{"same text"},
		WithAggregateWeights(AggregateWeights{BLEU: 2, RougeL: 2}))
	assert.InDelta(t, 4.0, result.Aggregate, 1e-9)
}

func TestScoreSurfaceOrderExample(t *testing.T) {
	result := Score("Paris is the capital of France.",
		[]string{"The capital of France is Paris."})
	assert.Equal(t, 0.0, result.ExactMatch)
	assert.InDelta(t, 1.0, result.TokenF1, 1e-9)
}

func TestScoreEmptyCandidate(t *testing.T) {
	result := Score("", []string{"reference"})
	assert.Zero(t, result.BLEU.Score)
	assert.Zero(t, result.RougeL.F1)
	assert.Zero(t, result.ExactMatch)
	assert.Zero(t, result.TokenF1)
	assert.Zero(t, result.ContentF1.F1)
	assert.Zero(t, result.Aggregate)
}

func TestLCSLength(t *testing.T) {
	assert.Equal(t, 0, lcsLength([]string{"a", "b"}, []string{"c", "d"}))
	assert.Equal(t, 2, lcsLength([]string{"a", "b", "c"}, []string{"b", "x", "c"}))
	assert.Equal(t, 3, lcsLength([]string{"a", "b", "c"}, []string{"a", "b", "c"}))
}
