//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package textmetrics

import "strings"

// F1Score carries a precision/recall/F1 triple.
type F1Score struct {
	Precision float64
	Recall    float64
	F1        float64
}

// ExactMatch reports 1 when the normalized candidate equals any normalized
// reference, 0 otherwise.
func ExactMatch(candidate string, references []string) float64 {
	cand := normalize(candidate)
	for _, ref := range references {
		if cand == normalize(ref) {
			return 1
		}
	}
	return 0
}

// TokenF1 is the SQuAD-style token overlap F1 against the best-matching
// reference, computed over normalized whitespace-split tokens.
func TokenF1(candidate string, references []string) float64 {
	candTokens := strings.Fields(normalize(candidate))
	best := 0.0
	for _, ref := range references {
		refTokens := strings.Fields(normalize(ref))
		if f1 := overlapF1(candTokens, refTokens).F1; f1 > best {
			best = f1
		}
	}
	return best
}

// ContentF1 is token overlap F1 restricted to content-bearing tokens, scored
// against the best-matching reference.
func ContentF1(candidate string, references []string) F1Score {
	candTokens := contentTokens(tokenize(candidate))
	var best F1Score
	for _, ref := range references {
		refTokens := contentTokens(tokenize(ref))
		if score := overlapF1(candTokens, refTokens); score.F1 > best.F1 {
			best = score
		}
	}
	return best
}

// overlapF1 computes precision, recall, and F1 of the multiset overlap
// between candidate and reference tokens.
func overlapF1(candidate, reference []string) F1Score {
	if len(candidate) == 0 || len(reference) == 0 {
		return F1Score{}
	}
	common := intersectionSize(counts(candidate), counts(reference))
	if common == 0 {
		return F1Score{}
	}
	precision := float64(common) / float64(len(candidate))
	recall := float64(common) / float64(len(reference))
	return F1Score{
		Precision: precision,
		Recall:    recall,
		F1:        2 * precision * recall / (precision + recall),
	}
}
