//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package textmetrics

// Result bundles every lexical metric for one candidate/reference pairing.
type Result struct {
	// BLEU is the multi-reference BLEU score.
	BLEU BLEUScore
	// RougeL is the best-reference ROUGE-L score.
	RougeL RougeLScore
	// ExactMatch is the SQuAD exact-match indicator, 0 or 1.
	ExactMatch float64
	// TokenF1 is the SQuAD token-overlap F1.
	TokenF1 float64
	// ContentF1 is the content-token overlap F1.
	ContentF1 F1Score
	// Aggregate is the weighted blend of BLEU, ROUGE-L F1, content F1, and
	// exact match.
	Aggregate float64
}

// Score computes every lexical metric for the candidate against the
// references and blends them into the aggregate. References that tokenize to
// nothing contribute nothing; an empty candidate scores zero throughout.
func Score(candidate string, references []string, opt ...Option) Result {
	opts := newOptions(opt...)
	refTokens := tokenizeAll(references)
	result := Result{
		BLEU:       bleu(tokenize(candidate), refTokens, opts),
		RougeL:     rougeL(tokenize(candidate), refTokens, opts.beta),
		ExactMatch: ExactMatch(candidate, references),
		TokenF1:    TokenF1(candidate, references),
		ContentF1:  ContentF1(candidate, references),
	}
	result.Aggregate = opts.aggregate.BLEU*result.BLEU.Score +
		opts.aggregate.RougeL*result.RougeL.F1 +
		opts.aggregate.ContentF1*result.ContentF1.F1 +
		opts.aggregate.ExactMatch*result.ExactMatch
	return result
}
