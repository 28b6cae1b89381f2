//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package textmetrics implements lexical overlap metrics for grading a
// generated answer against one or more reference answers: BLEU, ROUGE-L,
// SQuAD exact match and token F1, content-token F1, and a weighted blend
// of them all. Every calculation is deterministic and purely in-memory.
package textmetrics

import (
	"math"
)

const (
	// zeroLogPrecision substitutes for log(0) when a precision is zero.
	zeroLogPrecision = -1e9
	// degenerateLogSum marks a weighted log sum dominated by zero precisions.
	degenerateLogSum = -1e8
)

// BLEUScore carries the BLEU score and its constituents.
type BLEUScore struct {
	// Score is the final brevity-penalized geometric mean, in [0, 1].
	Score float64
	// Precisions holds the (possibly smoothed) modified precision per
	// n-gram order, from unigram upward.
	Precisions []float64
	// BrevityPenalty is the length penalty applied to the geometric mean.
	BrevityPenalty float64
}

// BLEU scores the candidate against the references using multi-reference
// modified n-gram precision with a brevity penalty. A candidate or reference
// set that tokenizes to nothing scores zero.
func BLEU(candidate string, references []string, opt ...Option) BLEUScore {
	opts := newOptions(opt...)
	return bleu(tokenize(candidate), tokenizeAll(references), opts)
}

func bleu(candidate []string, references [][]string, opts *options) BLEUScore {
	references = nonEmpty(references)
	if len(candidate) == 0 || len(references) == 0 {
		return BLEUScore{Precisions: make([]float64, opts.maxN)}
	}

	weights := opts.ngramWts
	if len(weights) != opts.maxN {
		weights = uniformWeights(opts.maxN)
	}

	precisions := make([]float64, 0, opts.maxN)
	smoothK := 1
	for n := 1; n <= opts.maxN; n++ {
		candCounts := ngramCounts(candidate, n)
		denom := 0
		for _, cnt := range candCounts {
			denom += cnt
		}
		if denom < 1 {
			denom = 1
		}
		refCounts := make([]map[string]int, 0, len(references))
		for _, ref := range references {
			refCounts = append(refCounts, ngramCounts(ref, n))
		}
		overlap := 0
		for gram, cnt := range candCounts {
			best := 0
			for _, rc := range refCounts {
				if c := rc[gram]; c > best {
					best = c
				}
			}
			if best < cnt {
				overlap += best
			} else {
				overlap += cnt
			}
		}
		p := float64(overlap) / float64(denom)
		if p == 0 && opts.smooth {
			p = 1 / (float64(denom) * math.Pow(2, float64(smoothK)))
			smoothK++
		}
		precisions = append(precisions, p)
	}

	logSum := 0.0
	for i, p := range precisions {
		if p > 0 {
			logSum += weights[i] * math.Log(p)
		} else {
			logSum += weights[i] * zeroLogPrecision
		}
	}
	geoMean := 0.0
	if logSum > degenerateLogSum {
		geoMean = math.Exp(logSum)
	}
	bp := brevityPenalty(len(candidate), effectiveRefLength(len(candidate), references))
	return BLEUScore{
		Score:          bp * geoMean,
		Precisions:     precisions,
		BrevityPenalty: bp,
	}
}

// effectiveRefLength picks the reference length closest to the candidate
// length, preferring the shorter reference on ties.
func effectiveRefLength(candLen int, references [][]string) int {
	best := len(references[0])
	for _, ref := range references[1:] {
		rl := len(ref)
		if absInt(rl-candLen) < absInt(best-candLen) ||
			(absInt(rl-candLen) == absInt(best-candLen) && rl < best) {
			best = rl
		}
	}
	return best
}

// brevityPenalty penalizes candidates shorter than the effective reference.
func brevityPenalty(candLen, refLen int) float64 {
	if candLen == 0 {
		return 0
	}
	if candLen > refLen {
		return 1
	}
	return math.Exp(1 - float64(refLen)/float64(candLen))
}

// ngramCounts builds the multiset of n-grams of the given order.
func ngramCounts(tokens []string, n int) map[string]int {
	if len(tokens) < n {
		return map[string]int{}
	}
	grams := make(map[string]int, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams[joinGram(tokens[i:i+n])]++
	}
	return grams
}

// joinGram encodes an n-gram as a single map key. The unit separator cannot
// appear in tokens, so the encoding is collision-free.
func joinGram(tokens []string) string {
	if len(tokens) == 1 {
		return tokens[0]
	}
	out := tokens[0]
	for _, tok := range tokens[1:] {
		out += "\x1f" + tok
	}
	return out
}

func uniformWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	return weights
}

func tokenizeAll(texts []string) [][]string {
	out := make([][]string, 0, len(texts))
	for _, text := range texts {
		out = append(out, tokenize(text))
	}
	return out
}

func nonEmpty(tokenLists [][]string) [][]string {
	out := tokenLists[:0:0]
	for _, toks := range tokenLists {
		if len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
