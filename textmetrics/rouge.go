//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package textmetrics

// RougeLScore carries the ROUGE-L measures against the best-matching
// reference.
type RougeLScore struct {
	// Precision is LCS length over candidate length.
	Precision float64
	// Recall is LCS length over reference length.
	Recall float64
	// F1 is the beta-weighted F-measure of precision and recall.
	F1 float64
	// LCS is the longest-common-subsequence length with the best reference.
	LCS int
}

// RougeL scores the candidate against each reference and keeps the one with
// the highest F-measure. Empty candidates and references score zero.
func RougeL(candidate string, references []string, opt ...Option) RougeLScore {
	opts := newOptions(opt...)
	return rougeL(tokenize(candidate), tokenizeAll(references), opts.beta)
}

func rougeL(candidate []string, references [][]string, beta float64) RougeLScore {
	var best RougeLScore
	if len(candidate) == 0 {
		return best
	}
	for _, ref := range references {
		if len(ref) == 0 {
			continue
		}
		lcs := lcsLength(candidate, ref)
		precision := float64(lcs) / float64(len(candidate))
		recall := float64(lcs) / float64(len(ref))
		f1 := 0.0
		if precision+recall > 0 {
			b2 := beta * beta
			f1 = (1 + b2) * precision * recall / (recall + b2*precision)
		}
		if f1 > best.F1 {
			best = RougeLScore{
				Precision: precision,
				Recall:    recall,
				F1:        f1,
				LCS:       lcs,
			}
		}
	}
	return best
}

// lcsLength computes the longest-common-subsequence length with a two-row
// dynamic program, keeping memory linear in the shorter input.
func lcsLength(a, b []string) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(a)]
}
