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
	"regexp"
	"strings"
	"unicode"
)

var (
	// wordRE matches a maximal run of word characters or a single non-space symbol.
	wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+|[^\p{L}\p{N}_\s]`)
	// punctRE matches characters that are neither word characters nor whitespace.
	punctRE = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	// articleRE matches the English articles as whole words.
	articleRE = regexp.MustCompile(`\b(a|an|the)\b`)
	// spacesRE matches one or more whitespace characters.
	spacesRE = regexp.MustCompile(`\s+`)
)

// tokenize splits text into casefolded words and symbols, language-agnostically.
func tokenize(text string) []string {
	return wordRE.FindAllString(strings.ToLower(text), -1)
}

// normalize applies SQuAD-style normalization: casefold, strip punctuation,
// drop English articles, and collapse whitespace.
func normalize(text string) string {
	text = strings.ToLower(text)
	text = punctRE.ReplaceAllString(text, " ")
	text = articleRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(spacesRE.ReplaceAllString(text, " "))
}

// contentTokens keeps tokens that plausibly carry semantic content: at least
// three runes and not purely numeric.
func contentTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) < 3 || isDigits(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// isDigits reports whether the token consists solely of digits.
func isDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// counts builds a multiset of the given items.
func counts(items []string) map[string]int {
	c := make(map[string]int, len(items))
	for _, item := range items {
		c[item]++
	}
	return c
}

// intersectionSize returns the size of the multiset intersection of a and b.
func intersectionSize(a, b map[string]int) int {
	total := 0
	for key, cnt := range a {
		if other, ok := b[key]; ok {
			if other < cnt {
				total += other
			} else {
				total += cnt
			}
		}
	}
	return total
}
