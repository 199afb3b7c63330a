// Package similarity computes bag-of-words cosine similarity between a draft
// and previously published documents.
package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Go's \W is ASCII-only; documents here are Korean, so separators are
// anything that is not a Unicode letter, digit, or underscore.
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Tokenize splits text on non-word-character runs and lowercases the result.
// Empty tokens are discarded.
func Tokenize(text string) []string {
	parts := nonWordRe.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// TermFrequency builds a term-frequency vector from text.
func TermFrequency(text string) map[string]int {
	vec := make(map[string]int)
	for _, tok := range Tokenize(text) {
		vec[tok]++
	}
	return vec
}

// Cosine returns the cosine similarity between two term-frequency vectors.
// Returns 0.0 when either vector is empty or has zero norm.
func Cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	var dot float64
	for term, fa := range a {
		dot += float64(fa) * float64(b[term])
	}
	na := norm(a)
	nb := norm(b)
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (na * nb)
}

func norm(v map[string]int) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// MaxAgainstCorpus returns the maximum pairwise cosine similarity between
// text and each corpus member, or 0.0 for an empty corpus.
func MaxAgainstCorpus(text string, corpus []string) float64 {
	draft := TermFrequency(text)
	maxSim := 0.0
	for _, other := range corpus {
		if other == "" {
			continue
		}
		sim := Cosine(draft, TermFrequency(other))
		if sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}
