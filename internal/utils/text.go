package utils

import (
	"hash/fnv"
	"strings"
	"unicode"
)

func ContentHash(content string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(content))))
	return h.Sum64()
}

// CapsRatio returns the fraction of alphabetic runes that are uppercase.
// Returns 0 when the content has no alphabetic runes.
func CapsRatio(content string) float64 {
	letters := 0
	upper := 0
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// ShingleSimilarity computes the Jaccard similarity of the character
// k-shingle sets of two strings, case-insensitive.
func ShingleSimilarity(a, b string, k int) float64 {
	if k <= 0 {
		k = 3
	}
	setA := shingles(a, k)
	setB := shingles(b, k)
	if len(setA) == 0 || len(setB) == 0 {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
			return 1
		}
		return 0
	}

	common := 0
	for shingle := range setA {
		if _, ok := setB[shingle]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return float64(common) / float64(union)
}

func shingles(content string, k int) map[string]struct{} {
	runes := []rune(strings.ToLower(strings.TrimSpace(content)))
	out := make(map[string]struct{})
	if len(runes) < k {
		return out
	}
	for i := 0; i+k <= len(runes); i++ {
		out[string(runes[i:i+k])] = struct{}{}
	}
	return out
}
