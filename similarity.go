package vorlage

import "strings"

// SimilarityFunc scores how alike two strings are, in [0, 1]. The anchor
// and skeleton data model is independent of the chosen metric; callers
// select an implementation by name via SimilarityByName.
type SimilarityFunc func(a, b string) float64

// Similarity metric names accepted in configuration.
const (
	SimilarityLevenshtein  = "levenshtein"
	SimilarityTokenJaccard = "token_jaccard"
)

// SimilarityByName returns the named similarity function, or nil if the
// name is unknown.
func SimilarityByName(name string) SimilarityFunc {
	switch name {
	case SimilarityLevenshtein:
		return LevenshteinSimilarity
	case SimilarityTokenJaccard:
		return TokenJaccardSimilarity
	}
	return nil
}

// LevenshteinSimilarity returns 1 minus the normalized edit distance
// between a and b. Empty inputs score zero.
func LevenshteinSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)

	// Single-row dynamic programming over the edit distance matrix.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	distance := prev[len(rb)]
	maxLen := max(len(ra), len(rb))
	return 1 - float64(distance)/float64(maxLen)
}

// TokenJaccardSimilarity returns the Jaccard index of the whitespace token
// sets of a and b.
func TokenJaccardSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
