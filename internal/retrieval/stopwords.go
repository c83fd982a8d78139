package retrieval

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// #region stopwords
// stopwords is the closed set of function words excluded from keyword overlap.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "to": true,
	"of": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "for": true, "with": true, "by": true,
	"from": true, "as": true, "this": true, "that": true, "these": true,
	"those": true, "so": true, "do": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true, "have": true,
	"has": true, "had": true, "what": true, "which": true, "when": true,
	"where": true, "why": true, "how": true,
}

// tokenize splits lowercase text on whitespace into unique non-stopword tokens.
// Punctuation stays attached, so "research?" and "research" are distinct.
func tokenize(text string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// sharedKeywords returns the count of tokens present in both slices.
func sharedKeywords(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// KeywordOverlap counts the non-stopword tokens a and b share.
func KeywordOverlap(a, b string) int {
	return sharedKeywords(tokenize(a), tokenize(b))
}

// #endregion stopwords

// #region similarity
// Similarity returns the character-level matching ratio of a and b in [0,1]:
// 2*M/T where M is the number of matched characters and T the combined length.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// #endregion similarity
