package utils

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Similarity returns the levenshtein similarity ratio of two strings.
//
// The ratio is 1 for identical strings and approaches 0 as the edit distance
// grows. Comparison is rune-based, so multi-byte text is measured correctly.
//
// Args:
//   - a: The first string.
//   - b: The second string.
//
// Returns:
//   - float64: The similarity ratio in [0, 1].
func Similarity(a, b string) float64 {
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}
