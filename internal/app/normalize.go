package app

import (
	"regexp"
	"strings"
)

// stripped matches everything comparison should ignore: bracketed asides
// (non-greedy, content included) and the stray punctuation trivia answers
// tend to carry. Kept as one alternation so removal happens in a single pass.
var stripped = regexp.MustCompile(`\[.*?\]|\(|\)|,|:|;|"|\?|!|\\]`)

// Normalize reduces free-form answer text to its comparison key: strip asides
// and punctuation, trim, lower-case, then keep only the text before the first
// period. Two answers match iff their keys are equal. The function is pure and
// idempotent; it is the single source of truth for answer correctness.
func Normalize(text string) string {
	key := stripped.ReplaceAllString(text, "")
	key = strings.ToLower(strings.TrimSpace(key))
	key, _, _ = strings.Cut(key, ".")
	// An aside removed right before the period leaves a trailing space;
	// trimming again keeps the function idempotent.
	return strings.TrimSpace(key)
}
