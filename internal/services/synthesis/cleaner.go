// Package synthesis converts script lines into audio segments, choosing
// delivery parameters from emotion labels or textual heuristics.
package synthesis

import (
	"regexp"
	"strings"
)

var (
	stageDirectionPattern = regexp.MustCompile(`\[[^\]]*\]`)
	fillerPattern         = regexp.MustCompile(`(?i)\b(pause|um|uh)\b`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
)

// CleanText strips stage directions and filler words and collapses
// whitespace. Cleaning is idempotent; running it twice changes nothing.
func CleanText(text string) string {
	cleaned := stageDirectionPattern.ReplaceAllString(text, " ")
	cleaned = fillerPattern.ReplaceAllString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Speakable reports whether a cleaned line is worth synthesizing.
// Lines shorter than 3 characters are skipped, not counted as segments.
func Speakable(cleaned string) bool {
	return len(cleaned) >= 3
}
