package retrieval

import (
	"regexp"
	"strings"
)

// Candidate hygiene: OCR of decorative pages produces chunks that are
// all page furniture, and user-uploaded material can carry text aimed
// at the downstream model rather than the student. Both are dropped
// before scoring.

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// LooksLikePromptInjection flags content that addresses the model.
func LooksLikePromptInjection(text string) bool {
	return injectionPattern.MatchString(text)
}

// IsLowSignal flags content too short or too symbol-heavy to be worth
// ranking.
func IsLowSignal(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 20 {
		return true
	}
	alnum := 0
	total := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			alnum++
		}
	}
	return float64(alnum) < 0.3*float64(total)
}
