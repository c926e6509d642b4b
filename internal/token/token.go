// Package token approximates token counts for text spans. Every budget
// decision downstream (chunk sizing, retrieval selection) goes through
// Estimate, so it stays deliberately simple and deterministic.
package token

import (
	"math"
	"strings"
)

// Estimate returns an approximate token count for text. It averages a
// word-based estimate (most words map to at least one token) with a
// character-based one (~4 chars per token), which avoids over-counting
// long compound words and under-counting short punctuated text.
// Empty or whitespace-only input returns 0.
func Estimate(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	wordEstimate := float64(len(words)) * 1.3
	charEstimate := float64(len(text)) / 4
	return int(math.Ceil((wordEstimate + charEstimate) / 2))
}
