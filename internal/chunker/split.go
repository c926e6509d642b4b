package chunker

import "strings"

// NormalizeWhitespace cleans OCR artifacts: carriage returns, tabs,
// non-breaking spaces, space runs, and stacks of blank lines.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, " ", " ")

	var sb strings.Builder
	sb.Grow(len(text))
	spaces, newlines := 0, 0
	for _, r := range text {
		switch r {
		case ' ':
			spaces++
		case '\n':
			newlines++
			spaces = 0
		default:
			if newlines >= 2 {
				sb.WriteString("\n\n")
			} else if newlines == 1 {
				sb.WriteByte('\n')
			} else if spaces > 0 {
				sb.WriteByte(' ')
			}
			spaces, newlines = 0, 0
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// splitParagraphs splits on blank lines, dropping empties.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by whitespace. Decimal points and mid-word dots survive
// because they are not followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
