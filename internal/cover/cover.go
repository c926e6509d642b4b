// Package cover extracts normalized book metadata from a cover-typed
// OCR record. Fields the OCR service did not recognize stay nil; nothing
// is ever guessed or fabricated.
package cover

import (
	"strings"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// Metadata is the normalized cover information for a textbook. Each
// field is independently optional.
type Metadata struct {
	Title     *string `json:"title"`
	Publisher *string `json:"publisher"`
	ISBN13    *string `json:"isbn13"`
	Edition   *string `json:"edition"`
}

// Parse normalizes a cover record's metadata. Records of other doc
// types yield an all-nil Metadata rather than an error.
func Parse(r ocr.Result) Metadata {
	var m Metadata
	if r.DocType != ocr.DocTypeCover {
		return m
	}
	if title := strings.TrimSpace(r.Title); title != "" {
		m.Title = &title
	}
	if pub := strings.TrimSpace(r.Publisher); pub != "" {
		m.Publisher = &pub
	}
	if ed := strings.TrimSpace(r.Edition); ed != "" {
		m.Edition = &ed
	}
	if isbn, ok := NormalizeISBN(r.ISBN13); ok {
		m.ISBN13 = &isbn
	}
	return m
}

// NormalizeISBN reduces an OCR'd ISBN string to a canonical 13-digit
// form. A 13-digit numeric string passes through unchanged; a
// 10-character ISBN is converted by prefixing 978 to its first 9 digits
// and recomputing the checksum. Anything else is rejected.
func NormalizeISBN(raw string) (string, bool) {
	cleaned := stripISBN(raw)
	switch len(cleaned) {
	case 13:
		if strings.ContainsAny(cleaned, "Xx") {
			return "", false
		}
		return cleaned, true
	case 10:
		core := "978" + cleaned[:9]
		if strings.ContainsAny(core, "Xx") {
			return "", false
		}
		return core + checksum13(core), true
	default:
		return "", false
	}
}

// stripISBN removes everything except digits and the ISBN-10 check
// character X.
func stripISBN(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// checksum13 computes the ISBN-13 check digit for a 12-digit prefix
// using alternating weights 1 and 3.
func checksum13(prefix string) string {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		d := int(prefix[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return string(rune('0' + check))
}
