package retrieval

import "strings"

// Stemmer expands a query token into matching variants. The suffix
// stripper below is an admitted approximation; swapping in a real
// stemmer changes nothing about the scorer's contract.
type Stemmer interface {
	Stem(token string) []string
}

// SuffixStemmer strips common English suffixes when the token is long
// enough that stripping is safe. The original token is always included.
type SuffixStemmer struct{}

func (SuffixStemmer) Stem(token string) []string {
	variants := []string{token}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		variants = append(variants, v)
	}

	switch {
	case strings.HasSuffix(token, "ing") && len(token) > 5:
		add(strings.TrimSuffix(token, "ing"))
	case strings.HasSuffix(token, "ed") && len(token) > 4:
		add(strings.TrimSuffix(token, "ed"))
	case strings.HasSuffix(token, "ly") && len(token) > 4:
		add(strings.TrimSuffix(token, "ly"))
	case strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") && len(token) > 3:
		add(strings.TrimSuffix(token, "s"))
	}
	return variants
}
