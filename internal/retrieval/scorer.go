package retrieval

import (
	"sort"
	"strings"
)

// Boosts carries the contextual multipliers applied after base lexical
// scoring.
type Boosts struct {
	// LessonID, when non-empty, boosts chunks belonging to that lesson.
	LessonID string
	// CurrentPage, when set, boosts chunks near it with a linear decay
	// over the proximity window.
	CurrentPage *int
}

// Scorer computes lexical relevance. Zero-value defaults are tuned for
// math textbooks; the classifier and stemmer are injectable.
type Scorer struct {
	Classifier TermClassifier
	Stemmer    Stemmer

	// LessonBoost is the multiplier bonus for a lesson match.
	LessonBoost float64
	// ProximityBoost is the maximum bonus at zero page distance.
	ProximityBoost float64
	// ProximityWindow is the page distance at which the bonus reaches
	// zero.
	ProximityWindow int
}

// NewScorer returns a scorer with the default classifier, stemmer, and
// boost tuning.
func NewScorer() *Scorer {
	return &Scorer{
		Classifier:      MathClassifier{},
		Stemmer:         SuffixStemmer{},
		LessonBoost:     0.3,
		ProximityBoost:  0.2,
		ProximityWindow: 20,
	}
}

// Tokenize lowercases, strips non-alphanumerics to spaces, splits on
// whitespace, and drops single characters and stop-words — except
// domain terms, which always survive.
func (s *Scorer) Tokenize(text string) []string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}

	fields := strings.Fields(sb.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 {
			continue
		}
		if s.Classifier.IsStopWord(f) && !s.Classifier.IsDomainTerm(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// QueryTerms tokenizes a query and augments it with suffix-stripped
// variants to approximate stemming.
func (s *Scorer) QueryTerms(query string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, tok := range s.Tokenize(query) {
		for _, v := range s.Stemmer.Stem(tok) {
			if !seen[v] {
				seen[v] = true
				terms = append(terms, v)
			}
		}
	}
	return terms
}

// Score rates one chunk against a query-term set, applying contextual
// boosts, and clamps to [0, 1].
func (s *Scorer) Score(chunk Chunk, queryTerms []string, boosts Boosts) ScoredChunk {
	scored := ScoredChunk{Chunk: chunk, MatchedTerms: []string{}}
	if len(queryTerms) == 0 {
		return scored
	}
	contentTokens := s.Tokenize(chunk.Content)
	if len(contentTokens) == 0 {
		return scored
	}

	total := 0.0
	for _, term := range queryTerms {
		matches := 0
		for _, tok := range contentTokens {
			if tok == term || strings.Contains(tok, term) || strings.Contains(term, tok) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		tf := float64(matches) / float64(len(contentTokens))
		total += tf * s.specificity(term)
		scored.MatchedTerms = append(scored.MatchedTerms, term)
	}

	score := total / float64(len(queryTerms))

	if boosts.LessonID != "" && chunk.LessonID == boosts.LessonID {
		score *= 1 + s.LessonBoost
	}
	if boosts.CurrentPage != nil && s.ProximityWindow > 0 {
		distance := chunk.PageNumber - *boosts.CurrentPage
		if distance < 0 {
			distance = -distance
		}
		if distance < s.ProximityWindow {
			decay := 1 - float64(distance)/float64(s.ProximityWindow)
			score *= 1 + s.ProximityBoost*decay
		}
	}

	scored.Score = clamp01(score)
	return scored
}

// specificity weights longer and domain-specific terms more heavily.
func (s *Scorer) specificity(term string) float64 {
	lengthFactor := float64(len(term)) / 10
	if lengthFactor > 1 {
		lengthFactor = 1
	}
	w := 0.5 + lengthFactor
	if s.Classifier.IsDomainTerm(term) {
		w += 0.3
	}
	return w
}

// ScoreAll scores every chunk and sorts by score descending, ties
// broken by ascending page number so identical inputs always rank
// identically.
func (s *Scorer) ScoreAll(chunks []Chunk, queryTerms []string, boosts Boosts) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, s.Score(c, queryTerms, boosts))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.PageNumber < scored[j].Chunk.PageNumber
	})
	return scored
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
