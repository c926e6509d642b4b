// Package retrieval ranks stored chunks against a student's question
// using lexical term overlap, then selects the best under a strict
// token budget. No embeddings, no network: pure functions over the
// candidate set the caller supplies.
package retrieval

// Chunk is the persisted projection of a text chunk plus ownership
// metadata. Read-only input to retrieval.
type Chunk struct {
	ID            string `json:"id"`
	TextbookID    string `json:"textbook_id"`
	LessonID      string `json:"lesson_id,omitempty"`
	PageNumber    int    `json:"page_number"`
	ChunkIndex    int    `json:"chunk_index"`
	Content       string `json:"content"`
	ContentHash   string `json:"content_hash"`
	TokenEstimate int    `json:"token_estimate"`
}

// ScoredChunk pairs a chunk with its query relevance. Ephemeral,
// produced fresh per query.
type ScoredChunk struct {
	Chunk        Chunk    `json:"chunk"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
}

// PageRange restricts candidates to an inclusive page window.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Options tunes selection behavior.
type Options struct {
	TopK             int        `json:"top_k"`
	MinScore         float64    `json:"min_score"`
	MaxTokens        int        `json:"max_tokens"`
	LessonID         string     `json:"lesson_id,omitempty"`
	PageRange        *PageRange `json:"page_range,omitempty"`
	BoostRecentPages bool       `json:"boost_recent_pages"`
}

// DefaultOptions returns the retrieval defaults.
func DefaultOptions() Options {
	return Options{
		TopK:      5,
		MinScore:  0.1,
		MaxTokens: 2000,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.TopK <= 0 {
		o.TopK = d.TopK
	}
	if o.MinScore <= 0 {
		o.MinScore = d.MinScore
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	return o
}

// Context carries the query and its situational hints.
type Context struct {
	Query       string `json:"query"`
	TextbookID  string `json:"textbook_id"`
	LessonID    string `json:"lesson_id,omitempty"`
	CurrentPage *int   `json:"current_page,omitempty"`
}

// Result is the ranked, budget-bounded selection. TotalTokens is
// always the sum of the selected chunks' estimates and never exceeds
// the configured budget.
type Result struct {
	Chunks      []ScoredChunk `json:"chunks"`
	TotalTokens int           `json:"total_tokens"`
	QueryTerms  []string      `json:"query_terms"`
}

// Citation links a generated answer back to source content.
type Citation struct {
	ChunkID        string  `json:"chunk_id"`
	PageNumber     int     `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
}
