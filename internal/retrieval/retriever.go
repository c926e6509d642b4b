package retrieval

import (
	"fmt"
	"sort"
	"strings"
)

// Engine orchestrates filtering, scoring, and budget-bounded selection.
// All methods are pure functions of their inputs.
type Engine struct {
	scorer *Scorer
}

// NewEngine returns an engine with the default scorer.
func NewEngine() *Engine {
	return &Engine{scorer: NewScorer()}
}

// NewEngineWithScorer allows a custom-tuned scorer.
func NewEngineWithScorer(s *Scorer) *Engine {
	return &Engine{scorer: s}
}

// Retrieve selects the most relevant chunks for the query under the
// token budget. An empty result is a valid "insufficient content"
// signal, not an error.
func (e *Engine) Retrieve(candidates []Chunk, ctx Context, opts Options) Result {
	opts = opts.normalized()

	queryTerms := e.scorer.QueryTerms(ctx.Query)
	result := Result{
		Chunks:     []ScoredChunk{},
		QueryTerms: queryTerms,
	}

	filtered := make([]Chunk, 0, len(candidates))
	for _, c := range candidates {
		if c.TextbookID != ctx.TextbookID {
			continue
		}
		if opts.PageRange != nil &&
			(c.PageNumber < opts.PageRange.Start || c.PageNumber > opts.PageRange.End) {
			continue
		}
		if IsLowSignal(c.Content) || LooksLikePromptInjection(c.Content) {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 || len(queryTerms) == 0 {
		return result
	}

	boosts := Boosts{LessonID: ctx.LessonID}
	if boosts.LessonID == "" {
		boosts.LessonID = opts.LessonID
	}
	if opts.BoostRecentPages {
		boosts.CurrentPage = ctx.CurrentPage
	}

	scored := e.scorer.ScoreAll(filtered, queryTerms, boosts)

	// Greedy selection in score order: a chunk that would overflow the
	// budget is skipped, not truncated, so a smaller lower-ranked chunk
	// may still be taken.
	for _, sc := range scored {
		if sc.Score < opts.MinScore {
			break
		}
		if len(result.Chunks) >= opts.TopK {
			break
		}
		if result.TotalTokens+sc.Chunk.TokenEstimate > opts.MaxTokens {
			continue
		}
		result.Chunks = append(result.Chunks, sc)
		result.TotalTokens += sc.Chunk.TokenEstimate
	}
	return result
}

// DefaultExcerptChars caps each excerpt in the formatted prompt.
const DefaultExcerptChars = 1500

// FormatPrompt renders selected chunks as numbered excerpts with page
// headers, each truncated with an ellipsis past maxChars (0 uses the
// default cap).
func FormatPrompt(result Result, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultExcerptChars
	}
	var sb strings.Builder
	for i, sc := range result.Chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] (Page %d)\n", i+1, sc.Chunk.PageNumber)
		content := sc.Chunk.Content
		if len(content) > maxChars {
			if runes := []rune(content); len(runes) > maxChars {
				content = string(runes[:maxChars]) + "…"
			}
		}
		sb.WriteString(content)
	}
	return sb.String()
}

// Citations extracts the answer-attribution triples for persistence.
func Citations(result Result) []Citation {
	citations := make([]Citation, 0, len(result.Chunks))
	for _, sc := range result.Chunks {
		citations = append(citations, Citation{
			ChunkID:        sc.Chunk.ID,
			PageNumber:     sc.Chunk.PageNumber,
			RelevanceScore: sc.Score,
		})
	}
	return citations
}

// Pages returns the unique page numbers of the selection, ascending.
func Pages(result Result) []int {
	seen := map[int]bool{}
	var pages []int
	for _, sc := range result.Chunks {
		if !seen[sc.Chunk.PageNumber] {
			seen[sc.Chunk.PageNumber] = true
			pages = append(pages, sc.Chunk.PageNumber)
		}
	}
	sort.Ints(pages)
	return pages
}

// HasMinimumContent reports whether the selection is good enough to
// ground an answer: at least minChunks chunks with at least one at or
// above scoreFloor.
func HasMinimumContent(result Result, minChunks int, scoreFloor float64) bool {
	if len(result.Chunks) < minChunks {
		return false
	}
	for _, sc := range result.Chunks {
		if sc.Score >= scoreFloor {
			return true
		}
	}
	return false
}

// Summary renders a short human-readable description of the selection.
func Summary(result Result) string {
	if len(result.Chunks) == 0 {
		return "no relevant content found"
	}
	pages := Pages(result)
	pageStrs := make([]string, len(pages))
	for i, p := range pages {
		pageStrs[i] = fmt.Sprintf("%d", p)
	}
	return fmt.Sprintf("%d chunk(s) from page(s) %s, %d tokens, top score %.2f",
		len(result.Chunks), strings.Join(pageStrs, ", "),
		result.TotalTokens, result.Chunks[0].Score)
}
