package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brightpath-labs/textbookd/internal/retrieval"
)

// sufficiencyFloor is the top-score threshold below which a selection
// is reported as insufficient to ground an answer.
const sufficiencyFloor = 0.3

// retrieveRequest is the JSON body for POST /api/retrieve.
type retrieveRequest struct {
	Query       string `json:"query"`
	TextbookID  string `json:"textbook_id"`
	LessonID    string `json:"lesson_id,omitempty"`
	CurrentPage *int   `json:"current_page,omitempty"`

	TopK             int     `json:"top_k,omitempty"`
	MinScore         float64 `json:"min_score,omitempty"`
	MaxTokens        int     `json:"max_tokens,omitempty"`
	PageStart        int     `json:"page_start,omitempty"`
	PageEnd          int     `json:"page_end,omitempty"`
	BoostRecentPages bool    `json:"boost_recent_pages,omitempty"`
}

type retrievedChunk struct {
	ID           string   `json:"id"`
	LessonID     string   `json:"lesson_id,omitempty"`
	PageNumber   int      `json:"page_number"`
	Content      string   `json:"content"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.TextbookID == "" {
		jsonError(w, "textbook_id is required", http.StatusBadRequest)
		return
	}

	candidates, err := s.orchestrator.StoreClient().ListChunks(r.Context(), req.TextbookID)
	if err != nil {
		jsonError(w, "failed to load chunks: "+err.Error(), http.StatusBadGateway)
		return
	}

	opts := retrieval.Options{
		TopK:             req.TopK,
		MinScore:         req.MinScore,
		MaxTokens:        req.MaxTokens,
		BoostRecentPages: req.BoostRecentPages,
	}
	if opts.TopK <= 0 {
		opts.TopK = s.cfg.RetrievalTopK
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.cfg.RetrievalMinScore
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = s.cfg.RetrievalMaxTokens
	}
	if req.PageStart > 0 || req.PageEnd > 0 {
		end := req.PageEnd
		if end <= 0 {
			end = int(^uint(0) >> 1)
		}
		opts.PageRange = &retrieval.PageRange{Start: req.PageStart, End: end}
	}

	start := time.Now()
	result := s.engine.Retrieve(candidates, retrieval.Context{
		Query:       req.Query,
		TextbookID:  req.TextbookID,
		LessonID:    req.LessonID,
		CurrentPage: req.CurrentPage,
	}, opts)
	s.stats.Record(time.Since(start), result)

	chunks := make([]retrievedChunk, 0, len(result.Chunks))
	for _, sc := range result.Chunks {
		chunks = append(chunks, retrievedChunk{
			ID:           sc.Chunk.ID,
			LessonID:     sc.Chunk.LessonID,
			PageNumber:   sc.Chunk.PageNumber,
			Content:      sc.Chunk.Content,
			Score:        sc.Score,
			MatchedTerms: sc.MatchedTerms,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"chunks":       chunks,
		"citations":    retrieval.Citations(result),
		"pages":        retrieval.Pages(result),
		"prompt":       retrieval.FormatPrompt(result, 0),
		"query_terms":  result.QueryTerms,
		"total_tokens": result.TotalTokens,
		"sufficient":   retrieval.HasMinimumContent(result, 1, sufficiencyFloor),
		"summary":      retrieval.Summary(result),
	})
}

func (s *Server) handleRetrievalStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.stats.Snapshot())
}
