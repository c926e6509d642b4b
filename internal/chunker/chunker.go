// Package chunker splits a page's cleaned text into token-budget-sized
// chunks with paragraph/sentence preservation and inter-chunk overlap.
package chunker

import (
	"sort"
	"strings"

	"github.com/brightpath-labs/textbookd/internal/contenthash"
	"github.com/brightpath-labs/textbookd/internal/ocr"
	"github.com/brightpath-labs/textbookd/internal/token"
)

// Options controls chunking behavior.
type Options struct {
	TargetTokens       int     // Soft ceiling a buffer closes at.
	MinTokens          int     // Hard floor before a buffer may close.
	MaxTokens          int     // A single unit above this gets re-split.
	OverlapTokens      int     // Sentence-tail overlap carried across a boundary.
	PreserveParagraphs bool    // Split on paragraphs first.
	PreserveSentences  bool    // Fall back to sentences.
	MergeOverflowRatio float64 // Trailing-merge allowance over MaxTokens.
}

// DefaultOptions returns the tuned defaults for textbook pages.
func DefaultOptions() Options {
	return Options{
		TargetTokens:       450,
		MinTokens:          300,
		MaxTokens:          600,
		OverlapTokens:      50,
		PreserveParagraphs: true,
		PreserveSentences:  true,
		MergeOverflowRatio: 1.2,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.TargetTokens <= 0 {
		o.TargetTokens = d.TargetTokens
	}
	if o.MinTokens <= 0 {
		o.MinTokens = d.MinTokens
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.OverlapTokens <= 0 {
		o.OverlapTokens = d.OverlapTokens
	}
	if o.MergeOverflowRatio <= 0 {
		o.MergeOverflowRatio = d.MergeOverflowRatio
	}
	return o
}

// TextChunk is one retrieval-sized span of a page. ChunkIndex is
// 0-based and monotonic within the page; ContentHash depends only on
// the trimmed content.
type TextChunk struct {
	PageNumber    int    `json:"page_number"`
	ChunkIndex    int    `json:"chunk_index"`
	Content       string `json:"content"`
	ContentHash   string `json:"content_hash"`
	TokenEstimate int    `json:"token_estimate"`
}

// ChunkPage splits one page's text into chunks. Empty or
// whitespace-only input yields an empty list, never an error.
func ChunkPage(page int, text string, opts Options) []TextChunk {
	opts = opts.normalized()

	text = NormalizeWhitespace(text)
	if text == "" {
		return []TextChunk{}
	}

	if token.Estimate(text) <= opts.MaxTokens {
		return []TextChunk{newChunk(page, 0, text)}
	}

	contents := packUnits(semanticUnits(text, opts), opts)
	contents = mergeTrailing(contents, opts)

	chunks := make([]TextChunk, 0, len(contents))
	for i, c := range contents {
		chunks = append(chunks, newChunk(page, i, c))
	}
	return chunks
}

// ChunkPages is the multi-page driver: page-typed records with a page
// number, chunked independently in ascending page order. Chunk indexes
// restart at 0 on every page.
func ChunkPages(records []ocr.Result, opts Options) []TextChunk {
	pages := make([]ocr.Result, 0, len(records))
	for _, r := range records {
		if r.DocType == ocr.DocTypePage && r.PageNumber != nil {
			pages = append(pages, r)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return *pages[i].PageNumber < *pages[j].PageNumber
	})

	var chunks []TextChunk
	for _, p := range pages {
		chunks = append(chunks, ChunkPage(*p.PageNumber, p.ChunkInput(), opts)...)
	}
	return chunks
}

func newChunk(page, index int, content string) TextChunk {
	content = strings.TrimSpace(content)
	return TextChunk{
		PageNumber:    page,
		ChunkIndex:    index,
		Content:       content,
		ContentHash:   contenthash.Hash(content),
		TokenEstimate: token.Estimate(content),
	}
}

// semanticUnits picks the split granularity: paragraphs, then
// sentences, then the unchanged whole string.
func semanticUnits(text string, opts Options) []string {
	if opts.PreserveParagraphs {
		return splitParagraphs(text)
	}
	if opts.PreserveSentences {
		return splitSentences(text)
	}
	return []string{text}
}

// packUnits greedily accumulates units into chunk-sized buffers with a
// soft ceiling at TargetTokens and a hard floor at MinTokens.
func packUnits(units []string, opts Options) []string {
	var out []string
	var buf []string
	bufTokens := 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, strings.Join(buf, "\n\n"))
			buf = nil
			bufTokens = 0
		}
	}

	for _, unit := range units {
		unitTokens := token.Estimate(unit)

		// An oversized unit can never fit a buffer; flush and re-split
		// it at finer granularity before continuing.
		if unitTokens > opts.MaxTokens {
			flush()
			out = append(out, splitOversized(unit, opts)...)
			continue
		}

		if bufTokens+unitTokens > opts.TargetTokens && bufTokens >= opts.MinTokens {
			closed := strings.Join(buf, "\n\n")
			out = append(out, closed)
			buf = nil
			bufTokens = 0
			if overlap := overlapTail(closed, opts); overlap != "" {
				buf = append(buf, overlap)
				bufTokens = token.Estimate(overlap)
			}
		}

		buf = append(buf, unit)
		bufTokens += unitTokens
	}
	flush()
	return out
}

// splitOversized re-splits a unit that exceeds MaxTokens: by sentence
// first, with word-level packing at TargetTokens granularity for a
// sentence that is itself too large.
func splitOversized(unit string, opts Options) []string {
	var out []string
	var buf []string
	bufTokens := 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, strings.Join(buf, " "))
			buf = nil
			bufTokens = 0
		}
	}

	for _, sent := range splitSentences(unit) {
		sentTokens := token.Estimate(sent)
		if sentTokens > opts.MaxTokens {
			flush()
			out = append(out, splitByWords(sent, opts.TargetTokens)...)
			continue
		}
		if bufTokens+sentTokens > opts.TargetTokens && bufTokens > 0 {
			flush()
		}
		buf = append(buf, sent)
		bufTokens += sentTokens
	}
	flush()
	return out
}

// splitByWords is the last-resort splitter for pathological runs with
// no sentence boundaries.
func splitByWords(text string, targetTokens int) []string {
	words := strings.Fields(text)
	var out []string
	var buf []string
	for _, w := range words {
		buf = append(buf, w)
		if token.Estimate(strings.Join(buf, " ")) >= targetTokens {
			out = append(out, strings.Join(buf, " "))
			buf = nil
		}
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

// overlapTail collects trailing sentences of a closed chunk up to
// ~OverlapTokens, bounded at 1.5x to avoid runaway growth.
func overlapTail(closed string, opts Options) string {
	sentences := splitSentences(closed)
	if len(sentences) <= 1 {
		return ""
	}
	limit := opts.OverlapTokens + opts.OverlapTokens/2

	var tail []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		sentTokens := token.Estimate(sentences[i])
		if total > 0 && total+sentTokens > limit {
			break
		}
		tail = append([]string{sentences[i]}, tail...)
		total += sentTokens
		if total >= opts.OverlapTokens {
			break
		}
	}
	if len(tail) == len(sentences) {
		// Repeating the whole chunk is not overlap.
		return ""
	}
	return strings.Join(tail, " ")
}

// mergeTrailing folds an undersized final buffer into the previous
// chunk when the merged size stays within the overflow allowance.
func mergeTrailing(contents []string, opts Options) []string {
	n := len(contents)
	if n < 2 {
		return contents
	}
	last := contents[n-1]
	if token.Estimate(last) >= opts.MinTokens/2 {
		return contents
	}
	merged := contents[n-2] + "\n\n" + last
	if float64(token.Estimate(merged)) <= float64(opts.MaxTokens)*opts.MergeOverflowRatio {
		contents[n-2] = merged
		return contents[:n-1]
	}
	return contents
}
