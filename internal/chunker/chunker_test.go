package chunker

import (
	"reflect"
	"strings"
	"testing"

	"github.com/brightpath-labs/textbookd/internal/ocr"
	"github.com/brightpath-labs/textbookd/internal/token"
)

// pageText builds a multi-paragraph page big enough to force splitting.
func pageText(paragraphs, sentencesPer int) string {
	var sb strings.Builder
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			sb.WriteString("\n\n")
		}
		for s := 0; s < sentencesPer; s++ {
			if s > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString("Adding fractions requires a common denominator before the numerators combine.")
		}
	}
	return sb.String()
}

func TestChunkPage_EmptyInput(t *testing.T) {
	if got := ChunkPage(3, "", DefaultOptions()); len(got) != 0 {
		t.Errorf("expected no chunks for empty page, got %d", len(got))
	}
	if got := ChunkPage(3, "   \n\t  ", DefaultOptions()); len(got) != 0 {
		t.Errorf("expected no chunks for whitespace page, got %d", len(got))
	}
}

func TestChunkPage_ShortTextSingleChunk(t *testing.T) {
	text := "A short page about addition. It has two sentences."
	got := ChunkPage(7, text, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	c := got[0]
	if c.Content != text {
		t.Errorf("expected content to equal input, got %q", c.Content)
	}
	if c.ChunkIndex != 0 || c.PageNumber != 7 {
		t.Errorf("expected index 0 on page 7, got index %d page %d", c.ChunkIndex, c.PageNumber)
	}
	if c.TokenEstimate != token.Estimate(text) {
		t.Errorf("token estimate mismatch: %d vs %d", c.TokenEstimate, token.Estimate(text))
	}
	if len(c.ContentHash) != 8 {
		t.Errorf("expected 8-hex hash, got %q", c.ContentHash)
	}
}

func TestChunkPage_LongTextSplits(t *testing.T) {
	got := ChunkPage(1, pageText(20, 6), DefaultOptions())
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, c := range got {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.ChunkIndex)
		}
		if c.PageNumber != 1 {
			t.Errorf("chunk %d: wrong page %d", i, c.PageNumber)
		}
	}
}

func TestChunkPage_RespectsSizeBounds(t *testing.T) {
	opts := DefaultOptions()
	got := ChunkPage(1, pageText(30, 6), opts)
	ceiling := int(float64(opts.MaxTokens) * opts.MergeOverflowRatio)
	for i, c := range got {
		if c.TokenEstimate > ceiling {
			t.Errorf("chunk %d: %d tokens exceeds allowance %d", i, c.TokenEstimate, ceiling)
		}
	}
}

func TestChunkPage_OverlapCarriesContext(t *testing.T) {
	got := ChunkPage(1, pageText(20, 6), DefaultOptions())
	if len(got) < 2 {
		t.Fatalf("need at least 2 chunks, got %d", len(got))
	}
	// The second chunk should open with the tail sentence of the first.
	firstSentences := splitSentences(got[0].Content)
	tail := firstSentences[len(firstSentences)-1]
	if !strings.HasPrefix(got[1].Content, tail) {
		t.Errorf("expected chunk 1 to start with overlap from chunk 0 tail\n tail: %q\n got: %q",
			tail, got[1].Content[:min(len(got[1].Content), 120)])
	}
}

func TestChunkPage_Deterministic(t *testing.T) {
	text := pageText(15, 5)
	a := ChunkPage(2, text, DefaultOptions())
	b := ChunkPage(2, text, DefaultOptions())
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical chunking across calls")
	}
}

func TestChunkPage_OversizedParagraphResplit(t *testing.T) {
	// One giant paragraph with sentence boundaries, well past MaxTokens.
	text := pageText(1, 80)
	got := ChunkPage(1, text, DefaultOptions())
	if len(got) < 2 {
		t.Fatalf("expected oversized paragraph to split, got %d chunks", len(got))
	}
	for i, c := range got {
		if c.TokenEstimate > DefaultOptions().MaxTokens {
			t.Errorf("chunk %d still oversized: %d tokens", i, c.TokenEstimate)
		}
	}
}

func TestChunkPage_NoSentenceBoundaries(t *testing.T) {
	// A run of words with no terminal punctuation falls back to
	// word-level packing.
	text := strings.Repeat("denominator ", 1200)
	got := ChunkPage(1, text, DefaultOptions())
	if len(got) < 2 {
		t.Fatalf("expected word-level split, got %d chunks", len(got))
	}
}

func TestChunkPage_NormalizesWhitespace(t *testing.T) {
	got := ChunkPage(1, "line one\r\nline two\t spaced   out", DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	want := "line one\nline two spaced out"
	if got[0].Content != want {
		t.Errorf("expected %q, got %q", want, got[0].Content)
	}
}

func TestChunkPages_FiltersSortsAndRestartsIndexes(t *testing.T) {
	p5, p3 := 5, 3
	records := []ocr.Result{
		{DocType: ocr.DocTypePage, PageNumber: &p5, RawText: pageText(2, 2)},
		{DocType: ocr.DocTypeTOC, PageNumber: &p3, RawText: "Unit 1: Numbers .... 5"},
		{DocType: ocr.DocTypePage, PageNumber: nil, RawText: "no page number"},
		{DocType: ocr.DocTypePage, PageNumber: &p3, RawText: pageText(2, 2)},
	}
	got := ChunkPages(records, DefaultOptions())
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks (one per page), got %d", len(got))
	}
	if got[0].PageNumber != 3 || got[1].PageNumber != 5 {
		t.Errorf("expected ascending page order, got %d then %d", got[0].PageNumber, got[1].PageNumber)
	}
	if got[0].ChunkIndex != 0 || got[1].ChunkIndex != 0 {
		t.Errorf("expected per-page index restart, got %d and %d", got[0].ChunkIndex, got[1].ChunkIndex)
	}
}

func TestChunkPages_LayoutPreferred(t *testing.T) {
	p1 := 1
	records := []ocr.Result{
		{
			DocType:    ocr.DocTypePage,
			PageNumber: &p1,
			RawText:    "should be ignored",
			Layout: []ocr.LayoutElement{
				{Type: ocr.ElementHeading, Text: "Comparing Fractions"},
				{Type: ocr.ElementEquation, Text: "1/2 > 1/3"},
			},
		},
	}
	got := ChunkPages(records, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if !strings.Contains(got[0].Content, "[equation: 1/2 > 1/3]") {
		t.Errorf("expected rendered layout in chunk, got %q", got[0].Content)
	}
	if strings.Contains(got[0].Content, "should be ignored") {
		t.Error("raw text should not be used when layout is present")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a\r\nb", "a\nb"},
		{"a\tb", "a b"},
		{"a b", "a b"},
		{"a   b", "a b"},
		{"a\n\n\n\nb", "a\n\nb"},
		{"  padded  ", "padded"},
	}
	for _, c := range cases {
		if got := NormalizeWhitespace(c.in); got != c.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitSentences_DecimalsSurvive(t *testing.T) {
	got := splitSentences("The answer is 1.5 exactly. Check your work.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "The answer is 1.5 exactly." {
		t.Errorf("decimal split wrong: %q", got[0])
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
