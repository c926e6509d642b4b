package importer

import (
	"strings"
	"testing"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

func TestForFile_RoutesByExtension(t *testing.T) {
	cases := []struct {
		filename string
		wantType string
	}{
		{"book.txt", "*importer.TextImporter"},
		{"book.md", "*importer.TextImporter"},
		{"book.markdown", "*importer.TextImporter"},
		{"book.html", "*importer.HTMLImporter"},
		{"book.PDF", "*importer.PDFImporter"},
		{"book.docx", "*importer.DOCXImporter"},
	}
	for _, tc := range cases {
		imp, err := ForFile(tc.filename)
		if err != nil {
			t.Errorf("ForFile(%q): %v", tc.filename, err)
			continue
		}
		if got := typeName(imp); got != tc.wantType {
			t.Errorf("ForFile(%q) = %s, want %s", tc.filename, got, tc.wantType)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextImporter:
		return "*importer.TextImporter"
	case *HTMLImporter:
		return "*importer.HTMLImporter"
	case *PDFImporter:
		return "*importer.PDFImporter"
	case *DOCXImporter:
		return "*importer.DOCXImporter"
	}
	return "unknown"
}

func TestForFile_RejectsUnsupported(t *testing.T) {
	if _, err := ForFile("image.png"); err == nil {
		t.Error("expected error for .png")
	}
	if IsSupportedExtension("image.png") {
		t.Error("IsSupportedExtension should reject .png")
	}
	if !IsSupportedExtension("Book.DOCX") {
		t.Error("extension check should be case-insensitive")
	}
}

// Every extension the upload check accepts must route to an importer.
func TestSupportedExtensions_AgreeWithForFile(t *testing.T) {
	for ext := range SupportedExtensions {
		if _, err := ForFile("book" + ext); err != nil {
			t.Errorf("ForFile has no importer for supported extension %s: %v", ext, err)
		}
	}
	if !IsSupportedExtension("book.markdown") {
		t.Error("IsSupportedExtension should accept .markdown")
	}
}

func TestTextImporter_SinglePage(t *testing.T) {
	p := &TextImporter{}
	records, err := p.Import(strings.NewReader("Counting by tens.\n\nStart at ten and add ten each time."), "notes.txt")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 page, got %d", len(records))
	}
	rec := records[0]
	if rec.DocType != ocr.DocTypePage {
		t.Errorf("doc type = %q", rec.DocType)
	}
	if rec.PageNumber == nil || *rec.PageNumber != 1 {
		t.Errorf("page number = %v", rec.PageNumber)
	}
	if !strings.Contains(rec.RawText, "Counting by tens.") {
		t.Errorf("raw text missing content: %q", rec.RawText)
	}
}

func TestTextImporter_FormFeedSplitsPages(t *testing.T) {
	p := &TextImporter{}
	records, err := p.Import(strings.NewReader("Page one text.\f\nPage two text.\f\f"), "scan.txt")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(records))
	}
	if *records[0].PageNumber != 1 || *records[1].PageNumber != 2 {
		t.Errorf("page numbers: %d, %d", *records[0].PageNumber, *records[1].PageNumber)
	}
	if records[1].RawText != "Page two text." {
		t.Errorf("page two raw text = %q", records[1].RawText)
	}
}

func TestTextImporter_EmptyInput(t *testing.T) {
	p := &TextImporter{}
	records, err := p.Import(strings.NewReader("  \n\t\n"), "empty.txt")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestHTMLImporter_HeadingsStartPages(t *testing.T) {
	input := `<html><head><title>Math 3</title><script>var x;</script></head><body>
<h1>Unit 1: Place Value</h1>
<p>Digits have different values based on position.</p>
<ul><li>ones</li><li>tens</li><li>hundreds</li></ul>
<h1>Unit 2: Addition</h1>
<p>Combine two numbers to find their sum.</p>
</body></html>`

	p := &HTMLImporter{}
	records, err := p.Import(strings.NewReader(input), "book.html")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(records))
	}

	first := records[0]
	if first.Layout[0].Type != ocr.ElementHeading || first.Layout[0].Text != "Unit 1: Place Value" {
		t.Errorf("first element = %+v", first.Layout[0])
	}
	foundList := false
	for _, el := range first.Layout {
		if el.Type == ocr.ElementList && len(el.Items) == 3 {
			foundList = true
		}
	}
	if !foundList {
		t.Error("list element missing from first page")
	}
	if strings.Contains(first.ChunkInput(), "var x;") {
		t.Error("script content leaked into chunk input")
	}

	second := records[1]
	if *second.PageNumber != 2 {
		t.Errorf("second page number = %d", *second.PageNumber)
	}
	if !strings.Contains(second.ChunkInput(), "Combine two numbers") {
		t.Errorf("second page content = %q", second.ChunkInput())
	}
}

func TestHTMLImporter_BodylessFragment(t *testing.T) {
	p := &HTMLImporter{}
	records, err := p.Import(strings.NewReader("<p>Loose paragraph.</p>"), "frag.html")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 page, got %d", len(records))
	}
	if !strings.Contains(records[0].ChunkInput(), "Loose paragraph.") {
		t.Errorf("content = %q", records[0].ChunkInput())
	}
}
