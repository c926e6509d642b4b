// Package importer converts uploaded document files into the same
// page-record form the OCR pipeline produces, so locally supplied
// textbooks flow through ingestion unchanged.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// Importer converts raw document bytes into page records.
type Importer interface {
	Import(r io.Reader, filename string) ([]ocr.Result, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", ".markdown":
		// Markdown survives as raw text; downstream chunk input
		// flattens it.
		return &TextImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// pageBuilder accumulates layout elements into sequential synthetic
// pages for formats without native page boundaries.
type pageBuilder struct {
	pages [][]ocr.LayoutElement
}

func newPageBuilder() *pageBuilder {
	return &pageBuilder{}
}

// startPage opens a new page unless the current one is still empty.
func (b *pageBuilder) startPage() {
	if n := len(b.pages); n > 0 && len(b.pages[n-1]) == 0 {
		return
	}
	b.pages = append(b.pages, nil)
}

func (b *pageBuilder) add(el ocr.LayoutElement) {
	if len(b.pages) == 0 {
		b.pages = append(b.pages, nil)
	}
	b.pages[len(b.pages)-1] = append(b.pages[len(b.pages)-1], el)
}

func (b *pageBuilder) records() []ocr.Result {
	var out []ocr.Result
	page := 0
	for _, layout := range b.pages {
		if len(layout) == 0 {
			continue
		}
		page++
		out = append(out, pageRecord(page, "", layout))
	}
	return out
}

// pageRecord builds one page-scan record with the given 1-based page
// number.
func pageRecord(page int, rawText string, layout []ocr.LayoutElement) ocr.Result {
	p := page
	return ocr.Result{
		DocType:    ocr.DocTypePage,
		PageNumber: &p,
		RawText:    rawText,
		Layout:     layout,
		Confidence: 1.0,
	}
}
