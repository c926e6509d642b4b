package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// TextImporter handles plain text and markdown files. Form feeds mark
// page boundaries; without them the whole file is one page.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) ([]ocr.Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var records []ocr.Result
	page := 0
	for _, block := range strings.Split(sb.String(), "\f") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		page++
		records = append(records, pageRecord(page, block, nil))
	}
	return records, nil
}
