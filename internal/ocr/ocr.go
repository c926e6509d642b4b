// Package ocr defines the record shape produced by the external
// vision/OCR service and the helpers that turn a record into chunkable
// plain text. Records are immutable once created; confidence is carried
// for observability only and never drives parsing decisions.
package ocr

import "strings"

// DocType classifies what a scanned image turned out to be.
type DocType string

const (
	DocTypeCover   DocType = "cover"
	DocTypeTOC     DocType = "toc"
	DocTypePage    DocType = "page"
	DocTypeUnknown DocType = "unknown"
)

// ParseDocType maps a wire string to a DocType, defaulting to unknown.
func ParseDocType(s string) DocType {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case DocTypeCover:
		return DocTypeCover
	case DocTypeTOC:
		return DocTypeTOC
	case DocTypePage:
		return DocTypePage
	default:
		return DocTypeUnknown
	}
}

// ElementType identifies a typed layout element on a page.
type ElementType string

const (
	ElementHeading   ElementType = "heading"
	ElementParagraph ElementType = "paragraph"
	ElementList      ElementType = "list"
	ElementEquation  ElementType = "equation"
	ElementFigure    ElementType = "figure"
	ElementTable     ElementType = "table"
)

// LayoutElement is one ordered element of a page's recognized layout.
// When a record carries layout, it is preferred over RawText as chunk
// input because it preserves reading order across columns.
type LayoutElement struct {
	Type ElementType `json:"type"`
	Text string      `json:"text"`
	// Items holds list entries for ElementList.
	Items []string `json:"items,omitempty"`
}

// Result is a single OCR record for one scanned image.
type Result struct {
	DocType    DocType         `json:"doc_type"`
	ISBN13     string          `json:"isbn13,omitempty"`
	Title      string          `json:"title,omitempty"`
	Publisher  string          `json:"publisher,omitempty"`
	Edition    string          `json:"edition,omitempty"`
	PageNumber *int            `json:"page_number,omitempty"`
	RawText    string          `json:"raw_text"`
	Layout     []LayoutElement `json:"layout,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
}

// ChunkInput returns the text the chunker should see for this record:
// the rendered layout when present, otherwise RawText flattened out of
// markdown if the vision service emitted markdown.
func (r Result) ChunkInput() string {
	if len(r.Layout) > 0 {
		return RenderLayout(r.Layout)
	}
	if LooksLikeMarkdown(r.RawText) {
		return FlattenMarkdown(r.RawText)
	}
	return r.RawText
}

// RenderLayout serializes ordered layout elements to plain text.
// Headings stay on their own line; non-prose elements are wrapped in
// bracketed markers so retrieval can still match their captions.
func RenderLayout(elements []LayoutElement) string {
	var sb strings.Builder
	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if text == "" && len(el.Items) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		switch el.Type {
		case ElementHeading:
			sb.WriteString(text)
		case ElementList:
			for i, item := range el.Items {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString("- ")
				sb.WriteString(strings.TrimSpace(item))
			}
			if len(el.Items) == 0 {
				sb.WriteString(text)
			}
		case ElementEquation:
			sb.WriteString("[equation: " + text + "]")
		case ElementFigure:
			sb.WriteString("[figure: " + text + "]")
		case ElementTable:
			sb.WriteString("[table: " + text + "]")
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}
