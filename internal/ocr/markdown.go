package ocr

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LooksLikeMarkdown reports whether OCR raw text appears to be markdown.
// Vision models often return pages as markdown; plain transcriptions
// should pass through untouched.
func LooksLikeMarkdown(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "![") {
			return true
		}
	}
	return strings.Contains(s, "**") || strings.Contains(s, "](")
}

// FlattenMarkdown strips markdown structure down to plain paragraph
// text, preserving block order. Headings become their own paragraph so
// downstream chunking keeps them attached to the text that follows.
func FlattenMarkdown(src string) string {
	md := goldmark.New()
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := strings.TrimSpace(blockText(n, source))
		if t != "" {
			blocks = append(blocks, t)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// blockText collects the visible text of a goldmark block node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		switch n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			// Inline content handled below.
		default:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			buf.Write(child.Value(src))
			if child.HardLineBreak() || child.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.ListItem, *ast.TextBlock, *ast.Paragraph:
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(blockText(c, src))
		default:
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
