package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/brightpath-labs/textbookd/internal/ocr"
)

// HTMLImporter handles HTML files. Headings start synthetic pages the
// same way the DOCX importer paginates.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) ([]ocr.Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	pb := newPageBuilder()

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				if title := textContent(n); title != "" {
					pb.startPage()
					pb.add(ocr.LayoutElement{Type: ocr.ElementHeading, Text: title})
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "blockquote", "td":
				if t := textContent(n); t != "" {
					pb.add(ocr.LayoutElement{Type: ocr.ElementParagraph, Text: t})
				}
				return
			case "ul", "ol":
				var items []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "li" {
						if t := textContent(c); t != "" {
							items = append(items, t)
						}
					}
				}
				if len(items) > 0 {
					pb.add(ocr.LayoutElement{Type: ocr.ElementList, Items: items})
				}
				return
			case "table":
				if t := textContent(n); t != "" {
					pb.add(ocr.LayoutElement{Type: ocr.ElementTable, Text: t})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return pb.records(), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
