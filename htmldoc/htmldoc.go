// Package htmldoc extracts text lines from HTML receipt documents. Emailed
// receipts are commonly HTML; this path produces the same line-oriented
// output as the container pipeline so the downstream field parser never
// needs to know which format arrived.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Document holds the text content extracted from one HTML file.
type Document struct {
	Title string
	Lines []string
}

// Open parses the HTML file at filename and extracts its text lines.
func Open(filename string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse extracts text lines from HTML read from r. Script, style, and
// head content is skipped; block-level elements and explicit line breaks
// delimit lines; inline elements concatenate.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	doc := &Document{}
	var current strings.Builder

	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		current.Reset()
		if line != "" {
			doc.Lines = append(doc.Lines, line)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				if n.Data == "head" {
					if t := findTitle(n); t != "" {
						doc.Title = t
					}
				}
				return
			case "br":
				flush()
				return
			}
			if isBlock(n.Data) {
				flush()
			}
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			flush()
		}
	}
	walk(root)
	flush()

	return doc, nil
}

// Text returns all lines joined by newlines.
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// findTitle returns the trimmed text of the title element under head.
func findTitle(head *html.Node) string {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "title" {
			var sb strings.Builder
			for t := c.FirstChild; t != nil; t = t.NextSibling {
				if t.Type == html.TextNode {
					sb.WriteString(t.Data)
				}
			}
			return strings.TrimSpace(sb.String())
		}
	}
	return ""
}

// isBlock reports whether the element renders as its own line for receipt
// purposes. Table cells are inline so that columns on one receipt row stay
// on one output line.
func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "header", "footer",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "form", "hr",
		"blockquote", "pre", "address", "main", "nav", "aside":
		return true
	}
	return false
}
