package normalisers

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Extractor = (*HTMLExtractor)(nil)

// minBlockLength is the shortest text block kept from a page; shorter
// blocks are mostly navigation and captions.
const minBlockLength = 20

// skippedElements never contribute text.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Aside:    true,
	atom.Svg:      true,
	atom.Template: true,
}

// blockElements are collected as separate paragraphs.
var blockElements = map[atom.Atom]bool{
	atom.P:  true,
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
	atom.H4: true,
	atom.H5: true,
	atom.H6: true,
	atom.Li: true,
}

// HTMLExtractor extracts readable text and page metadata from HTML.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTML extractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	doc, err := html.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	meta := pageMetadata(doc)
	if raw.SourceURL != "" {
		meta.DocumentType = domain.DocumentTypeURL
		meta.URL = raw.SourceURL
		if u, err := url.Parse(raw.SourceURL); err == nil {
			meta.Domain = u.Hostname()
		}
	}

	root := findFirst(doc, atom.Article)
	if root == nil {
		root = findFirst(doc, atom.Main)
	}
	if root == nil {
		root = findFirst(doc, atom.Body)
	}
	if root == nil {
		root = doc
	}

	var blocks []string
	collectBlocks(root, &blocks)
	text := strings.Join(blocks, "\n\n")
	if text == "" {
		var b strings.Builder
		writeText(root, &b)
		text = cleanText(b.String())
	}

	meta.WordCount = wordCount(text)
	return &domain.ExtractedContent{Text: text, Metadata: meta}, nil
}

func (e *HTMLExtractor) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *HTMLExtractor) Priority() int {
	return 50
}

// pageMetadata reads the title and descriptive meta tags.
func pageMetadata(doc *html.Node) domain.DocumentMetadata {
	var (
		meta    domain.DocumentMetadata
		ogTitle string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if meta.Title == "" {
					var b strings.Builder
					writeText(n, &b)
					meta.Title = strings.Join(strings.Fields(b.String()), " ")
				}
			case atom.Meta:
				key := strings.ToLower(attr(n, "name"))
				if key == "" {
					key = strings.ToLower(attr(n, "property"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "description", "og:description":
					if meta.Description == "" {
						meta.Description = content
					}
				case "author", "article:author":
					if meta.Author == "" {
						meta.Author = content
					}
				case "article:published_time", "date", "pubdate":
					if meta.PublishedDate == "" {
						meta.PublishedDate = content
					}
				case "og:title":
					ogTitle = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if ogTitle != "" {
		meta.Title = ogTitle
	}
	return meta
}

func collectBlocks(n *html.Node, blocks *[]string) {
	if n.Type == html.ElementNode {
		if skippedElements[n.DataAtom] {
			return
		}
		if blockElements[n.DataAtom] {
			var b strings.Builder
			writeText(n, &b)
			text := strings.Join(strings.Fields(b.String()), " ")
			if utf8.RuneCountInString(text) > minBlockLength {
				*blocks = append(*blocks, text)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, blocks)
	}
}

// writeText appends the visible text below n, separating block elements
// with newlines.
func writeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
	if n.Type == html.ElementNode && (blockElements[n.DataAtom] || n.DataAtom == atom.Div) {
		b.WriteString("\n")
	}
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
