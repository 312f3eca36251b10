package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is a single read-only capture of a rendered product page:
// the visible text as the browser reported it plus a parsed document
// for selector queries. All field extractors operate on a Snapshot,
// which keeps them pure and testable against static page fixtures.
type Snapshot struct {
	URL   string
	Title string
	Text  string
	doc   *goquery.Document
}

// NewSnapshot builds a Snapshot from a live capture. The text argument
// is the rendered body innerText; the markup argument is the outer HTML.
func NewSnapshot(url, title, text, markup string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return &Snapshot{URL: url, Title: title, Text: text, doc: doc}, nil
}

// NewSnapshotFromHTML builds a Snapshot from raw HTML alone, deriving
// the visible text by walking the node tree. Used by tests and by the
// static fallback path where no browser rendered the page.
func NewSnapshotFromHTML(url, markup string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		doc:   doc,
	}
	var sb strings.Builder
	for _, node := range doc.Find("body").Nodes {
		visibleText(node, &sb)
	}
	snap.Text = sb.String()
	return snap, nil
}

// visibleText collects text nodes, skipping script/style subtrees, and
// inserts line breaks at block-ish boundaries so text-pattern mining
// behaves like it does over innerText.
func visibleText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			sb.WriteString(t)
			sb.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, sb)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "div", "p", "li", "tr", "br", "h1", "h2", "h3", "span", "ul", "table":
			sb.WriteString("\n")
		}
	}
}

// Find exposes selector queries on the underlying document.
func (s *Snapshot) Find(selector string) *goquery.Selection {
	return s.doc.Find(selector)
}

// FirstText returns the trimmed text of the first selector in the list
// that matches a non-empty element. Empty string when none match.
func (s *Snapshot) FirstText(selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(s.doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// FirstAttr returns the named attribute of the first selector in the
// list that matches an element carrying it.
func (s *Snapshot) FirstAttr(attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := s.doc.Find(sel).First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// FirstHTML returns the inner HTML of the first selector in the list
// that matches a non-empty element.
func (s *Snapshot) FirstHTML(selectors ...string) string {
	for _, sel := range selectors {
		node := s.doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if h, err := node.Html(); err == nil && strings.TrimSpace(h) != "" {
			return h
		}
	}
	return ""
}

// TextPreview returns the first n bytes of visible text, for failure
// diagnostics (an Access Denied or login interstitial shows up here).
func (s *Snapshot) TextPreview(n int) string {
	t := s.Text
	if len(t) > n {
		t = t[:n]
	}
	return strings.TrimSpace(t)
}
