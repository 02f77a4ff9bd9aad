package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// HTMLPage is a Page over a server-side goquery parse.
type HTMLPage struct {
	url string
	doc *goquery.Document
}

// NewHTMLPage wraps a parsed document loaded from pageURL.
func NewHTMLPage(pageURL string, doc *goquery.Document) *HTMLPage {
	return &HTMLPage{url: pageURL, doc: doc}
}

// ParseHTML parses raw markup into an HTMLPage.
func ParseHTML(pageURL, markup string) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return NewHTMLPage(pageURL, doc), nil
}

func (p *HTMLPage) URL() string { return p.url }

// Query implements Page. CSS goes through goquery, "xpath:" selectors
// through htmlquery on the same node tree.
func (p *HTMLPage) Query(selector string) []Element {
	if expr, ok := XPathExpr(selector); ok {
		return p.queryXPath(expr)
	}

	var out []Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, selection{sel})
	})
	return out
}

func (p *HTMLPage) queryXPath(expr string) []Element {
	compiled, err := xpath.Compile(expr)
	if err != nil || len(p.doc.Nodes) == 0 {
		return nil
	}
	var out []Element
	for _, n := range htmlquery.QuerySelectorAll(p.doc.Nodes[0], compiled) {
		out = append(out, node{n})
	}
	return out
}

// Close is a no-op; the document lives in memory.
func (p *HTMLPage) Close() error { return nil }

type selection struct {
	s *goquery.Selection
}

func (e selection) Text() string { return e.s.Text() }

func (e selection) Attr(name string) (string, bool) { return e.s.Attr(name) }

type node struct {
	n *html.Node
}

func (e node) Text() string { return htmlquery.InnerText(e.n) }

func (e node) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
