// Package dom defines the small query surface the extractors need from a
// loaded page, so the same extraction code runs over a server-side parse or
// a live browser tab.
package dom

import (
	"strings"

	"github.com/antchfx/xpath"
)

// XPathPrefix marks a selector as an XPath expression instead of CSS.
const XPathPrefix = "xpath:"

// Element is a single node matched by a selector.
type Element interface {
	// Text returns the element's text content.
	Text() string

	// Attr returns the named attribute and whether it was present.
	Attr(name string) (string, bool)
}

// Page is a loaded document that can be queried by selector.
type Page interface {
	// URL is the address the page was loaded from, after redirects.
	URL() string

	// Query returns every element matching selector in document order.
	// An invalid selector matches nothing.
	Query(selector string) []Element

	// Close releases the page.
	Close() error
}

// XPathExpr reports whether sel is an XPath selector and returns the
// expression without its prefix.
func XPathExpr(sel string) (string, bool) {
	sel = strings.TrimSpace(sel)
	if !strings.HasPrefix(sel, XPathPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(sel, XPathPrefix)), true
}

// CompileXPath checks that expr is a valid XPath expression.
func CompileXPath(expr string) error {
	_, err := xpath.Compile(expr)
	return err
}

// First returns the value pick reads from the first element matching
// selector in document order. Later matches are never consulted, so an
// empty first match yields "".
func First(p Page, selector string, pick func(Element) string) string {
	if selector == "" {
		return ""
	}
	els := p.Query(selector)
	if len(els) == 0 {
		return ""
	}
	return strings.TrimSpace(pick(els[0]))
}

// TextOrContent prefers an element's text and falls back to its content
// attribute, which covers <meta> selectors.
func TextOrContent(el Element) string {
	if t := strings.TrimSpace(el.Text()); t != "" {
		return t
	}
	c, _ := el.Attr("content")
	return c
}

// ContentOrSrc prefers the content attribute and falls back to src.
func ContentOrSrc(el Element) string {
	if c, ok := el.Attr("content"); ok && strings.TrimSpace(c) != "" {
		return c
	}
	s, _ := el.Attr("src")
	return s
}
