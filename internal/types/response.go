package types

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Response represents the result of fetching a request.
type Response struct {
	StatusCode int
	Body       []byte
	Request    *Request

	// FinalURL is the URL after any redirects. Relative links on the page
	// resolve against it.
	FinalURL string

	// Doc is the parsed document, loaded on first use.
	Doc *goquery.Document
}

// NewResponse creates a Response from an http.Response.
func NewResponse(req *Request, httpResp *http.Response, body []byte) *Response {
	finalURL := req.URLString()
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Request:    req,
		FinalURL:   finalURL,
	}
}

// Document returns a parsed goquery document, lazily initializing it.
func (r *Response) Document() (*goquery.Document, error) {
	if r.Doc != nil {
		return r.Doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, &ParseError{URL: r.FinalURL, Err: err}
	}
	r.Doc = doc
	return doc, nil
}
