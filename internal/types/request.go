package types

import (
	"fmt"
	"net/http"
	"net/url"
)

// Request tags distinguishing the two fetch stages of an import.
const (
	TagListing = "listing"
	TagArticle = "article"
)

// Request represents a single page fetch.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Tag categorizes this request ("listing" or "article").
	Tag string
}

// NewRequest creates a GET request for an absolute URL.
func NewRequest(rawURL, tag string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w %q: not absolute", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:    u,
		Method: http.MethodGet,
		Tag:    tag,
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
