// Package fetcher acquires pages for extraction, either as raw HTTP
// responses parsed server-side or as live pages in a headless browser.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Fetcher loads a URL into a queryable page.
type Fetcher interface {
	// Open fetches rawURL once and returns the loaded page. The context
	// deadline bounds the whole acquisition; there are no retries. tag is
	// types.TagListing or types.TagArticle.
	Open(ctx context.Context, rawURL, tag string) (dom.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// ImageProber checks whether an image URL is reachable.
type ImageProber interface {
	Probe(ctx context.Context, imageURL string) bool
}

// timeoutErr tags deadline failures with types.ErrTimeout so callers can
// tell them apart from other network errors.
func timeoutErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	return err
}
