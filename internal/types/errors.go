package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout            = errors.New("request timed out")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrEmptyResponse      = errors.New("empty response body")
	ErrNoArticle          = errors.New("page did not yield a sports article")
	ErrNoSportsNews       = errors.New("no sports news found")
	ErrBrowserUnavailable = errors.New("browser fetcher unavailable")
	ErrNoProxy            = errors.New("no healthy proxy available")
)

// FetchError wraps errors that occur while acquiring a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch was aborted by its deadline.
func (e *FetchError) Timeout() bool { return errors.Is(e.Err, ErrTimeout) }

// ParseError wraps errors that occur during parsing.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur when handing items to a sink.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the article pipeline.
type PipelineError struct {
	Stage   string
	Article *Article
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
