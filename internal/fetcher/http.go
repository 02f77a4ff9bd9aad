package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// HTTPOption configures the HTTPFetcher transport.
type HTTPOption func(*http.Transport)

// WithDialContext replaces the transport dialer, e.g. to route every host
// to a local test server.
func WithDialContext(dial DialFunc) HTTPOption {
	return func(t *http.Transport) { t.DialContext = dial }
}

// HTTPFetcher implements Fetcher with net/http and a goquery parse.
type HTTPFetcher struct {
	client  *http.Client
	proxies *ProxyManager
	cfg     *config.FetcherConfig
	logger  *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger, opts ...HTTPOption) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	logger = logger.With("component", "http_fetcher")

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: max(cfg.Fetcher.MaxIdleConns/4, 2),
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Fetcher.TLSInsecure,
		},
		DisableCompression: true, // decompressed by hand, brotli included
	}
	var proxies *ProxyManager
	if len(cfg.Fetcher.Proxy.URLs) > 0 {
		proxies = NewProxyManager(cfg.Fetcher.Proxy, logger)
		transport.Proxy = proxies.ProxyFunc()
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	for _, opt := range opts {
		opt(transport)
	}

	if cfg.Fetcher.TLSInsecure {
		logger.Warn("TLS certificate verification is disabled for outgoing fetches")
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetcher.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetcher.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetcher.MaxRedirects)
		}
		return nil
	}

	client := &http.Client{
		Transport:     transport,
		Jar:           jar,
		Timeout:       max(cfg.Fetcher.ListingTimeout, cfg.Fetcher.ArticleTimeout),
		CheckRedirect: redirectPolicy,
	}

	return &HTTPFetcher{
		client:  client,
		proxies: proxies,
		cfg:     &cfg.Fetcher,
		logger:  logger,
	}, nil
}

// Fetch executes a single GET and returns the response. Any status of 400
// or above is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	var proxy *url.URL
	if f.proxies != nil {
		var err error
		if ctx, proxy, err = f.proxies.bind(ctx); err != nil {
			return nil, &types.FetchError{URL: req.URLString(), Err: err}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URLString(), nil)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	httpReq.Header.Set("User-Agent", f.cfg.UserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		if proxy != nil && ctx.Err() == nil {
			f.proxies.MarkFailed(proxy, err)
		}
		return nil, &types.FetchError{URL: req.URLString(), Err: timeoutErr(ctx, err)}
	}
	defer httpResp.Body.Close()
	if proxy != nil {
		f.proxies.MarkHealthy(proxy)
	}

	if httpResp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        req.URLString(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer reader.Close()

	body, err := f.readBody(reader, req)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: timeoutErr(ctx, err)}
	}
	duration := time.Since(start)

	resp := types.NewResponse(req, httpResp, body)

	f.logger.Debug("fetch complete",
		"url", req.URLString(),
		"tag", req.Tag,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return resp, nil
}

// readBody reads at most MaxBodySize bytes. A longer body is cut at the
// cap and parsed as is.
func (f *HTTPFetcher) readBody(r io.Reader, req *types.Request) ([]byte, error) {
	if f.cfg.MaxBodySize <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, f.cfg.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		f.logger.Debug("response body truncated",
			"url", req.URLString(),
			"tag", req.Tag,
			"limit", f.cfg.MaxBodySize,
		)
		body = body[:f.cfg.MaxBodySize]
	}
	return body, nil
}

// Open fetches rawURL and parses it into a dom.Page. tag names the fetch
// stage for logging.
func (f *HTTPFetcher) Open(ctx context.Context, rawURL, tag string) (dom.Page, error) {
	req, err := types.NewRequest(rawURL, tag)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: types.ErrEmptyResponse}
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}
	return dom.NewHTMLPage(resp.FinalURL, doc), nil
}

// Probe reports whether imageURL answers with a 2xx status. Servers that
// refuse HEAD are retried with a GET whose body is discarded.
func (f *HTTPFetcher) Probe(ctx context.Context, imageURL string) bool {
	status, err := f.status(ctx, http.MethodHead, imageURL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = f.status(ctx, http.MethodGet, imageURL)
	}
	if err != nil {
		f.logger.Debug("image probe failed", "url", imageURL, "error", err)
		return false
	}
	return status >= 200 && status < 300
}

func (f *HTTPFetcher) status(ctx context.Context, method, rawURL string) (int, error) {
	var proxy *url.URL
	if f.proxies != nil {
		var err error
		if ctx, proxy, err = f.proxies.bind(ctx); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	resp, err := f.client.Do(req)
	if err != nil {
		if proxy != nil && ctx.Err() == nil {
			f.proxies.MarkFailed(proxy, err)
		}
		return 0, err
	}
	if proxy != nil {
		f.proxies.MarkHealthy(proxy)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the decompressor named by the
// response's Content-Encoding. Closing the result does not close reader.
func decompressReader(resp *http.Response, reader io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return io.NopCloser(brotli.NewReader(reader)), nil
	default:
		return io.NopCloser(reader), nil
	}
}
