package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/sporhaber/internal/classifier"
	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/extractor"
	"github.com/IshaanNene/sporhaber/internal/fetcher"
	"github.com/IshaanNene/sporhaber/internal/observability"
	"github.com/IshaanNene/sporhaber/internal/sites"
	"github.com/IshaanNene/sporhaber/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingURL = "https://hurriyet.com.tr"

// newsSite serves a fake hurriyet.com.tr: a listing at / linking to
// /sporarena/haber-N article pages.
type newsSite struct {
	mu       sync.Mutex
	links    []string
	failing  map[int]bool
	delays   map[int]time.Duration
	listing  http.HandlerFunc
	articles atomic.Int32
}

func (s *newsSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/":
		if s.listing != nil {
			s.listing(w, r)
			return
		}
		var b strings.Builder
		b.WriteString("<html><body><div class='news-list'>")
		for _, l := range s.links {
			fmt.Fprintf(&b, "<a href=%q>haber</a>", l)
		}
		b.WriteString("</div></body></html>")
		w.Write([]byte(b.String()))

	case strings.HasPrefix(r.URL.Path, "/sporarena/haber-"):
		s.articles.Add(1)
		var n int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/sporarena/haber-"), "%d", &n)

		s.mu.Lock()
		fail, delay := s.failing[n], s.delays[n]
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `<html><head><meta property="og:image" content="/img/%d.jpg"></head><body>
<h1 class="news-detail-title">Galatasaray derbi %d</h1>
<div class="news-content"><p>Süper Lig'de oynanan maçta Galatasaray sahadan galip ayrıldı.</p></div>
</body></html>`, n, n)

	case r.URL.Path == "/img/1.jpg":
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(r.URL.Path, "/ekonomi/"):
		s.articles.Add(1)
		w.Write([]byte(`<html><body><h1>Faiz kararı</h1><div class="news-content"><p>Enflasyon ve faiz.</p></div></body></html>`))

	default:
		http.NotFound(w, r)
	}
}

func articleLinks(n int) []string {
	links := make([]string, n)
	for i := range links {
		links[i] = fmt.Sprintf("/sporarena/haber-%d", i+1)
	}
	return links
}

// newService routes every host to site over TLS and returns a Service using
// the real HTTP fetcher and the built-in registry.
func newService(t *testing.T, site *newsSite, mutate func(*config.Config), opts ...Option) *Service {
	t.Helper()

	srv := httptest.NewTLSServer(site)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Fetcher.TLSInsecure = true
	cfg.Fetcher.ListingTimeout = 2 * time.Second
	cfg.Fetcher.ArticleTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	addr := srv.Listener.Addr().String()
	dial := func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}

	f, err := fetcher.NewHTTPFetcher(cfg, testLogger, fetcher.WithDialContext(dial))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	reg, err := sites.New(nil)
	require.NoError(t, err)

	return New(cfg, reg, classifier.New(), f, testLogger, opts...)
}

func sourceURLs(items []types.NewsItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.SourceURL
	}
	return out
}

func TestImportHurriyetListing(t *testing.T) {
	site := &newsSite{links: append(articleLinks(3), "/sporarena/haber-2", "#yorum", "javascript:void(0)")}
	fixed := time.Date(2024, 5, 19, 20, 0, 0, 0, time.UTC)
	svc := newService(t, site, nil, WithClock(func() time.Time { return fixed }))

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	require.Len(t, items, 3)

	ids := map[string]bool{}
	for i, it := range items {
		assert.Equal(t, "Spor", it.Category)
		assert.Equal(t, "pending", it.Status)
		assert.Equal(t, fmt.Sprintf("Galatasaray derbi %d", i+1), it.Title)
		assert.Equal(t, fmt.Sprintf("https://hurriyet.com.tr/img/%d.jpg", i+1), it.Image)
		assert.True(t, it.HasImage)
		assert.Equal(t, "available", it.ImageStatus)
		assert.Equal(t, "2024-05-19T20:00:00Z", it.PublishDate)
		assert.Equal(t, []string{"süper lig", "maç", "derbi", "galatasaray"}, it.Tags)
		assert.Equal(t, len([]rune(it.Content)), it.ContentLength)
		assert.NotEmpty(t, it.ID)
		ids[it.ID] = true
	}
	assert.Len(t, ids, 3, "ids must be unique")
	assert.EqualValues(t, 3, site.articles.Load(), "duplicate links are fetched once")
}

func TestImportNoCandidates(t *testing.T) {
	site := &newsSite{links: []string{"/ekonomi/faiz", "/magazin/dizi"}}
	svc := newService(t, site, nil)

	items, err := svc.Import(context.Background(), listingURL)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, types.ErrNoSportsNews)
	assert.EqualValues(t, 0, site.articles.Load())
}

func TestImportAllUnrelated(t *testing.T) {
	site := &newsSite{listing: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/sporarena/../ekonomi/faiz">x</a><div class="news-list"><a href="/spor/../ekonomi/enflasyon">y</a></div>`))
	}}
	svc := newService(t, site, nil)

	_, err := svc.Import(context.Background(), listingURL)
	assert.ErrorIs(t, err, types.ErrNoSportsNews)
}

func TestImportListingTimeout(t *testing.T) {
	site := &newsSite{listing: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}}
	m := observability.NewMetrics(testLogger)
	svc := newService(t, site, func(c *config.Config) {
		c.Fetcher.ListingTimeout = 100 * time.Millisecond
	}, WithMetrics(m))

	start := time.Now()
	items, err := svc.Import(context.Background(), listingURL)
	assert.Nil(t, items)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.NotErrorIs(t, err, types.ErrNoSportsNews)
	assert.Less(t, time.Since(start), time.Second)

	assert.EqualValues(t, 0, site.articles.Load())
	assert.EqualValues(t, 0, m.ArticlesAttempted.Load(), "no fan-out after a listing failure")
	assert.EqualValues(t, 1, m.ListingFailures.Load())
}

func TestImportPartialFailure(t *testing.T) {
	site := &newsSite{links: articleLinks(5), failing: map[int]bool{3: true}}
	m := observability.NewMetrics(testLogger)
	svc := newService(t, site, nil, WithMetrics(m))

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://hurriyet.com.tr/sporarena/haber-1",
		"https://hurriyet.com.tr/sporarena/haber-2",
		"https://hurriyet.com.tr/sporarena/haber-4",
		"https://hurriyet.com.tr/sporarena/haber-5",
	}, sourceURLs(items))
	assert.EqualValues(t, 1, m.ArticlesFailed.Load())
	assert.EqualValues(t, 4, m.ArticlesExtracted.Load())
}

func TestImportCapsCandidates(t *testing.T) {
	site := &newsSite{links: articleLinks(8)}
	svc := newService(t, site, func(c *config.Config) { c.Importer.MaxArticles = 5 })

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.EqualValues(t, 5, site.articles.Load())
}

func TestImportKeepsLinkOrder(t *testing.T) {
	site := &newsSite{
		links:  articleLinks(4),
		delays: map[int]time.Duration{1: 300 * time.Millisecond, 2: 150 * time.Millisecond},
	}
	svc := newService(t, site, nil)

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	require.Len(t, items, 4)
	for i, it := range items {
		assert.Equal(t, fmt.Sprintf("https://hurriyet.com.tr/sporarena/haber-%d", i+1), it.SourceURL)
	}
}

func TestImportArticleTimeout(t *testing.T) {
	site := &newsSite{
		links:  articleLinks(2),
		delays: map[int]time.Duration{2: time.Second},
	}
	svc := newService(t, site, func(c *config.Config) {
		c.Fetcher.ArticleTimeout = 200 * time.Millisecond
	})

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://hurriyet.com.tr/sporarena/haber-1"}, sourceURLs(items))
}

func TestImportInvalidURL(t *testing.T) {
	svc := newService(t, &newsSite{}, nil)

	for _, raw := range []string{"", "hurriyet.com.tr", "ftp://hurriyet.com.tr", "https://"} {
		_, err := svc.Import(context.Background(), raw)
		assert.ErrorIs(t, err, types.ErrInvalidURL, raw)
	}
}

type recordingSink struct {
	mu    sync.Mutex
	items []*types.NewsItem
	err   error
}

func (r *recordingSink) Store(ctx context.Context, items []*types.NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("sink called without deadline")
	}
	r.items = append(r.items, items...)
	return r.err
}
func (r *recordingSink) Close() error { return nil }
func (r *recordingSink) Name() string { return "recording" }

func TestImportDeliversToSink(t *testing.T) {
	sink := &recordingSink{}
	m := observability.NewMetrics(testLogger)
	svc := newService(t, &newsSite{links: articleLinks(2)}, nil, WithSink(sink), WithMetrics(m))

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	require.Len(t, sink.items, 2)
	assert.Equal(t, items[0].ID, sink.items[0].ID)
	assert.EqualValues(t, 2, m.ItemsStored.Load())
}

func TestImportSinkFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	m := observability.NewMetrics(testLogger)
	svc := newService(t, &newsSite{links: articleLinks(2)}, nil, WithSink(sink), WithMetrics(m))

	items, err := svc.Import(context.Background(), listingURL)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 1, m.SinkErrors.Load())
	assert.EqualValues(t, 0, m.ItemsStored.Load())
}

func TestImportNoSinkOnEmptyResult(t *testing.T) {
	sink := &recordingSink{}
	svc := newService(t, &newsSite{}, nil, WithSink(sink))

	_, err := svc.Import(context.Background(), listingURL)
	assert.ErrorIs(t, err, types.ErrNoSportsNews)
	assert.Empty(t, sink.items)
}

func TestScrapeImageStatus(t *testing.T) {
	svc := newService(t, &newsSite{links: articleLinks(2)}, nil)

	articles, err := svc.Scrape(context.Background(), listingURL)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	require.NotNil(t, articles[0].Image)
	assert.Equal(t, "https://hurriyet.com.tr/img/1.jpg", *articles[0].Image)
	assert.Equal(t, "available", articles[0].ImageStatus)

	require.NotNil(t, articles[1].Image)
	assert.True(t, articles[1].HasImage)
	assert.Equal(t, "error", articles[1].ImageStatus, "image 2 is not served")
}

func TestScrapeWithoutImageVerification(t *testing.T) {
	svc := newService(t, &newsSite{links: articleLinks(2)}, func(c *config.Config) {
		c.Importer.VerifyImages = false
	})

	articles, err := svc.Scrape(context.Background(), listingURL)
	require.NoError(t, err)
	for _, a := range articles {
		assert.Equal(t, "available", a.ImageStatus)
	}
}

type fixedProber bool

func (p fixedProber) Probe(context.Context, string) bool { return bool(p) }

func TestScrapeUsesConfiguredProber(t *testing.T) {
	svc := newService(t, &newsSite{links: articleLinks(1)}, nil, WithProber(fixedProber(false)))

	articles, err := svc.Scrape(context.Background(), listingURL)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "error", articles[0].ImageStatus)
}

// tagRecorder notes the tag of every page opened through it.
type tagRecorder struct {
	fetcher.Fetcher
	mu   sync.Mutex
	tags map[string]string
}

func (r *tagRecorder) Open(ctx context.Context, rawURL, tag string) (dom.Page, error) {
	r.mu.Lock()
	r.tags[rawURL] = tag
	r.mu.Unlock()
	return r.Fetcher.Open(ctx, rawURL, tag)
}

func TestScrapeTagsFetchStages(t *testing.T) {
	svc := newService(t, &newsSite{links: articleLinks(2)}, nil)
	rec := &tagRecorder{Fetcher: svc.importFetcher, tags: map[string]string{}}
	svc.scrapeFetcher = rec
	svc.scraper = extractor.New(rec, svc.pipe, testLogger)

	_, err := svc.Scrape(context.Background(), listingURL)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		listingURL:                        "listing",
		listingURL + "/sporarena/haber-1": "article",
		listingURL + "/sporarena/haber-2": "article",
	}, rec.tags)
}

func TestScrapeNoSportsNews(t *testing.T) {
	svc := newService(t, &newsSite{}, nil)

	_, err := svc.Scrape(context.Background(), listingURL)
	assert.ErrorIs(t, err, types.ErrNoSportsNews)
}

func TestFanOutRecoversPanics(t *testing.T) {
	links := []string{"a", "b", "c"}
	got := fanOut(context.Background(), links, testLogger, func(_ context.Context, link string) *string {
		if link == "b" {
			panic("boom")
		}
		v := strings.ToUpper(link)
		return &v
	})

	require.Len(t, got, 2)
	assert.Equal(t, "A", *got[0])
	assert.Equal(t, "C", *got[1])
}
