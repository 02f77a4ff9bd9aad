// Package importer runs the listing-then-article flow behind the import and
// scrape operations.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/extractor"
	"github.com/IshaanNene/sporhaber/internal/fetcher"
	"github.com/IshaanNene/sporhaber/internal/observability"
	"github.com/IshaanNene/sporhaber/internal/pipeline"
	"github.com/IshaanNene/sporhaber/internal/sites"
	"github.com/IshaanNene/sporhaber/internal/storage"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Service turns a listing URL into sports news records.
type Service struct {
	registry *sites.Registry
	pipe     *pipeline.Pipeline

	importFetcher fetcher.Fetcher
	scrapeFetcher fetcher.Fetcher
	prober        fetcher.ImageProber

	sink    storage.Storage
	metrics *observability.Metrics

	maxArticles    int
	verifyImages   bool
	listingTimeout time.Duration
	articleTimeout time.Duration
	sinkTimeout    time.Duration

	importer *extractor.Extractor
	scraper  *extractor.Extractor

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithScrapeFetcher sets the fetcher used by Scrape. It defaults to the
// import fetcher.
func WithScrapeFetcher(f fetcher.Fetcher) Option {
	return func(s *Service) { s.scrapeFetcher = f }
}

// WithProber sets the image reachability check used by Scrape.
func WithProber(p fetcher.ImageProber) Option {
	return func(s *Service) { s.prober = p }
}

// WithSink hands every successful import batch to st.
func WithSink(st storage.Storage) Option {
	return func(s *Service) { s.sink = st }
}

// WithMetrics records counters on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for publish dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. f acquires pages for Import, and for Scrape unless
// WithScrapeFetcher is given. When f can probe images it is also the default
// prober.
func New(cfg *config.Config, registry *sites.Registry, c pipeline.Classifier, f fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		registry:       registry,
		pipe:           pipeline.NewArticlePipeline(pipeline.New(logger), c),
		importFetcher:  f,
		scrapeFetcher:  f,
		maxArticles:    cfg.Importer.MaxArticles,
		verifyImages:   cfg.Importer.VerifyImages,
		listingTimeout: cfg.Fetcher.ListingTimeout,
		articleTimeout: cfg.Fetcher.ArticleTimeout,
		sinkTimeout:    cfg.Importer.SinkTimeout,
		now:            time.Now,
		logger:         logger.With("component", "importer"),
	}
	if p, ok := f.(fetcher.ImageProber); ok {
		s.prober = p
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(logger)
	}
	s.importer = extractor.New(s.importFetcher, s.pipe, logger)
	s.scraper = extractor.New(s.scrapeFetcher, s.pipe, logger)
	return s
}

// Registry returns the site registry the service resolves against.
func (s *Service) Registry() *sites.Registry {
	return s.registry
}

// Import collects up to the configured number of sports articles linked
// from listingURL as moderation-queue items, in link order. It returns
// types.ErrInvalidURL for a bad URL and types.ErrNoSportsNews when nothing
// relevant was found.
func (s *Service) Import(ctx context.Context, listingURL string) ([]types.NewsItem, error) {
	s.metrics.ImportsTotal.Add(1)

	structure, links, err := s.candidates(ctx, s.importFetcher, listingURL)
	if err != nil {
		return nil, err
	}

	found := fanOut(ctx, links, s.logger, func(ctx context.Context, link string) *types.NewsItem {
		a := s.extract(ctx, s.importer, link, structure)
		if a == nil {
			return nil
		}
		item := extractor.NewsItemFrom(a, s.now())
		return &item
	})

	items := make([]types.NewsItem, 0, len(found))
	for _, it := range found {
		items = append(items, *it)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", listingURL, types.ErrNoSportsNews)
	}

	s.logger.Info("import finished", "url", listingURL, "links", len(links), "items", len(items))
	s.deliver(ctx, items)
	return items, nil
}

// Scrape is Import's simplified sibling: same flow, scrape fetcher, and
// records carrying an image reachability status.
func (s *Service) Scrape(ctx context.Context, listingURL string) ([]types.ScrapedArticle, error) {
	s.metrics.ScrapesTotal.Add(1)

	structure, links, err := s.candidates(ctx, s.scrapeFetcher, listingURL)
	if err != nil {
		return nil, err
	}

	found := fanOut(ctx, links, s.logger, func(ctx context.Context, link string) *types.ScrapedArticle {
		a := s.extract(ctx, s.scraper, link, structure)
		if a == nil {
			return nil
		}
		out := extractor.ScrapedArticleFrom(a, s.imageReachable(ctx, a))
		return &out
	})

	articles := make([]types.ScrapedArticle, 0, len(found))
	for _, a := range found {
		articles = append(articles, *a)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%s: %w", listingURL, types.ErrNoSportsNews)
	}

	s.logger.Info("scrape finished", "url", listingURL, "links", len(links), "articles", len(articles))
	return articles, nil
}

// candidates validates the URL, loads the listing under the listing timeout
// and returns the capped candidate links with the site's structure.
func (s *Service) candidates(ctx context.Context, f fetcher.Fetcher, listingURL string) (sites.Structure, []string, error) {
	if err := config.ValidateURL(listingURL); err != nil {
		return sites.Structure{}, nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}

	structure := s.registry.Resolve(listingURL)

	lctx, cancel := context.WithTimeout(ctx, s.listingTimeout)
	defer cancel()

	page, err := f.Open(lctx, listingURL, types.TagListing)
	if err != nil {
		s.metrics.ListingFailures.Add(1)
		s.logger.Warn("listing fetch failed", "url", listingURL, "error", err)
		return sites.Structure{}, nil, fmt.Errorf("load listing: %w", err)
	}
	defer page.Close()

	links := extractor.CollectLinks(page, page.URL(), structure, s.logger)
	s.metrics.LinksCollected.Add(int64(len(links)))
	if len(links) > s.maxArticles {
		links = links[:s.maxArticles]
	}

	s.logger.Debug("listing loaded", "url", listingURL, "final_url", page.URL(), "candidates", len(links))
	return structure, links, nil
}

// extract runs one article under its own deadline. Failures are logged and
// yield nil.
func (s *Service) extract(ctx context.Context, ex *extractor.Extractor, link string, structure sites.Structure) *types.Article {
	s.metrics.ArticlesAttempted.Add(1)

	actx, cancel := context.WithTimeout(ctx, s.articleTimeout)
	defer cancel()

	a, err := ex.Extract(actx, link, structure)
	switch {
	case err == nil:
		s.metrics.ArticlesExtracted.Add(1)
		return a
	case errors.Is(err, types.ErrNoArticle):
		s.metrics.ArticlesDropped.Add(1)
		s.logger.Debug("article skipped", "url", link, "reason", err)
	default:
		s.metrics.ArticlesFailed.Add(1)
		s.logger.Warn("article extraction failed", "url", link, "error", err)
	}
	return nil
}

func (s *Service) imageReachable(ctx context.Context, a *types.Article) bool {
	if !a.HasImage() || !s.verifyImages || s.prober == nil {
		return a.HasImage()
	}

	actx, cancel := context.WithTimeout(ctx, s.articleTimeout)
	defer cancel()

	s.metrics.ImagesProbed.Add(1)
	ok := s.prober.Probe(actx, a.Image)
	if !ok {
		s.metrics.ImagesUnreachable.Add(1)
		s.logger.Debug("image unreachable", "url", a.URL, "image", a.Image)
	}
	return ok
}

// deliver hands items to the moderation sink. The outcome never affects the
// caller.
func (s *Service) deliver(ctx context.Context, items []types.NewsItem) {
	if s.sink == nil {
		return
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sinkTimeout)
	defer cancel()

	if err := s.sink.Store(sctx, storage.Pointers(items)); err != nil {
		s.metrics.SinkErrors.Add(1)
		s.logger.Error("moderation sink failed", "sink", s.sink.Name(), "items", len(items), "error", err)
		return
	}
	s.metrics.ItemsStored.Add(int64(len(items)))
}

// fanOut runs task once per link concurrently and returns the non-nil
// results in link order. A panicking task counts as an absent result.
func fanOut[T any](ctx context.Context, links []string, logger *slog.Logger, task func(context.Context, string) *T) []*T {
	slots := make([]*T, len(links))

	var g errgroup.Group
	for i, link := range links {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("article task panicked", "url", link, "panic", r)
				}
			}()
			slots[i] = task(ctx, link)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*T, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
