package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/sporhaber/internal/classifier"
	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/fetcher"
	"github.com/IshaanNene/sporhaber/internal/importer"
	"github.com/IshaanNene/sporhaber/internal/observability"
	"github.com/IshaanNene/sporhaber/internal/publisher"
	"github.com/IshaanNene/sporhaber/internal/sites"
	"github.com/IshaanNene/sporhaber/internal/storage"
)

// app holds the wired components and everything that must be closed.
type app struct {
	registry *sites.Registry
	service  *importer.Service
	metrics  *observability.Metrics
	closers  []func() error
	logger   *slog.Logger
}

// newApp wires registry, fetchers, sinks and the importer service.
// useBrowser forces rendered acquisition for Scrape; withSink attaches the
// configured moderation sinks.
func newApp(cfg *config.Config, logger *slog.Logger, useBrowser, withSink bool) (*app, error) {
	a := &app{
		metrics: observability.NewMetrics(logger),
		logger:  logger,
	}

	reg, err := sites.New(cfg.Sites)
	if err != nil {
		return nil, fmt.Errorf("build site registry: %w", err)
	}
	a.registry = reg

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	a.closers = append(a.closers, httpFetcher.Close)

	opts := []importer.Option{importer.WithMetrics(a.metrics)}

	if useBrowser || cfg.Fetcher.Type == "browser" {
		bf, err := fetcher.NewBrowserFetcher(cfg, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create browser fetcher: %w", err)
		}
		a.closers = append(a.closers, bf.Close)
		opts = append(opts, importer.WithScrapeFetcher(bf))
	}

	if withSink {
		sink, err := a.buildSink(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		if sink != nil {
			logger.Info("moderation sink enabled", "sink", sink.Name())
			a.closers = append(a.closers, sink.Close)
			opts = append(opts, importer.WithSink(sink))
		}
	}

	a.service = importer.New(cfg, reg, classifier.FromConfig(cfg.Classifier), httpFetcher, logger, opts...)
	return a, nil
}

func (a *app) buildSink(cfg *config.Config) (storage.Storage, error) {
	var backends []storage.Storage

	store, err := storage.New(cfg.Storage, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		backends = append(backends, store)
	}

	if cfg.Publisher.Enabled {
		pub, err := publisher.NewRabbitMQ(cfg.Publisher, a.logger)
		if err != nil {
			for _, b := range backends {
				b.Close()
			}
			return nil, fmt.Errorf("create publisher: %w", err)
		}
		backends = append(backends, pub)
	}

	switch len(backends) {
	case 0:
		return nil, nil
	case 1:
		return backends[0], nil
	default:
		return storage.NewMultiStorage(backends, a.logger), nil
	}
}

// Close releases resources in reverse order of creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
