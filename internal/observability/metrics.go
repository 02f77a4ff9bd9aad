// Package observability exposes process counters in Prometheus text format.
package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for imports and scrapes.
type Metrics struct {
	// Request metrics
	ImportsTotal    atomic.Int64
	ScrapesTotal    atomic.Int64
	ListingFailures atomic.Int64
	LinksCollected  atomic.Int64

	// Article metrics
	ArticlesAttempted atomic.Int64
	ArticlesExtracted atomic.Int64
	ArticlesDropped   atomic.Int64
	ArticlesFailed    atomic.Int64
	ImagesProbed      atomic.Int64
	ImagesUnreachable atomic.Int64

	// Sink metrics
	ItemsStored atomic.Int64
	SinkErrors  atomic.Int64

	// Response metrics
	Responses2xx atomic.Int64
	Responses4xx atomic.Int64
	Responses5xx atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// RecordResponse counts a response by status class.
func (m *Metrics) RecordResponse(status int) {
	switch {
	case status >= 500:
		m.Responses5xx.Add(1)
	case status >= 400:
		m.Responses4xx.Add(1)
	case status >= 200 && status < 300:
		m.Responses2xx.Add(1)
	}
}

type metric struct {
	name  string
	help  string
	value int64
}

func (m *Metrics) all() []metric {
	return []metric{
		{"sporhaber_imports_total", "Import requests handled", m.ImportsTotal.Load()},
		{"sporhaber_scrapes_total", "Scrape requests handled", m.ScrapesTotal.Load()},
		{"sporhaber_listing_failures_total", "Listing pages that could not be loaded", m.ListingFailures.Load()},
		{"sporhaber_links_collected_total", "Candidate article links collected", m.LinksCollected.Load()},
		{"sporhaber_articles_attempted_total", "Article extractions started", m.ArticlesAttempted.Load()},
		{"sporhaber_articles_extracted_total", "Sports articles extracted", m.ArticlesExtracted.Load()},
		{"sporhaber_articles_dropped_total", "Articles dropped as empty or unrelated", m.ArticlesDropped.Load()},
		{"sporhaber_articles_failed_total", "Article extractions that failed", m.ArticlesFailed.Load()},
		{"sporhaber_images_probed_total", "Image URLs probed", m.ImagesProbed.Load()},
		{"sporhaber_images_unreachable_total", "Image URLs that failed the probe", m.ImagesUnreachable.Load()},
		{"sporhaber_items_stored_total", "News items handed to the moderation sink", m.ItemsStored.Load()},
		{"sporhaber_sink_errors_total", "Moderation sink failures", m.SinkErrors.Load()},
		{"sporhaber_responses_2xx_total", "Total 2xx responses", m.Responses2xx.Load()},
		{"sporhaber_responses_4xx_total", "Total 4xx responses", m.Responses4xx.Load()},
		{"sporhaber_responses_5xx_total", "Total 5xx responses", m.Responses5xx.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, metric := range m.all() {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Snapshot returns all metrics keyed by name without the prefix and suffix.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"imports":            m.ImportsTotal.Load(),
		"scrapes":            m.ScrapesTotal.Load(),
		"listing_failures":   m.ListingFailures.Load(),
		"links_collected":    m.LinksCollected.Load(),
		"articles_attempted": m.ArticlesAttempted.Load(),
		"articles_extracted": m.ArticlesExtracted.Load(),
		"articles_dropped":   m.ArticlesDropped.Load(),
		"articles_failed":    m.ArticlesFailed.Load(),
		"images_probed":      m.ImagesProbed.Load(),
		"images_unreachable": m.ImagesUnreachable.Load(),
		"items_stored":       m.ItemsStored.Load(),
		"sink_errors":        m.SinkErrors.Load(),
		"responses_2xx":      m.Responses2xx.Load(),
		"responses_4xx":      m.Responses4xx.Load(),
		"responses_5xx":      m.Responses5xx.Load(),
	}
}

// LogSummary writes the current counters at info level.
func (m *Metrics) LogSummary() {
	args := make([]any, 0, 30)
	for k, v := range m.Snapshot() {
		if v != 0 {
			args = append(args, k, v)
		}
	}
	m.logger.Info("metrics summary", args...)
}
