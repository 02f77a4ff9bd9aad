package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be > 0")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.ListingTimeout <= 0 {
		return fmt.Errorf("fetcher.listing_timeout must be > 0")
	}
	if cfg.Fetcher.ArticleTimeout <= 0 {
		return fmt.Errorf("fetcher.article_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if strings.TrimSpace(cfg.Fetcher.UserAgent) == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if r := cfg.Fetcher.Proxy.Rotation; r != "round_robin" && r != "random" {
		return fmt.Errorf("fetcher.proxy.rotation must be 'round_robin' or 'random', got %q", r)
	}
	if cfg.Fetcher.Proxy.Cooldown < 0 {
		return fmt.Errorf("fetcher.proxy.cooldown must be >= 0")
	}

	if cfg.Browser.MaxPages < 1 {
		return fmt.Errorf("browser.max_pages must be >= 1, got %d", cfg.Browser.MaxPages)
	}

	if cfg.Importer.MaxArticles < 1 || cfg.Importer.MaxArticles > 20 {
		return fmt.Errorf("importer.max_articles must be 1-20, got %d", cfg.Importer.MaxArticles)
	}

	for i, site := range cfg.Sites {
		if strings.TrimSpace(site.Host) == "" {
			return fmt.Errorf("sites[%d].host must not be empty", i)
		}
		if site.NewsLinkSelector == "" || site.TitleSelector == "" || site.ContentSelector == "" {
			return fmt.Errorf("sites[%d] (%s): link, title and content selectors are required", i, site.Host)
		}
	}

	// json buffers until Close; sinks must append.
	if cfg.Storage.Type == "json" {
		return fmt.Errorf("storage.type json buffers items until shutdown; use jsonl or csv for a sink")
	}
	validStorageTypes := map[string]bool{
		"none": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: none, jsonl, csv, mongodb)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
	}

	if cfg.Publisher.Enabled {
		if cfg.Publisher.URL == "" {
			return fmt.Errorf("publisher.url is required when the publisher is enabled")
		}
		if cfg.Publisher.Exchange == "" || cfg.Publisher.QueueName == "" {
			return fmt.Errorf("publisher.exchange and publisher.queue_name are required")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}

// ValidateURL checks that a URL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
