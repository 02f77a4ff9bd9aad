package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for SporHaber.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     yaml:"server"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Browser    BrowserConfig    `mapstructure:"browser"    yaml:"browser"`
	Importer   ImporterConfig   `mapstructure:"importer"   yaml:"importer"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Sites      []SiteConfig     `mapstructure:"sites"      yaml:"sites"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	Publisher  PublisherConfig  `mapstructure:"publisher"  yaml:"publisher"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   yaml:"max_body_bytes"`
}

// FetcherConfig controls page acquisition.
type FetcherConfig struct {
	// Type selects the acquisition used by the scrape route: "http" or "browser".
	Type            string        `mapstructure:"type"              yaml:"type"`
	ListingTimeout  time.Duration `mapstructure:"listing_timeout"   yaml:"listing_timeout"`
	ArticleTimeout  time.Duration `mapstructure:"article_timeout"   yaml:"article_timeout"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Proxy           ProxyConfig   `mapstructure:"proxy"             yaml:"proxy"`
}

// ProxyConfig lists outgoing proxies for the HTTP fetcher. Empty means
// direct connections, or the environment's HTTP_PROXY settings. With
// proxies configured no fetch ever connects directly.
type ProxyConfig struct {
	URLs     []string `mapstructure:"urls"     yaml:"urls"`
	Rotation string   `mapstructure:"rotation" yaml:"rotation"` // round_robin or random

	// Cooldown is how long a failed proxy stays out of rotation. Zero
	// keeps it out until a fetch through it succeeds again.
	Cooldown time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
}

// BrowserConfig controls the headless browser used for rendered pages.
type BrowserConfig struct {
	Bin            string        `mapstructure:"bin"             yaml:"bin"`
	Stealth        bool          `mapstructure:"stealth"         yaml:"stealth"`
	MaxPages       int           `mapstructure:"max_pages"       yaml:"max_pages"`
	StableWait     time.Duration `mapstructure:"stable_wait"     yaml:"stable_wait"`
	BlockResources bool          `mapstructure:"block_resources" yaml:"block_resources"`
}

// ImporterConfig controls the listing-to-articles orchestration.
type ImporterConfig struct {
	MaxArticles  int           `mapstructure:"max_articles"  yaml:"max_articles"`
	VerifyImages bool          `mapstructure:"verify_images" yaml:"verify_images"`
	SinkTimeout  time.Duration `mapstructure:"sink_timeout"  yaml:"sink_timeout"`
}

// ClassifierConfig extends the built-in keyword lists.
type ClassifierConfig struct {
	ExtraPositive []string `mapstructure:"extra_positive" yaml:"extra_positive"`
	ExtraNegative []string `mapstructure:"extra_negative" yaml:"extra_negative"`
}

// SiteConfig adds or replaces the selectors used for one news site.
type SiteConfig struct {
	Host             string `mapstructure:"host"               yaml:"host"`
	NewsLinkSelector string `mapstructure:"news_link_selector" yaml:"news_link_selector"`
	TitleSelector    string `mapstructure:"title_selector"     yaml:"title_selector"`
	ContentSelector  string `mapstructure:"content_selector"   yaml:"content_selector"`
	ImageSelector    string `mapstructure:"image_selector"     yaml:"image_selector"`
	SportsSectionURL string `mapstructure:"sports_section_url" yaml:"sports_section_url"`
}

// StorageConfig controls where imported items are handed off.
type StorageConfig struct {
	// Type is "none", "jsonl", "csv" or "mongodb".
	Type       string `mapstructure:"type"        yaml:"type"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string `mapstructure:"database"    yaml:"database"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
}

// PublisherConfig controls the RabbitMQ moderation-queue publisher.
type PublisherConfig struct {
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	URL        string `mapstructure:"url"         yaml:"url"`
	Exchange   string `mapstructure:"exchange"    yaml:"exchange"`
	RoutingKey string `mapstructure:"routing_key" yaml:"routing_key"`
	QueueName  string `mapstructure:"queue_name"  yaml:"queue_name"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			ListingTimeout:  10 * time.Second,
			ArticleTimeout:  10 * time.Second,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage:  "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    50,
			Proxy: ProxyConfig{
				Rotation: "round_robin",
				Cooldown: 30 * time.Second,
			},
		},
		Browser: BrowserConfig{
			Stealth:        true,
			MaxPages:       5,
			StableWait:     500 * time.Millisecond,
			BlockResources: true,
		},
		Importer: ImporterConfig{
			MaxArticles:  5,
			VerifyImages: true,
			SinkTimeout:  15 * time.Second,
		},
		Storage: StorageConfig{
			Type:       "none",
			OutputPath: "./output",
			Database:   "sporhaber",
			Collection: "pending_news",
		},
		Publisher: PublisherConfig{
			Exchange:   "news",
			RoutingKey: "news.imported",
			QueueName:  "news.moderation",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
