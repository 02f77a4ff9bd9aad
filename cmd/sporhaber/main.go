package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/sites"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sporhaber",
		Short: "SporHaber: Turkish sports news importer",
		Long: `SporHaber reads a news listing page, follows its article links and keeps
the sports stories, ready for the moderation queue.

Built-in selector sets cover hurriyet, milliyet, sabah, sozcu, fanatik,
fotomac, ntv and haberturk; other sites use a generic fallback.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(sitesCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger from the logging section.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("SporHaber %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Server:\n")
			fmt.Printf("  Port:              %d\n", cfg.Server.Port)
			fmt.Printf("  Max Body:          %d bytes\n", cfg.Server.MaxBodyBytes)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Scrape Type:       %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Listing Timeout:   %s\n", cfg.Fetcher.ListingTimeout)
			fmt.Printf("  Article Timeout:   %s\n", cfg.Fetcher.ArticleTimeout)
			fmt.Printf("  TLS Insecure:      %v\n", cfg.Fetcher.TLSInsecure)
			fmt.Printf("\nImporter:\n")
			fmt.Printf("  Max Articles:      %d\n", cfg.Importer.MaxArticles)
			fmt.Printf("  Verify Images:     %v\n", cfg.Importer.VerifyImages)
			fmt.Printf("\nSites:\n")
			fmt.Printf("  Overrides:         %d configured\n", len(cfg.Sites))
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			if cfg.Storage.Type == "mongodb" {
				fmt.Printf("  Collection:        %s.%s\n", cfg.Storage.Database, cfg.Storage.Collection)
			} else {
				fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			}
			fmt.Printf("\nPublisher:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Publisher.Enabled)
			fmt.Printf("  Exchange:          %s\n", cfg.Publisher.Exchange)
			fmt.Printf("  Queue:             %s\n", cfg.Publisher.QueueName)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Path:              %s\n", cfg.Metrics.Path)
			return nil
		},
	}
}

// sitesCmd prints the site registry as YAML.
func sitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites [host]",
		Short: "List the selector sets for known news sites",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := sites.New(cfg.Sites)
			if err != nil {
				return fmt.Errorf("build site registry: %w", err)
			}

			var out any = reg.All()
			if len(args) == 1 {
				out = map[string]sites.Structure{args[0]: reg.Resolve(args[0])}
			}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(out)
		},
	}
}
