package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/sporhaber/internal/storage"
)

var (
	outputPath string
	outputType string
	useBrowser bool
	withSink   bool
)

// importCmd creates the "import" subcommand.
func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [url]",
		Short: "Import sports news from a listing page",
		Long:  "Fetch the listing page, follow up to importer.max_articles article links and print the sports news items as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "also write items to this directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "json", "output file format: json, jsonl, csv")
	cmd.Flags().BoolVar(&withSink, "sink", false, "hand items to the configured moderation sinks")
	return cmd
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape sports articles from a listing page",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().BoolVarP(&useBrowser, "browser", "b", false, "render pages in a headless browser")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	a, err := newApp(cfg, logger, false, withSink)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	items, err := a.service.Import(ctx, args[0])
	if err != nil {
		return err
	}

	if outputPath != "" {
		store, err := storage.NewFileStorage(strings.ToLower(outputType), outputPath, logger)
		if err != nil {
			return fmt.Errorf("create storage: %w", err)
		}
		if err := store.Store(ctx, storage.Pointers(items)); err != nil {
			store.Close()
			return err
		}
		if err := store.Close(); err != nil {
			return err
		}
	}

	return printJSON(items)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	a, err := newApp(cfg, logger, useBrowser, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	articles, err := a.service.Scrape(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(articles)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
