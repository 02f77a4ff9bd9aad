// Package extractor turns listing pages into candidate article links and
// article pages into sports news records.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/fetcher"
	"github.com/IshaanNene/sporhaber/internal/pipeline"
	"github.com/IshaanNene/sporhaber/internal/sites"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Extractor fetches single article pages and runs them through the
// article pipeline.
type Extractor struct {
	fetcher fetcher.Fetcher
	pipe    *pipeline.Pipeline
	logger  *slog.Logger
}

// New creates an Extractor. pipe is normally built with
// pipeline.NewArticlePipeline.
func New(f fetcher.Fetcher, pipe *pipeline.Pipeline, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher: f,
		pipe:    pipe,
		logger:  logger.With("component", "extractor"),
	}
}

// Extract fetches pageURL and returns its article, or an error when the page
// cannot be fetched or does not yield a sports article (types.ErrNoArticle).
func (e *Extractor) Extract(ctx context.Context, pageURL string, s sites.Structure) (article *types.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			article = nil
			err = fmt.Errorf("extract %s: panic: %v", pageURL, r)
		}
	}()

	page, err := e.fetcher.Open(ctx, pageURL, types.TagArticle)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	raw := ExtractFields(page, s)

	out, err := e.pipe.Process(raw)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%s: %w", pageURL, types.ErrNoArticle)
	}
	return out, nil
}

// ExtractFields reads title, content and image from a loaded page using the
// site's selectors, without cleaning or classifying them.
func ExtractFields(page dom.Page, s sites.Structure) *types.Article {
	a := types.NewArticle(page.URL())
	a.Title = dom.First(page, s.TitleSelector, dom.TextOrContent)
	a.Content = dom.First(page, s.ContentSelector, dom.TextOrContent)
	a.Image = dom.First(page, s.ImageSelector, dom.ContentOrSrc)
	return a
}

// NewsItemFrom builds the moderation-queue record for an article.
func NewsItemFrom(a *types.Article, now time.Time) types.NewsItem {
	imageStatus := types.ImageError
	if a.HasImage() {
		imageStatus = types.ImageAvailable
	}
	return types.NewsItem{
		ID:            uuid.NewString(),
		Title:         a.Title,
		Content:       a.Content,
		Category:      types.CategorySports,
		Image:         a.Image,
		PublishDate:   now.UTC().Format(time.RFC3339),
		Tags:          a.Tags,
		Status:        types.StatusPending,
		HasImage:      a.HasImage(),
		ContentLength: a.ContentLength(),
		ImageStatus:   imageStatus,
		SourceURL:     a.URL,
	}
}

// ScrapedArticleFrom builds the simplified scrape record. imageOK reports
// whether the image was verified as reachable.
func ScrapedArticleFrom(a *types.Article, imageOK bool) types.ScrapedArticle {
	out := types.ScrapedArticle{
		Title:         a.Title,
		Content:       a.Content,
		HasImage:      a.HasImage(),
		ContentLength: a.ContentLength(),
		ImageStatus:   types.ImageError,
	}
	if a.HasImage() {
		img := a.Image
		out.Image = &img
		if imageOK {
			out.ImageStatus = types.ImageAvailable
		}
	}
	return out
}
