package extractor

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/sites"
)

// CollectLinks returns the absolute article URLs linked from a listing page,
// deduplicated in first-seen document order. Anchors without an href,
// fragment links and javascript: links are skipped; hrefs that do not
// resolve are logged and skipped.
func CollectLinks(page dom.Page, baseURL string, s sites.Structure, logger *slog.Logger) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		logger.Warn("invalid base URL for link collection", "url", baseURL, "error", err)
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	for _, el := range page.Query(s.NewsLinkSelector) {
		href, ok := el.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			continue
		}
		if strings.Contains(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			logger.Debug("skipping malformed link", "href", href, "error", err)
			continue
		}
		abs := base.ResolveReference(ref).String()

		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	}

	return links
}
