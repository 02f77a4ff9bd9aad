package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/dom"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Resource types never downloaded by browser pages. Documents, scripts and
// XHR still load so the page renders as a reader would see it.
var blockedResources = map[proto.NetworkResourceType]bool{
	proto.NetworkResourceTypeImage:      true,
	proto.NetworkResourceTypeMedia:      true,
	proto.NetworkResourceTypeFont:       true,
	proto.NetworkResourceTypeStylesheet: true,
}

// BrowserFetcher implements Fetcher using a headless Chromium via Rod.
// Extraction queries run against the live rendered page.
type BrowserFetcher struct {
	browser  *rod.Browser
	cfg      config.BrowserConfig
	fetchCfg config.FetcherConfig
	logger   *slog.Logger

	// idle holds pages ready for reuse; slots bounds how many pages are
	// open at once.
	idle  chan *browserTab
	slots chan struct{}

	closeOnce sync.Once
}

type browserTab struct {
	page   *rod.Page
	router *rod.HijackRouter
}

// NewBrowserFetcher launches a headless browser and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:      cfg.Browser,
		fetchCfg: cfg.Fetcher,
		logger:   logger.With("component", "browser_fetcher"),
		idle:     make(chan *browserTab, cfg.Browser.MaxPages),
		slots:    make(chan struct{}, cfg.Browser.MaxPages),
	}

	launchURL, err := bf.launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("%w: launch: %v", types.ErrBrowserUnavailable, err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect: %v", types.ErrBrowserUnavailable, err)
	}
	bf.browser = browser

	bf.logger.Info("browser fetcher ready",
		"max_pages", bf.cfg.MaxPages,
		"stealth", bf.cfg.Stealth,
		"block_resources", bf.cfg.BlockResources,
	)

	return bf, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func (bf *BrowserFetcher) launchBrowser() (string, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled").
		Set("lang", "tr-TR")

	if bf.cfg.Bin != "" {
		l = l.Bin(bf.cfg.Bin)
	}
	if bf.fetchCfg.TLSInsecure {
		bf.logger.Warn("TLS certificate verification is disabled for browser pages")
		l = l.Set("ignore-certificate-errors")
	}

	return l.Launch()
}

// Open navigates a pooled tab to rawURL and returns it as a dom.Page. The
// page must be closed to return the tab to the pool.
func (bf *BrowserFetcher) Open(ctx context.Context, rawURL, tag string) (dom.Page, error) {
	if _, err := types.NewRequest(rawURL, tag); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	select {
	case bf.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, &types.FetchError{URL: rawURL, Err: timeoutErr(ctx, ctx.Err())}
	}

	start := time.Now()

	tab, err := bf.getTab()
	if err != nil {
		<-bf.slots
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	page := tab.page.Context(ctx)
	if err := page.Navigate(rawURL); err != nil {
		bf.release(tab)
		return nil, &types.FetchError{URL: rawURL, Err: timeoutErr(ctx, err)}
	}
	if err := page.WaitLoad(); err != nil {
		bf.release(tab)
		return nil, &types.FetchError{URL: rawURL, Err: timeoutErr(ctx, err)}
	}
	if err := page.WaitDOMStable(bf.cfg.StableWait, 0); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil && info.URL != "" {
		finalURL = info.URL
	}

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"tag", tag,
		"final_url", finalURL,
		"duration", time.Since(start),
	)

	return &rodPage{bf: bf, tab: tab, page: page, url: finalURL}, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	var err error
	bf.closeOnce.Do(func() {
		close(bf.idle)
		for tab := range bf.idle {
			bf.closeTab(tab)
		}
		if bf.browser != nil {
			err = bf.browser.Close()
		}
	})
	return err
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// getTab takes an idle tab or opens a new one.
func (bf *BrowserFetcher) getTab() (*browserTab, error) {
	select {
	case tab, ok := <-bf.idle:
		if ok {
			return tab, nil
		}
		return nil, fmt.Errorf("%w: closed", types.ErrBrowserUnavailable)
	default:
	}

	var page *rod.Page
	var err error
	if bf.cfg.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      bf.fetchCfg.UserAgent,
		AcceptLanguage: bf.fetchCfg.AcceptLanguage,
	})
	if err != nil {
		bf.logger.Warn("failed to set user agent", "error", err)
	}

	tab := &browserTab{page: page}
	if bf.cfg.BlockResources {
		tab.router = page.HijackRequests()
		err := tab.router.Add("*", "", func(h *rod.Hijack) {
			if blockedResources[h.Request.Type()] {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
			h.ContinueRequest(&proto.FetchContinueRequest{})
		})
		if err != nil {
			bf.logger.Warn("resource blocking unavailable", "error", err)
		} else {
			go tab.router.Run()
		}
	}

	return tab, nil
}

// release returns a tab to the pool and frees its slot.
func (bf *BrowserFetcher) release(tab *browserTab) {
	defer func() { <-bf.slots }()

	// Navigate to blank to free memory from the last page.
	if err := tab.page.Navigate("about:blank"); err != nil {
		bf.closeTab(tab)
		return
	}

	defer func() {
		// Sending on a closed pool panics once Close has run.
		if recover() != nil {
			bf.closeTab(tab)
		}
	}()
	select {
	case bf.idle <- tab:
	default:
		bf.closeTab(tab)
	}
}

func (bf *BrowserFetcher) closeTab(tab *browserTab) {
	if tab.router != nil {
		_ = tab.router.Stop()
	}
	_ = tab.page.Close()
}

// rodPage adapts a live browser tab to dom.Page.
type rodPage struct {
	bf   *BrowserFetcher
	tab  *browserTab
	page *rod.Page
	url  string
	once sync.Once
}

func (p *rodPage) URL() string { return p.url }

func (p *rodPage) Query(selector string) []dom.Element {
	var els rod.Elements
	var err error
	if expr, ok := dom.XPathExpr(selector); ok {
		els, err = p.page.ElementsX(expr)
	} else {
		els, err = p.page.Elements(selector)
	}
	if err != nil {
		p.bf.logger.Debug("selector query failed", "url", p.url, "selector", selector, "error", err)
		return nil
	}

	out := make([]dom.Element, len(els))
	for i, el := range els {
		out[i] = rodElement{el}
	}
	return out
}

func (p *rodPage) Close() error {
	p.once.Do(func() { p.bf.release(p.tab) })
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Text() string {
	t, err := e.el.Text()
	if err != nil {
		return ""
	}
	return t
}

func (e rodElement) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}
