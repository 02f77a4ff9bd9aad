package fetcher

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// ProxyManager rotates outgoing fetches over a set of proxies and skips
// the ones that recently failed. A failed proxy rejoins the rotation once
// its cooldown has passed; a cooldown of zero keeps it out until
// MarkHealthy.
type ProxyManager struct {
	proxies  []*proxyEntry
	rotation string
	cooldown time.Duration
	index    atomic.Int64
	mu       sync.RWMutex
	now      func() time.Time
	logger   *slog.Logger
}

type proxyEntry struct {
	URL      *url.URL
	Healthy  bool
	FailedAt time.Time
	LastErr  error
}

// NewProxyManager creates a ProxyManager. Unparseable proxy URLs are logged
// and skipped.
func NewProxyManager(cfg config.ProxyConfig, logger *slog.Logger) *ProxyManager {
	pm := &ProxyManager{
		proxies:  make([]*proxyEntry, 0, len(cfg.URLs)),
		rotation: cfg.Rotation,
		cooldown: cfg.Cooldown,
		now:      time.Now,
		logger:   logger.With("component", "proxy_manager"),
	}

	for _, rawURL := range cfg.URLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			pm.logger.Warn("invalid proxy URL", "url", rawURL, "error", err)
			continue
		}
		pm.proxies = append(pm.proxies, &proxyEntry{URL: u, Healthy: true})
	}

	pm.logger.Info("proxy manager initialized", "count", len(pm.proxies), "rotation", cfg.Rotation)
	return pm
}

type proxyKey struct{}

// bind picks the proxy for one fetch and stores it in the context, so the
// transport and the failure bookkeeping agree on which proxy was used.
// With every proxy out of rotation it fails rather than connect directly.
func (pm *ProxyManager) bind(ctx context.Context) (context.Context, *url.URL, error) {
	p := pm.Next()
	if p == nil {
		return ctx, nil, types.ErrNoProxy
	}
	return context.WithValue(ctx, proxyKey{}, p), p, nil
}

// ProxyFunc returns an http.Transport proxy function that uses the proxy
// bound to the request context. Unbound requests are refused.
func (pm *ProxyManager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		p, ok := req.Context().Value(proxyKey{}).(*url.URL)
		if !ok || p == nil {
			return nil, types.ErrNoProxy
		}
		return p, nil
	}
}

// Next returns the next usable proxy, or nil when none is.
func (pm *ProxyManager) Next() *url.URL {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	healthy := pm.healthyProxies()
	if len(healthy) == 0 {
		return nil
	}

	switch pm.rotation {
	case "random":
		return healthy[rand.IntN(len(healthy))].URL
	default: // round_robin
		idx := (pm.index.Add(1) - 1) % int64(len(healthy))
		return healthy[idx].URL
	}
}

// MarkFailed takes a proxy out of rotation for the cooldown period.
func (pm *ProxyManager) MarkFailed(proxyURL *url.URL, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if p := pm.find(proxyURL); p != nil {
		p.Healthy = false
		p.FailedAt = pm.now()
		p.LastErr = err
	}
	pm.logger.Warn("proxy marked unhealthy", "proxy", proxyURL.Host, "cooldown", pm.cooldown, "error", err)
}

// MarkHealthy puts a proxy back into rotation. The fetcher calls it after
// every fetch that got a response through the proxy.
func (pm *ProxyManager) MarkHealthy(proxyURL *url.URL) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	p := pm.find(proxyURL)
	if p == nil || p.Healthy {
		return
	}
	p.Healthy = true
	p.LastErr = nil
	pm.logger.Info("proxy back in rotation", "proxy", proxyURL.Host)
}

func (pm *ProxyManager) find(proxyURL *url.URL) *proxyEntry {
	for _, p := range pm.proxies {
		if p.URL.String() == proxyURL.String() {
			return p
		}
	}
	return nil
}

// Count returns the total number of proxies.
func (pm *ProxyManager) Count() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.proxies)
}

// HealthyCount returns the number of proxies currently in rotation.
func (pm *ProxyManager) HealthyCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.healthyProxies())
}

func (pm *ProxyManager) healthyProxies() []*proxyEntry {
	now := pm.now()
	healthy := make([]*proxyEntry, 0, len(pm.proxies))
	for _, p := range pm.proxies {
		if p.Healthy || (pm.cooldown > 0 && now.Sub(p.FailedAt) >= pm.cooldown) {
			healthy = append(healthy, p)
		}
	}
	return healthy
}
