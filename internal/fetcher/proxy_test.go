package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

func TestProxyRoundRobin(t *testing.T) {
	pm := NewProxyManager(config.ProxyConfig{
		URLs:     []string{"http://p1:8080", "::bad::", "http://p2:8080"},
		Rotation: "round_robin",
	}, testLogger)

	if pm.Count() != 2 {
		t.Fatalf("expected 2 valid proxies, got %d", pm.Count())
	}

	got := []string{pm.Next().Host, pm.Next().Host, pm.Next().Host}
	want := []string{"p1:8080", "p2:8080", "p1:8080"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rotation %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestProxyHealth(t *testing.T) {
	pm := NewProxyManager(config.ProxyConfig{URLs: []string{"http://p1:8080"}}, testLogger)

	p := pm.Next()
	pm.MarkFailed(p, context.DeadlineExceeded)
	if pm.HealthyCount() != 0 || pm.Next() != nil {
		t.Error("failed proxy should leave rotation")
	}

	pm.MarkHealthy(p)
	if pm.Next() == nil {
		t.Error("healthy proxy should rejoin rotation")
	}
}

func TestFetchThroughProxy(t *testing.T) {
	var proxied atomic.Int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A forward proxy receives the absolute target URL.
		if r.URL.Host == "spor.example" {
			proxied.Add(1)
		}
		w.Write([]byte("<html><head><title>ok</title></head></html>"))
	}))
	defer proxy.Close()

	f := newTestFetcher(t, func(c *config.Config) {
		c.Fetcher.Proxy.URLs = []string{proxy.URL}
	})

	page, err := f.Open(context.Background(), "http://spor.example/haber", types.TagListing)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	page.Close()

	if proxied.Load() != 1 {
		t.Errorf("expected the request to go through the proxy, got %d", proxied.Load())
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestProxyCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 19, 20, 0, 0, 0, time.UTC)}
	pm := NewProxyManager(config.ProxyConfig{URLs: []string{"http://p1:8080"}, Cooldown: 30 * time.Second}, testLogger)
	pm.now = clock.now

	p := pm.Next()
	pm.MarkFailed(p, context.DeadlineExceeded)

	clock.t = clock.t.Add(29 * time.Second)
	if pm.Next() != nil {
		t.Error("proxy should sit out its cooldown")
	}
	clock.t = clock.t.Add(time.Second)
	if got := pm.Next(); got == nil || got.Host != "p1:8080" {
		t.Errorf("proxy should rejoin after cooldown, got %v", got)
	}

	forever := NewProxyManager(config.ProxyConfig{URLs: []string{"http://p1:8080"}}, testLogger)
	forever.now = clock.now
	forever.MarkFailed(forever.Next(), context.DeadlineExceeded)
	clock.t = clock.t.Add(24 * time.Hour)
	if forever.Next() != nil {
		t.Error("zero cooldown keeps a failed proxy out")
	}
}

func TestFailingProxyIsMarked(t *testing.T) {
	var direct atomic.Int32
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		direct.Add(1)
		w.Write([]byte("<html><body>doğrudan</body></html>"))
	}))
	defer target.Close()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dead := "http://" + l.Addr().String()
	l.Close()

	f := newTestFetcher(t, func(c *config.Config) {
		c.Fetcher.Proxy.URLs = []string{dead}
	})

	if _, err := f.Open(context.Background(), target.URL, types.TagListing); err == nil {
		t.Fatal("expected error through dead proxy")
	}
	if f.proxies.HealthyCount() != 0 {
		t.Error("dead proxy should be marked unhealthy")
	}

	_, err = f.Open(context.Background(), target.URL, types.TagListing)
	if !errors.Is(err, types.ErrNoProxy) {
		t.Errorf("expected ErrNoProxy with every proxy down, got %v", err)
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected FetchError, got %T", err)
	}
	if f.Probe(context.Background(), target.URL) {
		t.Error("probe must not bypass the proxy pool")
	}
	if direct.Load() != 0 {
		t.Errorf("no request may reach the site without a proxy, got %d", direct.Load())
	}
}

func TestProxyRecoversAfterSuccess(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>ok</title></head></html>"))
	}))
	defer proxy.Close()

	f := newTestFetcher(t, func(c *config.Config) {
		c.Fetcher.Proxy.URLs = []string{proxy.URL}
		c.Fetcher.Proxy.Cooldown = time.Minute
	})
	failedAt := time.Date(2024, 5, 19, 20, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: failedAt}
	f.proxies.now = clock.now

	f.proxies.MarkFailed(f.proxies.Next(), errors.New("bağlantı koptu"))
	clock.t = failedAt.Add(time.Minute)

	page, err := f.Open(context.Background(), "http://spor.example/haber", types.TagArticle)
	if err != nil {
		t.Fatalf("open after cooldown: %v", err)
	}
	page.Close()

	// Back at the failure instant, only an explicit recovery keeps it usable.
	clock.t = failedAt
	if f.proxies.HealthyCount() != 1 {
		t.Error("a successful fetch should put the proxy back in rotation")
	}
}
