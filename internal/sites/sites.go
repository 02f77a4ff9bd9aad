// Package sites maps news-site hostnames to the selectors used to find
// article links, titles, bodies and images on their pages.
package sites

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/dom"
)

// DefaultKey names the fallback structure used for unknown hosts.
const DefaultKey = "default"

// Structure is the selector set for one site. Each selector may be a CSS
// selector group or an "xpath:" expression.
type Structure struct {
	NewsLinkSelector string `json:"newsLinkSelector" yaml:"news_link_selector"`
	TitleSelector    string `json:"titleSelector"    yaml:"title_selector"`
	ContentSelector  string `json:"contentSelector"  yaml:"content_selector"`
	ImageSelector    string `json:"imageSelector"    yaml:"image_selector"`
	SportsSectionURL string `json:"sportsSectionUrl" yaml:"sports_section_url"`
}

// Registry is a read-only hostname to Structure table.
type Registry struct {
	structures map[string]Structure
	fallback   Structure
}

// New builds a registry from the built-in sites plus config overrides.
// Overrides replace a built-in entry with the same host, and a host of
// "default" replaces the fallback.
func New(overrides []config.SiteConfig) (*Registry, error) {
	r := &Registry{
		structures: make(map[string]Structure, len(builtin)+len(overrides)),
	}
	for host, s := range builtin {
		r.structures[host] = s
	}

	for _, o := range overrides {
		s := Structure{
			NewsLinkSelector: o.NewsLinkSelector,
			TitleSelector:    o.TitleSelector,
			ContentSelector:  o.ContentSelector,
			ImageSelector:    o.ImageSelector,
			SportsSectionURL: o.SportsSectionURL,
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("site %q: %w", o.Host, err)
		}
		r.structures[NormalizeHost(o.Host)] = s
	}

	r.fallback = r.structures[DefaultKey]
	return r, nil
}

// Resolve returns the structure for the URL's host, or the default
// structure when the host is unknown or the URL cannot be parsed.
func (r *Registry) Resolve(rawURL string) Structure {
	if s, ok := r.Lookup(hostOf(rawURL)); ok {
		return s
	}
	return r.fallback
}

// Lookup returns the structure registered for host, if any.
func (r *Registry) Lookup(host string) (Structure, bool) {
	host = NormalizeHost(host)
	if host == "" || host == DefaultKey {
		return Structure{}, false
	}
	s, ok := r.structures[host]
	return s, ok
}

// Hosts returns the registered hostnames in sorted order, without the
// default entry.
func (r *Registry) Hosts() []string {
	hosts := make([]string, 0, len(r.structures))
	for h := range r.structures {
		if h != DefaultKey {
			hosts = append(hosts, h)
		}
	}
	sort.Strings(hosts)
	return hosts
}

// All returns every entry including the default, keyed by host.
func (r *Registry) All() map[string]Structure {
	out := make(map[string]Structure, len(r.structures))
	for h, s := range r.structures {
		out[h] = s
	}
	return out
}

// NormalizeHost lowercases a hostname and strips one leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if u.Host == "" && u.Scheme == "" {
		// Bare hostname such as "hurriyet.com.tr".
		u, err = url.Parse("//" + strings.TrimSpace(rawURL))
		if err != nil {
			return ""
		}
	}
	return u.Hostname()
}

// Validate checks that every selector in the structure compiles.
func (s Structure) Validate() error {
	fields := []struct {
		name, sel string
		required  bool
	}{
		{"news_link_selector", s.NewsLinkSelector, true},
		{"title_selector", s.TitleSelector, true},
		{"content_selector", s.ContentSelector, true},
		{"image_selector", s.ImageSelector, false},
	}
	for _, f := range fields {
		if f.sel == "" {
			if f.required {
				return fmt.Errorf("%s is required", f.name)
			}
			continue
		}
		if err := compileSelector(f.sel); err != nil {
			return fmt.Errorf("%s %q: %w", f.name, f.sel, err)
		}
	}
	return nil
}

func compileSelector(sel string) error {
	if expr, ok := dom.XPathExpr(sel); ok {
		return dom.CompileXPath(expr)
	}
	_, err := cascadia.ParseGroup(sel)
	return err
}
