// Package classifier decides whether a news article is about sports using
// Turkish keyword lists.
package classifier

import (
	"strings"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// Classifier holds the keyword lists. It is read-only after construction
// and safe for concurrent use.
type Classifier struct {
	positive []string
	negative []string
}

// New returns a classifier with the built-in keyword lists.
func New() *Classifier {
	return &Classifier{
		positive: append([]string(nil), positiveKeywords...),
		negative: append([]string(nil), negativeKeywords...),
	}
}

// FromConfig returns the built-in classifier extended with configured
// keywords, appended after the built-ins.
func FromConfig(cfg config.ClassifierConfig) *Classifier {
	c := New()
	c.positive = appendKeywords(c.positive, cfg.ExtraPositive)
	c.negative = appendKeywords(c.negative, cfg.ExtraNegative)
	return c
}

func appendKeywords(list, extra []string) []string {
	seen := make(map[string]bool, len(list))
	for _, k := range list {
		seen[k] = true
	}
	for _, k := range extra {
		k = lower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		list = append(list, k)
	}
	return list
}

// IsSportsRelated reports whether title and content describe a sports story.
//
// A title containing "spor" is accepted outright. Otherwise at least one
// sports keyword must appear and no unrelated-domain keyword may appear,
// unless the text also mentions "spor", "futbol" or "basketbol", in which
// case unrelated-domain keywords are ignored.
func (c *Classifier) IsSportsRelated(title, content string) bool {
	t := lower(title)
	if strings.Contains(t, titleOverride) {
		return true
	}

	buf := t + " " + lower(content)

	if !containsAny(buf, c.positive) {
		return false
	}
	if containsAny(buf, suppressors) {
		return true
	}
	return !containsAny(buf, c.negative)
}

// Tags returns the sports keywords found in title or content, in keyword
// list order. When none match it returns the single default tag.
func (c *Classifier) Tags(title, content string) []string {
	t, b := lower(title), lower(content)

	var tags []string
	for _, k := range c.positive {
		if strings.Contains(t, k) || strings.Contains(b, k) {
			tags = append(tags, k)
		}
	}
	if len(tags) == 0 {
		return []string{types.DefaultTag}
	}
	return tags
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// dotless maps Turkish capitals whose default Unicode lowering would not
// match the ASCII spelling used in the keyword lists.
var dotless = strings.NewReplacer("İ", "i", "I", "i")

func lower(s string) string {
	return strings.ToLower(dotless.Replace(s))
}
