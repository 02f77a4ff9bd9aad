package pipeline

import (
	"net/url"
	"strings"

	"github.com/IshaanNene/sporhaber/internal/types"
)

// Classifier is the relevance and tagging surface used by the pipeline.
type Classifier interface {
	IsSportsRelated(title, content string) bool
	Tags(title, content string) []string
}

// RequiredFieldsMiddleware drops articles without a title or content.
type RequiredFieldsMiddleware struct{}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(a *types.Article) (*types.Article, error) {
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
		return nil, nil
	}
	return a, nil
}

// RelevanceMiddleware drops articles the classifier does not consider
// sports news.
type RelevanceMiddleware struct {
	Classifier Classifier
}

func (m *RelevanceMiddleware) Name() string { return "relevance" }

func (m *RelevanceMiddleware) Process(a *types.Article) (*types.Article, error) {
	if !m.Classifier.IsSportsRelated(a.Title, a.Content) {
		return nil, nil
	}
	return a, nil
}

// CleanTextMiddleware collapses runs of whitespace in title and content to
// single spaces and trims the ends.
type CleanTextMiddleware struct{}

func (m *CleanTextMiddleware) Name() string { return "clean_text" }

func (m *CleanTextMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = CollapseWhitespace(a.Title)
	a.Content = CollapseWhitespace(a.Content)
	return a, nil
}

// CollapseWhitespace replaces every run of whitespace with one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TagMiddleware sets the article's tags from classifier keyword hits.
type TagMiddleware struct {
	Classifier Classifier
}

func (m *TagMiddleware) Name() string { return "tags" }

func (m *TagMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Tags = m.Classifier.Tags(a.Title, a.Content)
	return a, nil
}

// ImageResolveMiddleware makes the image URL absolute against the article
// URL. An image that cannot be resolved is cleared.
type ImageResolveMiddleware struct{}

func (m *ImageResolveMiddleware) Name() string { return "image_resolve" }

func (m *ImageResolveMiddleware) Process(a *types.Article) (*types.Article, error) {
	img := strings.TrimSpace(a.Image)
	if img == "" {
		a.Image = ""
		return a, nil
	}

	base, err := url.Parse(a.URL)
	if err != nil {
		a.Image = ""
		return a, nil
	}
	ref, err := url.Parse(img)
	if err != nil {
		a.Image = ""
		return a, nil
	}
	a.Image = base.ResolveReference(ref).String()
	return a, nil
}

// NewArticlePipeline returns the standard chain every extracted article
// runs through: drop empty, drop unrelated, clean, tag, resolve image.
func NewArticlePipeline(p *Pipeline, c Classifier) *Pipeline {
	p.Use(&RequiredFieldsMiddleware{})
	p.Use(&RelevanceMiddleware{Classifier: c})
	p.Use(&CleanTextMiddleware{})
	p.Use(&TagMiddleware{Classifier: c})
	p.Use(&ImageResolveMiddleware{})
	return p
}
