package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/IshaanNene/sporhaber/internal/classifier"
	"github.com/IshaanNene/sporhaber/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newArticle(title, content, image string) *types.Article {
	a := types.NewArticle("https://www.sabah.com.tr/spor/2024/derbi")
	a.Title = title
	a.Content = content
	a.Image = image
	return a
}

func TestArticlePipeline(t *testing.T) {
	p := NewArticlePipeline(New(testLogger), classifier.New())
	if p.Len() != 5 {
		t.Fatalf("expected 5 stages, got %d", p.Len())
	}

	a := newArticle("  Derbi\n\tsonucu ", "Galatasaray  ile\n\nFenerbahçe berabere kaldı.\t", "../img/derbi.jpg")
	result, err := p.Process(a)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result == nil {
		t.Fatal("sports article should pass")
	}
	if result.Title != "Derbi sonucu" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if result.Content != "Galatasaray ile Fenerbahçe berabere kaldı." {
		t.Errorf("unexpected content %q", result.Content)
	}
	if want := []string{"derbi", "galatasaray", "fenerbahçe"}; !reflect.DeepEqual(result.Tags, want) {
		t.Errorf("tags = %v, want %v", result.Tags, want)
	}
	if result.Image != "https://www.sabah.com.tr/spor/img/derbi.jpg" {
		t.Errorf("unexpected image %q", result.Image)
	}
}

func TestArticlePipelineDrops(t *testing.T) {
	p := NewArticlePipeline(New(testLogger), classifier.New())

	tests := []struct {
		name           string
		title, content string
	}{
		{"empty title", "", "Spor haberleri ve maç sonuçları"},
		{"whitespace title", "  \n ", "Spor haberleri ve maç sonuçları"},
		{"empty content", "Spor gündemi", ""},
		{"not sports", "Borsa güne yükselişle başladı", "ekonomi enflasyon faiz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Process(newArticle(tt.title, tt.content, ""))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != nil {
				t.Errorf("expected article to be dropped, got %+v", result)
			}
		})
	}
}

func TestRequiredFieldsIgnoresClassifier(t *testing.T) {
	m := &RequiredFieldsMiddleware{}
	// Title alone would pass the classifier, but content is missing.
	if result, _ := m.Process(newArticle("Spor", "", "")); result != nil {
		t.Error("missing content must drop the article")
	}
}

func TestImageResolveMiddleware(t *testing.T) {
	m := &ImageResolveMiddleware{}

	tests := []struct {
		image, want string
	}{
		{"", ""},
		{"   ", ""},
		{"/img/a.jpg", "https://www.sabah.com.tr/img/a.jpg"},
		{"//cdn.sabah.com.tr/a.jpg", "https://cdn.sabah.com.tr/a.jpg"},
		{"https://i.example.com/a.jpg", "https://i.example.com/a.jpg"},
		{"http://[::1", ""},
	}
	for _, tt := range tests {
		result, err := m.Process(newArticle("t", "c", tt.image))
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if result.Image != tt.want {
			t.Errorf("image %q: expected %q, got %q", tt.image, tt.want, result.Image)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "\n  Süper   Lig'de\t\tzirve yarışı \r\n"
	if got := CollapseWhitespace(in); got != "Süper Lig'de zirve yarışı" {
		t.Errorf("unexpected %q", got)
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }

func (failingMiddleware) Process(*types.Article) (*types.Article, error) {
	return nil, errors.New("boom")
}

func TestPipelineErrorWrapsStage(t *testing.T) {
	p := New(testLogger)
	p.Use(&CleanTextMiddleware{})
	p.Use(failingMiddleware{})

	_, err := p.Process(newArticle("a", "b", ""))
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "failing" {
		t.Errorf("expected stage 'failing', got %q", pe.Stage)
	}
}
