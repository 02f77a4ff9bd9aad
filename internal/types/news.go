package types

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Fixed values stamped on every imported news item.
const (
	CategorySports = "Spor"
	StatusPending  = "pending"
	DefaultTag     = "spor"

	ImageAvailable = "available"
	ImageError     = "error"
)

// Article is the raw record extracted from one article page. It flows
// through the pipeline before being turned into a NewsItem or a
// ScrapedArticle.
type Article struct {
	// URL is the article's own address.
	URL string

	Title   string
	Content string

	// Image is the image URL as found on the page; absolute once the
	// pipeline has run.
	Image string

	// Tags are the sports keywords matched in title or content.
	Tags []string
}

// NewArticle creates an empty Article for a page URL.
func NewArticle(pageURL string) *Article {
	return &Article{URL: pageURL}
}

// HasImage reports whether an image URL was found.
func (a *Article) HasImage() bool {
	return a.Image != ""
}

// ContentLength returns the content length in characters.
func (a *Article) ContentLength() int {
	return utf8.RuneCountInString(a.Content)
}

// NewsItem is one imported article waiting in the moderation queue.
type NewsItem struct {
	ID            string   `json:"id"            bson:"_id"`
	Title         string   `json:"title"         bson:"title"`
	Content       string   `json:"content"       bson:"content"`
	Category      string   `json:"category"      bson:"category"`
	Image         string   `json:"image,omitempty" bson:"image,omitempty"`
	PublishDate   string   `json:"publishDate"   bson:"publish_date"`
	Tags          []string `json:"tags"          bson:"tags"`
	Status        string   `json:"status"        bson:"status"`
	HasImage      bool     `json:"hasImage"      bson:"has_image"`
	ContentLength int      `json:"contentLength" bson:"content_length"`
	ImageStatus   string   `json:"imageStatus"   bson:"image_status"`
	SourceURL     string   `json:"sourceUrl"     bson:"source_url"`
}

// ScrapedArticle is the simplified record returned by the scrape route.
type ScrapedArticle struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Image         *string `json:"image"`
	HasImage      bool    `json:"hasImage"`
	ContentLength int     `json:"contentLength"`
	ImageStatus   string  `json:"imageStatus"`
}

// ToFlatMap returns the item as string columns, for tabular exports.
func (n *NewsItem) ToFlatMap() map[string]string {
	return map[string]string{
		"id":            n.ID,
		"title":         n.Title,
		"content":       n.Content,
		"category":      n.Category,
		"image":         n.Image,
		"publishDate":   n.PublishDate,
		"tags":          strings.Join(n.Tags, "|"),
		"status":        n.Status,
		"hasImage":      strconv.FormatBool(n.HasImage),
		"contentLength": strconv.Itoa(n.ContentLength),
		"imageStatus":   n.ImageStatus,
		"sourceUrl":     n.SourceURL,
	}
}
