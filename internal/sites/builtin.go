package sites

// Meta-tag fallbacks shared by most Turkish news sites.
const (
	ogTitle       = "meta[property='og:title']"
	ogDescription = "meta[property='og:description'], meta[name='description']"
	ogImage       = "meta[property='og:image']"
)

var builtin = map[string]Structure{
	"hurriyet.com.tr": {
		NewsLinkSelector: "a[href*='/sporarena/'], .news-list a[href*='/spor/']",
		TitleSelector:    "h1.news-detail-title, h1, " + ogTitle,
		ContentSelector:  ".news-content p, .news-box p, " + ogDescription,
		ImageSelector:    ogImage + ", .news-media img",
		SportsSectionURL: "/sporarena/",
	},
	"milliyet.com.tr": {
		NewsLinkSelector: "a[href*='/skorer/']",
		TitleSelector:    "h1.nd-article__title, h1, " + ogTitle,
		ContentSelector:  ".nd-content-column p, .article__content p, " + ogDescription,
		ImageSelector:    ogImage + ", .nd-article__image img",
		SportsSectionURL: "/skorer/",
	},
	"sabah.com.tr": {
		NewsLinkSelector: "a[href*='/spor/']",
		TitleSelector:    "h1.pageTitle, h1, " + ogTitle,
		ContentSelector:  ".newsDetailText p, .newsBox p, " + ogDescription,
		ImageSelector:    ogImage + ", .newsImage img",
		SportsSectionURL: "/spor/",
	},
	"sozcu.com.tr": {
		NewsLinkSelector: "a[href*='/spor/']",
		TitleSelector:    "h1.content-title, h1, " + ogTitle,
		ContentSelector:  ".article-body p, .content-element p, " + ogDescription,
		ImageSelector:    ogImage + ", .main-image img",
		SportsSectionURL: "/kategori/spor/",
	},
	"fanatik.com.tr": {
		NewsLinkSelector: "a.news-card, .news-list a, a[href*='/futbol/'], a[href*='/basketbol/']",
		TitleSelector:    "h1.news-title, h1, " + ogTitle,
		ContentSelector:  ".news-detail-content p, .article-text p, " + ogDescription,
		ImageSelector:    ogImage + ", .news-image img",
		SportsSectionURL: "/",
	},
	"fotomac.com.tr": {
		NewsLinkSelector: ".news-list a, a[href*='/futbol/'], a[href*='/basketbol/']",
		TitleSelector:    "h1.news-title, h1, " + ogTitle,
		ContentSelector:  ".news-detail p, .detail-text p, " + ogDescription,
		ImageSelector:    ogImage + ", .news-image img",
		SportsSectionURL: "/",
	},
	"ntv.com.tr": {
		NewsLinkSelector: "a[href*='/sporskor/']",
		TitleSelector:    "h1.category-detail-title, h1, " + ogTitle,
		ContentSelector:  ".category-detail-content p, " + ogDescription,
		ImageSelector:    ogImage + ", .category-detail-image img",
		SportsSectionURL: "/sporskor",
	},
	"haberturk.com": {
		NewsLinkSelector: "a[href*='/spor/']",
		TitleSelector:    "h1.title, h1, " + ogTitle,
		ContentSelector:  ".cms-container p, .news-content p, " + ogDescription,
		ImageSelector:    ogImage + ", .news-image img",
		SportsSectionURL: "/spor",
	},
	DefaultKey: {
		NewsLinkSelector: "article a, .news a, .news-item a, a[href*='spor'], a[href*='haber']",
		TitleSelector:    "h1, " + ogTitle,
		ContentSelector:  "article p, .content p, .news-content p, .article-body p, " + ogDescription,
		ImageSelector:    ogImage + ", article img, .content img",
		SportsSectionURL: "/spor",
	},
}
