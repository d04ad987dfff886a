package folio

import "github.com/vmarins/folio/posts"

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>
// section of user templates.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// HomeMeta builds the head metadata for the listing page.
func HomeMeta(cfg SiteConfig) PageMeta {
	return PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
	}
}

// PostMeta builds the head metadata for a post page.
func PostMeta(post posts.Post, cfg SiteConfig) PageMeta {
	desc := post.Description
	if desc == "" {
		desc = post.Subtitle
	}
	return PageMeta{
		Title:       post.Title + " | " + cfg.Name,
		Description: desc,
		URL:         BuildURL(cfg.URL, "blog", post.Slug),
		OGType:      "article",
	}
}
