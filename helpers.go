package folio

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode"

	"github.com/vmarins/folio/posts"
)

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.Join(words, "-"))
}

// BuildURL joins base with path segments. Page URLs on the site carry a
// trailing slash, so one is appended whenever segments are given.
func BuildURL(base string, segments ...string) string {
	joined, err := url.JoinPath(base, segments...)
	if err != nil {
		return base
	}
	if len(segments) > 0 && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}

// FilterEmpty drops blank and whitespace-only entries.
func FilterEmpty(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// JoinTags formats tags for display.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// FilterRelatedPosts returns the posts from all that share a tag with
// current, excluding current itself. Tag comparison is case-insensitive.
func FilterRelatedPosts(current posts.Post, all []posts.Post) []posts.Post {
	want := make(map[string]bool, len(current.Tags))
	for _, t := range current.Tags {
		if t = normalizeTag(t); t != "" {
			want[t] = true
		}
	}

	var related []posts.Post
	for _, p := range all {
		if p.Slug == current.Slug {
			continue
		}
		if sharesTag(p.Tags, want) {
			related = append(related, p)
		}
	}
	return related
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func sharesTag(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[normalizeTag(t)] {
			return true
		}
	}
	return false
}

// Structured-data types for the JSON-LD helpers below. Field order follows
// the schema.org examples.
type ldPerson struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type ldWebsite struct {
	Context     string    `json:"@context"`
	Type        string    `json:"@type"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Author      *ldPerson `json:"author,omitempty"`
}

type ldBlogPosting struct {
	Context       string    `json:"@context"`
	Type          string    `json:"@type"`
	Headline      string    `json:"headline"`
	Description   string    `json:"description,omitempty"`
	DatePublished string    `json:"datePublished"`
	URL           string    `json:"url"`
	MainEntity    ldWebPage `json:"mainEntityOfPage"`
	Author        *ldPerson `json:"author,omitempty"`
	Publisher     *ldOrg    `json:"publisher,omitempty"`
	Keywords      string    `json:"keywords,omitempty"`
}

type ldWebPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type ldOrg struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// WebsiteJsonLD renders the schema.org WebSite block for the site head.
func WebsiteJsonLD(cfg SiteConfig) string {
	site := ldWebsite{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        cfg.Name,
		URL:         BuildURL(cfg.URL),
		Description: cfg.Description,
	}
	if cfg.Author != "" {
		site.Author = &ldPerson{Type: "Person", Name: cfg.Author}
	}
	return marshalLD(site)
}

// BlogPostingJsonLD renders the schema.org BlogPosting block for a post page.
func BlogPostingJsonLD(post posts.Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	posting := ldBlogPosting{
		Context:       "https://schema.org",
		Type:          "BlogPosting",
		Headline:      post.Title,
		Description:   post.Description,
		DatePublished: post.Date,
		URL:           postURL,
		MainEntity:    ldWebPage{Type: "WebPage", ID: postURL},
		Keywords:      JoinTags(post.Tags),
	}
	if cfg.Author != "" {
		posting.Author = &ldPerson{Type: "Person", Name: cfg.Author}
	}
	if cfg.Name != "" {
		posting.Publisher = &ldOrg{Type: "Organization", Name: cfg.Name}
	}
	return marshalLD(posting)
}

func marshalLD(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
