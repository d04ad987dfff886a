package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vmarins/folio/posts"
)

// XML document types for /sitemap.xml and /feed.xml.

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	Entries []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) buildSitemap(published []posts.Post) urlSet {
	entries := make([]urlEntry, 0, len(published)+1)
	entries = append(entries, urlEntry{Loc: BuildURL(a.Config.URL)})
	for _, p := range published {
		entries = append(entries, urlEntry{
			Loc:     BuildURL(a.Config.URL, "blog", p.Slug),
			LastMod: p.Date,
		})
	}
	return urlSet{
		Xmlns:   "http://www.sitemaps.org/schemas/sitemap/0.9",
		Entries: entries,
	}
}

func (a *App) buildRSS(published []posts.Post) rssFeed {
	items := make([]rssItem, 0, len(published))
	for _, p := range published {
		link := BuildURL(a.Config.URL, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: feedDescription(p),
			PubDate:     rssDate(p.Date),
			GUID:        link,
		})
	}
	return rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        a.Config.URL,
			Description: a.Config.Description,
			Items:       items,
		},
	}
}

// feedDescription prefers the explicit description and falls back to the
// subtitle, matching what the post pages show.
func feedDescription(p posts.Post) string {
	if p.Description != "" {
		return p.Description
	}
	return p.Subtitle
}

// rssDate converts a post's YYYY-MM-DD date to RFC 1123. Unparseable dates
// produce an empty pubDate rather than a broken feed.
func rssDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

func writeXML(c echo.Context, contentType string, doc any) error {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, append([]byte(xml.Header), body...))
}
