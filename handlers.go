package folio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// handleHome lists published posts. Listing never counts as a view.
func (a *App) handleHome(c echo.Context) error {
	published, err := a.Posts.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(published, a.Config.URL))
}

// handlePost renders one post and records the view. Drafts and unknown
// slugs are indistinguishable from the outside: both get the 404 page.
func (a *App) handlePost(c echo.Context) error {
	post, err := a.Posts.Get(c.Param("slug"), true)
	if err != nil {
		return err
	}
	if post == nil {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	published, err := a.Posts.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(*post, FilterRelatedPosts(*post, published), a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	published, err := a.Posts.List()
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", a.buildSitemap(published))
}

func (a *App) handleFeed(c echo.Context) error {
	published, err := a.Posts.List()
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.buildRSS(published))
}

// The blog index and the home page are the same listing.
func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n\n")
	b.WriteString("Sitemap: " + a.Config.URL + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

// httpErrorHandler routes 404s and server errors through the user's error
// pages. Everything else falls back to Echo's default handling.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound())
	case code >= 500:
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
