package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vmarins/folio/metadata"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

// handleAdminPost previews a single post (drafts included) for the dashboard.
func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	post, err := a.Posts.GetAny(slug)
	if err != nil {
		return err
	}
	if post == nil {
		return c.NoContent(http.StatusNotFound)
	}
	return Render(c, a.Views.Post(*post, nil, a.Config.URL))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSetViews overwrites the view counter for a post. Negative
// values are rejected.
func (a *App) handleAdminSetViews(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	views, err := strconv.Atoi(c.FormValue("views"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=View+count+must+be+a+number.")
	}
	if err := a.Meta.SetViews(slug, views); err != nil {
		if errors.Is(err, metadata.ErrNegativeViews) {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg=View+count+must+be+non-negative.")
		}
		return err
	}
	return a.renderAdminDashboard(c, "saved")
}

// handleAdminMaintenance toggles the chat maintenance flag.
func (a *App) handleAdminMaintenance(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	enabled := c.FormValue("enabled") == "true"
	if err := a.Meta.SetChatMaintenance(enabled); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "maintenance updated")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	all, err := a.Posts.ListAll()
	if err != nil {
		return err
	}
	maintenance, err := a.Meta.ChatMaintenance()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(all, maintenance, msg, CsrfToken(c)))
}
