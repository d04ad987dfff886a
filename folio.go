// Package folio is a personal blog and portfolio engine built with Go,
// Echo, and templ. Posts are markdown files with YAML front-matter; view
// counts and settings live in SQLite; a password-gated admin dashboard
// manages counters, uploads, and the chat maintenance flag; and a thin
// chat widget proxies messages to an external conversational-agent API.
//
// Users provide their own templ components via the ViewFuncs struct, and
// folio handles the handler logic, middleware, and storage.
package folio

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/vmarins/folio/chat"
	"github.com/vmarins/folio/metadata"
	"github.com/vmarins/folio/posts"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home           func(posts []posts.Post, siteURL string) templ.Component
	Post           func(post posts.Post, related []posts.Post, siteURL string) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []posts.Post, maintenance bool, message string, csrfToken string) templ.Component
	AdminImages    func(images []metadata.Image, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central folio application. It wires together the metadata
// store, post pipeline, chat client, handlers, middleware, and
// user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Meta   *metadata.Store
	Posts  *posts.Pipeline
	Chat   *chat.Client
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the store, pipeline, middleware, and routes, and
// starts the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	meta, err := metadata.NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("folio: init metadata store: %w", err)
	}
	a.Meta = meta

	a.Posts = posts.NewPipeline(a.Config.PostsDir, meta)

	if a.Config.ChatAPIBase != "" {
		a.Chat = chat.NewClient(a.Config.ChatAPIBase, a.Config.ChatAPIKey, a.Config.ChatAgentID)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Serve the embedded chat widget script under /public/, falling through
	// to the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/chat.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	// Chat API
	e.GET("/api/chat/agent", a.handleChatAgent)
	e.POST("/api/chat", a.handleChatMessage)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/views/:slug/", a.handleAdminSetViews)
	e.POST("/admin/maintenance/", a.handleAdminMaintenance)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Meta != nil {
		return a.Meta.Close()
	}
	return nil
}
