// Package eventsite is the web application of the association's bilingual
// marketing and events site: public event listings, an RSS feed and
// sitemap, and a password-gated admin with a block editor and media library.
//
// Page templates are supplied through ViewFuncs; eventsite owns the
// handlers, middleware, persistence and background jobs.
package eventsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eringen/eventsite/stats"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home           func(p Page, upcoming []Post) templ.Component
	Events         func(p Page, list EventList) templ.Component
	EventsPartial  func(p Page, list EventList) templ.Component
	Event          func(p Page, post Post, related []Post) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []Post, message string, csrfToken string) templ.Component
	AdminEdit      func(post Post, csrfToken string) templ.Component
	AdminEditor    func(state EditorState, csrfToken string) templ.Component
	AdminMedia     func(files []MediaFile, csrfToken string) templ.Component
	AdminStats     func(summary stats.Summary, days int, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the store, cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Media  *MediaStore
	Views  ViewFuncs
	Stats  *stats.Store

	log          *zap.Logger
	blobs        BlobStore
	tracker      *stats.Tracker
	loginLimiter *LoginLimiter
	cron         *cron.Cron
	customRoutes []func(*App)
	staticDir    string
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		log:       zap.NewNop(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the store and registers middleware, routes and background
// jobs. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Setup() error {
	if a.Config.AdminPassword == "" {
		return errors.New("eventsite: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("eventsite: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("eventsite: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.blobs == nil {
		blobs, err := a.newBlobStore()
		if err != nil {
			return fmt.Errorf("eventsite: init uploads: %w", err)
		}
		a.blobs = blobs
	}
	a.Media = NewMediaStore(a.Store, a.blobs, a.Config.MaxImageWidth, a.log)
	a.Media.maxSize = a.Config.MaxUploadSize

	if err := a.setupStats(); err != nil {
		return err
	}

	a.cron = cron.New()
	// Upcoming and past listings depend on today's date.
	if _, err := a.cron.AddFunc("@midnight", func() {
		a.Cache.Invalidate()
		a.log.Info("post cache rolled over")
	}); err != nil {
		return fmt.Errorf("eventsite: schedule cache rollover: %w", err)
	}
	if _, err := a.cron.AddFunc("30 3 * * *", a.cleanupStats); err != nil {
		return fmt.Errorf("eventsite: schedule stats cleanup: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.cron.Start()
	a.log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("uploads", a.Config.UploadBackend))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) newBlobStore() (BlobStore, error) {
	switch a.Config.UploadBackend {
	case "disk":
		return NewDiskStore(a.staticDir+"/"+uploadsSubdir, "/public/"+uploadsSubdir), nil
	case "s3":
		return NewS3Store(a.Config.S3)
	}
	return nil, fmt.Errorf("unknown upload backend %q", a.Config.UploadBackend)
}

func (a *App) setupStats() error {
	st, err := stats.NewStore(a.Config.StatsDatabasePath)
	if err != nil {
		return fmt.Errorf("eventsite: init stats: %w", err)
	}
	a.Stats = st
	salt, err := st.Salt(context.Background())
	if err != nil {
		return fmt.Errorf("eventsite: init stats: %w", err)
	}
	var host string
	if u, err := url.Parse(a.Config.URL); err == nil {
		host = u.Hostname()
	}
	a.tracker = stats.NewTracker(st, stats.NewHasher(salt), host, Language, a.log)
	return nil
}

func (a *App) cleanupStats() {
	cutoff := time.Now().AddDate(0, 0, -a.Config.StatsRetentionDays)
	n, err := a.Stats.Cleanup(context.Background(), cutoff)
	if err != nil {
		a.log.Error("stats cleanup", zap.Error(err))
		return
	}
	a.log.Info("stats cleanup", zap.Int64("deleted", n))
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	track := a.tracker.Middleware()
	e.GET("/", a.handleHome, track)
	e.GET("/events/", a.handleEvents, track)
	e.GET("/events/:slug/", a.handleEvent, track)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	admin := e.Group("/admin", a.requireAdmin)
	admin.GET("/new/", a.handleAdminNew)
	admin.GET("/post/:slug/", a.handleAdminPost)
	admin.POST("/save/", a.handleAdminSave)
	admin.DELETE("/post/:slug/", a.handleAdminDelete)
	admin.POST("/editor/:op/", a.handleEditorOp)
	admin.GET("/media/", a.handleMediaList)
	admin.POST("/media/upload/", a.handleMediaUpload)
	admin.DELETE("/media/:key/", a.handleMediaDelete)
	admin.GET("/stats/", a.handleAdminStats)
}

// Close stops background jobs and closes the store.
func (a *App) Close() error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Stats != nil {
		if err := a.Stats.Close(); err != nil {
			return err
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return err
		}
	}
	_ = a.log.Sync()
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}
