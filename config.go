package eventsite

import (
	"time"

	"go.uber.org/zap"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "Eventsite")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Language    string // Default language, "de" or "en" (default "de")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/eventsite.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL  time.Duration // Post cache TTL (default 5min)
	MaxImageWidth int           // Uploaded images are downscaled to this width (default 1600)
	MaxUploadSize int64         // Upload limit in bytes (default 50MB)

	StatsDatabasePath  string // Page view database (default "data/stats.db")
	StatsRetentionDays int    // Page views older than this are deleted (default 365)

	// UploadBackend selects where uploads are stored: "disk" (default) or "s3".
	UploadBackend string
	S3            S3Config
}

// S3Config configures the S3 upload backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible storage, optional
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
	PathStyle bool
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Eventsite"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Language != "en" {
		c.Language = "de"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/eventsite.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 50 << 20
	}
	if c.StatsDatabasePath == "" {
		c.StatsDatabasePath = "data/stats.db"
	}
	if c.StatsRetentionDays == 0 {
		c.StatsRetentionDays = 365
	}
	if c.UploadBackend == "" {
		c.UploadBackend = "disk"
	}
	if c.S3.Region == "" {
		c.S3.Region = "eu-central-1"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger used for requests, errors and background jobs.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithBlobStore overrides the upload backend chosen by UploadBackend.
func WithBlobStore(b BlobStore) Option {
	return func(a *App) {
		a.blobs = b
	}
}
