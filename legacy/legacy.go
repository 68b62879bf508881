// Package legacy scrapes the old WordPress site into posts. The pipeline is
// strictly linear: discover links, extract each page, localize images and
// load the result. A page that fails at any stage is logged and skipped; the
// batch always runs to completion.
package legacy

import (
	"time"

	"github.com/eringen/eventsite/content"
)

// ScrapedPost is one extracted legacy page. It lives only in pipeline memory
// and in JSON snapshots between stages.
type ScrapedPost struct {
	URL        string         `json:"url"`
	Title      string         `json:"title"`
	Date       string         `json:"date"`
	Location   string         `json:"location"`
	Blocks     content.Blocks `json:"blocks"`
	Images     []string       `json:"images"`
	CoverImage *string        `json:"coverImage"`
}

// Config holds the pipeline settings.
type Config struct {
	// Seeds are the index pages link discovery starts from.
	Seeds []string
	// CitySlugs are the first path segments that mark an event page.
	CitySlugs []string
	// Denylist holds path segments of non-content pages.
	Denylist []string
	// Delay is the pause between two requests to the source server.
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
	// OutputDir receives the JSON snapshots.
	OutputDir string
	// MediaDir receives localized images, served under MediaURLPrefix.
	MediaDir       string
	MediaURLPrefix string
}

// DefaultConfig returns the settings used against the association's old site.
func DefaultConfig() Config {
	return Config{
		CitySlugs: []string{
			"berlin", "duesseldorf", "frankfurt", "hamburg", "koeln",
			"muenchen", "stuttgart", "nuernberg", "leipzig", "hannover",
		},
		Denylist: []string{
			"impressum", "datenschutz", "kontakt", "agb", "en", "fr",
			"category", "tag", "author", "page", "feed", "wp-admin",
			"wp-content", "wp-json", "comment-page-1", "login",
		},
		Delay:          time.Second,
		Timeout:        30 * time.Second,
		UserAgent:      "eventsite-legacy-import/1.0",
		OutputDir:      "data/legacy",
		MediaDir:       "public/uploads/legacy",
		MediaURLPrefix: "/public/uploads/legacy",
	}
}

// Snapshot file names written between stages.
const (
	LinksFile          = "links.json"
	PostsFile          = "posts.json"
	LocalizedPostsFile = "posts_localized.json"
)
