// Package stats counts public page views on the server side. No script runs
// in the browser and no cookie is set; a visitor is identified only by a
// salted hash of address and user agent that changes every day.
package stats

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// View is one recorded page view.
type View struct {
	Path      string
	VisitorID string
	Device    string
	Referrer  string
	Lang      string
	Timestamp time.Time
}

// PathCount is the view count of one path.
type PathCount struct {
	Path     string
	Views    int
	Visitors int
}

// NameCount is a count per referrer, device or bot name.
type NameCount struct {
	Name  string
	Count int
}

// DayCount is the number of views on one day (YYYY-MM-DD).
type DayCount struct {
	Date  string
	Views int
}

// Summary aggregates views since a point in time.
type Summary struct {
	Since     string
	Views     int
	Visitors  int
	BotViews  int
	TopPaths  []PathCount
	Referrers []NameCount
	Devices   []NameCount
	Daily     []DayCount
}

// Hasher derives anonymous visitor ids.
type Hasher struct {
	salt string
}

func NewHasher(salt string) Hasher {
	return Hasher{salt: salt}
}

// VisitorID hashes ip and user agent together with the salt and the day,
// so the same person gets a new id every day.
func (h Hasher) VisitorID(ip, userAgent string, day time.Time) string {
	sum := sha256.Sum256([]byte(h.salt + "|" + day.UTC().Format(time.DateOnly) + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"yandex", "baidu", "facebookexternalhit", "headless",
	"curl/", "wget/", "python-requests", "go-http-client",
}

// IsBot reports whether the user agent looks like a crawler or script.
// An empty user agent counts as a bot.
func IsBot(ua string) bool {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return true
	}
	for _, m := range botMarkers {
		if strings.Contains(ua, m) {
			return true
		}
	}
	return false
}

// Device classifies a user agent as Desktop, Mobile or Tablet.
// iPads also send "mobile", so tablets are checked first.
func Device(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "Tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		return "Mobile"
	default:
		return "Desktop"
	}
}

var searchEngines = map[string]string{
	"google.":     "Google",
	"bing.":       "Bing",
	"duckduckgo.": "DuckDuckGo",
	"ecosia.":     "Ecosia",
	"qwant.":      "Qwant",
	"yahoo.":      "Yahoo",
}

// Referrer reduces a Referer header to a source name: "Direct" when empty,
// "Internal" for the site's own host, the engine name for known search
// engines and the bare host otherwise.
func Referrer(ref, ownHost string) string {
	if ref == "" {
		return "Direct"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return "Other"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if ownHost != "" && host == strings.TrimPrefix(strings.ToLower(ownHost), "www.") {
		return "Internal"
	}
	for marker, name := range searchEngines {
		if strings.Contains(host, marker) {
			return name
		}
	}
	return host
}
