package eventsite

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eringen/eventsite/content"
)

// Post is a news or event entry. Its body is an ordered block document that
// is always replaced as a whole.
type Post struct {
	Slug       string
	Title      string
	Location   string
	EventDate  string // YYYY-MM-DD
	CoverImage string // empty when the post has no designated cover
	Blocks     []content.Block
	IsLegacy   bool // imported from the old site
	Published  bool
	Link       string
	CreatedAt  string
}

// Cover returns the designated cover image, falling back to the first
// populated image block.
func (p Post) Cover() string {
	if p.CoverImage != "" {
		return p.CoverImage
	}
	for _, b := range p.Blocks {
		if img, ok := b.(content.Image); ok && img.URL != "" {
			return img.URL
		}
	}
	return ""
}

// Excerpt returns up to n runes of the first text block as plain text.
func (p Post) Excerpt(n int) string {
	for _, b := range p.Blocks {
		t, ok := b.(content.Text)
		if !ok {
			continue
		}
		s := strings.Join(strings.Fields(t.Body), " ")
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		r := []rune(s)[:n]
		if i := strings.LastIndex(string(r), " "); i > 0 {
			return string(r)[:i] + " …"
		}
		return string(r) + "…"
	}
	return ""
}

// IsUpcoming reports whether the event takes place on or after the day of
// now. Posts without a parseable date count as past.
func (p Post) IsUpcoming(now time.Time) bool {
	d, err := time.Parse(time.DateOnly, p.EventDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(today)
}

// EventList is the listing shown on the events page.
type EventList struct {
	Upcoming  []Post
	Past      []Post
	Location  string   // active location filter, empty for all
	Locations []string // every location with a published post
}

// MediaFile is an uploaded file in the media library.
type MediaFile struct {
	Key          string
	URL          string
	OriginalName string
	ContentType  string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// IsImage reports whether the file is an image.
func (m MediaFile) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}

// Page carries request-scoped values every public view needs.
type Page struct {
	Lang     string // "de" or "en"
	SiteName string
	SiteURL  string
	Path     string
}

// EditorState is what the block editor partial renders.
type EditorState struct {
	Blocks []content.Block
	Notice string // shown above the editor, e.g. after a failed upload
}
