package legacy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/content"
)

// Sink is the persistence the loader writes to. *eventsite.Store implements it.
type Sink interface {
	DeleteLegacyPosts(ctx context.Context) (int64, error)
	DeletePostsByTitle(ctx context.Context, titles []string) (int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	InsertPost(ctx context.Context, p eventsite.Post) error
}

// Loader replaces previously imported legacy posts with a fresh batch.
type Loader struct {
	sink Sink
	log  *zap.Logger
	now  func() time.Time
}

// NewLoader returns a loader writing to sink.
func NewLoader(sink Sink, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{sink: sink, log: log, now: time.Now}
}

// Load deletes every legacy post and every post whose title matches an
// incoming title, then inserts posts as published legacy posts with fresh
// block ids and unique slugs. A failed insert is logged and skipped. It
// returns the number of inserted posts.
func (l *Loader) Load(ctx context.Context, posts []ScrapedPost) (int, error) {
	n, err := l.sink.DeleteLegacyPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete legacy posts: %w", err)
	}
	l.log.Info("deleted legacy posts", zap.Int64("count", n))

	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.Title != "" {
			titles = append(titles, p.Title)
		}
	}
	n, err = l.sink.DeletePostsByTitle(ctx, titles)
	if err != nil {
		return 0, fmt.Errorf("delete colliding posts: %w", err)
	}
	l.log.Info("deleted posts with colliding titles", zap.Int64("count", n))

	now := l.now()
	used := make(map[string]bool)
	inserted := 0
	for _, sp := range posts {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		slug, err := l.uniqueSlug(ctx, sp.Title, used)
		if err != nil {
			l.log.Warn("skipping post: slug lookup failed", zap.String("url", sp.URL), zap.Error(err))
			continue
		}
		post := ToPost(sp, slug, now)
		if err := l.sink.InsertPost(ctx, post); err != nil {
			l.log.Warn("skipping post: insert failed", zap.String("url", sp.URL), zap.String("slug", slug), zap.Error(err))
			continue
		}
		used[slug] = true
		inserted++
	}
	l.log.Info("load finished", zap.Int("inserted", inserted), zap.Int("total", len(posts)))
	return inserted, nil
}

// ToPost converts a scraped page into a published legacy post. Every block
// gets a new id; the raw date is normalized against now.
func ToPost(sp ScrapedPost, slug string, now time.Time) eventsite.Post {
	blocks := make([]content.Block, len(sp.Blocks))
	for i, b := range sp.Blocks {
		blocks[i] = content.WithID(b, content.NewID())
	}
	cover := ""
	if sp.CoverImage != nil {
		cover = *sp.CoverImage
	}
	return eventsite.Post{
		Slug:       slug,
		Title:      sp.Title,
		Location:   sp.Location,
		EventDate:  ParseDate(sp.Date, now).Format(time.DateOnly),
		CoverImage: cover,
		Blocks:     blocks,
		IsLegacy:   true,
		Published:  true,
		Link:       "/events/" + slug + "/",
	}
}

func (l *Loader) uniqueSlug(ctx context.Context, title string, used map[string]bool) (string, error) {
	base := eventsite.Slugify(title)
	if base == "" {
		base = "event"
	}
	for i := 1; ; i++ {
		slug := base
		if i > 1 {
			slug = base + "-" + strconv.Itoa(i)
		}
		if used[slug] {
			continue
		}
		exists, err := l.sink.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
}
