package eventsite

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published posts and their locations
// with TTL.
type PostCache struct {
	mu        sync.RWMutex
	posts     []Post
	locations []string
	fetched   time.Time
	ttl       time.Duration
	store     *Store
	now       func() time.Time
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, now: time.Now}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.locations = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return err
	}
	locations, err := c.store.ListLocations()
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []Post{}
	}
	c.posts = posts
	c.locations = locations
	c.fetched = c.now()
	return nil
}

// ensureLoaded returns cached posts and locations after ensuring the cache
// is fresh. It tries a read lock first; only takes a write lock if a reload
// is needed.
func (c *PostCache) ensureLoaded() ([]Post, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, locations := c.posts, c.locations
		c.mu.RUnlock()
		return posts, locations, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.locations, nil
}

// ListPosts returns published posts, optionally filtered by location.
func (c *PostCache) ListPosts(location string) ([]Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if location == "" {
		return posts, nil
	}
	normalized := normalizeLocation(location)
	var filtered []Post
	for _, p := range posts {
		if normalizeLocation(p.Location) == normalized {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ListLocations returns all distinct locations of published posts.
func (c *PostCache) ListLocations() ([]string, error) {
	_, locations, err := c.ensureLoaded()
	return locations, err
}

// Events splits the published posts for location into upcoming events,
// soonest first, and past events, most recent first.
func (c *PostCache) Events(location string) (EventList, error) {
	posts, err := c.ListPosts(location)
	if err != nil {
		return EventList{}, err
	}
	locations, err := c.ListLocations()
	if err != nil {
		return EventList{}, err
	}
	list := SplitEvents(posts, c.now())
	list.Location = location
	list.Locations = locations
	return list, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// SplitEvents partitions posts, which must be sorted newest event first,
// into upcoming (reversed to soonest first) and past.
func SplitEvents(posts []Post, now time.Time) EventList {
	var list EventList
	for _, p := range posts {
		if p.IsUpcoming(now) {
			list.Upcoming = append(list.Upcoming, p)
		} else {
			list.Past = append(list.Past, p)
		}
	}
	for i, j := 0, len(list.Upcoming)-1; i < j; i, j = i+1, j-1 {
		list.Upcoming[i], list.Upcoming[j] = list.Upcoming[j], list.Upcoming[i]
	}
	return list
}

func normalizeLocation(l string) string {
	return strings.ToLower(strings.TrimSpace(l))
}
