package legacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/content"
)

// memSink is an in-memory Sink that records the order of operations.
type memSink struct {
	posts   map[string]eventsite.Post
	ops     []string
	titles  []string
	failFor string
}

func newMemSink(existing ...eventsite.Post) *memSink {
	s := &memSink{posts: make(map[string]eventsite.Post)}
	for _, p := range existing {
		s.posts[p.Slug] = p
	}
	return s
}

func (s *memSink) DeleteLegacyPosts(ctx context.Context) (int64, error) {
	s.ops = append(s.ops, "delete-legacy")
	var n int64
	for slug, p := range s.posts {
		if p.IsLegacy {
			delete(s.posts, slug)
			n++
		}
	}
	return n, nil
}

func (s *memSink) DeletePostsByTitle(ctx context.Context, titles []string) (int64, error) {
	s.ops = append(s.ops, "delete-titles")
	s.titles = titles
	set := make(map[string]bool)
	for _, t := range titles {
		set[t] = true
	}
	var n int64
	for slug, p := range s.posts {
		if set[p.Title] {
			delete(s.posts, slug)
			n++
		}
	}
	return n, nil
}

func (s *memSink) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, ok := s.posts[slug]
	return ok, nil
}

func (s *memSink) InsertPost(ctx context.Context, p eventsite.Post) error {
	if p.Title == s.failFor {
		return errors.New("constraint failed")
	}
	s.ops = append(s.ops, "insert")
	s.posts[p.Slug] = p
	return nil
}

func TestLoad(t *testing.T) {
	sink := newMemSink(
		eventsite.Post{Slug: "alt-import", Title: "Alter Import", IsLegacy: true},
		eventsite.Post{Slug: "sommerfest-manuell", Title: "Sommerfest"},
		eventsite.Post{Slug: "gala", Title: "Andere Gala"},
	)
	scraped := []ScrapedPost{
		{
			URL:        "https://old.example.de/koeln/sommerfest/",
			Title:      "Sommerfest",
			Date:       "23. Februar 2021",
			Location:   "Köln",
			Blocks:     content.Blocks{content.Text{BlockID: "t1", Body: "Hallo"}, content.Image{BlockID: "i1", URL: "/a.jpg"}},
			CoverImage: strptr("/a.jpg"),
		},
		{URL: "https://old.example.de/berlin/gala/", Title: "Gala", Date: "18.09.2025"},
		{URL: "https://old.example.de/berlin/gala-2/", Title: "Gala", Date: "kaputt"},
	}

	l := NewLoader(sink, nil)
	l.now = func() time.Time { return time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC) }
	n, err := l.Load(context.Background(), scraped)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, []string{"delete-legacy", "delete-titles", "insert", "insert", "insert"}, sink.ops)
	assert.Equal(t, []string{"Sommerfest", "Gala", "Gala"}, sink.titles)

	_, ok := sink.posts["alt-import"]
	assert.False(t, ok, "legacy post deleted")
	_, ok = sink.posts["sommerfest-manuell"]
	assert.False(t, ok, "title collision deleted")

	p := sink.posts["sommerfest"]
	assert.Equal(t, "Köln", p.Location)
	assert.Equal(t, "2021-02-23", p.EventDate)
	assert.Equal(t, "/a.jpg", p.CoverImage)
	assert.True(t, p.IsLegacy)
	assert.True(t, p.Published)
	assert.Equal(t, "/events/sommerfest/", p.Link)
	require.Len(t, p.Blocks, 2)
	assert.NotEqual(t, "t1", p.Blocks[0].ID())
	assert.NotEqual(t, "i1", p.Blocks[1].ID())
	assert.Equal(t, "Hallo", content.ContentOf(p.Blocks[0]))

	// "gala" is taken by a non-legacy post with another title
	assert.Equal(t, "2025-09-18", sink.posts["gala-2"].EventDate)
	assert.Equal(t, "2024-05-17", sink.posts["gala-3"].EventDate)
	assert.Equal(t, "Andere Gala", sink.posts["gala"].Title)
}

func TestLoadSkipsFailedInsert(t *testing.T) {
	sink := newMemSink()
	sink.failFor = "Kaputt"
	n, err := NewLoader(sink, nil).Load(context.Background(), []ScrapedPost{
		{Title: "Kaputt"},
		{Title: "Heil"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok := sink.posts["heil"]
	assert.True(t, ok)
}

func TestLoadEmptyTitleGetsFallbackSlug(t *testing.T) {
	sink := newMemSink()
	_, err := NewLoader(sink, nil).Load(context.Background(), []ScrapedPost{{Title: ""}, {Title: "!!!"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"!!!"}, sink.titles)
	assert.Contains(t, sink.posts, "event")
	assert.Contains(t, sink.posts, "event-2")
}
