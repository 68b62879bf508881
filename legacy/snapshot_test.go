package legacy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/eventsite/content"
)

func TestSnapshotPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", PostsFile)
	posts := []ScrapedPost{
		{
			URL:        "https://old.example.de/koeln/sommerfest/",
			Title:      "Sommerfest",
			Date:       "23. Februar 2021",
			Location:   "Köln",
			Blocks:     content.Blocks{content.Headline{BlockID: "h", Text: "Programm", Level: 2}, content.Image{BlockID: "i", URL: "/a.jpg"}},
			Images:     []string{"/a.jpg"},
			CoverImage: strptr("/a.jpg"),
		},
		{URL: "https://old.example.de/berlin/gala/", Title: "Gala", Blocks: content.Blocks{}},
	}
	require.NoError(t, WriteSnapshot(path, posts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"coverImage": null`))
	assert.True(t, strings.Contains(string(raw), `"type": "headline"`))

	got, err := ReadSnapshot[[]ScrapedPost](path)
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestSnapshotLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), LinksFile)
	links := []string{"https://example.de/berlin/gala/", "https://example.de/koeln/sommerfest/"}
	require.NoError(t, WriteSnapshot(path, links))
	got, err := ReadSnapshot[[]string](path)
	require.NoError(t, err)
	assert.Equal(t, links, got)
}

func TestReadSnapshotMissing(t *testing.T) {
	_, err := ReadSnapshot[[]string](filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
