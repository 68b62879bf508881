package legacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventPage(title, body string) string {
	return `<html><head><title>` + title + ` | Verein</title></head><body>
<h1 class="entry-title">` + title + `</h1>
<div class="entry-content">` + body + `</div></body></html>`
}

func TestScrapeDeduplicatesTitles(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://example.de/koeln/sommerfest/":   eventPage("Sommerfest", `<p>Erste Fassung des Sommerfests.</p>`),
		"https://example.de/koeln/sommerfest-2/": eventPage("Sommerfest", `<p>Zweite Fassung des Sommerfests.</p>`),
	})
	posts, err := NewScraper(f, nil, nil).Scrape(context.Background(), []string{
		"https://example.de/koeln/sommerfest/",
		"https://example.de/koeln/sommerfest-2/",
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://example.de/koeln/sommerfest/", posts[0].URL)
	assert.Equal(t, "Köln", posts[0].Location)
}

func TestScrapeSkipsFailures(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://example.de/berlin/leer/": `<html><body></body></html>`,
		"https://example.de/berlin/gala/": eventPage("Gala", `<p>Die Gala findet im Rathaus statt.</p>`),
	})
	posts, err := NewScraper(f, nil, nil).Scrape(context.Background(), []string{
		"https://example.de/berlin/kaputt/",
		"https://example.de/berlin/leer/",
		"https://example.de/berlin/gala/",
	})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Gala", posts[0].Title)
	assert.Equal(t, 3, f.callCount())
}

func TestScrapeStopsOnCancel(t *testing.T) {
	f := newFakeFetcher(map[string]string{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScraper(f, nil, nil).Scrape(ctx, []string{"https://example.de/berlin/gala/"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.callCount())
}
