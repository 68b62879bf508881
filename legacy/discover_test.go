package legacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedPage = `<html><body>
<nav><a href="/impressum/">Impressum</a><a href="/duesseldorf/">Düsseldorf</a></nav>
<a href="/duesseldorf/sommerfest-2021/">Sommerfest</a>
<a href="/duesseldorf/sommerfest-2021/">Sommerfest (nochmal)</a>
<a href="https://example.de/koeln/neujahrsempfang/#kommentare">Neujahrsempfang</a>
<a href="/en/duesseldorf/summer-party/">English</a>
<a href="/koeln/category/news/">Kategorie</a>
<a href="/berlin/gala/?lang=en">Gala EN</a>
<a href="https://other.example.com/koeln/fremd/">Fremd</a>
<a href="mailto:info@example.de">Mail</a>
<a href="#top">Nach oben</a>
<a href="/hamburg/">Hamburg</a>
</body></html>`

func discoverConfig(seeds ...string) Config {
	cfg := DefaultConfig()
	cfg.Seeds = seeds
	return cfg
}

func TestDiscover(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://example.de/veranstaltungen/": seedPage,
	})
	links, err := Discover(context.Background(), f, discoverConfig("https://example.de/veranstaltungen/"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.de/duesseldorf/sommerfest-2021/",
		"https://example.de/koeln/neujahrsempfang/",
	}, links)
}

func TestDiscoverDeduplicatesAcrossSeeds(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://example.de/a/": `<a href="/berlin/gala/">Gala</a>`,
		"https://example.de/b/": `<a href="https://example.de/berlin/gala/">Gala</a><a href="/hamburg/hafenfest/">Hafen</a>`,
	})
	links, err := Discover(context.Background(), f, discoverConfig("https://example.de/a/", "https://example.de/b/"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.de/berlin/gala/",
		"https://example.de/hamburg/hafenfest/",
	}, links)
}

func TestDiscoverSkipsFailedSeed(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"https://example.de/b/": `<a href="/berlin/gala/">Gala</a>`,
	})
	links, err := Discover(context.Background(), f, discoverConfig("https://example.de/a/", "https://example.de/b/"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.de/berlin/gala/"}, links)
	assert.Equal(t, 2, f.callCount())
}

func TestDiscoverAllSeedsFailed(t *testing.T) {
	f := newFakeFetcher(nil)
	_, err := Discover(context.Background(), f, discoverConfig("https://example.de/a/"), nil)
	assert.Error(t, err)
}
