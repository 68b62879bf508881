package legacy

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/eventsite/content"
)

func TestExtractTitleChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"structured heading",
			`<title>Seite | Verein</title><h2>Vorher</h2><h1 class="entry-title">Sommerfest 2021</h1>`,
			"Sommerfest 2021",
		},
		{
			"first generic heading",
			`<title>Seite | Verein</title><h2>Neujahrsempfang</h2><h1>Später</h1>`,
			"Neujahrsempfang",
		},
		{
			"title prefix with en dash",
			`<title>Gala-Abend – Verein</title><p>Kein Heading</p>`,
			"Gala-Abend",
		},
		{
			"title prefix with pipe",
			`<title>Jahresversammlung | Verein - Start</title>`,
			"Jahresversammlung",
		},
		{"nothing", `<p>leer</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingTitle(parseDoc(t, tt.html)))
		})
	}
}

func TestExtractDateChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"datetime attribute",
			`<time class="entry-date" datetime="2021-02-23T10:00:00+00:00">23. Februar 2021</time><p>18.09.2025</p>`,
			"2021-02-23T10:00:00+00:00",
		},
		{
			"structured element text",
			`<span class="post-date">30. September 2021</span>`,
			"30. September 2021",
		},
		{
			"german long form in body",
			`<p>Am 5. März 2022 findet unser Empfang statt. Anmeldung bis 01.03.2022.</p>`,
			"5. März 2022",
		},
		{
			"numeric in body",
			`<p>Termin: 18.09.2025, 18 Uhr</p>`,
			"18.09.2025",
		},
		{"none", `<p>Bald</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDate(parseDoc(t, tt.html)))
		})
	}
}

func TestLocationName(t *testing.T) {
	tests := map[string]string{
		"duesseldorf": "Düsseldorf",
		"koeln":       "Köln",
		"muenchen":    "München",
		"berlin":      "Berlin",
		"bad-homburg": "Bad Homburg",
		"":            "",
	}
	for slug, want := range tests {
		assert.Equal(t, want, LocationName(slug), slug)
	}
	assert.Equal(t, "Düsseldorf", LocationFromURL(mustURL(t, pageURL)))
	assert.Equal(t, "", LocationFromURL(mustURL(t, "https://example.de/")))
}

func TestStrategyCascade(t *testing.T) {
	t.Run("page builder wins over article", func(t *testing.T) {
		doc := parseDoc(t, `<article>
			<div class="elementor-widget-text-editor"><p>Inhalt aus dem Page Builder.</p></div>
			<p>Text außerhalb der Widgets.</p>
		</article>`)
		post := NewExtractor().Extract(doc, pageURL)
		assert.Equal(t, []content.Block{content.Text{Body: "Inhalt aus dem Page Builder."}}, withoutIDs(post.Blocks))
	})

	t.Run("article selectors", func(t *testing.T) {
		doc := parseDoc(t, `<div class="entry-content"><p>Inhalt aus dem Artikel.</p>
			<div class="sharedaddy"><p>Teilen auf allen Kanälen</p></div></div>
			<p>Außerhalb des Artikels stehender Text.</p>`)
		post := NewExtractor().Extract(doc, pageURL)
		assert.Equal(t, []content.Block{content.Text{Body: "Inhalt aus dem Artikel."}}, withoutIDs(post.Blocks))
	})

	t.Run("body scan excludes chrome", func(t *testing.T) {
		doc := parseDoc(t, `<body>
			<header><p>Navigation und Startseite</p></header>
			<div class="sidebar"><p>Letzte Beiträge im Blog</p></div>
			<main><p>Der eigentliche Inhalt der Seite.</p></main>
			<footer><p>Impressum und Datenschutz</p></footer>
		</body>`)
		post := NewExtractor().Extract(doc, pageURL)
		assert.Equal(t, []content.Block{content.Text{Body: "Der eigentliche Inhalt der Seite."}}, withoutIDs(post.Blocks))
	})

	t.Run("no content", func(t *testing.T) {
		post := NewExtractor().Extract(parseDoc(t, `<body><footer><p>Nur ein Footer hier.</p></footer></body>`), pageURL)
		assert.Empty(t, post.Blocks)
		assert.Nil(t, post.CoverImage)
	})
}

func TestExtractImagesAndCover(t *testing.T) {
	doc := parseDoc(t, `<h1 class="entry-title">Sommerfest</h1>
		<time datetime="2021-07-01">1. Juli 2021</time>
		<div class="entry-content">
			<img src="/a.jpg"><p>Ein schöner Abend im Garten.</p>
			<img src="/b.jpg"><img src="/a.jpg">
		</div>`)
	post := NewExtractor().Extract(doc, pageURL)

	assert.Equal(t, pageURL, post.URL)
	assert.Equal(t, "Sommerfest", post.Title)
	assert.Equal(t, "2021-07-01", post.Date)
	assert.Equal(t, "Düsseldorf", post.Location)
	assert.Equal(t, []string{"https://example.de/a.jpg", "https://example.de/b.jpg"}, post.Images)
	require.NotNil(t, post.CoverImage)
	assert.Equal(t, "https://example.de/a.jpg", *post.CoverImage)
	assert.Len(t, post.Blocks, 4)
}

func TestExtractCoverPolicyIsReplaceable(t *testing.T) {
	doc := parseDoc(t, `<div class="entry-content"><img src="/a.jpg"><img src="/b.jpg"></div>`)
	last := func(blocks []content.Block) *string {
		var u *string
		for _, b := range blocks {
			if img, ok := b.(content.Image); ok {
				s := img.URL
				u = &s
			}
		}
		return u
	}
	post := (&Extractor{Strategies: DefaultStrategies, Cover: last}).Extract(doc, pageURL)
	require.NotNil(t, post.CoverImage)
	assert.Equal(t, "https://example.de/b.jpg", *post.CoverImage)
}

func TestExtractTitlePolicyIsReplaceable(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Sommerfest | Verein</title></head><body><h1>Willkommen</h1></body></html>`)
	fromTitleTag := func(doc *goquery.Document) string {
		return strings.TrimSpace(strings.Split(doc.Find("title").Text(), "|")[0])
	}

	assert.Equal(t, "Willkommen", NewExtractor().Extract(doc, pageURL).Title)
	post := (&Extractor{Strategies: DefaultStrategies, Title: fromTitleTag}).Extract(doc, pageURL)
	assert.Equal(t, "Sommerfest", post.Title)
}

func TestExtractDoesNotRepeatTitle(t *testing.T) {
	pages := map[string]string{
		"article": `<article><h1 class="entry-title">Echter Titel</h1>
			<h2>Programm</h2><p>Einlass ab 18 Uhr im Saal.</p></article>`,
		"body": `<body><h1 class="page-title">Echter Titel</h1>
			<main><h2>Programm</h2><p>Einlass ab 18 Uhr im Saal.</p></main></body>`,
		"page builder": `<div class="elementor-widget-heading"><h1 class="elementor-heading-title">Echter Titel</h1></div>
			<div class="elementor-widget-heading"><h2 class="elementor-heading-title">Programm</h2></div>
			<div class="elementor-widget-text-editor"><p>Einlass ab 18 Uhr im Saal.</p></div>`,
	}
	for name, src := range pages {
		t.Run(name, func(t *testing.T) {
			post := NewExtractor().Extract(parseDoc(t, src), pageURL)
			assert.Equal(t, "Echter Titel", post.Title)
			require.NotEmpty(t, post.Blocks)
			for _, b := range post.Blocks {
				assert.NotEqual(t, "Echter Titel", content.ContentOf(b))
			}
			assert.Equal(t, "Programm", content.ContentOf(post.Blocks[0]))
		})
	}
}
