package legacy

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/eventsite/content"
)

const pageURL = "https://example.de/duesseldorf/sommerfest/"

func parseDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// withoutIDs blanks block ids so generated blocks compare by content.
func withoutIDs(blocks []content.Block) []content.Block {
	out := make([]content.Block, len(blocks))
	for i, b := range blocks {
		out[i] = content.WithID(b, "")
	}
	return out
}

func TestMergeText(t *testing.T) {
	img := content.Image{BlockID: "i", URL: "https://example.de/a.jpg"}
	got := MergeText([]content.Block{
		content.Text{BlockID: "1", Body: "A"},
		content.Text{BlockID: "2", Body: "B"},
		img,
		content.Text{BlockID: "3", Body: "C"},
	})
	assert.Equal(t, []content.Block{
		content.Text{BlockID: "1", Body: "A\n\nB"},
		img,
		content.Text{BlockID: "3", Body: "C"},
	}, got)
}

func TestMergeTextEmpty(t *testing.T) {
	assert.Empty(t, MergeText(nil))
}

const articleFixture = `<html><body>
<div class="entry-content">
  <h2>Programm</h2>
  <p>Wir laden herzlich zum Sommerfest ein.</p>
  <p>Beginn ist um 18 Uhr<br>im Garten.</p>
  <p><img src="//cdn.example.de/a.jpg" alt="Garten"></p>
  <p>Kurz</p>
  <p><img src="data:image/gif;base64,R0lGOD" data-lazy-src="/wp-content/uploads/b.jpg"></p>
  <img src="https://secure.gravatar.com/avatar/1.jpg">
  <img src="https://example.de/track.gif" width="1" height="1">
  <p>Mit freundlichen Grüßen, Ihr Vorstand</p>
  <script>var x = "<p>nicht hier</p>";</script>
  <h3>Anmeldung</h3>
  <p>Bitte melden Sie sich bis Freitag an.</p>
</div>
</body></html>`

func TestBuildBlocks(t *testing.T) {
	doc := parseDoc(t, articleFixture)
	c := Strategy{Selectors: []string{".entry-content"}}.Select(doc)
	got := withoutIDs(BuildBlocks(c, mustURL(t, pageURL)))

	assert.Equal(t, []content.Block{
		content.Headline{Text: "Programm", Level: 2},
		content.Text{Body: "Wir laden herzlich zum Sommerfest ein.\n\nBeginn ist um 18 Uhr\nim Garten."},
		content.Image{URL: "https://cdn.example.de/a.jpg", Alt: "Garten"},
		content.Image{URL: "https://example.de/wp-content/uploads/b.jpg"},
		content.Headline{Text: "Anmeldung", Level: 3},
		content.Text{Body: "Bitte melden Sie sich bis Freitag an."},
	}, got)
}

func TestBuildBlocksAssignsIDs(t *testing.T) {
	doc := parseDoc(t, articleFixture)
	blocks := BuildBlocks(Strategy{Selectors: []string{".entry-content"}}.Select(doc), mustURL(t, pageURL))
	seen := make(map[string]bool)
	for _, b := range blocks {
		require.NotEmpty(t, b.ID())
		assert.False(t, seen[b.ID()], "duplicate id %s", b.ID())
		seen[b.ID()] = true
	}
}

func TestImageSource(t *testing.T) {
	base := mustURL(t, pageURL)
	tests := []struct {
		html string
		want string
		ok   bool
	}{
		{`<img src="https://example.de/a.jpg">`, "https://example.de/a.jpg", true},
		{`<img src="//cdn.example.de/a.png">`, "https://cdn.example.de/a.png", true},
		{`<img src="bild.jpg">`, "https://example.de/duesseldorf/sommerfest/bild.jpg", true},
		{`<img src="data:image/png;base64,AAAA">`, "", false},
		{`<img data-src="/x.jpg" src="data:image/png;base64,AAAA">`, "https://example.de/x.jpg", true},
		{`<img src="https://example.de/wp-includes/images/smilies/emoji/1f600.png">`, "", false},
		{`<img src="https://example.de/avatar-96.png">`, "", false},
		{`<img src="https://example.de/a.jpg" width="1">`, "", false},
		{`<img>`, "", false},
	}
	for _, tt := range tests {
		doc := parseDoc(t, tt.html)
		node := doc.Find("img").Nodes[0]
		got, ok := imageSource(node, base)
		assert.Equal(t, tt.ok, ok, tt.html)
		assert.Equal(t, tt.want, got, tt.html)
	}
}

func TestParagraphThresholdAndBoilerplate(t *testing.T) {
	doc := parseDoc(t, `<div id="c">
		<p>Zu kurz.</p>
		<p>Genau zehn</p>
		<p>Weiterlesen über das Sommerfest</p>
		<p>Best regards from the board</p>
	</div>`)
	got := withoutIDs(BuildBlocks(Strategy{Selectors: []string{"#c"}}.Select(doc), nil))
	assert.Equal(t, []content.Block{content.Text{Body: "Genau zehn"}}, got)
}
