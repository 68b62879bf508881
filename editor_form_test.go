package eventsite_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/content"
	"github.com/eringen/eventsite/views"
)

// browser replays requests with the cookies the site set.
type browser struct {
	t       *testing.T
	a       *eventsite.App
	cookies map[string]*http.Cookie
	csrf    string
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.csrf != "" {
		req.Header.Set("X-CSRF-Token", b.csrf)
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	b.a.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) page(rec *httptest.ResponseRecorder) *goquery.Document {
	b.t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		b.t.Fatal(err)
	}
	return doc
}

func loggedInBrowser(t *testing.T) (*eventsite.App, *browser) {
	t.Helper()
	dir := t.TempDir()
	a := eventsite.New(eventsite.SiteConfig{
		Name:              "Testsite",
		URL:               "https://example.de",
		DatabasePath:      filepath.Join(dir, "site.db"),
		StatsDatabasePath: filepath.Join(dir, "stats.db"),
		AdminPassword:     "secret",
		SessionSecret:     "0123456789abcdef0123456789abcdef",
	}, views.New(views.Site{Name: "Testsite"}), eventsite.WithStaticDir(dir))
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	b := &browser{t: t, a: a, cookies: map[string]*http.Cookie{}}
	login := b.page(b.do(http.MethodGet, "/admin/", nil))
	token, ok := login.Find(`input[name="_csrf"]`).Attr("value")
	if !ok || token == "" {
		t.Fatal("login page without csrf field")
	}
	rec := b.do(http.MethodPost, "/admin/login/", url.Values{"_csrf": {token}, "password": {"secret"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login = %d", rec.Code)
	}
	b.csrf = token
	return a, b
}

// htmxValues collects what htmx posts when el triggers a request: the
// enclosing form, the element itself, hx-include and hx-vals.
func htmxValues(t *testing.T, doc *goquery.Document, el *goquery.Selection) url.Values {
	t.Helper()
	form := url.Values{}
	add := func(s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "textarea":
			form.Add(name, s.Text())
		case "select":
			v, _ := s.Find("option[selected]").Attr("value")
			form.Add(name, v)
		default:
			typ, _ := s.Attr("type")
			if typ == "file" || (typ == "checkbox" && !s.Is("[checked]")) {
				return
			}
			v, _ := s.Attr("value")
			form.Add(name, v)
		}
	}
	if f := el.Closest("form"); f.Length() > 0 {
		f.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) { add(s) })
	} else {
		add(el)
	}
	if sel, ok := el.Attr("hx-include"); ok && el.Closest("form").Length() == 0 {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) { add(s) })
	}
	if raw, ok := el.Attr("hx-vals"); ok {
		vals := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &vals); err != nil {
			t.Fatalf("hx-vals %q: %v", raw, err)
		}
		for k, v := range vals {
			form.Set(k, v)
		}
	}
	return form
}

func TestEditorUpdateFromEditPage(t *testing.T) {
	a, b := loggedInBrowser(t)
	if err := a.Store.SavePost(eventsite.Post{
		Slug: "sommerfest", Title: "Sommerfest", EventDate: "2099-07-01", Published: true,
		Blocks: []content.Block{
			content.Text{BlockID: "a", Body: "first"},
			content.Text{BlockID: "b", Body: "second"},
			content.Link{BlockID: "c", URL: "https://example.de/", Label: "Mehr"},
		},
	}); err != nil {
		t.Fatal(err)
	}

	rec := b.do(http.MethodGet, "/admin/post/sommerfest/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit page = %d", rec.Code)
	}
	doc := b.page(rec)
	if n := doc.Find("form.post-form #block-editor textarea").Length(); n != 2 {
		t.Fatalf("edit page shows %d text blocks, want 2", n)
	}

	// The admin edits the second block, then blurs the field.
	field := doc.Find(`#block-editor textarea`).Eq(1)
	field.SetText("second EDITED")
	target, _ := field.Attr("hx-post")
	rec = b.do(http.MethodPost, target, htmxValues(t, doc, field))
	if rec.Code != http.StatusOK {
		t.Fatalf("editor update = %d %q", rec.Code, rec.Body.String())
	}

	editor := b.page(rec)
	raw, _ := editor.Find("#blocks-field").Attr("value")
	blocks, err := content.Parse(raw)
	if err != nil {
		t.Fatalf("editor returned %q: %v", raw, err)
	}
	want := map[string]string{"a": "first", "b": "second EDITED", "c": "https://example.de/"}
	for _, blk := range blocks {
		if got := content.ContentOf(blk); got != want[blk.ID()] {
			t.Errorf("block %s = %q, want %q", blk.ID(), got, want[blk.ID()])
		}
	}

	// The link caption shares the form with the other blocks too.
	doc = b.page(b.do(http.MethodGet, "/admin/post/sommerfest/", nil))
	caption := doc.Find(`#block-editor input[placeholder="Beschriftung"]`)
	caption.SetAttr("value", "Alle Infos")
	target, _ = caption.Attr("hx-post")
	raw, _ = b.page(b.do(http.MethodPost, target, htmxValues(t, doc, caption))).Find("#blocks-field").Attr("value")
	blocks, err = content.Parse(raw)
	if err != nil || len(blocks) != 3 {
		t.Fatalf("after caption edit: %q, %v", raw, err)
	}
	if got := content.CaptionOf(blocks[2]); got != "Alle Infos" {
		t.Errorf("link caption = %q", got)
	}
	if got := content.ContentOf(blocks[2]); got != "https://example.de/" {
		t.Errorf("link url = %q", got)
	}
}
