package views

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/content"
	"github.com/eringen/eventsite/render"
)

func csrfField(p *page, csrf string) {
	p.raw(`<input type="hidden" name="_csrf" value="`)
	p.text(csrf)
	p.raw(`"/>`)
}

func (v *views) adminLogin(showError bool, csrf string) templ.Component {
	return component(func(p *page) {
		p.raw(`<!doctype html><html lang="de"><head><meta charset="utf-8"/><meta name="robots" content="noindex"/><title>Login | `)
		p.text(v.site.Name)
		p.raw(`</title><link rel="stylesheet" href="/public/styles.css"/></head><body class="admin"><main class="login">`)
		p.raw(`<form method="post" action="/admin/login/">`)
		csrfField(p, csrf)
		if showError {
			p.raw(`<p class="error">Falsches Passwort. / Wrong password.</p>`)
		}
		p.raw(`<label>Passwort <input type="password" name="password" autocomplete="current-password" required autofocus/></label>`)
		p.raw(`<button type="submit">Anmelden</button></form></main></body></html>`)
	})
}

func (v *views) adminDashboard(posts []eventsite.Post, msg, csrf string) templ.Component {
	return v.adminLayout("Beiträge", csrf, component(func(p *page) {
		p.raw(`<section id="dashboard">`)
		if msg != "" {
			p.raw(`<p class="notice">`)
			p.text(msg)
			p.raw(`</p>`)
		}
		p.raw(`<table><thead><tr><th>Datum</th><th>Titel</th><th>Ort</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, post := range posts {
			p.raw(`<tr><td>`)
			p.text(post.EventDate)
			p.raw(`</td><td><a href="/admin/post/`)
			p.text(eventsite.PathEscape(post.Slug))
			p.raw(`/">`)
			p.text(post.Title)
			p.raw(`</a></td><td>`)
			p.text(post.Location)
			p.raw(`</td><td>`)
			switch {
			case !post.Published:
				p.raw(`Entwurf`)
			case post.IsLegacy:
				p.raw(`Importiert`)
			default:
				p.raw(`Veröffentlicht`)
			}
			p.raw(`</td><td><button hx-delete="/admin/post/`)
			p.text(eventsite.PathEscape(post.Slug))
			p.raw(`/" hx-target="#dashboard" hx-swap="outerHTML" hx-select="#dashboard" hx-confirm="Beitrag löschen?">Löschen</button></td></tr>`)
		}
		p.raw(`</tbody></table></section>`)
	}))
}

func (v *views) adminEdit(post eventsite.Post, csrf string) templ.Component {
	title := "Neuer Beitrag"
	if post.Slug != "" {
		title = post.Title
	}
	return v.adminLayout(title, csrf, component(func(p *page) {
		p.raw(`<form class="post-form" method="post" action="/admin/save/">`)
		csrfField(p, csrf)
		p.raw(`<input type="hidden" name="original_slug" value="`)
		p.text(post.Slug)
		p.raw(`"/><input type="hidden" name="is_legacy" value="`)
		p.raw(strconv.FormatBool(post.IsLegacy))
		p.raw(`"/>`)
		textField(p, "Titel", "title", post.Title, true)
		textField(p, "Slug", "slug", post.Slug, false)
		textField(p, "Ort", "location", post.Location, false)
		p.raw(`<label>Datum <input type="date" name="date" value="`)
		p.text(post.EventDate)
		p.raw(`"/></label>`)
		textField(p, "Titelbild (URL)", "cover_image", post.CoverImage, false)
		p.raw(`<label><input type="checkbox" name="published"`)
		if post.Published || post.Slug == "" {
			p.raw(` checked`)
		}
		p.raw(`/> Veröffentlicht</label>`)
		p.component(v.adminEditor(eventsite.EditorState{Blocks: post.Blocks}, csrf))
		p.raw(`<button type="submit">Speichern</button></form>`)
	}))
}

func textField(p *page, text, name, value string, required bool) {
	p.raw(`<label>`)
	p.text(text)
	p.raw(` <input type="text" name="`)
	p.raw(name)
	p.raw(`" value="`)
	p.text(value)
	p.raw(`"`)
	if required {
		p.raw(` required`)
	}
	p.raw(`/></label>`)
}

// editorAttrs makes an element post one editor operation. The whole
// document travels in the hidden blocks field.
func editorAttrs(p *page, op string, vals map[string]string, trigger string) {
	p.raw(` hx-post="/admin/editor/`)
	p.raw(op)
	p.raw(`/" hx-target="#block-editor" hx-swap="outerHTML" hx-include="#blocks-field"`)
	if len(vals) > 0 {
		p.raw(` hx-vals="`)
		p.raw(jsonAttr(vals))
		p.raw(`"`)
	}
	if trigger != "" {
		p.raw(` hx-trigger="`)
		p.raw(trigger)
		p.raw(`"`)
	}
}

func (v *views) adminEditor(state eventsite.EditorState, csrf string) templ.Component {
	return component(func(p *page) {
		doc, err := content.Encode(state.Blocks)
		if err != nil {
			p.err = err
			return
		}
		p.raw(`<div id="block-editor" class="block-editor">`)
		if state.Notice != "" {
			p.raw(`<p class="notice" role="alert">`)
			p.text(state.Notice)
			p.raw(`</p>`)
		}
		p.raw(`<input type="hidden" id="blocks-field" name="blocks" value="`)
		p.text(doc)
		p.raw(`"/>`)
		insertMenu(p, -1)
		for i, b := range state.Blocks {
			blockCard(p, i, len(state.Blocks), b)
			insertMenu(p, i)
		}
		p.raw(`</div>`)
	})
}

var kindLabels = []struct {
	kind  content.Kind
	label string
}{
	{content.KindHeadline, "Überschrift"},
	{content.KindText, "Text"},
	{content.KindImage, "Bild"},
	{content.KindVideo, "Video"},
	{content.KindPDF, "PDF"},
	{content.KindLink, "Link"},
}

func insertMenu(p *page, after int) {
	p.raw(`<div class="insert-menu">`)
	for _, k := range kindLabels {
		p.raw(`<button type="button"`)
		editorAttrs(p, "insert", map[string]string{"kind": string(k.kind), "index": strconv.Itoa(after)}, "")
		p.raw(`>+ `)
		p.text(k.label)
		p.raw(`</button>`)
	}
	p.raw(`</div>`)
}

func blockCard(p *page, index, total int, b content.Block) {
	id := b.ID()
	idVals := map[string]string{"id": id}
	p.raw(`<div class="block-card" data-kind="`)
	p.text(string(b.Kind()))
	p.raw(`"><div class="block-toolbar"><span>`)
	p.text(string(b.Kind()))
	p.raw(`</span>`)
	if index > 0 {
		p.raw(`<button type="button" title="Nach oben"`)
		editorAttrs(p, "move", map[string]string{"index": strconv.Itoa(index), "direction": "up"}, "")
		p.raw(`>↑</button>`)
	}
	if index < total-1 {
		p.raw(`<button type="button" title="Nach unten"`)
		editorAttrs(p, "move", map[string]string{"index": strconv.Itoa(index), "direction": "down"}, "")
		p.raw(`>↓</button>`)
	}
	p.raw(`<button type="button" title="Entfernen"`)
	editorAttrs(p, "remove", idVals, "")
	p.raw(`>✕</button></div>`)

	switch v := b.(type) {
	case content.Headline:
		editorInput(p, "content", "Überschrift", v.Text, idVals)
		p.raw(`<select name="`)
		p.text(eventsite.EditorField("level", id))
		p.raw(`"`)
		editorAttrs(p, "update", idVals, "change")
		p.raw(`>`)
		for lv := 1; lv <= 6; lv++ {
			p.raw(fmt.Sprintf(`<option value="%d"`, lv))
			if lv == v.Level || (v.Level == 0 && lv == 2) {
				p.raw(` selected`)
			}
			p.raw(fmt.Sprintf(`>H%d</option>`, lv))
		}
		p.raw(`</select>`)
	case content.Text:
		p.raw(`<textarea name="`)
		p.text(eventsite.EditorField("content", id))
		p.raw(`" rows="6"`)
		editorAttrs(p, "update", idVals, "change")
		p.raw(`>`)
		p.text(v.Body)
		p.raw(`</textarea>`)
	case content.Image, content.Video, content.PDF:
		editorInput(p, "content", "URL", content.ContentOf(b), idVals)
		editorInput(p, "caption", "Beschriftung", content.CaptionOf(b), idVals)
		p.raw(`<input type="file" name="`)
		p.text(eventsite.EditorField("file", id))
		p.raw(`" hx-encoding="multipart/form-data"`)
		editorAttrs(p, "upload", idVals, "change")
		p.raw(`/>`)
		if img, ok := b.(content.Image); ok {
			if src := render.SafeURL(img.URL); src != "" {
				p.raw(`<img class="preview" src="`)
				p.raw(src)
				p.raw(`" alt=""/>`)
			}
		}
	case content.Link:
		editorInput(p, "content", "URL", v.URL, idVals)
		editorInput(p, "caption", "Beschriftung", v.Label, idVals)
	case content.Unknown:
		p.raw(`<p class="unknown">Unbekannter Block-Typ `)
		p.text(v.Type)
		p.raw(`, wird unverändert gespeichert.</p>`)
	}
	p.raw(`</div>`)
}

// editorInput renders a text field of the block named by vals["id"]. The
// editor sits inside the post form, so every field name carries the block id.
func editorInput(p *page, name, placeholder, value string, vals map[string]string) {
	p.raw(`<input type="text" name="`)
	p.text(eventsite.EditorField(name, vals["id"]))
	p.raw(`" placeholder="`)
	p.text(placeholder)
	p.raw(`" value="`)
	p.text(value)
	p.raw(`"`)
	editorAttrs(p, "update", vals, "change")
	p.raw(`/>`)
}

func (v *views) adminMedia(files []eventsite.MediaFile, csrf string) templ.Component {
	return v.adminLayout("Medien", csrf, component(func(p *page) {
		p.raw(`<section id="media"><form hx-post="/admin/media/upload/" hx-encoding="multipart/form-data" hx-target="#media" hx-select="#media" hx-swap="outerHTML">`)
		p.raw(`<input type="file" name="file" accept="image/*,application/pdf,video/mp4,video/webm" required/><button type="submit">Hochladen</button></form><ul class="media-grid">`)
		for _, f := range files {
			p.raw(`<li>`)
			if f.IsImage() {
				p.raw(`<img src="`)
				p.raw(render.SafeURL(f.URL))
				p.raw(`" alt="" loading="lazy"/>`)
			}
			p.raw(`<input type="text" readonly value="`)
			p.text(f.URL)
			p.raw(`"/><span>`)
			p.text(f.OriginalName)
			if f.Width > 0 {
				p.text(fmt.Sprintf(" · %d×%d", f.Width, f.Height))
			}
			p.text(fmt.Sprintf(" · %d KB", (f.Size+1023)/1024))
			p.raw(`</span><button hx-delete="/admin/media/`)
			p.text(eventsite.PathEscape(f.Key))
			p.raw(`/" hx-target="#media" hx-select="#media" hx-swap="outerHTML" hx-confirm="Datei löschen?">Löschen</button></li>`)
		}
		p.raw(`</ul></section>`)
	}))
}
