package views

import (
	"context"
	"encoding/json"
	"html"
	"io"

	"github.com/a-h/templ"
)

// page is a small HTML writer. The first write error sticks and later
// writes are dropped, so components check it once at the end.
type page struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s HTML-escaped.
func (p *page) text(s string) {
	p.raw(html.EscapeString(s))
}

func (p *page) component(c templ.Component) {
	if p.err != nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func component(fn func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// jsonAttr encodes v for an hx-vals or hx-headers attribute.
func jsonAttr(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return html.EscapeString(string(b))
}

// label picks the German or English text.
func label(lang, de, en string) string {
	if lang == "en" {
		return en
	}
	return de
}
