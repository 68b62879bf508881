// Package render turns block documents into HTML. Rendering is pure: it
// never mutates its input and unknown block kinds produce no output.
package render

import (
	"bytes"
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/eventsite/content"
)

// DefaultPDFLabel labels PDF buttons that have no caption.
const DefaultPDFLabel = "PDF öffnen / Open PDF"

// Blocks returns a templ.Component that renders blocks as HTML.
func Blocks(blocks []content.Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderBlocks(&buf, blocks)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderBlocks writes the HTML representation of blocks to buf.
func RenderBlocks(buf *bytes.Buffer, blocks []content.Block) {
	for _, b := range blocks {
		RenderBlock(buf, b)
	}
}

// RenderBlock writes a single block.
func RenderBlock(buf *bytes.Buffer, b content.Block) {
	switch v := b.(type) {
	case content.Headline:
		// Stored levels are ignored; every headline renders at the same depth.
		if strings.TrimSpace(v.Text) == "" {
			return
		}
		buf.WriteString(`<h2 class="block-headline">`)
		buf.WriteString(html.EscapeString(v.Text))
		buf.WriteString(`</h2>`)
	case content.Text:
		renderText(buf, v.Body)
	case content.Image:
		src := SafeURL(v.URL)
		if src == "" {
			return
		}
		buf.WriteString(`<figure class="block-image"><img src="`)
		buf.WriteString(src)
		buf.WriteString(`" alt="`)
		buf.WriteString(html.EscapeString(v.Alt))
		buf.WriteString(`" loading="lazy" decoding="async"/>`)
		if v.Alt != "" {
			buf.WriteString(`<figcaption>`)
			buf.WriteString(html.EscapeString(v.Alt))
			buf.WriteString(`</figcaption>`)
		}
		buf.WriteString(`</figure>`)
	case content.Video:
		renderVideo(buf, v)
	case content.PDF:
		href := SafeURL(v.URL)
		if href == "" {
			return
		}
		label := v.Title
		if strings.TrimSpace(label) == "" {
			label = DefaultPDFLabel
		}
		buf.WriteString(`<a class="btn btn-pdf" href="`)
		buf.WriteString(href)
		buf.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		buf.WriteString(html.EscapeString(label))
		buf.WriteString(`</a>`)
	case content.Link:
		href := SafeURL(v.URL)
		if href == "" {
			return
		}
		label := v.Label
		if strings.TrimSpace(label) == "" {
			label = v.URL
		}
		buf.WriteString(`<a class="btn btn-cta" href="`)
		buf.WriteString(href)
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(label))
		buf.WriteString(`</a>`)
	}
}

func renderText(buf *bytes.Buffer, body string) {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var paras []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	if len(paras) == 0 {
		return
	}
	buf.WriteString(`<div class="block-text">`)
	for _, p := range paras {
		buf.WriteString(`<p>`)
		for i, line := range strings.Split(p, "\n") {
			if i > 0 {
				buf.WriteString(`<br/>`)
			}
			buf.WriteString(AutoLink(strings.TrimSpace(line)))
		}
		buf.WriteString(`</p>`)
	}
	buf.WriteString(`</div>`)
}

func renderVideo(buf *bytes.Buffer, v content.Video) {
	kind, src := Embed(v.URL)
	src = SafeURL(src)
	if src == "" {
		return
	}
	switch kind {
	case EmbedFile:
		buf.WriteString(`<div class="block-video"><video controls preload="metadata" src="`)
		buf.WriteString(src)
		buf.WriteString(`"></video></div>`)
	case EmbedIframe:
		buf.WriteString(`<div class="block-video"><iframe src="`)
		buf.WriteString(src)
		buf.WriteString(`" title="`)
		buf.WriteString(html.EscapeString(v.Title))
		buf.WriteString(`" loading="lazy" allow="accelerometer; encrypted-media; gyroscope; picture-in-picture; fullscreen" allowfullscreen></iframe></div>`)
	}
}
