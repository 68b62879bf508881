package legacy

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/eringen/eventsite/content"
)

// MinParagraphLength is the shortest paragraph, in runes after trimming,
// that becomes a text block.
const MinParagraphLength = 10

// boilerplate lists lower-case prefixes of signature and navigation
// paragraphs that never carry event content.
var boilerplate = []string{
	"mit freundlichen grüßen",
	"mit freundlichen grüssen",
	"viele grüße",
	"herzliche grüße",
	"best regards",
	"kind regards",
	"ihr team",
	"ihre geschäftsstelle",
	"zurück zur übersicht",
	"back to overview",
	"weiterlesen",
	"read more",
	"teilen mit",
	"share this",
	"diesen beitrag teilen",
}

// rejectedImage lists substrings of image URLs that are tracking pixels,
// avatars, emoji or spacers rather than content.
var rejectedImage = []string{
	"gravatar.com",
	"avatar",
	"/emoji/",
	"s.w.org/images/core/emoji",
	"pixel",
	"spacer.gif",
	"blank.gif",
	"facebook.com/tr",
	"1x1",
}

// Candidates are the subtrees a strategy selected, in document order, plus
// nodes whose subtrees are excluded from the walk.
type Candidates struct {
	Roots []*html.Node
	Skip  map[*html.Node]bool
}

// BuildBlocks walks the candidates in document order, turns images, headings
// and paragraphs into blocks and merges adjacent text blocks.
func BuildBlocks(c Candidates, base *url.URL) []content.Block {
	b := &builder{base: base, skip: c.Skip}
	for _, root := range c.Roots {
		b.walk(root)
	}
	return MergeText(b.blocks)
}

// MergeText joins runs of adjacent text blocks into one, separated by a
// blank line. Any other block ends the run. The merged block keeps the id
// of the first block of the run.
func MergeText(blocks []content.Block) []content.Block {
	out := make([]content.Block, 0, len(blocks))
	for _, b := range blocks {
		t, ok := b.(content.Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(content.Text); ok {
				prev.Body += "\n\n" + t.Body
				out[len(out)-1] = prev
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

type builder struct {
	base   *url.URL
	skip   map[*html.Node]bool
	blocks []content.Block
}

func (b *builder) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if b.skip[n] {
			return
		}
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Iframe:
			return
		case atom.Img:
			b.image(n)
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if text := collapse(nodeText(n)); text != "" {
				b.blocks = append(b.blocks, content.Headline{
					BlockID: content.NewID(),
					Text:    text,
					Level:   int(n.Data[1] - '0'),
				})
			}
			return
		case atom.P:
			b.paragraph(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
}

func (b *builder) image(n *html.Node) {
	src, ok := imageSource(n, b.base)
	if !ok {
		return
	}
	b.blocks = append(b.blocks, content.Image{
		BlockID: content.NewID(),
		URL:     src,
		Alt:     strings.TrimSpace(attr(n, "alt")),
	})
}

// paragraph emits the images a paragraph wraps, then its text if the text
// is long enough and not boilerplate.
func (b *builder) paragraph(n *html.Node) {
	for _, img := range findAll(n, atom.Img) {
		if !b.skip[img] {
			b.image(img)
		}
	}
	text := collapse(nodeText(n))
	if text == "" || utf8.RuneCountInString(text) < MinParagraphLength || isBoilerplate(text) {
		return
	}
	b.blocks = append(b.blocks, content.Text{BlockID: content.NewID(), Body: text})
}

// imageSource picks the first usable source of an img element. Lazy-loading
// attributes win over src, which is often a placeholder.
func imageSource(n *html.Node, base *url.URL) (string, bool) {
	if attr(n, "width") == "1" || attr(n, "height") == "1" {
		return "", false
	}
	for _, key := range []string{"data-lazy-src", "data-src", "src"} {
		raw := strings.TrimSpace(attr(n, key))
		if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
			continue
		}
		abs, ok := absoluteURL(raw, base)
		if !ok {
			continue
		}
		lower := strings.ToLower(abs)
		for _, pat := range rejectedImage {
			if strings.Contains(lower, pat) {
				return "", false
			}
		}
		return abs, true
	}
	return "", false
}

func absoluteURL(raw string, base *url.URL) (string, bool) {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" || ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}

func isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range boilerplate {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// nodeText returns the text content of n with <br> rendered as newlines.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				sb.WriteByte('\n')
				return
			case atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapse normalizes whitespace, including non-breaking spaces, inside
// each line and drops empty lines.
func collapse(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		out = append(out, findAll(c, a)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
