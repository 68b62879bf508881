package legacy

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/eringen/eventsite/content"
)

// Strategy selects content candidates from a page. Selectors are matched
// as a group; Exclude removes whole subtrees from the walk.
type Strategy struct {
	Name      string
	Selectors []string
	Exclude   []string
}

// Select returns the outermost nodes matched by the strategy, in document order.
func (s Strategy) Select(doc *goquery.Document) Candidates {
	c := Candidates{Skip: make(map[*html.Node]bool)}
	if len(s.Exclude) > 0 {
		for _, n := range doc.Find(strings.Join(s.Exclude, ", ")).Nodes {
			c.Skip[n] = true
		}
	}
	matched := doc.Find(strings.Join(s.Selectors, ", ")).Nodes
	in := make(map[*html.Node]bool, len(matched))
	for _, n := range matched {
		in[n] = true
	}
	for _, n := range matched {
		if !hasAncestorIn(n, in) {
			c.Roots = append(c.Roots, n)
		}
	}
	return c
}

func hasAncestorIn(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}

// DefaultStrategies tries page-builder widgets first, then the usual
// article containers, then the whole body minus page chrome.
var DefaultStrategies = []Strategy{
	{
		Name: "page-builder",
		Selectors: []string{
			".elementor-widget-text-editor",
			".elementor-widget-heading",
			".elementor-widget-image",
			".et_pb_text",
			".et_pb_image",
			".wpb_text_column",
			".fl-module-rich-text",
		},
		Exclude: withoutTitle(),
	},
	{
		Name:      "article",
		Selectors: []string{".entry-content", ".post-content", "article .content", "article"},
		Exclude:   withoutTitle(".sharedaddy", ".post-navigation", ".comments-area"),
	},
	{
		Name:      "body",
		Selectors: []string{"body"},
		Exclude: withoutTitle(
			"header", "footer", "nav", "aside", "form",
			".sidebar", "#sidebar", ".widget-area", ".menu", ".site-header",
			".site-footer", "#comments", ".breadcrumbs", ".cookie-notice",
		),
	},
}

// CoverPolicy picks the cover image of a post from its blocks.
type CoverPolicy func(blocks []content.Block) *string

// FirstImage designates the first image block as cover.
func FirstImage(blocks []content.Block) *string {
	for _, b := range blocks {
		if img, ok := b.(content.Image); ok && img.URL != "" {
			u := img.URL
			return &u
		}
	}
	return nil
}

// Extractor turns a parsed page into a ScrapedPost.
type Extractor struct {
	Strategies []Strategy
	Title      TitlePolicy
	Cover      CoverPolicy
}

// TitlePolicy picks the title of a page.
type TitlePolicy func(doc *goquery.Document) string

// NewExtractor returns an extractor with the default strategies and cover policy.
func NewExtractor() *Extractor {
	return &Extractor{Strategies: DefaultStrategies, Title: HeadingTitle, Cover: FirstImage}
}

// Extract reads title, date, location and content from doc. The first
// strategy producing at least one block wins; a page where none does yields
// a post without blocks.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) ScrapedPost {
	base, _ := url.Parse(pageURL)
	title := e.Title
	if title == nil {
		title = HeadingTitle
	}
	post := ScrapedPost{
		URL:      pageURL,
		Title:    title(doc),
		Date:     extractDate(doc),
		Location: LocationFromURL(base),
		Blocks:   content.Blocks{},
	}
	for _, s := range e.Strategies {
		if blocks := BuildBlocks(s.Select(doc), base); len(blocks) > 0 {
			post.Blocks = blocks
			break
		}
	}
	seen := make(map[string]bool)
	for _, b := range post.Blocks {
		if img, ok := b.(content.Image); ok && !seen[img.URL] {
			seen[img.URL] = true
			post.Images = append(post.Images, img.URL)
		}
	}
	cover := e.Cover
	if cover == nil {
		cover = FirstImage
	}
	post.CoverImage = cover(post.Blocks)
	return post
}

// withoutTitle adds the post title headings to exclude. The title is
// stored on its own and must not repeat as the first block.
func withoutTitle(exclude ...string) []string {
	return append(append([]string{}, titleSelectors...), exclude...)
}

var titleSelectors = []string{
	"h1.entry-title",
	"h1.elementor-heading-title",
	".elementor-widget-theme-post-title h1",
	"h1.page-title",
	"h1.post-title",
}

// HeadingTitle tries a structured heading, then the first h1 or h2, then
// the part of <title> before the site name.
func HeadingTitle(doc *goquery.Document) string {
	if t := firstText(doc.Find(strings.Join(titleSelectors, ", "))); t != "" {
		return t
	}
	if t := firstText(doc.Find("h1, h2")); t != "" {
		return t
	}
	title := collapse(doc.Find("title").First().Text())
	for _, sep := range []string{" | ", " – ", " - "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

var (
	dateSelectors = []string{
		"time.entry-date",
		"time[datetime]",
		".entry-date",
		".post-date",
		".elementor-post-info__item--type-date",
	}
	reGermanLongDate = regexp.MustCompile(`(?i)\b\d{1,2}\.\s*(januar|februar|märz|maerz|april|mai|juni|juli|august|september|oktober|november|dezember)\s+\d{4}\b`)
)

// extractDate returns the raw date text: a structured date element, else a
// German long-form date in the body, else a numeric DD.MM.YYYY date.
func extractDate(doc *goquery.Document) string {
	var raw string
	doc.Find(strings.Join(dateSelectors, ", ")).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if dt, ok := s.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			raw = strings.TrimSpace(dt)
			return false
		}
		raw = collapse(s.Text())
		return raw == ""
	})
	if raw != "" {
		return raw
	}
	body := doc.Find("body").Text()
	if m := reGermanLongDate.FindString(body); m != "" {
		return strings.Join(strings.Fields(m), " ")
	}
	return reNumericDate.FindString(body)
}

func firstText(sel *goquery.Selection) string {
	var text string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = collapse(s.Text())
		return text == ""
	})
	return strings.ReplaceAll(text, "\n", " ")
}

// cityNames holds slugs whose display name is not the title-cased slug.
var cityNames = map[string]string{
	"duesseldorf":      "Düsseldorf",
	"koeln":            "Köln",
	"muenchen":         "München",
	"nuernberg":        "Nürnberg",
	"moenchengladbach": "Mönchengladbach",
	"saarbruecken":     "Saarbrücken",
	"osnabrueck":       "Osnabrück",
	"wuerzburg":        "Würzburg",
	"goettingen":       "Göttingen",
	"luebeck":          "Lübeck",
	"tuebingen":        "Tübingen",
	"frankfurt":        "Frankfurt am Main",
}

// LocationFromURL derives the event location from the first path segment.
func LocationFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	segs := pathSegments(u.Path)
	if len(segs) == 0 {
		return ""
	}
	return LocationName(segs[0])
}

// LocationName maps a city slug to its display name. Unknown slugs are
// title-cased with hyphens turned into spaces.
func LocationName(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name, ok := cityNames[slug]; ok {
		return name
	}
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		r := []rune(p)
		parts[i] = string(unicode.ToUpper(r[0])) + string(r[1:])
	}
	return strings.Join(parts, " ")
}
