package render

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// Alternatives are ordered by priority: schemed URLs, bare www. domains,
// then e-mail addresses.
var reAutoLink = regexp.MustCompile(`(https?://[^\s<>"]+)|(www\.[^\s<>"]+)|([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// trailingPunct is stripped from link targets and rendered as plain text.
const trailingPunct = ".,;!?)"

// AutoLink HTML-escapes s and turns URLs, www. domains and e-mail addresses
// into anchors.
func AutoLink(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range reAutoLink.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[0], m[1]
		target := strings.TrimRight(s[start:end], trailingPunct)

		var href string
		external := true
		switch {
		case m[2] >= 0:
			href = target
			if u, err := url.Parse(target); err != nil || u.Host == "" {
				href = ""
			}
		case m[4] >= 0:
			if len(target) > len("www.") {
				href = "https://" + target
			}
		default:
			href = "mailto:" + target
			external = false
		}
		if href == "" {
			continue
		}

		b.WriteString(html.EscapeString(s[last:start]))
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`" class="underline decoration-2 underline-offset-4"`)
		if external {
			b.WriteString(` target="_blank" rel="noopener noreferrer"`)
		}
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(target))
		b.WriteString(`</a>`)
		b.WriteString(html.EscapeString(s[start+len(target) : end]))
		last = end
	}
	b.WriteString(html.EscapeString(s[last:]))
	return b.String()
}

// SafeURL validates a URL for use in an HTML attribute and returns it
// escaped, or "" when the scheme is not allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if (strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//")) || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
