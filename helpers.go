package eventsite

import (
	"net/url"
	"path"
	"strings"
)

var transliterations = map[rune]string{
	'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
	'é': "e", 'è': "e", 'ê': "e", 'à': "a", 'á': "a", 'â': "a",
	'ç': "c", 'ñ': "n", 'ó': "o", 'ô': "o", 'í': "i", 'ú': "u",
}

// Slugify converts a title to a URL-safe slug. German umlauts and ß are
// transliterated ("Köln" becomes "koeln").
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		case transliterations[r] != "":
			b.WriteString(transliterations[r])
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RelatedEvents returns up to n other posts from the same location.
func RelatedEvents(current Post, posts []Post, n int) []Post {
	var related []Post
	for _, p := range posts {
		if len(related) == n {
			break
		}
		if p.Slug == current.Slug || current.Location == "" {
			continue
		}
		if normalizeLocation(p.Location) == normalizeLocation(current.Location) {
			related = append(related, p)
		}
	}
	return related
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}
