package render

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// EmbedKind says how a video block is displayed.
type EmbedKind int

const (
	EmbedNone EmbedKind = iota
	EmbedIframe
	EmbedFile
)

var (
	reVideoID    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	videoExts    = map[string]bool{".mp4": true, ".webm": true, ".ogg": true, ".ogv": true, ".mov": true, ".m4v": true}
	youtubeHosts = map[string]bool{"youtube.com": true, "m.youtube.com": true, "youtube-nocookie.com": true, "music.youtube.com": true}
)

// Embed resolves a video URL to its display form. Known providers are
// rewritten to their player URL, direct video files play natively, and
// anything else is embedded as-is.
func Embed(raw string) (EmbedKind, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EmbedNone, ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return EmbedNone, ""
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(u.Path, "/") {
		if videoExts[strings.ToLower(path.Ext(u.Path))] {
			return EmbedFile, raw
		}
		return EmbedIframe, raw
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return EmbedNone, ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case youtubeHosts[host]:
		id := u.Query().Get("v")
		if id == "" {
			id = lastSegment(u.Path)
		}
		if reVideoID.MatchString(id) && id != "watch" {
			return EmbedIframe, "https://www.youtube-nocookie.com/embed/" + id
		}
	case host == "youtu.be":
		if id := lastSegment(u.Path); reVideoID.MatchString(id) {
			return EmbedIframe, "https://www.youtube-nocookie.com/embed/" + id
		}
	case host == "vimeo.com" || host == "player.vimeo.com":
		if id := lastSegment(u.Path); reVideoID.MatchString(id) {
			return EmbedIframe, "https://player.vimeo.com/video/" + id
		}
	}

	if videoExts[strings.ToLower(path.Ext(u.Path))] {
		return EmbedFile, raw
	}
	return EmbedIframe, raw
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
