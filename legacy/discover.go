package legacy

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Discover fetches every seed page and collects links to event pages: same
// host as the seed, first path segment a configured city slug, at least one
// further segment, and no denylisted segment. The result is deduplicated by
// exact URL and sorted.
func Discover(ctx context.Context, f Fetcher, cfg Config, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cities := toSet(cfg.CitySlugs)
	deny := toSet(cfg.Denylist)

	found := make(map[string]struct{})
	fetched := 0
	for _, seed := range cfg.Seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base, err := url.Parse(seed)
		if err != nil {
			log.Warn("invalid seed", zap.String("seed", seed), zap.Error(err))
			continue
		}
		body, err := f.Fetch(ctx, seed)
		if err != nil {
			log.Warn("seed fetch failed", zap.String("seed", seed), zap.Error(err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			log.Warn("seed parse failed", zap.String("seed", seed), zap.Error(err))
			continue
		}
		fetched++
		before := len(found)
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if link, ok := eventLink(base, href, cities, deny); ok {
				found[link] = struct{}{}
			}
		})
		log.Info("seed scanned", zap.String("seed", seed), zap.Int("new_links", len(found)-before))
	}
	if fetched == 0 && len(cfg.Seeds) > 0 {
		return nil, errors.New("discover: no seed page could be fetched")
	}

	links := make([]string, 0, len(found))
	for l := range found {
		links = append(links, l)
	}
	sort.Strings(links)
	return links, nil
}

// eventLink resolves href against base and reports whether it points at an
// event page. The returned URL has its fragment removed.
func eventLink(base *url.URL, href string, cities, deny map[string]bool) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return "", false
	}
	if u.Query().Has("lang") {
		return "", false
	}
	segs := pathSegments(u.Path)
	if len(segs) < 2 || !cities[strings.ToLower(segs[0])] {
		return "", false
	}
	for _, s := range segs {
		if deny[strings.ToLower(s)] {
			return "", false
		}
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

func pathSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimSpace(it))] = true
	}
	return set
}
