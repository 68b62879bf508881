package legacy

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/eventsite/content"
)

// LocalizeStats summarizes one localization pass. Each distinct remote URL
// counts once.
type LocalizeStats struct {
	Downloaded int
	Existing   int
	Failed     int
}

// Localizer copies remote images into a local directory and rewrites the
// references to point at the local copies.
type Localizer struct {
	fetch  Fetcher
	dir    string
	prefix string
	log    *zap.Logger
}

// NewLocalizer stores files in dir and rewrites URLs to prefix + "/" + file.
func NewLocalizer(f Fetcher, dir, prefix string, log *zap.Logger) *Localizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Localizer{fetch: f, dir: dir, prefix: strings.TrimRight(prefix, "/"), log: log}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true, ".avif": true}

// LocalName is the stable file name for a remote image: the md5 of the URL
// plus the URL's image extension (".jpg" when it has none).
func LocalName(remote string) string {
	sum := md5.Sum([]byte(remote))
	ext := ".jpg"
	if u, err := url.Parse(remote); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); imageExts[e] {
			ext = e
		}
	}
	return hex.EncodeToString(sum[:]) + ext
}

// Localize returns copies of posts with image blocks, covers and image
// lists pointing at local files. A file that already exists is not fetched
// again, so running the pass twice downloads nothing the second time.
// Failed downloads keep the remote URL.
func (l *Localizer) Localize(ctx context.Context, posts []ScrapedPost) ([]ScrapedPost, LocalizeStats, error) {
	var stats LocalizeStats
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, stats, fmt.Errorf("create media dir: %w", err)
	}
	resolved := make(map[string]string)
	resolve := func(remote string) (string, error) {
		if !isRemote(remote) {
			return remote, nil
		}
		if local, ok := resolved[remote]; ok {
			return local, nil
		}
		local, err := l.localize(ctx, remote, &stats)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			stats.Failed++
			l.log.Warn("image download failed, keeping remote url", zap.String("url", remote), zap.Error(err))
			local = remote
		}
		resolved[remote] = local
		return local, nil
	}

	out := make([]ScrapedPost, len(posts))
	for i, p := range posts {
		cp := p
		cp.Blocks = make(content.Blocks, len(p.Blocks))
		for j, b := range p.Blocks {
			if img, ok := b.(content.Image); ok {
				u, err := resolve(img.URL)
				if err != nil {
					return nil, stats, err
				}
				img.URL = u
				b = img
			}
			cp.Blocks[j] = b
		}
		if p.CoverImage != nil {
			u, err := resolve(*p.CoverImage)
			if err != nil {
				return nil, stats, err
			}
			cp.CoverImage = &u
		}
		if p.Images != nil {
			cp.Images = make([]string, len(p.Images))
			for j, remote := range p.Images {
				u, err := resolve(remote)
				if err != nil {
					return nil, stats, err
				}
				cp.Images[j] = u
			}
		}
		out[i] = cp
	}
	l.log.Info("localization finished",
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("existing", stats.Existing),
		zap.Int("failed", stats.Failed))
	return out, stats, nil
}

func (l *Localizer) localize(ctx context.Context, remote string, stats *LocalizeStats) (string, error) {
	name := LocalName(remote)
	local := l.prefix + "/" + name
	dst := filepath.Join(l.dir, name)
	if _, err := os.Stat(dst); err == nil {
		stats.Existing++
		return local, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	body, err := l.fetch.Fetch(ctx, remote)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(dst, body); err != nil {
		return "", err
	}
	stats.Downloaded++
	return local, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func isRemote(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
