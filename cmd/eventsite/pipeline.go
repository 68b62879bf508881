package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/legacy"
)

// pipeline runs the legacy import stages. Each stage reads the previous
// stage's snapshot from the output directory and writes its own, so stages
// can be rerun one at a time.
type pipeline struct {
	cfg    legacy.Config
	dbPath string
	log    *zap.Logger
}

func (p *pipeline) snapshot(name string) string {
	return filepath.Join(p.cfg.OutputDir, name)
}

func (p *pipeline) fetcher() (legacy.Fetcher, error) {
	return legacy.NewCollyFetcher(p.cfg, p.log)
}

func (p *pipeline) discover(ctx context.Context) error {
	f, err := p.fetcher()
	if err != nil {
		return err
	}
	links, err := legacy.Discover(ctx, f, p.cfg, p.log)
	if err != nil {
		return err
	}
	if err := legacy.WriteSnapshot(p.snapshot(legacy.LinksFile), links); err != nil {
		return err
	}
	p.log.Info("discovered event links", zap.Int("links", len(links)))
	return nil
}

func (p *pipeline) scrape(ctx context.Context) error {
	links, err := legacy.ReadSnapshot[[]string](p.snapshot(legacy.LinksFile))
	if err != nil {
		return fmt.Errorf("read links (run discover first): %w", err)
	}
	f, err := p.fetcher()
	if err != nil {
		return err
	}
	posts, err := legacy.NewScraper(f, legacy.NewExtractor(), p.log).Scrape(ctx, links)
	if err != nil {
		return err
	}
	if err := legacy.WriteSnapshot(p.snapshot(legacy.PostsFile), posts); err != nil {
		return err
	}
	p.log.Info("scraped posts", zap.Int("links", len(links)), zap.Int("posts", len(posts)))
	return nil
}

func (p *pipeline) localize(ctx context.Context) error {
	posts, err := legacy.ReadSnapshot[[]legacy.ScrapedPost](p.snapshot(legacy.PostsFile))
	if err != nil {
		return fmt.Errorf("read posts (run scrape first): %w", err)
	}
	f, err := p.fetcher()
	if err != nil {
		return err
	}
	out, stats, err := legacy.NewLocalizer(f, p.cfg.MediaDir, p.cfg.MediaURLPrefix, p.log).Localize(ctx, posts)
	if err != nil {
		return err
	}
	if err := legacy.WriteSnapshot(p.snapshot(legacy.LocalizedPostsFile), out); err != nil {
		return err
	}
	p.log.Info("localized images",
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("existing", stats.Existing),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

// loadSource prefers the localized snapshot and falls back to the raw one.
func (p *pipeline) loadSource() ([]legacy.ScrapedPost, error) {
	posts, err := legacy.ReadSnapshot[[]legacy.ScrapedPost](p.snapshot(legacy.LocalizedPostsFile))
	if errors.Is(err, fs.ErrNotExist) {
		p.log.Warn("no localized snapshot, loading remote image urls")
		posts, err = legacy.ReadSnapshot[[]legacy.ScrapedPost](p.snapshot(legacy.PostsFile))
	}
	if err != nil {
		return nil, fmt.Errorf("read posts (run scrape first): %w", err)
	}
	return posts, nil
}

func (p *pipeline) load(ctx context.Context) error {
	posts, err := p.loadSource()
	if err != nil {
		return err
	}
	store, err := eventsite.NewStore(p.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := legacy.NewLoader(store, p.log).Load(ctx, posts)
	if err != nil {
		return err
	}
	p.log.Info("loaded legacy posts", zap.Int("inserted", n), zap.Int("scraped", len(posts)))
	return nil
}

func (p *pipeline) importAll(ctx context.Context) error {
	for _, stage := range []struct {
		name string
		run  func(context.Context) error
	}{
		{"discover", p.discover},
		{"scrape", p.scrape},
		{"localize", p.localize},
		{"load", p.load},
	} {
		p.log.Info("stage", zap.String("name", stage.name))
		if err := stage.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", stage.name, err)
		}
	}
	return nil
}
