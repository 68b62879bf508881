package legacy

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Scraper fetches and extracts pages one after another.
type Scraper struct {
	fetch   Fetcher
	extract *Extractor
	log     *zap.Logger
}

// NewScraper returns a scraper using f for requests. A nil extractor means
// NewExtractor().
func NewScraper(f Fetcher, e *Extractor, log *zap.Logger) *Scraper {
	if e == nil {
		e = NewExtractor()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scraper{fetch: f, extract: e, log: log}
}

// Scrape extracts every link in order. Pages that fail to fetch or parse,
// pages without content and pages whose title was already accepted in this
// run are logged and skipped. Only context cancellation aborts the batch.
func (s *Scraper) Scrape(ctx context.Context, links []string) ([]ScrapedPost, error) {
	var posts []ScrapedPost
	titles := make(map[string]bool)
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return posts, err
		}
		log := s.log.With(zap.String("url", link), zap.Int("n", i+1), zap.Int("of", len(links)))

		body, err := s.fetch.Fetch(ctx, link)
		if err != nil {
			log.Warn("skipping page: fetch failed", zap.Error(err))
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			log.Warn("skipping page: parse failed", zap.Error(err))
			continue
		}
		post := s.extract.Extract(doc, link)
		if len(post.Blocks) == 0 {
			log.Warn("skipping page: no content found")
			continue
		}
		if titles[post.Title] {
			log.Info("skipping page: duplicate title", zap.String("title", post.Title))
			continue
		}
		titles[post.Title] = true
		posts = append(posts, post)
		log.Info("scraped", zap.String("title", post.Title), zap.Int("blocks", len(post.Blocks)))
	}
	s.log.Info("scrape finished", zap.Int("accepted", len(posts)), zap.Int("links", len(links)))
	return posts, nil
}
