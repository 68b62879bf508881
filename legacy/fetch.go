package legacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Fetcher retrieves the body of a URL. Implementations must be safe to call
// sequentially; the pipeline never fetches concurrently.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CollyFetcher fetches through a single colly collector whose limit rule
// enforces one request at a time with a fixed delay between requests.
type CollyFetcher struct {
	c   *colly.Collector
	log *zap.Logger
}

// NewCollyFetcher configures a collector from cfg.
func NewCollyFetcher(cfg Config, log *zap.Logger) (*CollyFetcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(50<<20),
	)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("colly limit rule: %w", err)
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	return &CollyFetcher{c: c, log: log}, nil
}

// Fetch visits url and returns the response body. Non-2xx responses are errors.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Clones share the backend and with it the limit rule.
	c := f.c.Clone()
	var body []byte
	var status int
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
	})
	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("fetch %s (status %d): %w", url, status, err)
	}
	c.Wait()
	if body == nil {
		return nil, errors.New("fetch " + url + ": empty response")
	}
	f.log.Debug("fetched", zap.String("url", url), zap.Int("status", status), zap.Int("bytes", len(body)))
	return body, nil
}
