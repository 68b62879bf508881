package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Recorder persists views. *Store implements it.
type Recorder interface {
	Record(ctx context.Context, v View) error
	RecordBot(ctx context.Context, path string, at time.Time) error
}

// Tracker records successful page views of the routes it wraps.
type Tracker struct {
	rec    Recorder
	hasher Hasher
	host   string
	log    *zap.Logger
	now    func() time.Time
	// lang returns the request's display language.
	lang func(echo.Context) string
}

// NewTracker returns a tracker writing to rec. ownHost is the site's host
// name, used to tell internal navigation from external referrers.
func NewTracker(rec Recorder, hasher Hasher, ownHost string, lang func(echo.Context) string, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	if lang == nil {
		lang = func(echo.Context) string { return "" }
	}
	return &Tracker{rec: rec, hasher: hasher, host: ownHost, log: log, now: time.Now, lang: lang}
}

// Middleware counts GET requests answered with 200. htmx fragment requests
// and requests carrying DNT: 1 are not counted. Recording failures are
// logged and never reach the visitor.
func (t *Tracker) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			req := c.Request()
			if err != nil || req.Method != http.MethodGet || c.Response().Status != http.StatusOK {
				return err
			}
			if req.Header.Get("HX-Request") == "true" || req.Header.Get("DNT") == "1" {
				return nil
			}
			t.track(c)
			return nil
		}
	}
}

func (t *Tracker) track(c echo.Context) {
	req := c.Request()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 2*time.Second)
	defer cancel()

	now := t.now()
	path := req.URL.Path
	ua := req.UserAgent()
	if IsBot(ua) {
		if err := t.rec.RecordBot(ctx, path, now); err != nil {
			t.log.Warn("record bot view", zap.String("path", path), zap.Error(err))
		}
		return
	}
	v := View{
		Path:      path,
		VisitorID: t.hasher.VisitorID(c.RealIP(), ua, now),
		Device:    Device(ua),
		Referrer:  Referrer(req.Referer(), t.host),
		Lang:      t.lang(c),
		Timestamp: now,
	}
	if err := t.rec.Record(ctx, v); err != nil {
		t.log.Warn("record view", zap.String("path", path), zap.Error(err))
	}
}
