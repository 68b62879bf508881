package eventsite

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/eventsite/content"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminNew(c echo.Context) error {
	post := Post{
		EventDate: time.Now().Format(time.DateOnly),
		Blocks:    []content.Block{},
	}
	return Render(c, a.Views.AdminEdit(post, CsrfToken(c)))
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminEdit(post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.log.Warn("login rate limited", zap.String("ip", ip))
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.log.Info("admin login", zap.String("ip", ip))
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// postForm is the submitted edit form before validation.
type postForm struct {
	Title        string
	Slug         string
	OriginalSlug string
	Location     string
	Date         string
	CoverImage   string
	Blocks       string
	Published    bool
	Legacy       bool
}

func readPostForm(c echo.Context) postForm {
	return postForm{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Slug:         strings.TrimSpace(c.FormValue("slug")),
		OriginalSlug: strings.TrimSpace(c.FormValue("original_slug")),
		Location:     strings.TrimSpace(c.FormValue("location")),
		Date:         strings.TrimSpace(c.FormValue("date")),
		CoverImage:   strings.TrimSpace(c.FormValue("cover_image")),
		Blocks:       c.FormValue("blocks"),
		Published:    c.FormValue("published") != "",
		Legacy:       c.FormValue("is_legacy") == "true",
	}
}

// toPost validates the form. The returned message is meant for the admin.
func (f postForm) toPost(now time.Time) (Post, string) {
	slug := Slugify(f.Slug)
	if slug == "" {
		slug = Slugify(f.Title)
	}
	if slug == "" {
		return Post{}, "Slug is required. Add a title or slug."
	}
	date := f.Date
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return Post{}, "Invalid date format. Use YYYY-MM-DD."
	}
	blocks, err := content.Parse(f.Blocks)
	if err != nil {
		return Post{}, "The block document could not be read."
	}
	if err := content.Validate(blocks); err != nil {
		return Post{}, "Media blocks need an http(s) or site-relative URL."
	}
	if f.CoverImage != "" && content.Validate([]content.Block{content.Image{URL: f.CoverImage}}) != nil {
		return Post{}, "The cover image needs an http(s) or site-relative URL."
	}
	return Post{
		Slug:       slug,
		Title:      f.Title,
		Location:   f.Location,
		EventDate:  date,
		CoverImage: f.CoverImage,
		Blocks:     blocks,
		IsLegacy:   f.Legacy,
		Published:  f.Published,
	}, ""
}

func (a *App) handleAdminSave(c echo.Context) error {
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	form := readPostForm(c)
	post, msg := form.toPost(time.Now())
	if msg != "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
	}
	if form.OriginalSlug != post.Slug {
		taken, err := a.Store.SlugExists(c.Request().Context(), post.Slug)
		if err != nil {
			return err
		}
		if taken {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape("Slug already taken: "+post.Slug))
		}
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	if form.OriginalSlug != "" && form.OriginalSlug != post.Slug {
		if err := a.Store.DeletePost(form.OriginalSlug); err != nil {
			return fmt.Errorf("remove renamed post %q: %w", form.OriginalSlug, err)
		}
	}
	a.Cache.Invalidate()
	a.log.Info("post saved", zap.String("slug", post.Slug), zap.Int("blocks", len(post.Blocks)))
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	slug := c.Param("slug")
	if err := a.Store.DeletePost(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.log.Info("post deleted", zap.String("slug", slug))
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

// statsPeriods are the periods the stats page offers, in days.
var statsPeriods = map[int]bool{7: true, 30: true, 90: true, 365: true}

func (a *App) handleAdminStats(c echo.Context) error {
	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil || !statsPeriods[days] {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	summary, err := a.Stats.Summary(c.Request().Context(), since, 20)
	if err != nil {
		return fmt.Errorf("stats summary: %w", err)
	}
	return Render(c, a.Views.AdminStats(summary, days, CsrfToken(c)))
}
