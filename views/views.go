// Package views holds the site's page components. New returns them as the
// ViewFuncs the eventsite handlers render.
package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/eventsite"
)

// Site is what the views know about the site beyond the per-request Page.
type Site struct {
	Name        string
	Description string
	Language    string
}

// New returns the page components for site.
func New(site Site) eventsite.ViewFuncs {
	if site.Language != "en" {
		site.Language = "de"
	}
	v := &views{site: site}
	return eventsite.ViewFuncs{
		Home:           v.home,
		Events:         v.events,
		EventsPartial:  v.eventList,
		Event:          v.event,
		AdminLogin:     v.adminLogin,
		AdminDashboard: v.adminDashboard,
		AdminEdit:      v.adminEdit,
		AdminEditor:    v.adminEditor,
		AdminMedia:     v.adminMedia,
		AdminStats:     v.adminStats,
		NotFound:       v.notFound,
		ServerError:    v.serverError,
	}
}

type views struct {
	site Site
}

func (v *views) fallbackPage() eventsite.Page {
	return eventsite.Page{Lang: v.site.Language, SiteName: v.site.Name}
}

// layout wraps body in the document shell shared by every page.
func (v *views) layout(pg eventsite.Page, title string, body templ.Component) templ.Component {
	return component(func(p *page) {
		fullTitle := pg.SiteName
		if title != "" {
			fullTitle = title + " | " + pg.SiteName
		}
		p.raw(`<!doctype html><html lang="`)
		p.text(pg.Lang)
		p.raw(`"><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>`)
		p.text(fullTitle)
		p.raw(`</title>`)
		if v.site.Description != "" {
			p.raw(`<meta name="description" content="`)
			p.text(v.site.Description)
			p.raw(`"/>`)
		}
		p.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"/>`)
		p.raw(`<link rel="stylesheet" href="/public/styles.css"/><script src="/public/htmx.min.js" defer></script></head><body>`)

		p.raw(`<header class="site-header"><a class="brand" href="/">`)
		p.text(pg.SiteName)
		p.raw(`</a><nav><a href="/">`)
		p.text(label(pg.Lang, "Start", "Home"))
		p.raw(`</a><a href="/events/">`)
		p.text(label(pg.Lang, "Veranstaltungen", "Events"))
		p.raw(`</a>`)
		other, otherLabel := "en", "English"
		if pg.Lang == "en" {
			other, otherLabel = "de", "Deutsch"
		}
		p.raw(`<a class="lang-switch" hreflang="`)
		p.raw(other)
		p.raw(`" href="`)
		p.text(pg.Path + "?lang=" + other)
		p.raw(`">`)
		p.raw(otherLabel)
		p.raw(`</a></nav></header><main>`)

		p.component(body)

		p.raw(`</main><footer class="site-footer"><p>© `)
		p.text(pg.SiteName)
		p.raw(`</p></footer></body></html>`)
	})
}

// adminLayout is the shell for admin pages. htmx requests send the CSRF
// token from hx-headers on the body.
func (v *views) adminLayout(title, csrf string, body templ.Component) templ.Component {
	return component(func(p *page) {
		p.raw(`<!doctype html><html lang="de"><head><meta charset="utf-8"/><meta name="robots" content="noindex"/><title>`)
		p.text(title + " | " + v.site.Name)
		p.raw(`</title><link rel="stylesheet" href="/public/styles.css"/><script src="/public/htmx.min.js" defer></script></head>`)
		p.raw(`<body class="admin" hx-headers="`)
		p.raw(jsonAttr(map[string]string{"X-CSRF-Token": csrf}))
		p.raw(`"><header class="admin-header"><a href="/admin/">Admin</a><a href="/admin/new/">Neuer Beitrag</a><a href="/admin/media/">Medien</a><a href="/admin/stats/">Statistik</a>`)
		p.raw(`<form method="post" action="/admin/logout/"><input type="hidden" name="_csrf" value="`)
		p.text(csrf)
		p.raw(`"/><button type="submit">Abmelden</button></form></header><main>`)
		p.component(body)
		p.raw(`</main></body></html>`)
	})
}
