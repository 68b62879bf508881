package views

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/eringen/eventsite"
	"github.com/eringen/eventsite/render"
)

func (v *views) home(pg eventsite.Page, upcoming []eventsite.Post) templ.Component {
	return v.layout(pg, "", component(func(p *page) {
		p.raw(`<section class="hero"><h1>`)
		p.text(pg.SiteName)
		p.raw(`</h1>`)
		if v.site.Description != "" {
			p.raw(`<p>`)
			p.text(v.site.Description)
			p.raw(`</p>`)
		}
		p.raw(`</section><section class="upcoming"><h2>`)
		p.text(label(pg.Lang, "Nächste Veranstaltungen", "Upcoming events"))
		p.raw(`</h2>`)
		if len(upcoming) == 0 {
			p.raw(`<p class="empty">`)
			p.text(label(pg.Lang, "Derzeit sind keine Veranstaltungen geplant.", "No events are scheduled at the moment."))
			p.raw(`</p>`)
		}
		p.raw(`<ul class="event-cards">`)
		for _, post := range upcoming {
			eventCard(p, pg.Lang, post)
		}
		p.raw(`</ul><a class="btn" href="/events/">`)
		p.text(label(pg.Lang, "Alle Veranstaltungen", "All events"))
		p.raw(`</a></section>`)
	}))
}

func (v *views) events(pg eventsite.Page, list eventsite.EventList) templ.Component {
	return v.layout(pg, label(pg.Lang, "Veranstaltungen", "Events"), component(func(p *page) {
		p.raw(`<h1>`)
		p.text(label(pg.Lang, "Veranstaltungen", "Events"))
		p.raw(`</h1><nav class="location-filter">`)
		locationLink(p, "", label(pg.Lang, "Alle Orte", "All locations"), list.Location == "")
		for _, loc := range list.Locations {
			locationLink(p, loc, loc, loc == list.Location)
		}
		p.raw(`</nav>`)
		p.component(v.eventList(pg, list))
	}))
}

func locationLink(p *page, location, text string, active bool) {
	href := "/events/"
	if location != "" {
		href += "?location=" + url.QueryEscape(location)
	}
	partial := "/events/?partial=list"
	if location != "" {
		partial += "&location=" + url.QueryEscape(location)
	}
	p.raw(`<a href="`)
	p.text(href)
	p.raw(`" hx-get="`)
	p.text(partial)
	p.raw(`" hx-target="#event-list" hx-swap="outerHTML" hx-push-url="`)
	p.text(href)
	p.raw(`"`)
	if active {
		p.raw(` class="active" aria-current="true"`)
	}
	p.raw(`>`)
	p.text(text)
	p.raw(`</a>`)
}

// eventList is the part of the events page swapped by the location filter.
func (v *views) eventList(pg eventsite.Page, list eventsite.EventList) templ.Component {
	return component(func(p *page) {
		p.raw(`<div id="event-list"><section><h2>`)
		p.text(label(pg.Lang, "Kommende Veranstaltungen", "Upcoming events"))
		p.raw(`</h2>`)
		if len(list.Upcoming) == 0 {
			p.raw(`<p class="empty">`)
			p.text(label(pg.Lang, "Keine kommenden Veranstaltungen.", "No upcoming events."))
			p.raw(`</p>`)
		}
		p.raw(`<ul class="event-cards">`)
		for _, post := range list.Upcoming {
			eventCard(p, pg.Lang, post)
		}
		p.raw(`</ul></section>`)
		if len(list.Past) > 0 {
			p.raw(`<section class="past"><h2>`)
			p.text(label(pg.Lang, "Vergangene Veranstaltungen", "Past events"))
			p.raw(`</h2><ul class="event-cards">`)
			for _, post := range list.Past {
				eventCard(p, pg.Lang, post)
			}
			p.raw(`</ul></section>`)
		}
		p.raw(`</div>`)
	})
}

func eventCard(p *page, lang string, post eventsite.Post) {
	p.raw(`<li class="event-card"><a href="`)
	p.text(post.Link)
	p.raw(`">`)
	if cover := render.SafeURL(post.Cover()); cover != "" {
		p.raw(`<img src="`)
		p.raw(cover)
		p.raw(`" alt="" loading="lazy"/>`)
	}
	p.raw(`<h3>`)
	p.text(post.Title)
	p.raw(`</h3><p class="meta"><time datetime="`)
	p.text(post.EventDate)
	p.raw(`">`)
	p.text(FormatDate(post.EventDate, lang))
	p.raw(`</time>`)
	if post.Location != "" {
		p.raw(` · `)
		p.text(post.Location)
	}
	p.raw(`</p>`)
	if ex := post.Excerpt(160); ex != "" {
		p.raw(`<p>`)
		p.text(ex)
		p.raw(`</p>`)
	}
	p.raw(`</a></li>`)
}

func (v *views) event(pg eventsite.Page, post eventsite.Post, related []eventsite.Post) templ.Component {
	return v.layout(pg, post.Title, component(func(p *page) {
		p.raw(`<article class="event"><header><h1>`)
		p.text(post.Title)
		p.raw(`</h1><p class="meta"><time datetime="`)
		p.text(post.EventDate)
		p.raw(`">`)
		p.text(FormatDate(post.EventDate, pg.Lang))
		p.raw(`</time>`)
		if post.Location != "" {
			p.raw(` · <a href="/events/?location=`)
			p.text(url.QueryEscape(post.Location))
			p.raw(`">`)
			p.text(post.Location)
			p.raw(`</a>`)
		}
		p.raw(`</p></header>`)
		if post.CoverImage != "" {
			if cover := render.SafeURL(post.CoverImage); cover != "" {
				p.raw(`<img class="cover" src="`)
				p.raw(cover)
				p.raw(`" alt=""/>`)
			}
		}
		p.raw(`<div class="blocks">`)
		p.component(render.Blocks(post.Blocks))
		p.raw(`</div></article>`)

		if len(related) > 0 {
			p.raw(`<aside class="related"><h2>`)
			p.text(label(pg.Lang, "Weitere Veranstaltungen in ", "More events in ") + post.Location)
			p.raw(`</h2><ul class="event-cards">`)
			for _, r := range related {
				eventCard(p, pg.Lang, r)
			}
			p.raw(`</ul></aside>`)
		}
	}))
}

func (v *views) notFound() templ.Component {
	return v.layout(v.fallbackPage(), "404", component(func(p *page) {
		p.raw(`<section class="error"><h1>404</h1><p>Seite nicht gefunden. / Page not found.</p><a href="/">Start / Home</a></section>`)
	}))
}

func (v *views) serverError() templ.Component {
	return v.layout(v.fallbackPage(), "500", component(func(p *page) {
		p.raw(`<section class="error"><h1>500</h1><p>Etwas ist schiefgelaufen. / Something went wrong.</p></section>`)
	}))
}
