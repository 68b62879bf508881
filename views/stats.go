package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/eventsite/stats"
)

var statsPeriods = []int{7, 30, 90, 365}

func (v *views) adminStats(sum stats.Summary, days int, csrf string) templ.Component {
	return v.adminLayout("Statistik", csrf, component(func(p *page) {
		p.raw(`<section id="stats"><nav class="periods">`)
		for _, d := range statsPeriods {
			p.raw(`<a href="/admin/stats/?days=`)
			p.raw(strconv.Itoa(d))
			p.raw(`"`)
			if d == days {
				p.raw(` class="active"`)
			}
			p.raw(`>`)
			p.raw(strconv.Itoa(d))
			p.raw(` Tage</a>`)
		}
		p.raw(`</nav><p class="since">Seit `)
		p.text(FormatDate(sum.Since, "de"))
		p.raw(`</p><dl class="totals"><dt>Aufrufe</dt><dd>`)
		p.raw(strconv.Itoa(sum.Views))
		p.raw(`</dd><dt>Besucher</dt><dd>`)
		p.raw(strconv.Itoa(sum.Visitors))
		p.raw(`</dd><dt>Crawler</dt><dd>`)
		p.raw(strconv.Itoa(sum.BotViews))
		p.raw(`</dd></dl>`)

		p.raw(`<h2>Seiten</h2><table><thead><tr><th>Pfad</th><th>Aufrufe</th><th>Besucher</th></tr></thead><tbody>`)
		for _, pc := range sum.TopPaths {
			p.raw(`<tr><td><a href="`)
			p.text(pc.Path)
			p.raw(`">`)
			p.text(pc.Path)
			p.raw(`</a></td><td>`)
			p.raw(strconv.Itoa(pc.Views))
			p.raw(`</td><td>`)
			p.raw(strconv.Itoa(pc.Visitors))
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)

		countTable(p, "Herkunft", sum.Referrers)
		countTable(p, "Geräte", sum.Devices)

		peak := 0
		for _, d := range sum.Daily {
			if d.Views > peak {
				peak = d.Views
			}
		}
		p.raw(`<h2>Verlauf</h2><ol class="daily">`)
		for _, d := range sum.Daily {
			pct := 0
			if peak > 0 {
				pct = d.Views * 100 / peak
			}
			p.raw(`<li title="`)
			p.text(d.Date)
			p.raw(`"><span class="bar" style="width:`)
			p.raw(strconv.Itoa(pct))
			p.raw(`%"></span>`)
			p.text(FormatDate(d.Date, "de"))
			p.raw(` · `)
			p.raw(strconv.Itoa(d.Views))
			p.raw(`</li>`)
		}
		p.raw(`</ol></section>`)
	}))
}

func countTable(p *page, title string, rows []stats.NameCount) {
	p.raw(`<h2>`)
	p.text(title)
	p.raw(`</h2><table><tbody>`)
	for _, r := range rows {
		p.raw(`<tr><td>`)
		p.text(r.Name)
		p.raw(`</td><td>`)
		p.raw(strconv.Itoa(r.Count))
		p.raw(`</td></tr>`)
	}
	p.raw(`</tbody></table>`)
}
