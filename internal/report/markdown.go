package report

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"djedi-migrate/internal/core/migrate"
)

func (d Document) writeMarkdown(w io.Writer) error {
	md := markdown.NewMarkdown(w)

	md.H1("Djedi migration report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Language", "`" + d.Language + "`"},
			{"Started", d.StartedAt.Format(time.RFC3339)},
			{"Duration", d.FinishedAt.Sub(d.StartedAt).Round(time.Millisecond).String()},
			{"Dry run", strconv.FormatBool(d.DryRun)},
		},
	})
	md.PlainText("")

	switch {
	case d.Interrupted:
		md.Warningf("The run was interrupted after %d URIs; the rest were not processed.", d.Counts.Total())
		md.PlainText("")
	case d.DryRun:
		md.Note("Dry run: nothing was written to the destination.")
		md.PlainText("")
	}

	md.H2("Counts")
	md.PlainText("")
	header := make([]string, len(migrate.Categories))
	row := make([]string, len(migrate.Categories))
	for i, cat := range migrate.Categories {
		header[i] = string(cat)
		row[i] = strconv.Itoa(d.Counts.Of(cat))
	}
	md.Table(markdown.TableSet{Header: header, Rows: [][]string{row}})
	md.PlainText("")

	for _, g := range d.Groups {
		md.H2(string(g.Category) + " (" + strconv.Itoa(len(g.Outcomes)) + ")")
		md.PlainText("")
		items := make([]string, len(g.Outcomes))
		for i, o := range g.Outcomes {
			items[i] = markdownItem(o)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if d.Metrics != nil {
		d.writeMetrics(md)
	}
	return md.Build()
}

func markdownItem(o migrate.Outcome) string {
	item := "`" + o.URI + "`"
	switch o.Category {
	case migrate.CategorySuccess:
		item += " " + o.Preview
	case migrate.CategoryFail:
		item += " " + o.Error
		if o.DraftSaved {
			item += " " + DraftSavedNote
		}
	}
	return item
}

func (d Document) writeMetrics(md *markdown.Markdown) {
	m := d.Metrics
	md.H2("Requests")
	md.PlainText("")

	hosts := make([]string, 0, len(m.Hosts))
	for h := range m.Hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	rows := make([][]string, 0, len(hosts)+1)
	for _, h := range hosts {
		hc := m.Hosts[h]
		rows = append(rows, []string{h, strconv.FormatInt(hc.Reads, 10), strconv.FormatInt(hc.Writes, 10)})
	}
	rows = append(rows, []string{"**Total**", strconv.FormatInt(m.ReadRequests, 10), strconv.FormatInt(m.WriteRequests, 10)})
	md.Table(markdown.TableSet{Header: []string{"Host", "Reads", "Writes"}, Rows: rows})
	md.PlainText("")
	md.PlainTextf("Status: %d 2xx, %d 3xx, %d 4xx, %d 5xx, %d transport errors.",
		m.Status2xx, m.Status3xx, m.Status4xx, m.Status5xx, m.TransportErrors)
}
