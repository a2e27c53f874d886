package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"djedi-migrate/internal/core/migrate"
)

// DraftSavedNote marks failures whose draft was stored but not published.
const DraftSavedNote = "(draft saved, not published)"

// Console prints the grouped summary of a run.
type Console struct {
	w  io.Writer
	st styles
}

// NewConsole returns a Console writing to w. Colors are used only when w is a
// terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

// Summary writes one block per non-empty category in report order, then
// "Done." and the counts table.
func (c *Console) Summary(res *migrate.Result) error {
	ew := &errWriter{w: c.w}
	for _, cat := range migrate.Categories {
		outcomes := res.Get(cat)
		if len(outcomes) == 0 {
			continue
		}
		ew.println("")
		ew.println(c.st.header.Render(fmt.Sprintf("#### %s (%d)", cat, len(outcomes))))
		for _, o := range outcomes {
			ew.println(c.line(o))
		}
	}
	ew.println("")
	if res.Interrupted {
		ew.println(c.st.warn.Render("Interrupted."))
	}
	ew.println(c.st.done.Render("Done."))
	ew.println(c.countsTable(res.Counts()))
	return ew.err
}

func (c *Console) line(o migrate.Outcome) string {
	uri := c.st.uri.Render(o.URI)
	switch o.Category {
	case migrate.CategorySuccess:
		return uri + "  " + o.Preview
	case migrate.CategoryFail:
		msg := c.st.err.Render(o.Error)
		if o.DraftSaved {
			msg += " " + c.st.warn.Render(DraftSavedNote)
		}
		return uri + "  " + msg
	}
	return uri
}

func (c *Console) countsTable(counts migrate.Counts) string {
	headers := make([]string, len(migrate.Categories))
	row := make([]string, len(migrate.Categories))
	for i, cat := range migrate.Categories {
		headers[i] = string(cat)
		row[i] = strconv.Itoa(counts.Of(cat))
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(c.st.subtle).
		Headers(headers...).
		Row(row...).
		StyleFunc(func(r, col int) lipgloss.Style {
			if r == table.HeaderRow {
				return c.st.heading
			}
			return c.st.cell
		})
	return t.Render()
}

// errWriter remembers the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
