package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"djedi-migrate/internal/core/migrate"
)

// Progress prints a line per processing step. Failures go to errW.
type Progress struct {
	out  *errWriter
	errW *errWriter
	st   styles
}

// NewProgress returns a Progress observer.
func NewProgress(w, errW io.Writer) *Progress {
	return &Progress{
		out:  &errWriter{w: w},
		errW: &errWriter{w: errW},
		st:   newStyles(lipgloss.NewRenderer(w)),
	}
}

// Observe implements migrate.Observer.
func (p *Progress) Observe(e migrate.Event) {
	switch e.Kind {
	case migrate.EventStarted:
		p.out.println("")
		p.out.println(p.st.header.Render("#### " + e.URI))
	case migrate.EventRequest:
		p.out.println(fmt.Sprintf("%-4s %s", e.Method, p.st.subtle.Render(e.URL)))
	case migrate.EventData:
		p.out.println(fmt.Sprintf("DATA %s %s", e.Preview, p.st.subtle.Render("("+humanize.Bytes(uint64(e.Size))+")")))
	case migrate.EventSame:
		p.out.println(p.st.subtle.Render("SAME"))
	case migrate.EventDryRun:
		p.out.println(p.st.warn.Render("(dry-run)"))
	case migrate.EventStatus:
		p.out.println(p.st.ok.Render(strconv.Itoa(e.StatusCode)))
	case migrate.EventFinished:
		p.finished(e.Outcome)
	}
}

func (p *Progress) finished(o *migrate.Outcome) {
	if o == nil {
		return
	}
	switch o.Category {
	case migrate.CategoryImages:
		p.out.println(p.st.subtle.Render("SKIP image"))
	case migrate.CategoryNull:
		p.out.println(p.st.warn.Render("SKIP null"))
	case migrate.CategoryFail:
		msg := "FAIL " + o.Error
		if o.DraftSaved {
			msg += " " + DraftSavedNote
		}
		p.errW.println(msg)
	}
}

// Err returns the first write error seen on either writer.
func (p *Progress) Err() error {
	if p.out.err != nil {
		return p.out.err
	}
	return p.errW.err
}
