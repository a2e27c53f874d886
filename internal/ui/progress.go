package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"djedi-migrate/internal/core/migrate"
)

const recentLimit = 5

type startedMsg struct {
	index int
	uri   string
}

type finishedMsg struct {
	outcome migrate.Outcome
}

type doneMsg struct{}

// ProgressModel renders a live view of a migration run.
type ProgressModel struct {
	total    int
	done     int
	current  string
	counts   migrate.Counts
	recent   []migrate.Outcome
	dryRun   bool
	finished bool

	spinner spinner.Model
	bar     progress.Model
}

// NewProgressModel creates the view for total URIs.
func NewProgressModel(total int, dryRun bool) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = subtleStyle
	return ProgressModel{
		total:   total,
		dryRun:  dryRun,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m ProgressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		m.current = msg.uri
		return m, nil
	case finishedMsg:
		m.done++
		m.current = ""
		m.add(msg.outcome)
		return m, nil
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if w := msg.Width - 4; w > 10 && w < 80 {
			m.bar.Width = w
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) add(o migrate.Outcome) {
	switch o.Category {
	case migrate.CategorySuccess:
		m.counts.Success++
	case migrate.CategorySame:
		m.counts.Same++
	case migrate.CategoryImages:
		m.counts.Images++
	case migrate.CategoryNull:
		m.counts.Null++
	case migrate.CategoryFail:
		m.counts.Fail++
	}
	m.recent = append(m.recent, o)
	if len(m.recent) > recentLimit {
		m.recent = m.recent[len(m.recent)-recentLimit:]
	}
}

func (m ProgressModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m ProgressModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Migrating %d/%d", m.done, m.total)
	if m.dryRun {
		title += " (dry-run)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString("\n")

	parts := make([]string, 0, len(migrate.Categories))
	for _, c := range migrate.Categories {
		parts = append(parts, categoryStyle(c).Render(fmt.Sprintf("%s %d", c, m.counts.Of(c))))
	}
	b.WriteString(strings.Join(parts, subtleStyle.Render(" · ")))
	b.WriteString("\n")

	for _, o := range m.recent {
		b.WriteString(categoryStyle(o.Category).Render(fmt.Sprintf("%-7s", o.Category)))
		b.WriteString(" ")
		b.WriteString(o.URI)
		b.WriteString("\n")
	}

	switch {
	case m.finished:
		b.WriteString(okStyle.Render("✓ done"))
	case m.current != "":
		b.WriteString(m.spinner.View() + " " + m.current)
	}
	b.WriteString("\n")
	return b.String()
}

// Observer forwards migration events to the program.
type Observer struct {
	p *tea.Program
}

func (o Observer) Observe(e migrate.Event) {
	switch e.Kind {
	case migrate.EventStarted:
		o.p.Send(startedMsg{index: e.Index, uri: e.URI})
	case migrate.EventFinished:
		if e.Outcome != nil {
			o.p.Send(finishedMsg{outcome: *e.Outcome})
		}
	}
}

// Run shows the progress view on out while work runs. The observer passed to
// work feeds the view. Cancelling ctx closes the view; Run still waits for
// work to return.
func Run(ctx context.Context, total int, dryRun bool, out io.Writer, work func(migrate.Observer) *migrate.Result) (*migrate.Result, error) {
	p := tea.NewProgram(
		NewProgressModel(total, dryRun),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)

	results := make(chan *migrate.Result, 1)
	go func() {
		results <- work(Observer{p: p})
		p.Send(doneMsg{})
	}()

	_, err := p.Run()
	res := <-results
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return res, fmt.Errorf("progress view: %w", err)
	}
	return res, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8942E1"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

func categoryStyle(c migrate.Category) lipgloss.Style {
	switch c {
	case migrate.CategorySuccess:
		return okStyle
	case migrate.CategoryNull:
		return warnStyle
	case migrate.CategoryFail:
		return errorStyle
	}
	return subtleStyle
}
