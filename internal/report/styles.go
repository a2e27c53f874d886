package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header  lipgloss.Style
	uri     lipgloss.Style
	subtle  lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	done    lipgloss.Style
	cell    lipgloss.Style
	heading lipgloss.Style
}

// newStyles binds the palette to r so color output follows the writer the
// renderer was created for.
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8942E1")),
		uri:     r.NewStyle().Foreground(lipgloss.Color("252")),
		subtle:  r.NewStyle().Foreground(lipgloss.Color("241")),
		ok:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		err:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		done:    r.NewStyle().Bold(true),
		cell:    r.NewStyle().Padding(0, 1),
		heading: r.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#3AC4BA")),
	}
}
