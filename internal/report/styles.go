package report

import "github.com/charmbracelet/lipgloss"

var (
	colorTitle   = lipgloss.Color("#FFC107") // yellow
	colorDivider = lipgloss.Color("#e53935") // red
	colorGood    = lipgloss.Color("#8BC34A") // lime green
)

// Styles colors the report chrome. Field lines stay unstyled so the
// report pipes cleanly; complexity scores are the one exception.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Divider lipgloss.Style
	Good    lipgloss.Style
	Warn    lipgloss.Style
	Bad     lipgloss.Style
}

// DefaultStyles returns the colored terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(colorTitle).Underline(true),
		Header:  lipgloss.NewStyle().Foreground(colorTitle).Underline(true),
		Divider: lipgloss.NewStyle().Foreground(colorDivider).Bold(true),
		Good:    lipgloss.NewStyle().Foreground(colorGood),
		Warn:    lipgloss.NewStyle().Foreground(colorTitle),
		Bad:     lipgloss.NewStyle().Foreground(colorDivider),
	}
}

// PlainStyles returns styles that render text untouched, for piped output
// and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Header:  plain,
		Divider: plain,
		Good:    plain,
		Warn:    plain,
		Bad:     plain,
	}
}

// complexityStyle grades a complexity score: under five is healthy, under
// fifteen is worth a look, the rest is red.
func (s Styles) complexityStyle(cx float64) lipgloss.Style {
	switch {
	case cx < 5:
		return s.Good
	case cx < 15:
		return s.Warn
	default:
		return s.Bad
	}
}
