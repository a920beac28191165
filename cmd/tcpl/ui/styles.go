// Package ui is the interactive browser for scan results.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared with the report renderer.
var (
	colorYellow = lipgloss.Color("#FFC107")
	colorGreen  = lipgloss.Color("#8BC34A")
	colorRed    = lipgloss.Color("#e53935")
	colorBlue   = lipgloss.Color("#2196F3")

	lightForeground = lipgloss.Color("#101F38")
	lightMuted      = lipgloss.Color("#8a919c")
	darkForeground  = lipgloss.Color("#f2f2f2")
	darkMuted       = lipgloss.Color("#5c6773")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: lightForeground,
		Primary:    colorYellow,
		Accent:     colorGreen,
		Muted:      lightMuted,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: darkForeground,
		Primary:    colorYellow,
		Accent:     colorGreen,
		Muted:      darkMuted,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode when the terminal background looks dark.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// Format is "foreground;background"; ANSI 0-6 and 8 are the
		// usual dark backgrounds.
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bg, err := strconv.Atoi(parts[1]); err == nil {
				if (bg >= 0 && bg <= 6) || bg == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("TCPL_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components of the browser.
type Styles struct {
	Theme Theme

	Title   lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Underline(true).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Info: lipgloss.NewStyle().
			Foreground(colorBlue),

		Success: lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true),
	}
}

// DefaultStyles returns styles with the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}
