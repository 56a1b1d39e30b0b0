// Package styles provides shared lipgloss styles for terminal output.
package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary   = lipgloss.Color("4")   // Blue
	Secondary = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
	Success   = lipgloss.Color("2")   // Green
	Warning   = lipgloss.Color("3")   // Yellow
	Error     = lipgloss.Color("1")   // Red
	Highlight = lipgloss.Color("12")  // Bright blue
	Muted     = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
)

// Theme is a set of styles bound to one renderer. Styles rendered for a
// writer that is not a terminal carry no escape sequences.
type Theme struct {
	Title       lipgloss.Style
	Heading     lipgloss.Style
	Label       lipgloss.Style
	MutedText   lipgloss.Style
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	Code        lipgloss.Style
}

// NewTheme builds the theme for output written to w.
func NewTheme(w io.Writer) Theme {
	return NewThemeWithRenderer(lipgloss.NewRenderer(w))
}

// PlainTheme returns a theme that never emits escape sequences.
func PlainTheme() Theme {
	return NewTheme(io.Discard)
}

// NewThemeWithRenderer builds the theme from r.
func NewThemeWithRenderer(r *lipgloss.Renderer) Theme {
	return Theme{
		Title: r.NewStyle().
			Bold(true).
			Foreground(Primary),

		Heading: r.NewStyle().
			Bold(true).
			Foreground(Highlight),

		Label: r.NewStyle().
			Foreground(lipgloss.Color("7")),

		MutedText: r.NewStyle().
			Foreground(Muted),

		ErrorText: r.NewStyle().
			Foreground(Error).
			Bold(true),

		SuccessText: r.NewStyle().
			Foreground(Success),

		WarningText: r.NewStyle().
			Foreground(Warning),

		Code: r.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Secondary).
			PaddingLeft(1),
	}
}

// Indicators.
const (
	CheckSuccess = "✓"
	CheckFailure = "✗"
	Bullet       = "•"
)
