// Package themes holds the REPL color themes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Prompt      lipgloss.Style
	Muted       lipgloss.Style
	Code        lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	TableHeader lipgloss.Style
	Selected    lipgloss.Style
	Box         lipgloss.Style
	Primary     lipgloss.Color
	Border      lipgloss.Color
	Info        lipgloss.Color
	Error       lipgloss.Color
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#3A86FF"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#8ECAE6"),
	lipgloss.Color("#E63946"),
)

func newTheme(primary, border, info, errColor lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Border:  border,
		Info:    info,
		Error:   errColor,

		Title:       lipgloss.NewStyle().Bold(true).Foreground(primary),
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(primary),
		Muted:       lipgloss.NewStyle().Foreground(border),
		Code:        lipgloss.NewStyle().Foreground(info).Italic(true),
		StatusError: lipgloss.NewStyle().Foreground(errColor),
		StatusInfo:  lipgloss.NewStyle().Foreground(info),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(primary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}
