package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used for rendering.
type Theme struct {
	AccentColor  string
	ErrorColor   string
	FaintColor   string
	DividerColor string
}

// DefaultTheme returns the standard dark palette.
func DefaultTheme() Theme {
	return Theme{
		AccentColor:  "33",
		ErrorColor:   "196",
		FaintColor:   "245",
		DividerColor: "240",
	}
}

func (t Theme) AccentText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.AccentColor)).Render(s)
}

func (t Theme) ErrorText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.ErrorColor)).Render(s)
}

func (t Theme) FaintText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.FaintColor)).Render(s)
}

func (t Theme) DividerText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DividerColor)).Render(s)
}

func (t Theme) TitleText(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
