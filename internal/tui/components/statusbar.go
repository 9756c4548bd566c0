package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// StatusBar manages the bottom status bar: a transient message on the
// left, the API origin on the right.
type StatusBar struct {
	origin  string
	message string
	isError bool
}

// NewStatusBar creates a status bar for the given API origin.
func NewStatusBar(origin string) *StatusBar {
	if origin == "" {
		origin = "(relative)"
	}
	return &StatusBar{origin: origin}
}

// SetMessage replaces the transient message.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
	s.isError = false
}

// SetError replaces the transient message with an error.
func (s *StatusBar) SetError(msg string) {
	s.message = msg
	s.isError = true
}

// Message returns the current transient message.
func (s *StatusBar) Message() string { return s.message }

// Render renders the status bar at the given width.
func (s *StatusBar) Render(width int) string {
	leftText := s.message
	if leftText == "" {
		leftText = "?: help"
	}
	var left string
	if s.isError {
		left = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(leftText)
	} else {
		left = lipgloss.NewStyle().Faint(true).Render(leftText)
	}
	right := lipgloss.NewStyle().Faint(true).Render("api: " + s.origin)

	rightW := lipgloss.Width(right)
	if rightW >= width {
		return ansi.Truncate(right, width, "…")
	}
	avail := width - rightW - 1
	if lipgloss.Width(left) > avail {
		left = ansi.Truncate(left, avail, "…")
	} else if lipgloss.Width(left) < avail {
		left += strings.Repeat(" ", avail-lipgloss.Width(left))
	}
	return left + " " + right
}
