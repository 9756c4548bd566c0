package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/constr-tools/panelcfg/internal/options"
)

// SelectList is a dropdown: a scrollable option list with an
// incremental text filter. It owns selection and scroll state; the
// caller owns opening, closing and applying the chosen option.
type SelectList struct {
	title    string
	opts     []options.Option
	filtered []int
	selected int
	offset   int
	visible  int
	filter   textinput.Model
}

// NewSelectList creates a dropdown for the given stage title.
func NewSelectList(title string, opts []options.Option) *SelectList {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "/ "
	ti.Focus()
	l := &SelectList{
		title:   title,
		opts:    opts,
		visible: 8,
		filter:  ti,
	}
	l.refilter()
	return l
}

// SetVisible bounds the list window height.
func (l *SelectList) SetVisible(n int) {
	if n < 3 {
		n = 3
	}
	l.visible = n
	l.clampWindow()
}

// Preselect moves the cursor to the option with the given id.
func (l *SelectList) Preselect(id string) {
	for i, idx := range l.filtered {
		if l.opts[idx].ID == id {
			l.selected = i
			l.clampWindow()
			return
		}
	}
}

// Current returns the option under the cursor.
func (l *SelectList) Current() (options.Option, bool) {
	if len(l.filtered) == 0 || l.selected < 0 || l.selected >= len(l.filtered) {
		return options.Option{}, false
	}
	return l.opts[l.filtered[l.selected]], true
}

// Move shifts the cursor by delta, clamped to the filtered list.
func (l *SelectList) Move(delta int) {
	if len(l.filtered) == 0 {
		return
	}
	l.selected += delta
	if l.selected < 0 {
		l.selected = 0
	}
	if l.selected >= len(l.filtered) {
		l.selected = len(l.filtered) - 1
	}
	l.clampWindow()
}

// Update routes a key to the filter input and refilters.
func (l *SelectList) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	l.filter, cmd = l.filter.Update(msg)
	l.refilter()
	return cmd
}

func (l *SelectList) refilter() {
	q := strings.ToLower(strings.TrimSpace(l.filter.Value()))
	l.filtered = l.filtered[:0]
	for i, o := range l.opts {
		if q == "" ||
			strings.Contains(strings.ToLower(o.Name), q) ||
			strings.Contains(strings.ToLower(o.ID), q) {
			l.filtered = append(l.filtered, i)
		}
	}
	if l.selected >= len(l.filtered) {
		l.selected = len(l.filtered) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
	l.clampWindow()
}

func (l *SelectList) clampWindow() {
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+l.visible {
		l.offset = l.selected - l.visible + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the dropdown as overlay lines.
func (l *SelectList) View(width int) []string {
	bold := lipgloss.NewStyle().Bold(true)
	faint := lipgloss.NewStyle().Faint(true)

	lines := make([]string, 0, l.visible+3)
	lines = append(lines, bold.Render(fmt.Sprintf("Select %s (enter: choose, esc: cancel)", l.title)))
	lines = append(lines, l.filter.View())
	if len(l.filtered) == 0 {
		lines = append(lines, faint.Render("No matching options"))
		return lines
	}
	end := l.offset + l.visible
	if end > len(l.filtered) {
		end = len(l.filtered)
	}
	for i := l.offset; i < end; i++ {
		o := l.opts[l.filtered[i]]
		marker := "  "
		if i == l.selected {
			marker = "> "
		}
		label := o.Name
		if o.Description != "" {
			label += faint.Render("  " + o.Description)
		}
		lines = append(lines, marker+label)
	}
	if end < len(l.filtered) {
		lines = append(lines, faint.Render(fmt.Sprintf("… %d more", len(l.filtered)-end)))
	}
	return lines
}
