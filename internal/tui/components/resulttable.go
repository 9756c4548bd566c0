package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/constr-tools/panelcfg/internal/calc"
)

// RenderResult renders a calculation result in either of its shapes.
// Empty results render to an empty string.
func RenderResult(r calc.Result, width int) string {
	if r.Empty() {
		return ""
	}
	var (
		title   string
		headers []string
		keys    []string
		rows    []table.Row
	)
	if r.Table != nil {
		title = r.Table.Title
		for _, c := range r.Table.DisplayColumns() {
			headers = append(headers, c.Name)
			keys = append(keys, c.ID)
		}
		for _, tr := range r.Table.Rows {
			items := tr.Items
			if len(items) == 0 {
				items = []map[string]any{{}}
			}
			for _, item := range items {
				rows = append(rows, rowFrom(item, keys))
			}
		}
	} else {
		for _, k := range calc.RowColumns(r.Rows) {
			headers = append(headers, k)
			keys = append(keys, k)
		}
		for _, item := range r.Rows {
			rows = append(rows, rowFrom(item, keys))
		}
	}
	if len(headers) == 0 {
		return ""
	}

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := len([]rune(h))
		for _, row := range rows {
			if n := len([]rune(row[i])); n > w {
				w = n
			}
		}
		if max := width/len(headers) - 2; max > 4 && w > max {
			w = max
		}
		cols[i] = table.Column{Title: h, Width: w}
	}

	height := len(rows)
	if height > 12 {
		height = 12
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(height),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	st.Selected = lipgloss.NewStyle()
	t.SetStyles(st)

	out := t.View()
	if title != "" {
		out = lipgloss.NewStyle().Bold(true).Render(title) + "\n" + out
	}
	return out
}

func rowFrom(item map[string]any, keys []string) table.Row {
	row := make(table.Row, len(keys))
	for i, k := range keys {
		if v, ok := item[k]; ok && v != nil {
			row[i] = fmt.Sprintf("%v", v)
		}
	}
	return row
}
