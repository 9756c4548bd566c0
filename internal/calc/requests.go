package calc

import (
	"github.com/constr-tools/panelcfg/internal/api"
)

// BuildQuery assembles the calculation request for the current inputs.
// Sizes mode sends length/height, area mode sends square; the backend
// names the surface field "type".
func (s *Session) BuildQuery(brand, model, color, size, perf, edge string) api.CalcQuery {
	q := api.CalcQuery{
		Brand:   brand,
		Model:   model,
		Color:   color,
		Size:    size,
		Perf:    perf,
		Edge:    edge,
		Surface: string(s.surface),
	}
	if s.mode == ModeSizes {
		q.Length = formatNumber(s.width)
		q.Height = formatNumber(s.height)
	} else {
		q.Square = formatNumber(s.area)
	}
	return q
}

// BuildExport assembles the spreadsheet export payload. selected holds
// the full raw option records keyed by stage, matching what the backend
// expects alongside the bare ids.
func (s *Session) BuildExport(brand, model, color, size, perf, edge string, selected map[string]any) api.ExportPayload {
	p := api.ExportPayload{
		Brand:    brand,
		Model:    model,
		Color:    color,
		Size:     size,
		Perf:     perf,
		Edge:     edge,
		Selected: selected,
		Surface:  string(s.surface),
		Mode:     string(s.mode),
	}
	if s.mode == ModeSizes {
		if w, ok := ParseNumber(s.width); ok {
			p.Width = w
		}
		if h, ok := ParseNumber(s.height); ok {
			p.Height = h
		}
	} else if a, ok := ParseNumber(s.area); ok {
		p.Area = a
	}
	return p
}
