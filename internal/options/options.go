// Package options normalizes the configurator API's heterogeneous JSON
// shapes into uniform option records. The backend is inconsistent about
// key casing and list envelopes, so every accessor probes a fixed set of
// candidate keys and never fails on malformed input.
package options

import (
	"fmt"
	"strings"
)

// Option is one selectable entry of a stage. ID is the stable selector
// key; Raw keeps the untouched backend fields because image and
// description resolution probe several possible key names.
type Option struct {
	ID          string
	Name        string
	Description string
	ImageRef    string
	Raw         map[string]any
}

// DependentLists holds the four model-dependent option lists.
type DependentLists struct {
	Color []Option
	Size  []Option
	Perf  []Option
	Edge  []Option
}

// Empty reports whether every dependent list is empty.
func (d DependentLists) Empty() bool {
	return len(d.Color) == 0 && len(d.Size) == 0 && len(d.Perf) == 0 && len(d.Edge) == 0
}

// asArray unwraps a bare array or a {data: []} envelope. Anything else
// yields nil.
func asArray(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if arr, ok := v["data"].([]any); ok {
			return arr
		}
	}
	return nil
}

// stringField probes the candidate keys in order and returns the first
// value that stringifies to something non-empty.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; keep integers free of a
		// trailing ".0" so ids survive round trips.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ToOptions converts a raw backend list into option records. It accepts
// a bare array or a {data: []} envelope; nil and non-array input yield
// an empty list. Ids are probed in the order id, code, value and fall
// back to a synthetic opt-<index>; colliding ids get an index suffix so
// ids stay pairwise unique within one list.
func ToOptions(raw any) []Option {
	arr := asArray(raw)
	out := make([]Option, 0, len(arr))
	seen := make(map[string]bool, len(arr))
	for i, item := range arr {
		var opt Option
		switch m := item.(type) {
		case map[string]any:
			opt.ID = stringField(m, "id", "code", "value")
			if opt.ID == "" {
				opt.ID = fmt.Sprintf("opt-%d", i)
			}
			opt.Name = stringField(m, "name", "Name", "title")
			if opt.Name == "" {
				opt.Name = opt.ID
			}
			opt.Description = stringField(m, "description", "Description", "desc")
			opt.ImageRef = imageRef(m)
			opt.Raw = m
		default:
			if item == nil {
				continue
			}
			v := stringify(item)
			opt.ID = v
			opt.Name = v
		}
		if seen[opt.ID] {
			opt.ID = fmt.Sprintf("%s-%d", opt.ID, i)
		}
		seen[opt.ID] = true
		out = append(out, opt)
	}
	return out
}

// NormalizeBrands converts the brand-list response. Brand records use
// yet another id spelling (ShortName) ahead of the usual candidates.
func NormalizeBrands(raw any) []Option {
	arr := asArray(raw)
	out := make([]Option, 0, len(arr))
	seen := make(map[string]bool, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := stringField(m, "ShortName", "code", "slug", "id")
		if code == "" {
			code = fmt.Sprintf("brand-%d", i)
		}
		if seen[code] {
			code = fmt.Sprintf("%s-%d", code, i)
		}
		seen[code] = true
		name := stringField(m, "Name", "name", "title")
		if name == "" {
			name = code
		}
		out = append(out, Option{
			ID:          code,
			Name:        name,
			Description: stringField(m, "description", "Description", "desc"),
			ImageRef:    imageRef(m),
			Raw:         m,
		})
	}
	return out
}

// pickArray returns the first candidate key whose value is an array.
func pickArray(m map[string]any, keys ...string) []any {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if arr, ok := m[k].([]any); ok {
			return arr
		}
	}
	return nil
}

// listByCode finds the parameter block tagged with the given code and
// returns its payload list.
func listByCode(blocks []any, code string) []any {
	for _, b := range blocks {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		c, ok := m["code"].(string)
		if !ok || !strings.EqualFold(c, code) {
			continue
		}
		if arr := pickArray(m, "list", "values", "options"); arr != nil {
			return arr
		}
	}
	return nil
}

// ExtractModelList pulls the model list out of a brandParams response:
// the select-typed parameter block coded "model", falling back to the
// first select block of any code.
func ExtractModelList(raw any) []Option {
	blocks := asArray(raw)
	var fallback map[string]any
	for _, b := range blocks {
		m, ok := b.(map[string]any)
		if !ok {
			continue
		}
		t, _ := m["type"].(string)
		if t != "select" {
			continue
		}
		if c, _ := m["code"].(string); strings.EqualFold(c, "model") {
			return ToOptions(pickArray(m, "list", "values", "options"))
		}
		if fallback == nil {
			fallback = m
		}
	}
	if fallback != nil {
		return ToOptions(pickArray(fallback, "list", "values", "options"))
	}
	return []Option{}
}

// ExtractDependentLists pulls color/size/perf/edge lists out of a
// model-scoped brandParams response. Two backend shapes are supported:
// an array of parameter blocks tagged by code, and a flat object with
// per-stage keys. The tagged-array shape wins when both are present.
func ExtractDependentLists(raw any) DependentLists {
	blocks := asArray(raw)

	var flat map[string]any
	if m, ok := raw.(map[string]any); ok {
		if inner, ok := m["data"].(map[string]any); ok {
			flat = inner
		} else {
			flat = m
		}
	}

	pick := func(code string, flatKeys ...string) []Option {
		if arr := listByCode(blocks, code); arr != nil {
			return ToOptions(arr)
		}
		if arr := pickArray(flat, flatKeys...); arr != nil {
			return ToOptions(arr)
		}
		return []Option{}
	}

	return DependentLists{
		Color: pick("color", "colors", "color", "listColor", "listColors"),
		Size:  pick("size", "sizes", "size", "listSize", "listSizes"),
		Perf:  pick("perf", "perfs", "perf", "perforation", "listPerf", "listPerfs"),
		Edge:  pick("edge", "edges", "edge", "listEdge", "listEdges"),
	}
}

func imageRef(m map[string]any) string {
	return stringField(m, "img", "image", "imageFile", "imageUrl", "section_img", "file", "filename")
}

// ImageURL resolves an option's image reference against the API base.
// Absolute references pass through; relative filenames live under the
// constructor asset path. Empty when the option carries no image.
func ImageURL(opt Option, base string) string {
	ref := strings.TrimSpace(opt.ImageRef)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/api/v1/constr/" + ref
}

// brandIcons maps brand codes to the bundled icon set. Matching backend
// image names to brands is unreliable, so this table is the fallback.
var brandIcons = map[string]string{
	"aku_fon": "icon_acufon.png",
	"bon":     "icon_Bonacoustic.png",
	"dc":      "icon_Decoustic.png",
	"fa":      "icon_Flexakustik studio.png",
	"sp":      "icon_Sonaspray.png",
	"sb":      "icon_SoundBoard.png",
	"sl":      "icon_Soundlux.png",
	"ca":      "icon_Soundline.png",
	"ca_ng":   "icon_Soundline.png",
}

// BrandIcon returns the bundled icon filename for a brand code, or a
// generic icon when the code is unknown. Best effort only.
func BrandIcon(code string) string {
	if f, ok := brandIcons[code]; ok {
		return f
	}
	return "icon_generic.png"
}
