// Package calc owns the calculator side of the configurator: the
// mode/surface/dimension inputs, their validity, and the lifecycle of a
// calculation result. Results are stamped with the (brand, model) pair
// they were requested for so a late response for a selection the user
// has left can never reach the screen.
package calc

import (
	"net/url"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeSizes Mode = "sizes"
	ModeArea  Mode = "area"
)

type Surface string

const (
	SurfaceCeiling Surface = "ceiling"
	SurfaceWall    Surface = "wall"
)

// Stamp identifies the selection a calculation was requested for.
type Stamp struct {
	Brand string
	Model string
}

// Session holds calculator inputs and the current result.
type Session struct {
	mode    Mode
	surface Surface
	width   string
	height  string
	area    string

	result     Result
	loading    bool
	err        string
	incomplete bool

	stamp Stamp
	gen   int

	prevBrand    string
	brandTracked bool
	// After a brand change the calculator keys are dropped from the
	// query until the user touches an input again.
	suppressQuery bool
}

// NewSession creates a session with the default mode and surface.
func NewSession() *Session {
	return &Session{mode: ModeSizes, surface: SurfaceCeiling}
}

func (s *Session) Mode() Mode         { return s.mode }
func (s *Session) Surface() Surface   { return s.surface }
func (s *Session) Width() string      { return s.width }
func (s *Session) Height() string     { return s.height }
func (s *Session) Area() string       { return s.area }
func (s *Session) Loading() bool      { return s.loading }
func (s *Session) Err() string        { return s.err }
func (s *Session) Incomplete() bool   { return s.incomplete }
func (s *Session) Result() Result     { return s.result }
func (s *Session) HasResult() bool    { return !s.result.Empty() }

// ClearIncomplete dismisses the incomplete-selection notice.
func (s *Session) ClearIncomplete() { s.incomplete = false }

// ParseNumber parses a positive-or-not decimal accepting both comma and
// dot separators.
func ParseNumber(v string) (float64, bool) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Session) SetMode(m Mode) {
	if m != ModeSizes && m != ModeArea {
		return
	}
	s.mode = m
	s.suppressQuery = false
	s.deriveArea()
}

func (s *Session) SetSurface(v Surface) {
	if v != SurfaceCeiling && v != SurfaceWall {
		return
	}
	s.surface = v
	s.suppressQuery = false
}

func (s *Session) SetWidth(v string) {
	s.width = v
	s.suppressQuery = false
	s.deriveArea()
}

func (s *Session) SetHeight(v string) {
	s.height = v
	s.suppressQuery = false
	s.deriveArea()
}

func (s *Session) SetArea(v string) {
	s.area = v
	s.suppressQuery = false
}

// deriveArea keeps area = width × height (2 decimals) in sizes mode,
// cleared whenever either side is missing or non-positive.
func (s *Session) deriveArea() {
	if s.mode != ModeSizes {
		return
	}
	w, wok := ParseNumber(s.width)
	h, hok := ParseNumber(s.height)
	if wok && hok && w > 0 && h > 0 {
		s.area = strconv.FormatFloat(w*h, 'f', 2, 64)
		return
	}
	s.area = ""
}

// Valid reports whether a calculation may be started for the given
// selection: brand and model set, active numeric inputs strictly
// positive.
func (s *Session) Valid(brand, model string) bool {
	if brand == "" || model == "" {
		return false
	}
	if s.mode == ModeSizes {
		w, wok := ParseNumber(s.width)
		h, hok := ParseNumber(s.height)
		return wok && hok && w > 0 && h > 0
	}
	a, aok := ParseNumber(s.area)
	return aok && a > 0
}

// Start marks a calculation in flight and returns the stamp and
// generation the response must carry to be applied.
func (s *Session) Start(brand, model string) (Stamp, int) {
	s.gen++
	s.stamp = Stamp{Brand: brand, Model: model}
	s.loading = true
	s.err = ""
	s.incomplete = false
	s.result = Result{}
	return s.stamp, s.gen
}

// Apply settles a calculation attempt. Superseded generations are
// ignored outright; a stamp that no longer matches the current
// brand/model drops the payload silently. Inputs are cleared after any
// settled attempt. Returns whether a result was accepted.
func (s *Session) Apply(gen int, stamp Stamp, curBrand, curModel string, result Result, errMsg string, notFound bool) bool {
	if gen != s.gen {
		return false
	}
	s.loading = false
	s.width = ""
	s.height = ""
	s.area = ""
	if stamp.Brand != curBrand || stamp.Model != curModel {
		return false
	}
	if notFound {
		s.incomplete = true
		return false
	}
	if errMsg != "" {
		s.err = errMsg
		s.result = Result{}
		return false
	}
	s.result = result
	return true
}

// TrackBrand observes the current brand. The first observation only
// records it; a later change resets every calculator input, the result,
// and suppresses the calculator query keys. Returns whether a reset
// happened.
func (s *Session) TrackBrand(brand string) bool {
	if !s.brandTracked {
		s.brandTracked = true
		s.prevBrand = brand
		return false
	}
	if brand == s.prevBrand {
		return false
	}
	s.prevBrand = brand
	s.gen++
	s.width = ""
	s.height = ""
	s.area = ""
	s.loading = false
	s.err = ""
	s.incomplete = false
	s.result = Result{}
	s.suppressQuery = true
	return true
}

// RestoreResult installs a result decoded from a shared link.
func (s *Session) RestoreResult(r Result) {
	if r.Empty() {
		return
	}
	s.result = r
}

// HydrateFromQuery restores calculator inputs from share-link query
// values.
func (s *Session) HydrateFromQuery(v url.Values) {
	if m := Mode(v.Get("calcMode")); m == ModeSizes || m == ModeArea {
		s.mode = m
	}
	if sf := Surface(v.Get("calcSurface")); sf == SurfaceCeiling || sf == SurfaceWall {
		s.surface = sf
	}
	if w := v.Get("calcWidth"); w != "" {
		s.width = w
	}
	if h := v.Get("calcHeight"); h != "" {
		s.height = h
	}
	if a := v.Get("calcArea"); a != "" {
		s.area = a
	}
}

// QueryValues returns the calculator's share of the query string. Empty
// while suppressed after a brand change.
func (s *Session) QueryValues() url.Values {
	v := url.Values{}
	if s.suppressQuery {
		return v
	}
	v.Set("calcMode", string(s.mode))
	v.Set("calcSurface", string(s.surface))
	if s.width != "" {
		v.Set("calcWidth", s.width)
	}
	if s.height != "" {
		v.Set("calcHeight", s.height)
	}
	if s.area != "" {
		v.Set("calcArea", s.area)
	}
	return v
}

func formatNumber(v string) string {
	n, ok := ParseNumber(v)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
