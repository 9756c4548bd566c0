// Package engine owns the configurator selection state: brand, model
// and the four model-dependent attributes, their option lists, and the
// protocol that keeps all of it consistent with a shared query string
// across asynchronous loads.
//
// The engine is deliberately synchronous and IO-free. Callers ask it
// for pending loads, perform the fetches however they like, and feed
// results back through the Apply methods. Every load carries a
// per-stage generation number; a result whose generation no longer
// matches is a stale response and is ignored.
package engine

import (
	"net/url"

	"github.com/constr-tools/panelcfg/internal/options"
)

// Phase distinguishes the one-time hydration window from normal
// interactive operation. Cascades and query writes are suppressed while
// hydrating so values read from a shared link are not immediately
// clobbered.
type Phase int

const (
	PhaseHydrating Phase = iota
	PhaseInteractive
)

// Stage identifies one tier of the dependency chain.
type Stage int

const (
	StageBrands Stage = iota
	StageModels
	StageDependent
)

func (s Stage) String() string {
	switch s {
	case StageBrands:
		return "brands"
	case StageModels:
		return "models"
	case StageDependent:
		return "dependent"
	}
	return "unknown"
}

// StageState is the load state of one stage.
type StageState struct {
	Options []options.Option
	Loading bool
	Err     string
	gen     int
}

// Load describes a fetch the caller should perform. Gen must be handed
// back unchanged with the result.
type Load struct {
	Stage Stage
	Gen   int
	Brand string
	Model string
}

var selectionKeys = []string{"brand", "model", "color", "size", "perf", "edge"}

// calcKeys are owned by the calculation session and merged in at sync
// time, so hydration must not capture them as foreign keys.
var calcKeys = map[string]bool{
	"calcMode":    true,
	"calcSurface": true,
	"calcWidth":   true,
	"calcHeight":  true,
	"calcArea":    true,
	"tableData":   true,
}

// Engine is the selection state engine. Construct one per session with
// New; it is not safe for concurrent use and is meant to live on a
// single event loop.
type Engine struct {
	phase Phase

	brand string
	model string
	color string
	size  string
	perf  string
	edge  string

	brands StageState
	models StageState
	dep    StageState
	lists  options.DependentLists

	// pending holds dependent values read from the shared link that
	// have not yet been validated against a freshly loaded list.
	pending map[string]string

	// extra preserves unrelated query keys across rewrites.
	extra url.Values

	lastQuery string

	wantBrands bool
	wantModels bool
	wantDep    bool
}

// New creates an engine in the hydrating phase with a brand-list load
// already requested.
func New() *Engine {
	return &Engine{
		phase:      PhaseHydrating,
		pending:    map[string]string{},
		extra:      url.Values{},
		wantBrands: true,
	}
}

func (e *Engine) Phase() Phase  { return e.phase }
func (e *Engine) Brand() string { return e.brand }
func (e *Engine) Model() string { return e.model }
func (e *Engine) Color() string { return e.color }
func (e *Engine) Size() string  { return e.size }
func (e *Engine) Perf() string  { return e.perf }
func (e *Engine) Edge() string  { return e.edge }

func (e *Engine) BrandsState() StageState    { return e.brands }
func (e *Engine) ModelsState() StageState    { return e.models }
func (e *Engine) DependentState() StageState { return e.dep }

// Lists returns the current dependent option lists.
func (e *Engine) Lists() options.DependentLists { return e.lists }

// HydrateFromQuery initializes the selection from share-link query
// values. Runs exactly once; dependent values land in the pending
// table until their lists arrive. Foreign query keys are kept so later
// rewrites preserve them.
func (e *Engine) HydrateFromQuery(v url.Values) {
	if e.phase != PhaseHydrating {
		return
	}
	e.brand = v.Get("brand")
	e.model = v.Get("model")
	e.color = v.Get("color")
	e.size = v.Get("size")
	e.perf = v.Get("perf")
	e.edge = v.Get("edge")
	for _, k := range []string{"color", "size", "perf", "edge"} {
		if val := v.Get(k); val != "" {
			e.pending[k] = val
		}
	}
	known := map[string]bool{}
	for _, k := range selectionKeys {
		known[k] = true
	}
	for k, vals := range v {
		if known[k] || calcKeys[k] {
			continue
		}
		e.extra[k] = append([]string(nil), vals...)
	}
	if e.brand != "" {
		e.wantModels = true
	}
	if e.brand != "" && e.model != "" {
		e.wantDep = true
	}
	e.phase = PhaseInteractive
}

// SetBrand switches the brand. A real change (hydration assigns the
// field directly and never lands here) invalidates everything
// downstream: model and dependent values, their lists, their load
// state, and any in-flight loads via generation bumps.
func (e *Engine) SetBrand(v string) {
	if v == e.brand {
		return
	}
	e.brand = v
	e.model = ""
	e.clearDependentValues()
	e.models = StageState{gen: e.models.gen + 1}
	e.dep = StageState{gen: e.dep.gen + 1}
	e.lists = options.DependentLists{}
	e.pending = map[string]string{}
	e.wantModels = v != ""
	e.wantDep = false
}

// SetModel switches the model. Dependent values are cleared; their
// lists are left alone when a reload is coming and cleared immediately
// when the model became empty.
func (e *Engine) SetModel(v string) {
	if v == e.model {
		return
	}
	e.model = v
	e.clearDependentValues()
	e.pending = map[string]string{}
	if e.brand != "" && v != "" {
		e.wantDep = true
		return
	}
	e.dep = StageState{gen: e.dep.gen + 1}
	e.lists = options.DependentLists{}
	e.wantDep = false
}

func (e *Engine) SetColor(v string) { e.color = e.acceptDependent(v, e.color, e.lists.Color) }
func (e *Engine) SetSize(v string)  { e.size = e.acceptDependent(v, e.size, e.lists.Size) }
func (e *Engine) SetPerf(v string)  { e.perf = e.acceptDependent(v, e.perf, e.lists.Perf) }
func (e *Engine) SetEdge(v string)  { e.edge = e.acceptDependent(v, e.edge, e.lists.Edge) }

// acceptDependent admits empty or a member of the current list; any
// other value is rejected and the field keeps its current value.
func (e *Engine) acceptDependent(v, cur string, list []options.Option) string {
	if v == "" || hasOption(list, v) {
		return v
	}
	return cur
}

func (e *Engine) clearDependentValues() {
	e.color = ""
	e.size = ""
	e.perf = ""
	e.edge = ""
}

// PendingLoads returns the fetches the caller should start now and
// marks their stages loading. Each returned Load's generation
// supersedes any earlier in-flight load for that stage.
func (e *Engine) PendingLoads() []Load {
	var out []Load
	if e.wantBrands {
		e.wantBrands = false
		e.brands.gen++
		e.brands.Loading = true
		e.brands.Err = ""
		out = append(out, Load{Stage: StageBrands, Gen: e.brands.gen})
	}
	if e.wantModels && e.brand != "" {
		e.wantModels = false
		e.models.gen++
		e.models.Loading = true
		e.models.Err = ""
		out = append(out, Load{Stage: StageModels, Gen: e.models.gen, Brand: e.brand})
	}
	if e.wantDep && e.brand != "" && e.model != "" {
		e.wantDep = false
		e.dep.gen++
		e.dep.Loading = true
		e.dep.Err = ""
		out = append(out, Load{Stage: StageDependent, Gen: e.dep.gen, Brand: e.brand, Model: e.model})
	}
	return out
}

// ApplyBrands settles a brand-list load. Stale generations are ignored.
func (e *Engine) ApplyBrands(gen int, opts []options.Option, errMsg string) {
	if gen != e.brands.gen {
		return
	}
	e.brands.Loading = false
	if errMsg != "" {
		e.brands.Err = errMsg
		e.brands.Options = nil
		return
	}
	e.brands.Err = ""
	e.brands.Options = opts
}

// ApplyModels settles a model-list load. The model value itself is
// never touched here.
func (e *Engine) ApplyModels(gen int, opts []options.Option, errMsg string) {
	if gen != e.models.gen {
		return
	}
	e.models.Loading = false
	if errMsg != "" {
		e.models.Err = errMsg
		e.models.Options = nil
		return
	}
	e.models.Err = ""
	e.models.Options = opts
}

// ApplyDependent settles a dependent-lists load and then restores each
// of the four fields: the pending share-link value if the fresh list
// contains it, else the current value if still valid, else empty. The
// pending table is consumed by its first validation attempt.
func (e *Engine) ApplyDependent(gen int, lists options.DependentLists, errMsg string) {
	if gen != e.dep.gen {
		return
	}
	e.dep.Loading = false
	if errMsg != "" {
		e.dep.Err = errMsg
		e.lists = options.DependentLists{}
		e.clearDependentValues()
		e.pending = map[string]string{}
		return
	}
	e.dep.Err = ""
	e.lists = lists
	e.color = restoreValue(e.pending["color"], e.color, lists.Color)
	e.size = restoreValue(e.pending["size"], e.size, lists.Size)
	e.perf = restoreValue(e.pending["perf"], e.perf, lists.Perf)
	e.edge = restoreValue(e.pending["edge"], e.edge, lists.Edge)
	e.pending = map[string]string{}
}

func restoreValue(pending, cur string, list []options.Option) string {
	if pending != "" && hasOption(list, pending) {
		return pending
	}
	if cur != "" && hasOption(list, cur) {
		return cur
	}
	return ""
}

func hasOption(list []options.Option, id string) bool {
	for _, o := range list {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Reload re-requests every list that applies to the current selection.
// Values are kept; ApplyDependent revalidates the dependent ones
// against the fresh lists.
func (e *Engine) Reload() {
	e.wantBrands = true
	e.wantModels = e.brand != ""
	e.wantDep = e.brand != "" && e.model != ""
	for k, v := range map[string]string{"color": e.color, "size": e.size, "perf": e.perf, "edge": e.edge} {
		if v != "" {
			e.pending[k] = v
		}
	}
}

// Query returns the engine's share of the query string: non-empty
// selection fields plus preserved foreign keys.
func (e *Engine) Query() url.Values {
	q := url.Values{}
	for k, vals := range e.extra {
		q[k] = append([]string(nil), vals...)
	}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("brand", e.brand)
	set("model", e.model)
	set("color", e.color)
	set("size", e.size)
	set("perf", e.perf)
	set("edge", e.edge)
	return q
}

// SyncQuery merges the calculator's query values into the selection
// query and reports whether the serialized string changed since the
// last write. Identical strings mean no write, which is what breaks the
// state→URL→state feedback loop. Always unchanged while hydrating.
func (e *Engine) SyncQuery(calcValues url.Values) (string, bool) {
	if e.phase == PhaseHydrating {
		return "", false
	}
	q := e.Query()
	for k, vals := range calcValues {
		q[k] = append([]string(nil), vals...)
	}
	s := q.Encode()
	if s == e.lastQuery {
		return s, false
	}
	e.lastQuery = s
	return s, true
}

// SelectedOptions returns the full raw records of the current
// selection, keyed by stage, with nil for unset fields. This is the
// shape the export endpoint expects.
func (e *Engine) SelectedOptions() map[string]any {
	sel := map[string]any{}
	put := func(key, id string, list []options.Option) {
		if id == "" {
			sel[key] = nil
			return
		}
		for _, o := range list {
			if o.ID == id {
				if o.Raw != nil {
					sel[key] = o.Raw
				} else {
					sel[key] = map[string]any{"id": o.ID, "name": o.Name}
				}
				return
			}
		}
		sel[key] = nil
	}
	put("model", e.model, e.models.Options)
	put("color", e.color, e.lists.Color)
	put("size", e.size, e.lists.Size)
	put("perf", e.perf, e.lists.Perf)
	put("edge", e.edge, e.lists.Edge)
	return sel
}

// FindBrand returns the brand option for a code, if loaded.
func (e *Engine) FindBrand(code string) (options.Option, bool) {
	for _, o := range e.brands.Options {
		if o.ID == code {
			return o, true
		}
	}
	return options.Option{}, false
}

// FindModel returns the model option for an id, if loaded.
func (e *Engine) FindModel(id string) (options.Option, bool) {
	for _, o := range e.models.Options {
		if o.ID == id {
			return o, true
		}
	}
	return options.Option{}, false
}
