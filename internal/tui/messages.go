package tui

import (
	"github.com/constr-tools/panelcfg/internal/calc"
	"github.com/constr-tools/panelcfg/internal/options"
)

// brandsMsg settles a brand-list load.
type brandsMsg struct {
	gen  int
	opts []options.Option
	err  error
}

// modelsMsg settles a model-list load.
type modelsMsg struct {
	gen  int
	opts []options.Option
	err  error
}

// dependentMsg settles a dependent-lists load.
type dependentMsg struct {
	gen   int
	lists options.DependentLists
	err   error
}

// calcMsg settles a calculation attempt. The stamp travels with the
// message so the session can reject results for a selection the user
// has left.
type calcMsg struct {
	gen      int
	stamp    calc.Stamp
	result   calc.Result
	errMsg   string
	notFound bool
}

// exportMsg settles a spreadsheet export.
type exportMsg struct {
	path string
	err  error
}

// shareMsg settles a share-link copy.
type shareMsg struct {
	url    string
	warned bool
	err    error
}
