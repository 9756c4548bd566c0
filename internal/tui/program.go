// Package tui renders the configurator and wires the selection engine,
// the calculation session, and the remote gateway onto the Bubble Tea
// event loop. All state transitions happen in Update; all IO happens in
// commands.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/constr-tools/panelcfg/internal/api"
	"github.com/constr-tools/panelcfg/internal/calc"
	"github.com/constr-tools/panelcfg/internal/config"
	"github.com/constr-tools/panelcfg/internal/engine"
	"github.com/constr-tools/panelcfg/internal/options"
	"github.com/constr-tools/panelcfg/internal/sharelink"
	"github.com/constr-tools/panelcfg/internal/tui/components"
)

type field int

const (
	fieldBrand field = iota
	fieldModel
	fieldColor
	fieldSize
	fieldPerf
	fieldEdge
	fieldWidth
	fieldHeight
	fieldArea
	fieldCount
)

var fieldLabels = map[field]string{
	fieldBrand:  "Brand",
	fieldModel:  "Model",
	fieldColor:  "Color",
	fieldSize:   "Size",
	fieldPerf:   "Perforation",
	fieldEdge:   "Edge",
	fieldWidth:  "Width",
	fieldHeight: "Height",
	fieldArea:   "Area",
}

type model struct {
	cfg     config.Config
	client  *api.Client
	eng     *engine.Engine
	session *calc.Session
	theme   Theme

	focus    field
	dropdown *components.SelectList
	dropFor  field

	widthIn  textinput.Model
	heightIn textinput.Model
	areaIn   textinput.Model

	spin   spinner.Model
	status *components.StatusBar

	// One in-flight request per stage; a new load cancels the old one.
	cancels    map[engine.Stage]context.CancelFunc
	calcCancel context.CancelFunc

	showHelp bool
	width    int
	height   int
	query    string
}

// Run hydrates state from the optional share link and runs the
// program.
func Run(cfg config.Config, link string) error {
	m := newModel(cfg, link)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func newModel(cfg config.Config, link string) *model {
	values := parseLink(link)

	eng := engine.New()
	eng.HydrateFromQuery(values)

	session := calc.NewSession()
	session.HydrateFromQuery(values)
	if tok := values.Get("tableData"); tok != "" {
		session.RestoreResult(sharelink.Decode(tok))
	}
	session.TrackBrand(eng.Brand())

	numInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 12
		ti.Width = 10
		return ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &model{
		cfg:      cfg,
		client:   api.New(cfg.BaseURL),
		eng:      eng,
		session:  session,
		theme:    DefaultTheme(),
		widthIn:  numInput("width"),
		heightIn: numInput("height"),
		areaIn:   numInput("area (m²)"),
		spin:     sp,
		status:   components.NewStatusBar(cfg.BaseURL),
		cancels:  map[engine.Stage]context.CancelFunc{},
	}
	m.widthIn.SetValue(session.Width())
	m.heightIn.SetValue(session.Height())
	m.areaIn.SetValue(session.Area())
	m.syncQuery()
	return m
}

// parseLink accepts a full share URL or a raw query string.
func parseLink(link string) url.Values {
	link = strings.TrimSpace(link)
	if link == "" {
		return url.Values{}
	}
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[i+1:]
	}
	v, err := url.ParseQuery(link)
	if err != nil {
		return url.Values{}
	}
	return v
}

func (m *model) Init() tea.Cmd {
	cmds := m.startLoads()
	cmds = append(cmds, m.spin.Tick)
	return tea.Batch(cmds...)
}

// startLoads turns the engine's pending loads into commands, cancelling
// any superseded in-flight request for the same stage.
func (m *model) startLoads() []tea.Cmd {
	var cmds []tea.Cmd
	for _, l := range m.eng.PendingLoads() {
		if cancel, ok := m.cancels[l.Stage]; ok {
			cancel()
		}
		ctx, cancel := context.WithCancel(context.Background())
		m.cancels[l.Stage] = cancel
		cmds = append(cmds, loadStage(ctx, m.client, l))
	}
	return cmds
}

// syncQuery recomputes the share query string when any state settled.
func (m *model) syncQuery() {
	qv := m.session.QueryValues()
	if m.session.HasResult() {
		tok, err := sharelink.Encode(m.session.Result())
		if err != nil && !errors.Is(err, sharelink.ErrTokenTooLarge) {
			tok = ""
		}
		if tok != "" {
			qv.Set("tableData", tok)
		}
	}
	if s, changed := m.eng.SyncQuery(qv); changed {
		m.query = s
	}
}

// afterStateChange runs the shared settle path: brand tracking for the
// calculator, cascaded loads, query sync.
func (m *model) afterStateChange() []tea.Cmd {
	if m.session.TrackBrand(m.eng.Brand()) {
		m.widthIn.SetValue("")
		m.heightIn.SetValue("")
		m.areaIn.SetValue("")
	}
	cmds := m.startLoads()
	m.syncQuery()
	return cmds
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case brandsMsg:
		m.eng.ApplyBrands(msg.gen, msg.opts, errText(msg.err))
		return m, tea.Batch(m.afterStateChange()...)

	case modelsMsg:
		m.eng.ApplyModels(msg.gen, msg.opts, errText(msg.err))
		return m, tea.Batch(m.afterStateChange()...)

	case dependentMsg:
		m.eng.ApplyDependent(msg.gen, msg.lists, errText(msg.err))
		return m, tea.Batch(m.afterStateChange()...)

	case calcMsg:
		applied := m.session.Apply(msg.gen, msg.stamp, m.eng.Brand(), m.eng.Model(), msg.result, msg.errMsg, msg.notFound)
		m.widthIn.SetValue(m.session.Width())
		m.heightIn.SetValue(m.session.Height())
		m.areaIn.SetValue(m.session.Area())
		if applied {
			m.status.SetMessage("calculation ready")
		} else if msg.notFound && m.session.Incomplete() {
			m.status.SetError("selection incomplete: pick all required options")
		} else if msg.errMsg != "" && m.session.Err() != "" {
			m.status.SetError("calculation failed: " + m.session.Err())
		}
		m.syncQuery()
		return m, nil

	case exportMsg:
		if errors.Is(msg.err, api.ErrNotFound) {
			m.status.SetError("export unavailable for this selection")
		} else if msg.err != nil {
			m.status.SetError("export failed: " + msg.err.Error())
		} else {
			m.status.SetMessage("exported " + msg.path)
		}
		return m, nil

	case shareMsg:
		switch {
		case msg.err != nil:
			m.status.SetMessage("copy manually: " + msg.url)
		case msg.warned:
			m.status.SetMessage("link copied (very long; may not work everywhere)")
		default:
			m.status.SetMessage("link copied to clipboard")
		}
		return m, nil
	}
	return m, nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
		}
		return m, nil
	}
	if m.dropdown != nil {
		return m.handleDropdownKey(msg)
	}

	key := msg.String()
	typing := m.numericFocused()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "enter":
		if m.focus <= fieldEdge {
			m.openDropdown(m.focus)
			return m, nil
		}
		return m, m.calculate()
	case "esc":
		m.status.SetMessage("")
		m.session.ClearIncomplete()
		return m, nil
	}

	if !typing {
		switch key {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "m":
			if m.session.Mode() == calc.ModeSizes {
				m.session.SetMode(calc.ModeArea)
			} else {
				m.session.SetMode(calc.ModeSizes)
			}
			m.areaIn.SetValue(m.session.Area())
			m.syncQuery()
			return m, nil
		case "t":
			if m.session.Surface() == calc.SurfaceCeiling {
				m.session.SetSurface(calc.SurfaceWall)
			} else {
				m.session.SetSurface(calc.SurfaceCeiling)
			}
			m.syncQuery()
			return m, nil
		case "c":
			return m, m.calculate()
		case "x":
			return m, m.export()
		case "s":
			return m, m.share()
		case "r":
			m.eng.Reload()
			return m, tea.Batch(m.startLoads()...)
		}
		return m, nil
	}

	// Numeric input editing.
	var cmd tea.Cmd
	switch m.focus {
	case fieldWidth:
		m.widthIn, cmd = m.widthIn.Update(msg)
		m.session.SetWidth(m.widthIn.Value())
	case fieldHeight:
		m.heightIn, cmd = m.heightIn.Update(msg)
		m.session.SetHeight(m.heightIn.Value())
	case fieldArea:
		if m.session.Mode() != calc.ModeArea {
			return m, nil
		}
		m.areaIn, cmd = m.areaIn.Update(msg)
		m.session.SetArea(m.areaIn.Value())
	}
	m.areaIn.SetValue(m.session.Area())
	m.syncQuery()
	return m, cmd
}

func (m *model) handleDropdownKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeDropdown()
		return m, nil
	case "up", "ctrl+k":
		m.dropdown.Move(-1)
		return m, nil
	case "down", "ctrl+j":
		m.dropdown.Move(1)
		return m, nil
	case "enter":
		opt, ok := m.dropdown.Current()
		target := m.dropFor
		m.closeDropdown()
		if !ok {
			return m, nil
		}
		switch target {
		case fieldBrand:
			m.eng.SetBrand(opt.ID)
		case fieldModel:
			m.eng.SetModel(opt.ID)
		case fieldColor:
			m.eng.SetColor(opt.ID)
		case fieldSize:
			m.eng.SetSize(opt.ID)
		case fieldPerf:
			m.eng.SetPerf(opt.ID)
		case fieldEdge:
			m.eng.SetEdge(opt.ID)
		}
		return m, tea.Batch(m.afterStateChange()...)
	}
	return m, m.dropdown.Update(msg)
}

func (m *model) numericFocused() bool {
	return m.focus == fieldWidth || m.focus == fieldHeight || m.focus == fieldArea
}

func (m *model) moveFocus(delta int) {
	m.blurInputs()
	for {
		m.focus = field((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))
		if m.focusable(m.focus) {
			break
		}
	}
	switch m.focus {
	case fieldWidth:
		m.widthIn.Focus()
	case fieldHeight:
		m.heightIn.Focus()
	case fieldArea:
		m.areaIn.Focus()
	}
}

func (m *model) blurInputs() {
	m.widthIn.Blur()
	m.heightIn.Blur()
	m.areaIn.Blur()
}

// focusable hides the fields that make no sense for the current mode.
func (m *model) focusable(f field) bool {
	switch f {
	case fieldWidth, fieldHeight:
		return m.session.Mode() == calc.ModeSizes
	case fieldArea:
		return m.session.Mode() == calc.ModeArea
	}
	return true
}

func (m *model) openDropdown(f field) {
	var (
		opts  []options.Option
		value string
	)
	switch f {
	case fieldBrand:
		opts, value = m.eng.BrandsState().Options, m.eng.Brand()
	case fieldModel:
		opts, value = m.eng.ModelsState().Options, m.eng.Model()
	case fieldColor:
		opts, value = m.eng.Lists().Color, m.eng.Color()
	case fieldSize:
		opts, value = m.eng.Lists().Size, m.eng.Size()
	case fieldPerf:
		opts, value = m.eng.Lists().Perf, m.eng.Perf()
	case fieldEdge:
		opts, value = m.eng.Lists().Edge, m.eng.Edge()
	}
	if len(opts) == 0 {
		m.status.SetMessage("no options available for " + strings.ToLower(fieldLabels[f]))
		return
	}
	m.dropdown = components.NewSelectList(strings.ToLower(fieldLabels[f]), opts)
	m.dropdown.Preselect(value)
	m.dropFor = f
}

func (m *model) closeDropdown() {
	m.dropdown = nil
}

func (m *model) calculate() tea.Cmd {
	if m.session.Loading() {
		return nil
	}
	if !m.session.Valid(m.eng.Brand(), m.eng.Model()) {
		m.status.SetError("pick brand and model and enter positive dimensions")
		return nil
	}
	stamp, gen := m.session.Start(m.eng.Brand(), m.eng.Model())
	q := m.session.BuildQuery(m.eng.Brand(), m.eng.Model(), m.eng.Color(), m.eng.Size(), m.eng.Perf(), m.eng.Edge())
	if m.calcCancel != nil {
		m.calcCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.calcCancel = cancel
	m.syncQuery()
	return runCalculation(ctx, m.client, q, stamp, gen)
}

func (m *model) export() tea.Cmd {
	if !m.session.HasResult() && !m.session.Valid(m.eng.Brand(), m.eng.Model()) {
		m.status.SetError("nothing to export yet")
		return nil
	}
	p := m.session.BuildExport(
		m.eng.Brand(), m.eng.Model(),
		m.eng.Color(), m.eng.Size(), m.eng.Perf(), m.eng.Edge(),
		m.eng.SelectedOptions(),
	)
	return runExport(context.Background(), m.client, p)
}

func (m *model) share() tea.Cmd {
	if !m.session.HasResult() {
		m.status.SetError("no calculation to share yet")
		return nil
	}
	warned := false
	qv := m.session.QueryValues()
	tok, err := sharelink.Encode(m.session.Result())
	if err != nil {
		if !errors.Is(err, sharelink.ErrTokenTooLarge) {
			m.status.SetError("could not encode share link")
			return nil
		}
		warned = true
	}
	qv.Set("tableData", tok)
	q := m.eng.Query()
	for k, vals := range qv {
		q[k] = vals
	}
	link := sharelink.BuildShareURL(m.cfg.ShareBase, q.Encode())
	return copyShareLink(link, warned)
}

// ShareQuery returns the last settled query string.
func (m *model) ShareQuery() string { return m.query }

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	var b strings.Builder

	title := m.theme.TitleText("Acoustic configurator")
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(m.theme.DividerText(strings.Repeat("─", m.width)))
	b.WriteByte('\n')

	for f := fieldBrand; f <= fieldEdge; f++ {
		b.WriteString(m.selectionLine(f))
		b.WriteByte('\n')
	}

	b.WriteString(m.theme.DividerText(strings.Repeat("·", m.width)))
	b.WriteByte('\n')
	b.WriteString(m.calcLines())

	if table := components.RenderResult(m.session.Result(), m.width); table != "" {
		b.WriteByte('\n')
		b.WriteString(table)
		b.WriteByte('\n')
	}

	if m.dropdown != nil {
		b.WriteByte('\n')
		b.WriteString(m.theme.DividerText(strings.Repeat("─", m.width)))
		b.WriteByte('\n')
		for _, line := range m.dropdown.View(m.width) {
			b.WriteString(padToWidth(line, m.width))
			b.WriteByte('\n')
		}
	}
	if m.showHelp {
		b.WriteByte('\n')
		b.WriteString(m.helpLines())
	}

	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", m.width))
	b.WriteByte('\n')
	b.WriteString(m.status.Render(m.width))
	return b.String()
}

// selectionLine renders one stage row: label, chosen option, and the
// stage's loading/error state.
func (m *model) selectionLine(f field) string {
	marker := "  "
	if m.focus == f && m.dropdown == nil {
		marker = "> "
	}
	label := fmt.Sprintf("%-12s", fieldLabels[f])

	var value, note string
	switch f {
	case fieldBrand:
		st := m.eng.BrandsState()
		value = m.optionName(m.eng.Brand(), st.Options)
		note = m.stageNote(st)
	case fieldModel:
		st := m.eng.ModelsState()
		value = m.optionName(m.eng.Model(), st.Options)
		note = m.stageNote(st)
	default:
		st := m.eng.DependentState()
		lists := m.eng.Lists()
		switch f {
		case fieldColor:
			value = m.optionName(m.eng.Color(), lists.Color)
		case fieldSize:
			value = m.optionName(m.eng.Size(), lists.Size)
		case fieldPerf:
			value = m.optionName(m.eng.Perf(), lists.Perf)
		case fieldEdge:
			value = m.optionName(m.eng.Edge(), lists.Edge)
		}
		note = m.stageNote(st)
	}
	if value == "" {
		value = m.theme.FaintText("(not selected)")
	} else {
		value = m.theme.AccentText(value)
	}
	line := marker + label + value
	if note != "" {
		line += "  " + note
	}
	return padToWidth(line, m.width)
}

func (m *model) optionName(id string, opts []options.Option) string {
	if id == "" {
		return ""
	}
	for _, o := range opts {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}

func (m *model) stageNote(st engine.StageState) string {
	if st.Loading {
		return m.spin.View() + m.theme.FaintText("loading")
	}
	if st.Err != "" {
		return m.theme.ErrorText("error: " + st.Err)
	}
	return ""
}

func (m *model) calcLines() string {
	var b strings.Builder

	modeBtn := func(label string, active bool) string {
		if active {
			return m.theme.AccentText("[" + label + "]")
		}
		return m.theme.FaintText(" " + label + " ")
	}
	b.WriteString("  mode: ")
	b.WriteString(modeBtn("sizes", m.session.Mode() == calc.ModeSizes))
	b.WriteString(" ")
	b.WriteString(modeBtn("area", m.session.Mode() == calc.ModeArea))
	b.WriteString("   surface: ")
	b.WriteString(modeBtn("ceiling", m.session.Surface() == calc.SurfaceCeiling))
	b.WriteString(" ")
	b.WriteString(modeBtn("wall", m.session.Surface() == calc.SurfaceWall))
	b.WriteByte('\n')

	inputLine := func(f field, ti textinput.Model) {
		marker := "  "
		if m.focus == f && m.dropdown == nil {
			marker = "> "
		}
		b.WriteString(marker + fmt.Sprintf("%-12s", fieldLabels[f]) + ti.View())
		b.WriteByte('\n')
	}
	if m.session.Mode() == calc.ModeSizes {
		inputLine(fieldWidth, m.widthIn)
		inputLine(fieldHeight, m.heightIn)
		b.WriteString("  " + fmt.Sprintf("%-12s", "Area") + m.theme.FaintText(orDash(m.session.Area())))
		b.WriteByte('\n')
	} else {
		inputLine(fieldArea, m.areaIn)
	}

	if m.session.Loading() {
		b.WriteString("  " + m.spin.View() + "calculating…\n")
	}
	if m.session.Incomplete() {
		b.WriteString("  " + m.theme.ErrorText("Pick all required options before calculating (esc to dismiss)") + "\n")
	}
	if m.session.Err() != "" {
		b.WriteString("  " + m.theme.ErrorText("Error: "+m.session.Err()) + "\n")
	}
	return b.String()
}

func (m *model) helpLines() string {
	lines := []string{
		m.theme.TitleText("Help (esc to close)"),
		"tab/↓, shift+tab/↑  Move between fields",
		"enter               Open dropdown / calculate",
		"m                   Toggle sizes / area mode",
		"t                   Toggle ceiling / wall",
		"c                   Calculate",
		"x                   Export spreadsheet",
		"s                   Copy share link",
		"r                   Reload option lists",
		"q                   Quit",
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func padToWidth(s string, w int) string {
	width := lipgloss.Width(s)
	if width == w {
		return s
	}
	if width < w {
		return s + strings.Repeat(" ", w-width)
	}
	return ansi.Truncate(s, w, "…")
}
