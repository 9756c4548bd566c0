package tui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constr-tools/panelcfg/internal/api"
	"github.com/constr-tools/panelcfg/internal/calc"
	"github.com/constr-tools/panelcfg/internal/config"
	"github.com/constr-tools/panelcfg/internal/sharelink"
)

func mustEncode(t *testing.T, r calc.Result) string {
	t.Helper()
	tok, err := sharelink.Encode(r)
	require.NoError(t, err)
	return tok
}

// fakeBackend serves the minimal happy path: one brand, one model, one
// option per dependent list, and a single-row calculation table.
func fakeBackend(t *testing.T, lastCalc *url.Values) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/AcousticCategories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ShortName":"dc","Name":"Decoustic"}]`))
	})
	mux.HandleFunc("/api/v1/brandParams/dc", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("model") == "" {
			w.Write([]byte(`[{"type":"select","code":"model","list":[{"id":"m1","name":"Lines"}]}]`))
			return
		}
		w.Write([]byte(`[
			{"code":"color","list":[{"id":"c1","name":"White"}]},
			{"code":"size","list":[{"id":"s1","name":"600x600"}]},
			{"code":"perf","list":[{"id":"p1","name":"Micro"}]},
			{"code":"edge","list":[{"id":"e1","name":"A24"}]}
		]`))
	})
	mux.HandleFunc("/api/v2/constr/calc/dc", func(w http.ResponseWriter, r *http.Request) {
		if lastCalc != nil {
			*lastCalc = r.URL.Query()
		}
		w.Write([]byte(`{"data":{"title":"Panels","columns":[{"id":"qty","name":"Qty"},{"id":"артикул","name":"артикул"}],"rows":[{"items":[{"qty":5,"артикул":"SKU-1"}]}]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testModel(t *testing.T, srv *httptest.Server, link string) *model {
	t.Helper()
	m := newModel(config.Config{BaseURL: srv.URL, ShareBase: "https://constrtodo.ru/acoustic"}, link)
	deliver(t, m, m.Init())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// deliver executes a command synchronously and feeds the message back
// through Update, recursing through batches. Spinner ticks are dropped
// so the tick loop does not recurse forever.
func deliver(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return
	case spinner.TickMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			deliver(t, m, c)
		}
		return
	default:
		_, next := m.Update(msg)
		deliver(t, m, next)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(key(k))
		deliver(t, m, cmd)
	}
}

func TestParseLink(t *testing.T) {
	assert.Equal(t, "dc", parseLink("brand=dc&model=m1").Get("brand"))
	assert.Equal(t, "m1", parseLink("https://constrtodo.ru/acoustic?brand=dc&model=m1").Get("model"))
	assert.Empty(t, parseLink(""))
	assert.Empty(t, parseLink("%%%"))
}

func TestScenario_SelectCalculateShare(t *testing.T) {
	var lastCalc url.Values
	srv := fakeBackend(t, &lastCalc)
	m := testModel(t, srv, "")

	require.Len(t, m.eng.BrandsState().Options, 1)

	// Brand, then model, then size, each via the dropdown.
	press(t, m, "enter", "enter")
	require.Equal(t, "dc", m.eng.Brand())
	require.Len(t, m.eng.ModelsState().Options, 1)

	press(t, m, "tab", "enter", "enter")
	require.Equal(t, "m1", m.eng.Model())
	require.False(t, m.eng.Lists().Empty())

	press(t, m, "tab", "tab", "enter", "enter")
	require.Equal(t, "s1", m.eng.Size())

	// Dimensions: 2 × 3 derives the area.
	press(t, m, "tab", "tab", "tab", "2")
	press(t, m, "tab", "3")
	assert.Equal(t, "6.00", m.session.Area())

	q, err := url.ParseQuery(m.ShareQuery())
	require.NoError(t, err)
	assert.Equal(t, "dc", q.Get("brand"))
	assert.Equal(t, "m1", q.Get("model"))
	assert.Equal(t, "s1", q.Get("size"))
	assert.Equal(t, "sizes", q.Get("calcMode"))
	assert.Equal(t, "2", q.Get("calcWidth"))
	assert.Equal(t, "3", q.Get("calcHeight"))

	// Enter on a numeric field starts the calculation.
	press(t, m, "enter")
	require.True(t, m.session.HasResult())
	assert.Equal(t, "2", lastCalc.Get("length"))
	assert.Equal(t, "3", lastCalc.Get("height"))
	assert.Equal(t, "s1", lastCalc.Get("size"))
	assert.Equal(t, "ceiling", lastCalc.Get("type"))

	q, err = url.ParseQuery(m.ShareQuery())
	require.NoError(t, err)
	assert.NotEmpty(t, q.Get("tableData"))

	plain := ansi.Strip(m.View())
	assert.Contains(t, plain, "Decoustic")
	assert.Contains(t, plain, "Qty")
	assert.Contains(t, plain, "5")
	assert.NotContains(t, plain, "SKU-1")
	assert.Contains(t, plain, "api: "+srv.URL)
}

func TestScenario_BrandChangeResetsCalculator(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "")

	press(t, m, "enter", "enter")
	press(t, m, "tab", "tab", "tab", "tab", "tab", "tab", "2")
	require.Equal(t, "2", m.session.Width())

	// Same brand again is a no-op.
	m.eng.SetBrand("dc")
	deliver(t, m, tea.Batch(m.afterStateChange()...))
	assert.Equal(t, "2", m.session.Width())

	m.eng.SetBrand("")
	deliver(t, m, tea.Batch(m.afterStateChange()...))
	assert.Empty(t, m.session.Width())
	assert.Empty(t, m.widthIn.Value())
	assert.False(t, m.session.QueryValues().Has("calcMode"))
}

func TestHydrationFromLink(t *testing.T) {
	srv := fakeBackend(t, nil)
	res := calc.Result{Rows: []map[string]any{{"qty": 7}}}
	tok := mustEncode(t, res)
	link := "brand=dc&model=m1&size=s1&calcMode=area&calcArea=4,5&tableData=" + tok

	m := testModel(t, srv, link)

	assert.Equal(t, "dc", m.eng.Brand())
	assert.Equal(t, "m1", m.eng.Model())
	assert.Equal(t, "s1", m.eng.Size(), "share-link size must survive the list load")
	assert.Equal(t, calc.ModeArea, m.session.Mode())
	assert.Equal(t, "4,5", m.session.Area())
	assert.True(t, m.session.HasResult())

	plain := ansi.Strip(m.View())
	assert.Contains(t, plain, "Lines")
	assert.Contains(t, plain, "7")
}

func TestCalcMessages_StatusHandling(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "brand=dc&model=m1")

	stamp, gen := m.session.Start("dc", "m1")
	m.Update(calcMsg{gen: gen, stamp: stamp, notFound: true})
	assert.True(t, m.session.Incomplete())
	assert.Contains(t, ansi.Strip(m.View()), "Pick all required options")

	stamp, gen = m.session.Start("dc", "m1")
	m.Update(calcMsg{gen: gen, stamp: stamp, errMsg: "boom"})
	assert.Contains(t, m.status.Message(), "boom")

	// Stale generation leaves everything untouched.
	m.status.SetMessage("")
	m.session.Start("dc", "m1")
	m.Update(calcMsg{gen: -1, stamp: stamp, errMsg: "late"})
	assert.Empty(t, m.status.Message())
}

func TestExportAndShareMessages(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "")

	m.Update(exportMsg{path: "calc.xlsx"})
	assert.Contains(t, m.status.Message(), "calc.xlsx")

	m.Update(exportMsg{err: api.ErrNotFound})
	assert.Contains(t, m.status.Message(), "export unavailable")

	m.Update(shareMsg{url: "https://x/y?brand=dc"})
	assert.Contains(t, m.status.Message(), "copied")

	m.Update(shareMsg{url: "https://x/y?brand=dc", err: assert.AnError})
	assert.Contains(t, m.status.Message(), "https://x/y?brand=dc")
}

func TestShareRequiresResult(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "")

	require.Nil(t, m.share())
	assert.Contains(t, m.status.Message(), "no calculation")
}

func TestHelpOverlay(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "")

	press(t, m, "?")
	assert.Contains(t, ansi.Strip(m.View()), "Toggle sizes / area mode")
	press(t, m, "esc")
	assert.NotContains(t, ansi.Strip(m.View()), "Toggle sizes / area mode")
}

func TestModeToggleSwitchesInputs(t *testing.T) {
	srv := fakeBackend(t, nil)
	m := testModel(t, srv, "")

	press(t, m, "m")
	assert.Equal(t, calc.ModeArea, m.session.Mode())
	plain := ansi.Strip(m.View())
	assert.Contains(t, plain, "Area")
	assert.NotContains(t, plain, "Width")

	press(t, m, "t")
	assert.Equal(t, calc.SurfaceWall, m.session.Surface())
}
