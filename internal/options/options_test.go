package options

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestToOptions_Total(t *testing.T) {
	for _, raw := range []any{nil, "x", 42.0, map[string]any{"data": "nope"}, map[string]any{}} {
		got := ToOptions(raw)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestToOptions_Envelope(t *testing.T) {
	raw := decode(t, `{"data":[{"id":"a","name":"Alpha"}]}`)
	got := ToOptions(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "Alpha", got[0].Name)
}

func TestToOptions_Primitives(t *testing.T) {
	raw := decode(t, `["600x600", 1200]`)
	got := ToOptions(raw)
	require.Len(t, got, 2)
	assert.Equal(t, Option{ID: "600x600", Name: "600x600"}, got[0])
	assert.Equal(t, "1200", got[1].ID)
	assert.Equal(t, "1200", got[1].Name)
}

func TestToOptions_IDProbeOrder(t *testing.T) {
	raw := decode(t, `[
		{"id":"i1","code":"c1","value":"v1"},
		{"code":"c2","value":"v2"},
		{"value":"v3"},
		{"name":"only name"}
	]`)
	got := ToOptions(raw)
	require.Len(t, got, 4)
	assert.Equal(t, "i1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, "v3", got[2].ID)
	assert.Equal(t, "opt-3", got[3].ID)
	assert.Equal(t, "only name", got[3].Name)
	// name falls back to the id
	assert.Equal(t, "v3", got[2].Name)
}

func TestToOptions_UniqueIDs(t *testing.T) {
	raw := decode(t, `[{"id":"x"},{"id":"x"},{},{}]`)
	got := ToOptions(raw)
	require.Len(t, got, 4)
	seen := map[string]bool{}
	for _, o := range got {
		assert.False(t, seen[o.ID], "duplicate id %q", o.ID)
		seen[o.ID] = true
	}
}

func TestToOptions_KeepsRaw(t *testing.T) {
	raw := decode(t, `[{"id":"a","name":"A","img":"a.png","extra":7}]`)
	got := ToOptions(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "a.png", got[0].ImageRef)
	assert.Equal(t, 7.0, got[0].Raw["extra"])
}

func TestNormalizeBrands(t *testing.T) {
	raw := decode(t, `[
		{"ShortName":"dc","Name":"Decoustic"},
		{"code":"sb","title":"SoundBoard"},
		{"junk":true},
		"not-an-object"
	]`)
	got := NormalizeBrands(raw)
	require.Len(t, got, 3)
	assert.Equal(t, "dc", got[0].ID)
	assert.Equal(t, "Decoustic", got[0].Name)
	assert.Equal(t, "sb", got[1].ID)
	assert.Equal(t, "SoundBoard", got[1].Name)
	assert.Equal(t, "brand-2", got[2].ID)
}

func TestNormalizeBrands_Total(t *testing.T) {
	assert.Empty(t, NormalizeBrands(nil))
	assert.Empty(t, NormalizeBrands("x"))
	assert.Empty(t, NormalizeBrands(map[string]any{"data": 3.0}))
}

func TestExtractModelList(t *testing.T) {
	raw := decode(t, `{"data":[
		{"type":"text","code":"descr"},
		{"type":"select","code":"finish","list":[{"id":"f1"}]},
		{"type":"select","code":"Model","list":[{"id":"m1","name":"Model1"}]}
	]}`)
	got := ExtractModelList(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)

	// Falls back to the first select block when no model-coded one exists.
	raw = decode(t, `{"data":[{"type":"select","code":"finish","list":[{"id":"f1"}]}]}`)
	got = ExtractModelList(raw)
	require.Len(t, got, 1)
	assert.Equal(t, "f1", got[0].ID)

	assert.Empty(t, ExtractModelList(nil))
}

func TestExtractDependentLists_TaggedBlocks(t *testing.T) {
	raw := decode(t, `{"data":[
		{"code":"color","list":[{"id":"c1"}]},
		{"code":"SIZE","values":[{"id":"s1"}]},
		{"code":"perf","options":["p1"]},
		{"code":"edge","list":[]}
	]}`)
	got := ExtractDependentLists(raw)
	require.Len(t, got.Color, 1)
	assert.Equal(t, "c1", got.Color[0].ID)
	require.Len(t, got.Size, 1)
	assert.Equal(t, "s1", got.Size[0].ID)
	require.Len(t, got.Perf, 1)
	assert.Equal(t, "p1", got.Perf[0].ID)
	assert.Empty(t, got.Edge)
}

func TestExtractDependentLists_FlatObject(t *testing.T) {
	raw := decode(t, `{"data":{
		"colors":[{"id":"c1"}],
		"size":[{"id":"s1"}],
		"listPerfs":[{"id":"p1"}]
	}}`)
	got := ExtractDependentLists(raw)
	assert.Len(t, got.Color, 1)
	assert.Len(t, got.Size, 1)
	assert.Len(t, got.Perf, 1)
	assert.Empty(t, got.Edge)
	assert.False(t, got.Empty())
}

func TestExtractDependentLists_TaggedWinsOverFlat(t *testing.T) {
	raw := decode(t, `{"data":[{"code":"color","list":[{"id":"tagged"}]}],"colors":[{"id":"flat"}]}`)
	got := ExtractDependentLists(raw)
	require.Len(t, got.Color, 1)
	assert.Equal(t, "tagged", got.Color[0].ID)
}

func TestExtractDependentLists_Total(t *testing.T) {
	got := ExtractDependentLists(nil)
	assert.True(t, got.Empty())
	got = ExtractDependentLists("garbage")
	assert.True(t, got.Empty())
}

func TestImageURL(t *testing.T) {
	base := "http://localhost:3005/"
	assert.Equal(t, "", ImageURL(Option{}, base))
	assert.Equal(t, "https://cdn/x.png", ImageURL(Option{ImageRef: "https://cdn/x.png"}, base))
	assert.Equal(t, "http://localhost:3005/api/v1/constr/x.png", ImageURL(Option{ImageRef: "x.png"}, base))
}

func TestBrandIcon(t *testing.T) {
	assert.Equal(t, "icon_Decoustic.png", BrandIcon("dc"))
	assert.Equal(t, "icon_generic.png", BrandIcon("nope"))
}
