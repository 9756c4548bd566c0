package sharelink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constr-tools/panelcfg/internal/calc"
)

func TestRoundTrip_Table(t *testing.T) {
	r := calc.Result{
		Table: &calc.Table{
			Title:   "Расчёт",
			Columns: []calc.Column{{ID: "qty", Name: "Qty"}},
			Rows:    []calc.TableRow{{Items: []map[string]any{{"qty": "5"}}}},
		},
	}
	tok, err := Encode(r)
	require.NoError(t, err)
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")

	got := Decode(tok)
	assert.Equal(t, r, got)
}

func TestRoundTrip_Rows(t *testing.T) {
	r := calc.Result{Rows: []map[string]any{{"qty": "5", "price": "10"}}}
	tok, err := Encode(r)
	require.NoError(t, err)
	assert.Equal(t, r, Decode(tok))
}

func TestDecode_Total(t *testing.T) {
	for _, tok := range []string{"", "!!!not base64!!!", "bm90LWpzb24", "e30"} {
		got := Decode(tok)
		assert.True(t, got.Empty(), "token %q", tok)
	}
}

func TestEncode_TooLarge(t *testing.T) {
	rows := make([]map[string]any, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, map[string]any{"name": strings.Repeat("x", 64)})
	}
	tok, err := Encode(calc.Result{Rows: rows})
	assert.ErrorIs(t, err, ErrTokenTooLarge)
	// Oversized tokens still round-trip.
	assert.False(t, Decode(tok).Empty())
}

func TestBuildShareURL(t *testing.T) {
	assert.Equal(t, "https://x/app", BuildShareURL("https://x/app", ""))
	assert.Equal(t, "https://x/app?brand=dc", BuildShareURL("https://x/app", "brand=dc"))
}
