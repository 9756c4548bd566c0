// Package sharelink encodes the full calculation result into a single
// query-string-safe token so a configurator state can be shared as a
// URL, and decodes it back. Decoding is total: malformed tokens yield
// an empty result, never an error.
package sharelink

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/constr-tools/panelcfg/internal/calc"
)

// ErrTokenTooLarge flags tokens beyond the practical URL size. The
// token is still returned and usable; callers should warn the user
// that the link may not survive every transport.
var ErrTokenTooLarge = errors.New("share token exceeds practical URL size")

// maxTokenBytes keeps the whole URL under common client limits.
const maxTokenBytes = 6000

// wire is the token's JSON envelope; the key names are part of the
// shared-link format.
type wire struct {
	Table *calc.Table      `json:"calcData"`
	Rows  []map[string]any `json:"calcRows"`
}

// Encode serializes a result into a base64url token.
func Encode(r calc.Result) (string, error) {
	buf, err := json.Marshal(wire{Table: r.Table, Rows: r.Rows})
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	tok := base64.RawURLEncoding.EncodeToString(buf)
	if len(tok) > maxTokenBytes {
		return tok, ErrTokenTooLarge
	}
	return tok, nil
}

// Decode is the inverse of Encode. Any failure returns the empty
// result.
func Decode(tok string) calc.Result {
	if tok == "" {
		return calc.Result{}
	}
	buf, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(tok, "="))
	if err != nil {
		return calc.Result{}
	}
	var w wire
	if err := json.Unmarshal(buf, &w); err != nil {
		return calc.Result{}
	}
	return calc.Result{Table: w.Table, Rows: w.Rows}
}

// BuildShareURL joins the share origin and an encoded query string into
// an absolute link.
func BuildShareURL(base, encodedQuery string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "?")
	if encodedQuery == "" {
		return base
	}
	return base + "?" + encodedQuery
}
