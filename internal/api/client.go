// Package api is the gateway to the remote configurator backend. All
// endpoints are consumed as opaque JSON (or binary, for the spreadsheet
// export); interpretation of the payloads happens upstream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound marks a 404 on the calculation and export endpoints,
// where it means "selection incomplete" rather than a server fault.
var ErrNotFound = errors.New("not found")

// HTTPError is a non-2xx response with the most specific message the
// body offered.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

// Client issues requests against a configurable base address. An empty
// base produces origin-relative paths, which fail fast instead of
// silently hitting the wrong host.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the given base address.
func New(base string) *Client {
	return &Client{
		base: strings.TrimSpace(base),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Base returns the configured base address.
func (c *Client) Base() string { return c.base }

// JoinURL joins a base address and a path with exactly one separating
// slash, whatever slashes either side carries.
func JoinURL(base, path string) string {
	p := strings.TrimLeft(path, "/")
	b := strings.TrimRight(strings.TrimSpace(base), "/")
	if b == "" {
		return "/" + p
	}
	return b + "/" + p
}

// Brands fetches the brand list.
func (c *Client) Brands(ctx context.Context) (any, error) {
	return c.getJSON(ctx, JoinURL(c.base, "api/v1/AcousticCategories"))
}

// BrandParams fetches the parameter blocks for a brand (the model list
// lives here).
func (c *Client) BrandParams(ctx context.Context, brand string) (any, error) {
	return c.getJSON(ctx, JoinURL(c.base, "api/v1/brandParams/"+url.PathEscape(brand)))
}

// ModelParams fetches the model-scoped parameter blocks (the dependent
// color/size/perf/edge lists).
func (c *Client) ModelParams(ctx context.Context, brand, model string) (any, error) {
	u := JoinURL(c.base, "api/v1/brandParams/"+url.PathEscape(brand))
	return c.getJSON(ctx, u+"?model="+url.QueryEscape(model))
}

// CalcQuery carries the calculation inputs. Empty fields are omitted
// from the query string.
type CalcQuery struct {
	Brand   string
	Model   string
	Color   string
	Size    string
	Perf    string
	Edge    string
	Surface string // sent as "type"
	Length  string
	Height  string
	Square  string
}

// Calculate runs a price/quantity calculation. A 404 response becomes
// ErrNotFound so callers can treat it as an incomplete selection.
func (c *Client) Calculate(ctx context.Context, q CalcQuery) (any, error) {
	params := url.Values{}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set("model", q.Model)
	set("color", q.Color)
	set("size", q.Size)
	set("perf", q.Perf)
	set("edge", q.Edge)
	set("type", q.Surface)
	set("length", q.Length)
	set("height", q.Height)
	set("square", q.Square)

	u := JoinURL(c.base, "api/v2/constr/calc/"+url.PathEscape(q.Brand))
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	res, err := c.getJSON(ctx, u)
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

// ExportPayload is the full selection posted to the spreadsheet export.
type ExportPayload struct {
	Brand    string         `json:"brand"`
	Model    string         `json:"model"`
	Color    string         `json:"color,omitempty"`
	Size     string         `json:"size,omitempty"`
	Perf     string         `json:"perf,omitempty"`
	Edge     string         `json:"edge,omitempty"`
	Selected map[string]any `json:"selected"`
	Surface  string         `json:"surface"`
	Mode     string         `json:"mode"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`
	Area     float64        `json:"area,omitempty"`
}

// ExportExcel posts the selection and returns the binary spreadsheet.
// A 404 becomes ErrNotFound ("export unavailable").
func (c *Client) ExportExcel(ctx context.Context, p ExportPayload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode export payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, JoinURL(c.base, "api/v2/constr/calc/excel"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read export response: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, responseError(res.StatusCode, data)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, u string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		// Context cancellation passes through inside the url.Error so
		// callers can drop superseded requests with errors.Is.
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, responseError(res.StatusCode, body)
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}

// responseError extracts the most specific message from an error body:
// the JSON message/error field, then the raw body text, then a generic
// HTTP status line.
func responseError(status int, body []byte) *HTTPError {
	msg := ""
	var decoded map[string]any
	if json.Unmarshal(body, &decoded) == nil {
		if s, ok := decoded["message"].(string); ok && s != "" {
			msg = s
		} else if s, ok := decoded["error"].(string); ok && s != "" {
			msg = s
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &HTTPError{Status: status, Message: msg}
}

// IsCanceled reports whether an error is a cancelled or timed-out
// request rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
