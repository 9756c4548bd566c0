package calc

import (
	"encoding/json"
	"sort"
	"strings"
)

// Column describes one column of a column-oriented result table.
type Column struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TableRow groups the item lines of one result row.
type TableRow struct {
	Items []map[string]any `json:"items"`
}

// Table is the column-oriented calculation result.
type Table struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// Result is a calculation outcome in one of two mutually exclusive
// shapes: the column-oriented Table or the legacy flat row list. The
// JSON tags match the share-token wire format.
type Result struct {
	Table *Table           `json:"calcData"`
	Rows  []map[string]any `json:"calcRows"`
}

// Empty reports whether the result carries no table and no rows.
func (r Result) Empty() bool {
	return (r.Table == nil || len(r.Table.Columns) == 0) && len(r.Rows) == 0
}

// ParseResult interprets a decoded calculation response. Three shapes
// are accepted: {data:{title,columns,rows}}, {data:[...]} and a bare
// array; the column-oriented shape wins when present. Unrecognized
// input yields an empty result.
func ParseResult(raw any) Result {
	switch v := raw.(type) {
	case map[string]any:
		switch data := v["data"].(type) {
		case map[string]any:
			if t := parseTable(data); t != nil {
				return Result{Table: t}
			}
		case []any:
			return Result{Rows: toRowMaps(data)}
		}
	case []any:
		return Result{Rows: toRowMaps(v)}
	}
	return Result{}
}

func parseTable(data map[string]any) *Table {
	_, colsOK := data["columns"].([]any)
	_, rowsOK := data["rows"].([]any)
	if !colsOK || !rowsOK {
		return nil
	}
	// Rebuilding through JSON keeps the tolerance of the probing style
	// without hand-walking every nested field.
	buf, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var t Table
	if err := json.Unmarshal(buf, &t); err != nil {
		return nil
	}
	return &t
}

func toRowMaps(arr []any) []map[string]any {
	rows := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// articleColumn is the backend's SKU column, hidden from rendering.
const articleColumn = "артикул"

// DisplayColumns returns the table columns minus the hidden SKU column.
func (t *Table) DisplayColumns() []Column {
	cols := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.EqualFold(c.ID, articleColumn) || strings.EqualFold(c.Name, articleColumn) {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// RowColumns derives column names for the legacy flat-row shape from
// the first row's keys, sorted for a stable order, minus the hidden SKU
// column.
func RowColumns(rows []map[string]any) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		if strings.EqualFold(k, articleColumn) {
			continue
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
