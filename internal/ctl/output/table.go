// Package output provides output formatting for the metalmesh CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats data as an ASCII table.
type TableFormatter struct{}

// Table is a pre-shaped table ready for rendering.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table using tab alignment.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// Format formats data as a table.
// Supports: *Table, map[string]any (key/value listing), and falls
// back to indented JSON for anything else.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch v := data.(type) {
	case *Table:
		return v.Render(w)
	case Table:
		return v.Render(w)
	case map[string]any:
		return mapTable(v).Render(w)
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
}

// mapTable renders a flat map as a two-column PROPERTY/VALUE table
// with deterministic ordering.
func mapTable(m map[string]any) *Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &Table{Headers: []string{"PROPERTY", "VALUE"}}
	for _, k := range keys {
		t.AddRow(k, cellValue(m[k]))
	}
	return t
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
