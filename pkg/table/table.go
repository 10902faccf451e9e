// Package table provides the in-memory tabular structure the SDK assembles
// API records into. Columns are ordered, cells are dynamically typed and nil
// marks an absent value.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
)

// Row is one record keyed by column name, nil values mark absent data
type Row = map[string]any

// Table holds rows with a fixed, ordered column set
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given columns
func New(cols ...string) *Table {
	return &Table{cols: append([]string{}, cols...)}
}

// FromRecords normalizes heterogeneous records into a table with the expected
// columns. Missing fields are filled with nil; fields present in the data but
// not expected are retained and appended after the expected columns, ordered
// by the record that first carried them and sorted within a record so the
// resulting column set is deterministic. Records are copied, not shared.
func FromRecords(records []Row, expected []string) *Table {
	t := New(expected...)
	if len(records) == 0 {
		lgr.Printf("[DEBUG] normalizing empty record list, keeping %d expected columns", len(expected))
		return t
	}

	for _, rec := range records {
		row := make(Row, len(rec))
		for k, v := range rec {
			row[k] = v
		}
		t.Append(row)
	}
	if len(t.cols) > len(expected) {
		lgr.Printf("[INFO] found extra columns, keeping them: %v", t.cols[len(expected):])
	}
	return t
}

// Columns returns the ordered column names
func (t *Table) Columns() []string { return append([]string{}, t.cols...) }

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.cols {
		if col == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the underlying rows. Callers narrowing a result set should use
// Filter, which leaves the source rows untouched.
func (t *Table) Rows() []Row { return t.rows }

// Row returns row i
func (t *Table) Row(i int) Row { return t.rows[i] }

// Append adds rows, extending the column set with any new keys in sorted
// order. Cells missing on either side of the extension are filled with nil.
func (t *Table) Append(rows ...Row) {
	for _, row := range rows {
		var added []string
		for k := range row {
			if !t.HasColumn(k) {
				added = append(added, k)
			}
		}
		sort.Strings(added)
		t.cols = append(t.cols, added...)
		t.rows = append(t.rows, row)
	}
	for _, row := range t.rows {
		for _, col := range t.cols {
			if _, ok := row[col]; !ok {
				row[col] = nil
			}
		}
	}
}

// Copy returns a deep copy of the table
func (t *Table) Copy() *Table {
	res := New(t.cols...)
	res.rows = make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		res.rows = append(res.rows, cp)
	}
	return res
}

// Filter returns a new table holding the rows the predicate accepts. Source
// rows are shared, not copied, and never removed from the receiver.
func (t *Table) Filter(pred func(Row) bool) *Table {
	res := New(t.cols...)
	for _, row := range t.rows {
		if pred(row) {
			res.rows = append(res.rows, row)
		}
	}
	return res
}

// Rename returns a new table with columns renamed per the mapping. Columns
// absent from the mapping keep their names.
func (t *Table) Rename(mapping map[string]string) *Table {
	res := &Table{cols: make([]string, len(t.cols))}
	for i, col := range t.cols {
		if renamed, ok := mapping[col]; ok {
			res.cols[i] = renamed
		} else {
			res.cols[i] = col
		}
	}
	res.rows = make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		cp := make(Row, len(row))
		for k, v := range row {
			if renamed, ok := mapping[k]; ok {
				cp[renamed] = v
			} else {
				cp[k] = v
			}
		}
		res.rows = append(res.rows, cp)
	}
	return res
}

// Drop returns a new table without the given columns
func (t *Table) Drop(cols ...string) *Table {
	dropped := make(map[string]bool, len(cols))
	for _, col := range cols {
		dropped[col] = true
	}
	res := &Table{}
	for _, col := range t.cols {
		if !dropped[col] {
			res.cols = append(res.cols, col)
		}
	}
	res.rows = make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		cp := make(Row, len(row))
		for k, v := range row {
			if !dropped[k] {
				cp[k] = v
			}
		}
		res.rows = append(res.rows, cp)
	}
	return res
}

// SetColumn adds or replaces a column, computing each cell from its row
func (t *Table) SetColumn(name string, fn func(Row) any) {
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
	for _, row := range t.rows {
		row[name] = fn(row)
	}
}

// Concat returns a new table with the rows of both tables. The receiver's
// column order wins; columns unique to the other table are appended.
func (t *Table) Concat(other *Table) *Table {
	res := t.Copy()
	for _, col := range other.cols {
		if !res.HasColumn(col) {
			res.cols = append(res.cols, col)
		}
	}
	for _, row := range other.rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		res.rows = append(res.rows, cp)
	}
	// fill cells for columns one side lacked
	for _, row := range res.rows {
		for _, col := range res.cols {
			if _, ok := row[col]; !ok {
				row[col] = nil
			}
		}
	}
	return res
}

// InnerJoin joins with the right table on the given column. Rows without a
// match on the right are excluded. Right columns already present on the left
// keep the left value.
func (t *Table) InnerJoin(right *Table, on string) *Table {
	byKey := make(map[any][]Row)
	for _, row := range right.rows {
		if v, ok := row[on]; ok && v != nil {
			byKey[v] = append(byKey[v], row)
		}
	}

	res := New(t.cols...)
	for _, col := range right.cols {
		if !res.HasColumn(col) {
			res.cols = append(res.cols, col)
		}
	}
	for _, row := range t.rows {
		key := row[on]
		if key == nil {
			continue
		}
		for _, match := range byKey[key] {
			merged := make(Row, len(row)+len(match))
			for k, v := range match {
				merged[k] = v
			}
			for k, v := range row {
				merged[k] = v
			}
			res.rows = append(res.rows, merged)
		}
	}
	return res
}

// ToMaps returns a copy of the rows as plain maps
func (t *Table) ToMaps() []map[string]any {
	res := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		res = append(res, cp)
	}
	return res
}

// ToJSON renders the rows as an indented JSON array of objects
func (t *Table) ToJSON(indent int) (string, error) {
	data, err := json.MarshalIndent(t.ToMaps(), "", spaces(indent))
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}
	return string(data), nil
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	return string(buf)
}

// WriteCSV writes the table with a header row
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.cols))
	for _, row := range t.rows {
		for i, col := range t.cols {
			record[i] = formatCell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToCSV writes the table to a file and returns the path
func (t *Table) ToCSV(path string) (string, error) {
	f, err := os.Create(path) //nolint:gosec // output path comes from the caller
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	if err := t.WriteCSV(f); err != nil {
		return "", err
	}
	return path, nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// String returns the cell as a string, nil and missing cells become empty
func String(row Row, col string) string {
	v, ok := row[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return formatCell(v)
}

// Time returns the cell as a time.Time when it holds one
func Time(row Row, col string) (time.Time, bool) {
	ts, ok := row[col].(time.Time)
	return ts, ok
}

// Bool returns the cell as a bool when it holds one
func Bool(row Row, col string) (bool, bool) {
	b, ok := row[col].(bool)
	return b, ok
}
