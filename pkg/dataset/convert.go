package dataset

import (
	"time"

	"github.com/carveragents/carver-feeds-go/pkg/table"
)

// timestamp layouts the API has been seen to emit
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime parses a timestamp cell, returning nil for unparseable values
func parseTime(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, val); err == nil {
				return ts
			}
		}
		return nil
	default:
		return nil
	}
}

// coerceDates converts the named columns to time.Time cells, unparseable
// values become nil
func coerceDates(t *table.Table, cols ...string) {
	for _, col := range cols {
		if !t.HasColumn(col) {
			continue
		}
		t.SetColumn(col, func(row table.Row) any { return parseTime(row[col]) })
	}
}

// coerceBool normalizes the named column to bool cells, absent values
// default to true
func coerceBool(t *table.Table, col string) {
	if !t.HasColumn(col) {
		return
	}
	t.SetColumn(col, func(row table.Row) any {
		switch val := row[col].(type) {
		case bool:
			return val
		case nil:
			return true
		case string:
			return val == "true" || val == "1"
		default:
			return true
		}
	})
}
