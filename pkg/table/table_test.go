package table

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	t.Run("expected columns first", func(t *testing.T) {
		records := []Row{
			{"id": "1", "name": "a", "extra": "x"},
			{"id": "2", "name": "b"},
		}
		tbl := FromRecords(records, []string{"id", "name", "created_at"})
		assert.Equal(t, []string{"id", "name", "created_at", "extra"}, tbl.Columns())
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("missing cells filled with nil", func(t *testing.T) {
		tbl := FromRecords([]Row{{"id": "1"}}, []string{"id", "name"})
		row := tbl.Row(0)
		v, ok := row["name"]
		assert.True(t, ok, "missing cell materialized")
		assert.Nil(t, v)
	})

	t.Run("extras kept in record order", func(t *testing.T) {
		records := []Row{
			{"id": "1", "zeta": 1},
			{"id": "2", "alpha": 2},
		}
		tbl := FromRecords(records, []string{"id"})
		assert.Equal(t, []string{"id", "zeta", "alpha"}, tbl.Columns())
	})

	t.Run("extras within one record sorted", func(t *testing.T) {
		// map iteration order is random, extras from a single record must
		// still come out the same on every run
		records := []Row{{"id": "1", "zeta": 1, "alpha": 2, "mid": 3}}
		for i := 0; i < 10; i++ {
			tbl := FromRecords(records, []string{"id"})
			assert.Equal(t, []string{"id", "alpha", "mid", "zeta"}, tbl.Columns())
		}
	})

	t.Run("source records not mutated", func(t *testing.T) {
		records := []Row{{"id": "1"}}
		FromRecords(records, []string{"id", "name"})
		_, ok := records[0]["name"]
		assert.False(t, ok, "nil fill stays on the table copy")
	})

	t.Run("empty records keep schema", func(t *testing.T) {
		tbl := FromRecords(nil, []string{"id", "name"})
		assert.Equal(t, []string{"id", "name"}, tbl.Columns())
		assert.Equal(t, 0, tbl.Len())
	})
}

func TestTable_Filter(t *testing.T) {
	tbl := FromRecords([]Row{
		{"id": "1", "active": true},
		{"id": "2", "active": false},
		{"id": "3", "active": true},
	}, []string{"id", "active"})

	filtered := tbl.Filter(func(row Row) bool { b, _ := Bool(row, "active"); return b })
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 3, tbl.Len(), "source table untouched")
	assert.Equal(t, tbl.Columns(), filtered.Columns())
}

func TestTable_Rename(t *testing.T) {
	tbl := FromRecords([]Row{{"id": "1", "name": "a"}}, []string{"id", "name"})
	renamed := tbl.Rename(map[string]string{"id": "topic_id"})
	assert.Equal(t, []string{"topic_id", "name"}, renamed.Columns())
	assert.Equal(t, "1", String(renamed.Row(0), "topic_id"))
	assert.Equal(t, []string{"id", "name"}, tbl.Columns(), "source unchanged")
}

func TestTable_Drop(t *testing.T) {
	tbl := FromRecords([]Row{{"id": "1", "name": "a", "junk": "x"}}, []string{"id", "name", "junk"})
	dropped := tbl.Drop("junk")
	assert.Equal(t, []string{"id", "name"}, dropped.Columns())
	_, ok := dropped.Row(0)["junk"]
	assert.False(t, ok)
}

func TestTable_SetColumn(t *testing.T) {
	tbl := FromRecords([]Row{{"id": "1"}, {"id": "2"}}, []string{"id"})
	tbl.SetColumn("body", func(Row) any { return nil })
	assert.True(t, tbl.HasColumn("body"))
	assert.Nil(t, tbl.Row(0)["body"])

	tbl.SetColumn("id", func(row Row) any { return "x" + String(row, "id") })
	assert.Equal(t, "x1", String(tbl.Row(0), "id"))
	assert.Equal(t, []string{"id", "body"}, tbl.Columns(), "replacing keeps column order")
}

func TestTable_Concat(t *testing.T) {
	left := FromRecords([]Row{{"id": "1", "a": 1}}, []string{"id", "a"})
	right := FromRecords([]Row{{"id": "2", "b": 2}}, []string{"id", "b"})

	combined := left.Concat(right)
	assert.Equal(t, []string{"id", "a", "b"}, combined.Columns())
	assert.Equal(t, 2, combined.Len())
	assert.Nil(t, combined.Row(0)["b"], "left row filled for right-only column")
	assert.Nil(t, combined.Row(1)["a"], "right row filled for left-only column")
	assert.Equal(t, 1, left.Len(), "operands unchanged")
}

func TestTable_InnerJoin(t *testing.T) {
	topics := FromRecords([]Row{
		{"topic_id": "t1", "topic_name": "Compliance"},
		{"topic_id": "t2", "topic_name": "Privacy"},
	}, []string{"topic_id", "topic_name"})
	feeds := FromRecords([]Row{
		{"feed_id": "f1", "topic_id": "t1"},
		{"feed_id": "f2", "topic_id": "t1"},
		{"feed_id": "f3", "topic_id": "t9"}, // orphan, excluded
	}, []string{"feed_id", "topic_id"})

	t.Run("matching rows merged", func(t *testing.T) {
		joined := topics.InnerJoin(feeds, "topic_id")
		assert.Equal(t, 2, joined.Len(), "t1 joins twice, t2 and orphan excluded")
		assert.Equal(t, []string{"topic_id", "topic_name", "feed_id"}, joined.Columns())
		assert.Equal(t, "Compliance", String(joined.Row(0), "topic_name"))
	})

	t.Run("left value wins on collision", func(t *testing.T) {
		left := FromRecords([]Row{{"id": "1", "name": "left"}}, []string{"id", "name"})
		right := FromRecords([]Row{{"id": "1", "name": "right"}}, []string{"id", "name"})
		joined := left.InnerJoin(right, "id")
		require.Equal(t, 1, joined.Len())
		assert.Equal(t, "left", String(joined.Row(0), "name"))
	})

	t.Run("nil keys skipped", func(t *testing.T) {
		left := FromRecords([]Row{{"id": nil, "name": "a"}}, []string{"id", "name"})
		joined := left.InnerJoin(left, "id")
		assert.Equal(t, 0, joined.Len())
	})
}

func TestTable_Copy(t *testing.T) {
	tbl := FromRecords([]Row{{"id": "1"}}, []string{"id"})
	cp := tbl.Copy()
	cp.Row(0)["id"] = "changed"
	assert.Equal(t, "1", String(tbl.Row(0), "id"), "copy is deep")
}

func TestTable_Append(t *testing.T) {
	tbl := New("id")
	tbl.Append(Row{"id": "1"}, Row{"id": "2", "extra": true})
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"id", "extra"}, tbl.Columns())

	t.Run("earlier rows backfilled for new columns", func(t *testing.T) {
		v, ok := tbl.Row(0)["extra"]
		assert.True(t, ok, "cell materialized, not just a missing key")
		assert.Nil(t, v)
	})

	t.Run("new columns extend in sorted order", func(t *testing.T) {
		tbl.Append(Row{"id": "3", "zeta": 1, "alpha": 2})
		assert.Equal(t, []string{"id", "extra", "alpha", "zeta"}, tbl.Columns())
		v, ok := tbl.Row(0)["alpha"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestTable_ToJSON(t *testing.T) {
	tbl := FromRecords([]Row{{"id": "1", "n": float64(2)}}, []string{"id", "n"})
	out, err := tbl.ToJSON(2)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "1", decoded[0]["id"])
	assert.InDelta(t, 2, decoded[0]["n"], 0.001)
}

func TestTable_CSV(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tbl := FromRecords([]Row{
		{"id": "1", "when": ts, "active": true, "gap": nil},
	}, []string{"id", "when", "active", "gap"})

	t.Run("write to buffer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, tbl.WriteCSV(&buf))
		assert.Equal(t, "id,when,active,gap\n1,2024-06-01T12:00:00Z,true,\n", buf.String())
	})

	t.Run("write to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		got, err := tbl.ToCSV(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
		assert.FileExists(t, path)
	})
}

func TestAccessors(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	row := Row{"s": "hello", "t": ts, "b": true, "n": nil, "f": float64(1.5)}

	assert.Equal(t, "hello", String(row, "s"))
	assert.Equal(t, "", String(row, "n"))
	assert.Equal(t, "", String(row, "missing"))
	assert.Equal(t, "1.5", String(row, "f"))

	got, ok := Time(row, "t")
	assert.True(t, ok)
	assert.Equal(t, ts, got)
	_, ok = Time(row, "s")
	assert.False(t, ok)

	b, ok := Bool(row, "b")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = Bool(row, "n")
	assert.False(t, ok)
}
