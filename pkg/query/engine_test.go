package query

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carveragents/carver-feeds-go/pkg/dataset"
	"github.com/carveragents/carver-feeds-go/pkg/query/mocks"
	"github.com/carveragents/carver-feeds-go/pkg/table"
)

var hierarchyColumns = []string{
	"entry_id", "entry_title", "entry_link", "entry_content_markdown", "entry_published_at", "entry_is_active",
	"feed_id", "feed_name", "topic_id", "topic_name",
}

func entryRow(id, title, body, feedID, feedName, topicID, topicName string, published time.Time, active bool) table.Row {
	return table.Row{
		"entry_id": id, "entry_title": title, "entry_link": "https://example.com/" + id,
		"entry_content_markdown": body, "entry_published_at": published, "entry_is_active": active,
		"feed_id": feedID, "feed_name": feedName, "topic_id": topicID, "topic_name": topicName,
	}
}

func testHierarchy() *table.Table {
	return table.FromRecords([]table.Row{
		entryRow("e1", "GDPR update", "new privacy regulation adopted", "f1", "EUR-Lex", "t1", "Privacy",
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true),
		entryRow("e2", "Banking rules", "capital requirements tightened", "f2", "FCA News", "t2", "Banking",
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), true),
		entryRow("e3", "Old privacy notice", "historical privacy guidance", "f1", "EUR-Lex", "t1", "Privacy",
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false),
	}, hierarchyColumns)
}

// providerWithView serves the full hierarchy and per-entity slices of it
func providerWithView() *mocks.DataProviderMock {
	return &mocks.DataProviderMock{
		HierarchicalViewFunc: func(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error) {
			full := testHierarchy()
			switch {
			case opts.FeedID != "":
				return full.Filter(func(row table.Row) bool { return row["feed_id"] == opts.FeedID }), nil
			case opts.TopicID != "":
				return full.Filter(func(row table.Row) bool { return row["topic_id"] == opts.TopicID }), nil
			}
			return full, nil
		},
		TopicsFunc: func(ctx context.Context) (*table.Table, error) {
			return table.FromRecords([]table.Row{
				{"id": "t1", "name": "Privacy"},
				{"id": "t2", "name": "Banking"},
				{"id": "t3", "name": "Privacy Shield"},
			}, []string{"id", "name"}), nil
		},
		FeedsFunc: func(ctx context.Context, topicID string) (*table.Table, error) {
			return table.FromRecords([]table.Row{
				{"id": "f1", "name": "EUR-Lex"},
				{"id": "f2", "name": "FCA News"},
			}, []string{"id", "name"}), nil
		},
	}
}

func TestEngine_LazyLoad(t *testing.T) {
	t.Run("load deferred until export", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)
		assert.Empty(t, provider.HierarchicalViewCalls())

		res, err := e.ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
		require.Len(t, provider.HierarchicalViewCalls(), 1)
		assert.True(t, provider.HierarchicalViewCalls()[0].Opts.IncludeEntries)
	})

	t.Run("repeated export loads once", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		first, err := e.ToTable(context.Background())
		require.NoError(t, err)
		second, err := e.ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.Len(), second.Len())
		assert.Len(t, provider.HierarchicalViewCalls(), 1)
	})

	t.Run("hydration option forwarded", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider, WithHydration())
		_, err := e.ToTable(context.Background())
		require.NoError(t, err)
		require.Len(t, provider.HierarchicalViewCalls(), 1)
		assert.True(t, provider.HierarchicalViewCalls()[0].Opts.HydrateContent)
	})
}

func TestEngine_FilterByTopic(t *testing.T) {
	t.Run("first filter by id loads one topic", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		res, err := e.FilterByTopic(context.Background(), "t1", "").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
		require.Len(t, provider.HierarchicalViewCalls(), 1)
		assert.Equal(t, "t1", provider.HierarchicalViewCalls()[0].Opts.TopicID)
		assert.Empty(t, provider.TopicsCalls(), "id filter needs no name resolution")
	})

	t.Run("name resolves to id", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		res, err := e.FilterByTopic(context.Background(), "", "banking").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
		assert.Len(t, provider.TopicsCalls(), 1)
		require.Len(t, provider.HierarchicalViewCalls(), 1)
		assert.Equal(t, "t2", provider.HierarchicalViewCalls()[0].Opts.TopicID)
	})

	t.Run("name matching multiple topics loads all", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		// "privacy" matches both Privacy and Privacy Shield
		res, err := e.FilterByTopic(context.Background(), "", "privacy").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len(), "t1 slice plus empty t3 slice")
		assert.Len(t, provider.HierarchicalViewCalls(), 2)
	})

	t.Run("unknown name yields empty results", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		res, err := e.FilterByTopic(context.Background(), "", "no such topic").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len())
		assert.Empty(t, provider.HierarchicalViewCalls())
	})

	t.Run("name equivalent to id", func(t *testing.T) {
		byID, err := New(providerWithView()).FilterByTopic(context.Background(), "t2", "").ToTable(context.Background())
		require.NoError(t, err)
		byName, err := New(providerWithView()).FilterByTopic(context.Background(), "", "Banking").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, byID.Len(), byName.Len())
	})

	t.Run("filter on loaded data narrows", func(t *testing.T) {
		e := New(providerWithView())
		res, err := e.SearchEntries(context.Background(), []string{"privacy|capital"}, SearchOptions{}).
			FilterByTopic(context.Background(), "t1", "").
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
	})

	t.Run("no id or name is a no-op", func(t *testing.T) {
		provider := providerWithView()
		res, err := New(provider).FilterByTopic(context.Background(), "", "").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
	})
}

func TestEngine_FilterByFeed(t *testing.T) {
	t.Run("first filter by id loads one feed", func(t *testing.T) {
		provider := providerWithView()
		e := New(provider)

		res, err := e.FilterByFeed(context.Background(), "f1", "").ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
		require.Len(t, provider.HierarchicalViewCalls(), 1)
		assert.Equal(t, "f1", provider.HierarchicalViewCalls()[0].Opts.FeedID)
	})

	t.Run("name substring on loaded data", func(t *testing.T) {
		e := New(providerWithView())
		res, err := e.SearchEntries(context.Background(), []string{".*"}, SearchOptions{}).
			FilterByFeed(context.Background(), "", "fca").
			ToTable(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, res.Len())
		assert.Equal(t, "e2", table.String(res.Row(0), "entry_id"))
	})
}

func TestEngine_SearchEntries(t *testing.T) {
	t.Run("default field is entry body", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"regulation"}, SearchOptions{}).
			ToTable(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, res.Len())
		assert.Equal(t, "e1", table.String(res.Row(0), "entry_id"))
	})

	t.Run("case insensitive by default", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"GDPR"}, SearchOptions{Fields: []string{"title"}}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())

		res2, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"gdpr"}, SearchOptions{Fields: []string{"title"}, CaseSensitive: true}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, res2.Len())
	})

	t.Run("or across keywords", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"capital", "gdpr"}, SearchOptions{Fields: []string{"title", "content_markdown"}}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
	})

	t.Run("and narrows more than or", func(t *testing.T) {
		orRes, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"privacy", "historical"}, SearchOptions{}).
			ToTable(context.Background())
		require.NoError(t, err)
		andRes, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"privacy", "historical"}, SearchOptions{MatchAll: true}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, orRes.Len())
		assert.Equal(t, 1, andRes.Len())
		assert.LessOrEqual(t, andRes.Len(), orRes.Len())
	})

	t.Run("regex keyword", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"^new .*adopted$"}, SearchOptions{}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Len())
	})

	t.Run("invalid regex falls back to substring", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"privacy regulation ("}, SearchOptions{}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, res.Len(), "literal substring not present")
	})

	t.Run("unknown fields leave results unchanged", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), []string{"regulation"}, SearchOptions{Fields: []string{"nonsense"}}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
	})

	t.Run("no keywords is a no-op", func(t *testing.T) {
		res, err := New(providerWithView()).
			SearchEntries(context.Background(), nil, SearchOptions{}).
			ToTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
	})
}

func TestEngine_FilterByDate(t *testing.T) {
	ctx := context.Background()

	t.Run("inclusive bounds", func(t *testing.T) {
		res, err := New(providerWithView()).
			FilterByDate(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)).
			ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len(), "entries on both bounds included")
	})

	t.Run("open start", func(t *testing.T) {
		res, err := New(providerWithView()).
			FilterByDate(ctx, time.Time{}, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)).
			ToTable(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, res.Len())
		assert.Equal(t, "e3", table.String(res.Row(0), "entry_id"))
	})

	t.Run("open end", func(t *testing.T) {
		res, err := New(providerWithView()).
			FilterByDate(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}).
			ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Len())
	})

	t.Run("both zero is a no-op", func(t *testing.T) {
		res, err := New(providerWithView()).
			FilterByDate(ctx, time.Time{}, time.Time{}).
			ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
	})

	t.Run("string timestamps parsed as fallback", func(t *testing.T) {
		provider := &mocks.DataProviderMock{
			HierarchicalViewFunc: func(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error) {
				return table.FromRecords([]table.Row{
					{"entry_id": "e1", "entry_published_at": "2024-06-01T00:00:00Z"},
					{"entry_id": "e2", "entry_published_at": "never"},
				}, []string{"entry_id", "entry_published_at"}), nil
			},
		}
		res, err := New(provider).
			FilterByDate(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}).
			ToTable(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, res.Len())
		assert.Equal(t, "e1", table.String(res.Row(0), "entry_id"))
	})

	t.Run("single call equals chained calls", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

		single, err := New(providerWithView()).FilterByDate(ctx, start, end).ToTable(ctx)
		require.NoError(t, err)
		chained, err := New(providerWithView()).
			FilterByDate(ctx, start, time.Time{}).
			FilterByDate(ctx, time.Time{}, end).
			ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, single.Len(), chained.Len())
	})
}

func TestEngine_FilterByActive(t *testing.T) {
	ctx := context.Background()

	active, err := New(providerWithView()).FilterByActive(ctx, true).ToTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active.Len())

	inactive, err := New(providerWithView()).FilterByActive(ctx, false).ToTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inactive.Len())
	assert.Equal(t, "e3", table.String(inactive.Row(0), "entry_id"))
}

func TestEngine_Chain(t *testing.T) {
	ctx := context.Background()
	provider := providerWithView()
	e := New(provider)

	res, err := e.FilterByTopic(ctx, "t1", "").ToTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Len())

	res, err = e.Chain().FilterByTopic(ctx, "t2", "").ToTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len(), "chain reset discards previous narrowing")
	assert.Len(t, provider.HierarchicalViewCalls(), 2)
}

func TestEngine_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("load error surfaces at export", func(t *testing.T) {
		provider := &mocks.DataProviderMock{
			HierarchicalViewFunc: func(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error) {
				return nil, errors.New("api down")
			},
		}
		e := New(provider)
		_, err := e.SearchEntries(ctx, []string{"x"}, SearchOptions{}).ToTable(ctx)
		require.Error(t, err)
		assert.EqualError(t, err, "api down")
		assert.EqualError(t, e.Err(), "api down")
	})

	t.Run("error sticks across filters", func(t *testing.T) {
		calls := 0
		provider := &mocks.DataProviderMock{
			HierarchicalViewFunc: func(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error) {
				calls++
				return nil, errors.New("api down")
			},
		}
		e := New(provider)
		_, err := e.FilterByActive(ctx, true).FilterByDate(ctx, time.Now(), time.Time{}).ToMaps(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, calls, "failed load not repeated")
	})

	t.Run("chain clears sticky error", func(t *testing.T) {
		failing := true
		provider := providerWithView()
		inner := provider.HierarchicalViewFunc
		provider.HierarchicalViewFunc = func(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error) {
			if failing {
				return nil, errors.New("api down")
			}
			return inner(ctx, opts)
		}
		e := New(provider)
		_, err := e.ToTable(ctx)
		require.Error(t, err)

		failing = false
		res, err := e.Chain().ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Len())
		assert.NoError(t, e.Err())
	})
}

func TestEngine_Exports(t *testing.T) {
	ctx := context.Background()

	t.Run("to maps", func(t *testing.T) {
		maps, err := New(providerWithView()).ToMaps(ctx)
		require.NoError(t, err)
		require.Len(t, maps, 3)
		assert.Equal(t, "e1", maps[0]["entry_id"])
	})

	t.Run("to json", func(t *testing.T) {
		out, err := New(providerWithView()).ToJSON(ctx, 2)
		require.NoError(t, err)
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Len(t, decoded, 3)
	})

	t.Run("to csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.csv")
		got, err := New(providerWithView()).ToCSV(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
		assert.FileExists(t, path)
	})

	t.Run("export copy shields internal state", func(t *testing.T) {
		e := New(providerWithView())
		res, err := e.ToTable(ctx)
		require.NoError(t, err)
		res.Row(0)["entry_id"] = "mutated"

		again, err := e.ToTable(ctx)
		require.NoError(t, err)
		assert.Equal(t, "e1", table.String(again.Row(0), "entry_id"))
	})
}
