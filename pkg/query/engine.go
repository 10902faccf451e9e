// Package query provides a fluent, lazily-loaded filter and search interface
// over the assembled topic-feed-entry hierarchy.
package query

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/carveragents/carver-feeds-go/pkg/dataset"
	"github.com/carveragents/carver-feeds-go/pkg/table"
)

//go:generate moq -out mocks/provider.go -pkg mocks -skip-ensure -fmt goimports . DataProvider

// DefaultSearchField is searched when no fields are requested
const DefaultSearchField = "entry_content_markdown"

// DataProvider is the dataset surface the engine consumes
type DataProvider interface {
	Topics(ctx context.Context) (*table.Table, error)
	Feeds(ctx context.Context, topicID string) (*table.Table, error)
	HierarchicalView(ctx context.Context, opts dataset.ViewOptions) (*table.Table, error)
}

// loadState makes the engine's two-phase lifecycle explicit
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoaded
)

// Engine filters and searches the hierarchical view. Data acquisition is
// deferred until the first filter or export call; a topic or feed filter as
// the first operation loads only that entity's slice of the hierarchy
// instead of everything. Filter calls narrow the current row set and return
// the engine for chaining; acquisition errors stick and surface at export.
// An engine instance is not safe for concurrent use.
type Engine struct {
	provider DataProvider
	hydrate  bool
	state    loadState
	results  *table.Table
	err      error
}

// Option configures the engine
type Option func(*Engine)

// WithHydration makes every data load hydrate entry bodies from storage
func WithHydration() Option {
	return func(e *Engine) { e.hydrate = true }
}

// New creates an engine in the unloaded state
func New(provider DataProvider, opts ...Option) *Engine {
	e := &Engine{provider: provider}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Chain resets the engine to the unloaded state, discarding the current row
// set so the instance can run an independent query sequence.
func (e *Engine) Chain() *Engine {
	lgr.Printf("[DEBUG] resetting query chain")
	e.state = stateUnloaded
	e.results = nil
	e.err = nil
	return e
}

// Err returns the sticky error from a failed data acquisition, if any
func (e *Engine) Err() error { return e.err }

// ensureLoaded performs the full, unfiltered load when no optimized path ran
func (e *Engine) ensureLoaded(ctx context.Context) {
	if e.err != nil || e.state == stateLoaded {
		return
	}
	lgr.Printf("[DEBUG] loading full hierarchical view")
	results, err := e.provider.HierarchicalView(ctx, dataset.ViewOptions{IncludeEntries: true, HydrateContent: e.hydrate})
	if err != nil {
		e.err = err
		return
	}
	e.results = results
	e.state = stateLoaded
}

// setResults marks the engine loaded with the given row set
func (e *Engine) setResults(t *table.Table) {
	e.results = t
	e.state = stateLoaded
}

// entitySpec parameterizes the topic/feed filter paths, which differ only in
// column names and fetch target
type entitySpec struct {
	kind       string
	idColumn   string
	nameColumn string
	view       func(id string) dataset.ViewOptions
	list       func(ctx context.Context) (*table.Table, error)
}

// FilterByTopic narrows to one topic by id or case-insensitive name
// substring. The id wins when both are given. As the first operation of a
// chain it loads only the matching topic's hierarchy.
func (e *Engine) FilterByTopic(ctx context.Context, topicID, topicName string) *Engine {
	return e.filterByEntity(ctx, topicID, topicName, entitySpec{
		kind:       "topic",
		idColumn:   "topic_id",
		nameColumn: "topic_name",
		view: func(id string) dataset.ViewOptions {
			return dataset.ViewOptions{IncludeEntries: true, TopicID: id, HydrateContent: e.hydrate}
		},
		list: e.provider.Topics,
	})
}

// FilterByFeed narrows to one feed by id or case-insensitive name substring.
// The id wins when both are given. As the first operation of a chain it
// loads only the matching feed's hierarchy.
func (e *Engine) FilterByFeed(ctx context.Context, feedID, feedName string) *Engine {
	return e.filterByEntity(ctx, feedID, feedName, entitySpec{
		kind:       "feed",
		idColumn:   "feed_id",
		nameColumn: "feed_name",
		view: func(id string) dataset.ViewOptions {
			return dataset.ViewOptions{IncludeEntries: true, FeedID: id, HydrateContent: e.hydrate}
		},
		list: func(ctx context.Context) (*table.Table, error) { return e.provider.Feeds(ctx, "") },
	})
}

func (e *Engine) filterByEntity(ctx context.Context, id, name string, spec entitySpec) *Engine {
	if e.err != nil {
		return e
	}
	if id == "" && name == "" {
		lgr.Printf("[WARN] neither %s id nor name provided, no filtering applied", spec.kind)
		return e
	}

	if e.state == stateUnloaded {
		if id != "" {
			e.loadEntity(ctx, id, spec)
			return e
		}
		e.resolveAndLoad(ctx, name, spec)
		return e
	}

	// already loaded, narrow the current row set
	if id != "" {
		e.results = e.results.Filter(func(row table.Row) bool { return row[spec.idColumn] == id })
	} else {
		if !e.results.HasColumn(spec.nameColumn) {
			lgr.Printf("[WARN] column %s not found in data", spec.nameColumn)
			return e
		}
		needle := strings.ToLower(name)
		e.results = e.results.Filter(func(row table.Row) bool {
			return strings.Contains(strings.ToLower(table.String(row, spec.nameColumn)), needle)
		})
	}
	lgr.Printf("[DEBUG] %s filter returned %d entries", spec.kind, e.results.Len())
	return e
}

// loadEntity runs the optimized single-entity load
func (e *Engine) loadEntity(ctx context.Context, id string, spec entitySpec) {
	lgr.Printf("[DEBUG] optimized filter: loading only %s %s", spec.kind, id)
	results, err := e.provider.HierarchicalView(ctx, spec.view(id))
	if err != nil {
		e.err = err
		return
	}
	e.setResults(results)
}

// resolveAndLoad resolves a name to entity ids and loads their hierarchies.
// Zero matches load an empty row set; multiple matches load every matching
// entity and concatenate.
func (e *Engine) resolveAndLoad(ctx context.Context, name string, spec entitySpec) {
	entities, err := spec.list(ctx)
	if err != nil {
		e.err = err
		return
	}
	needle := strings.ToLower(name)
	matches := entities.Filter(func(row table.Row) bool {
		return strings.Contains(strings.ToLower(table.String(row, "name")), needle)
	})

	switch matches.Len() {
	case 0:
		lgr.Printf("[WARN] no %ss found matching %q", spec.kind, name)
		e.setResults(dataset.EmptyHierarchy())
	case 1:
		id := table.String(matches.Row(0), "id")
		lgr.Printf("[DEBUG] resolved %s name %q to %s", spec.kind, name, id)
		e.loadEntity(ctx, id, spec)
	default:
		lgr.Printf("[WARN] %s name %q matches %d %ss, loading entries for all of them", spec.kind, name, matches.Len(), spec.kind)
		combined := dataset.EmptyHierarchy()
		for _, match := range matches.Rows() {
			part, err := e.provider.HierarchicalView(ctx, spec.view(table.String(match, "id")))
			if err != nil {
				e.err = err
				return
			}
			combined = combined.Concat(part)
		}
		e.setResults(combined)
	}
}

// searchFieldMapping maps caller-facing field names to hierarchy columns
var searchFieldMapping = map[string]string{
	"title":                  "entry_title",
	"content_markdown":       "entry_content_markdown",
	"link":                   "entry_link",
	"description":            "entry_description",
	"entry_title":            "entry_title",
	"entry_content_markdown": "entry_content_markdown",
	"entry_link":             "entry_link",
	"entry_description":      "entry_description",
}

// SearchOptions controls keyword matching
type SearchOptions struct {
	Fields        []string // logical field names, defaults to the entry body
	CaseSensitive bool
	MatchAll      bool // true: every keyword must match some field (AND); false: any keyword in any field (OR)
}

// SearchEntries narrows to rows matching the keywords. Keywords are treated
// as regular expressions when they compile, plain substrings otherwise.
// Absent field values never match.
func (e *Engine) SearchEntries(ctx context.Context, keywords []string, opts SearchOptions) *Engine {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return e
	}
	if len(keywords) == 0 {
		lgr.Printf("[WARN] no keywords provided for search")
		return e
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = []string{DefaultSearchField}
	}
	var columns []string
	for _, field := range fields {
		col, ok := searchFieldMapping[field]
		if !ok {
			lgr.Printf("[WARN] unknown search field %q, skipping", field)
			continue
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		lgr.Printf("[ERROR] no valid search fields specified, leaving results unchanged")
		return e
	}

	matchers := make([]func(string) bool, 0, len(keywords))
	for _, kw := range keywords {
		matchers = append(matchers, keywordMatcher(kw, opts.CaseSensitive))
	}

	matchKeyword := func(row table.Row, match func(string) bool) bool {
		for _, col := range columns {
			if e.results.HasColumn(col) && match(table.String(row, col)) {
				return true
			}
		}
		return false
	}

	e.results = e.results.Filter(func(row table.Row) bool {
		if opts.MatchAll {
			for _, match := range matchers {
				if !matchKeyword(row, match) {
					return false
				}
			}
			return true
		}
		for _, match := range matchers {
			if matchKeyword(row, match) {
				return true
			}
		}
		return false
	})

	lgr.Printf("[DEBUG] search returned %d entries", e.results.Len())
	return e
}

// keywordMatcher builds a regex matcher, falling back to plain substring
// matching when the keyword is not a valid expression
func keywordMatcher(keyword string, caseSensitive bool) func(string) bool {
	pattern := keyword
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		lgr.Printf("[WARN] keyword %q is not a valid regex, matching as substring", keyword)
		if caseSensitive {
			return func(s string) bool { return strings.Contains(s, keyword) }
		}
		needle := strings.ToLower(keyword)
		return func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }
	}
	return re.MatchString
}

// FilterByDate narrows to entries published within the inclusive bounds.
// Either bound may be zero to leave that side open. Entries without a
// parseable published timestamp are excluded when any bound is set.
func (e *Engine) FilterByDate(ctx context.Context, start, end time.Time) *Engine {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return e
	}
	if start.IsZero() && end.IsZero() {
		lgr.Printf("[WARN] neither start nor end date provided, no filtering applied")
		return e
	}
	const dateField = "entry_published_at"
	if !e.results.HasColumn(dateField) {
		lgr.Printf("[WARN] column %s not found in data", dateField)
		return e
	}

	e.results = e.results.Filter(func(row table.Row) bool {
		ts, ok := table.Time(row, dateField)
		if !ok {
			// coerce stragglers that bypassed dataset conversion
			if parsed, perr := time.Parse(time.RFC3339, table.String(row, dateField)); perr == nil {
				ts = parsed
			} else {
				return false
			}
		}
		if !start.IsZero() && ts.Before(start) {
			return false
		}
		if !end.IsZero() && ts.After(end) {
			return false
		}
		return true
	})
	lgr.Printf("[DEBUG] date filter returned %d entries", e.results.Len())
	return e
}

// FilterByActive narrows to entries with the given active flag
func (e *Engine) FilterByActive(ctx context.Context, isActive bool) *Engine {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return e
	}
	const activeField = "entry_is_active"
	if !e.results.HasColumn(activeField) {
		lgr.Printf("[WARN] column %s not found in data", activeField)
		return e
	}
	e.results = e.results.Filter(func(row table.Row) bool {
		active, ok := table.Bool(row, activeField)
		return ok && active == isActive
	})
	lgr.Printf("[DEBUG] active filter returned %d entries", e.results.Len())
	return e
}

// ToTable returns a copy of the current row set, loading data if needed
func (e *Engine) ToTable(ctx context.Context) (*table.Table, error) {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return nil, e.err
	}
	return e.results.Copy(), nil
}

// ToMaps returns the current row set as plain maps
func (e *Engine) ToMaps(ctx context.Context) ([]map[string]any, error) {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return nil, e.err
	}
	return e.results.ToMaps(), nil
}

// ToJSON returns the current row set as an indented JSON array
func (e *Engine) ToJSON(ctx context.Context, indent int) (string, error) {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return "", e.err
	}
	return e.results.ToJSON(indent)
}

// ToCSV writes the current row set to a CSV file and returns the path
func (e *Engine) ToCSV(ctx context.Context, path string) (string, error) {
	e.ensureLoaded(ctx)
	if e.err != nil {
		return "", e.err
	}
	lgr.Printf("[DEBUG] exporting %d entries to %s", e.results.Len(), path)
	return e.results.ToCSV(path)
}
