// Package dataset fetches topics, feeds and entries from the Carver API and
// assembles them into tables, including the denormalized topic-feed-entry
// hierarchy the query engine operates on.
package dataset

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/carveragents/carver-feeds-go/pkg/api"
	"github.com/carveragents/carver-feeds-go/pkg/table"
)

//go:generate moq -out mocks/client.go -pkg mocks -skip-ensure -fmt goimports . Client
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . ContentStore

// DefaultFetchLimit is the per-feed and per-topic entry fetch ceiling
const DefaultFetchLimit = 1000

// Client is the API surface the manager consumes
type Client interface {
	ListTopics(ctx context.Context) ([]map[string]any, error)
	ListFeeds(ctx context.Context) ([]map[string]any, error)
	ListEntries(ctx context.Context, req api.EntriesRequest) ([]map[string]any, error)
	GetFeedEntries(ctx context.Context, feedID string, limit int) ([]map[string]any, error)
	GetTopicEntries(ctx context.Context, topicID string, limit int) ([]map[string]any, error)
	GetUserTopicSubscriptions(ctx context.Context, userID string) (*api.SubscriptionList, error)
	GetAnnotations(ctx context.Context, filter api.AnnotationFilter) ([]map[string]any, error)
}

// ContentStore batch-fetches entry bodies by storage path. The returned map
// holds an entry for every requested path; nil content marks a path that
// could not be resolved. Fetch order and internal concurrency are the
// store's concern.
type ContentStore interface {
	BatchFetch(ctx context.Context, paths []string) map[string]*string
}

// Manager fetches API data and shapes it into tables
type Manager struct {
	client Client
	store  ContentStore // nil when no storage credentials are available
}

// NewManager creates a manager. The store may be nil, in which case content
// hydration degrades to absent bodies.
func NewManager(client Client, store ContentStore) *Manager {
	return &Manager{client: client, store: store}
}

var (
	topicColumns = []string{"id", "name", "description", "created_at", "updated_at", "is_active"}
	feedColumns  = []string{"id", "name", "url", "topic_id", "topic_name", "description", "created_at", "is_active"}
	entryColumns = []string{
		"id", "title", "link", "content_markdown", "feed_id", "published_at", "created_at", "is_active",
		"content_status", "content_timestamp", "content_md_path", "content_html_path", "aggregated_md_path",
	}
	subscriptionColumns = []string{"id", "name", "description", "base_domain", "is_active"}
	annotationColumns   = []string{"id", "feed_entry_id", "topic_id", "user_id", "annotation", "created_at", "updated_at"}
)

// Topics fetches all topics as a table
func (m *Manager) Topics(ctx context.Context) (*table.Table, error) {
	records, err := m.client.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	t := table.FromRecords(records, topicColumns)
	coerceDates(t, "created_at", "updated_at")
	coerceBool(t, "is_active")
	lgr.Printf("[DEBUG] converted %d topics to table", t.Len())
	return t, nil
}

// Feeds fetches all feeds as a table. The nested topic object is flattened
// to topic_id and topic_name before normalization. The endpoint has no
// server-side topic filter, so topicID filtering happens client-side.
func (m *Manager) Feeds(ctx context.Context, topicID string) (*table.Table, error) {
	records, err := m.client.ListFeeds(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if topic, ok := rec["topic"].(map[string]any); ok {
			rec["topic_id"] = topic["id"]
			rec["topic_name"] = topic["name"]
		}
	}
	t := table.FromRecords(records, feedColumns)
	coerceDates(t, "created_at")
	coerceBool(t, "is_active")

	if topicID != "" {
		before := t.Len()
		t = t.Filter(func(row table.Row) bool { return row["topic_id"] == topicID })
		lgr.Printf("[DEBUG] filtered feeds from %d to %d for topic %s", before, t.Len(), topicID)
	}
	lgr.Printf("[DEBUG] converted %d feeds to table", t.Len())
	return t, nil
}

// EntriesOptions selects the entry fetch mode. FeedID wins over TopicID;
// with neither set the paginated all-entries endpoint is used.
type EntriesOptions struct {
	FeedID   string
	TopicID  string
	IsActive *bool
	FetchAll bool
}

// Entries fetches entries under one of three addressing modes and normalizes
// them to a single schema regardless of mode.
func (m *Manager) Entries(ctx context.Context, opts EntriesOptions) (*table.Table, error) {
	var records []map[string]any
	var err error
	callerFeedID := ""

	switch {
	case opts.FeedID != "":
		// endpoint does not echo the feed id, inject the caller-supplied one
		records, err = m.client.GetFeedEntries(ctx, opts.FeedID, DefaultFetchLimit)
		callerFeedID = opts.FeedID
	case opts.TopicID != "":
		records, err = m.client.GetTopicEntries(ctx, opts.TopicID, DefaultFetchLimit)
	default:
		records, err = m.client.ListEntries(ctx, api.EntriesRequest{IsActive: opts.IsActive, FetchAll: opts.FetchAll})
	}
	if err != nil {
		return nil, err
	}

	postProcessEntries(records, callerFeedID)
	t := table.FromRecords(records, entryColumns)
	coerceDates(t, "published_at", "created_at", "content_timestamp")
	coerceBool(t, "is_active")
	lgr.Printf("[DEBUG] converted %d entries to table", t.Len())
	return t, nil
}

// UserTopicSubscriptions fetches a user's topic subscriptions as a table
func (m *Manager) UserTopicSubscriptions(ctx context.Context, userID string) (*table.Table, error) {
	res, err := m.client.GetUserTopicSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	records := make([]table.Row, 0, len(res.Subscriptions))
	for _, sub := range res.Subscriptions {
		records = append(records, table.Row{
			"id":          sub.ID,
			"name":        sub.Name,
			"description": sub.Description,
			"base_domain": sub.BaseDomain,
			"is_active":   sub.IsActive,
		})
	}
	return table.FromRecords(records, subscriptionColumns), nil
}

// Annotations fetches annotations as a table. The nested annotation payload
// stays a single cell since its shape varies per annotation model.
func (m *Manager) Annotations(ctx context.Context, filter api.AnnotationFilter) (*table.Table, error) {
	records, err := m.client.GetAnnotations(ctx, filter)
	if err != nil {
		return nil, err
	}
	t := table.FromRecords(records, annotationColumns)
	coerceDates(t, "created_at", "updated_at")
	lgr.Printf("[DEBUG] converted %d annotations to table", t.Len())
	return t, nil
}

// extraction metadata fields lifted to the top level of each entry record
var metadataFields = []string{
	"feed_id", "topic_id", "content_status", "content_timestamp",
	"content_md_path", "content_html_path", "aggregated_md_path",
}

// postProcessEntries applies the shared pipeline stage to raw entry records:
// caller feed-id injection, extraction-metadata lifting and published date
// reconciliation. The caller-supplied feed id is only a fallback, a feed id
// carried by the extraction metadata wins.
func postProcessEntries(records []map[string]any, callerFeedID string) {
	for _, rec := range records {
		if callerFeedID != "" {
			if v, ok := rec["feed_id"]; !ok || v == nil {
				rec["feed_id"] = callerFeedID
			}
		}
		if meta, ok := rec["extraction_metadata"].(map[string]any); ok {
			for _, field := range metadataFields {
				if v, ok := meta[field]; ok && v != nil {
					rec[field] = v
				}
			}
		}
		if v, ok := rec["published_date"]; ok && v != nil {
			if cur, ok := rec["published_at"]; !ok || cur == nil {
				rec["published_at"] = v
			}
		}
	}
}
