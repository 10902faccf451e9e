package dataset

import (
	"context"

	"github.com/go-pkgz/lgr"

	"github.com/carveragents/carver-feeds-go/pkg/table"
)

// ViewOptions controls hierarchical view assembly. FeedID wins over TopicID
// when both are set.
type ViewOptions struct {
	IncludeEntries bool
	FeedID         string
	TopicID        string
	HydrateContent bool
}

var topicRenames = map[string]string{
	"id":          "topic_id",
	"name":        "topic_name",
	"description": "topic_description",
	"created_at":  "topic_created_at",
	"updated_at":  "topic_updated_at",
	"is_active":   "topic_is_active",
}

var feedRenames = map[string]string{
	"id":          "feed_id",
	"name":        "feed_name",
	"url":         "feed_url",
	"description": "feed_description",
	"created_at":  "feed_created_at",
	"is_active":   "feed_is_active",
}

var entryRenames = map[string]string{
	"id":                 "entry_id",
	"title":              "entry_title",
	"link":               "entry_link",
	"content_markdown":   "entry_content_markdown",
	"published_at":       "entry_published_at",
	"created_at":         "entry_created_at",
	"is_active":          "entry_is_active",
	"content_status":     "entry_content_status",
	"content_timestamp":  "entry_content_timestamp",
	"content_md_path":    "entry_content_md_path",
	"content_html_path":  "entry_content_html_path",
	"aggregated_md_path": "entry_aggregated_md_path",
}

// hierarchyEntryColumns is the pre-rename schema of assembled entry records
var hierarchyEntryColumns = []string{
	"id", "title", "link", "content_markdown", "published_at", "created_at", "is_active",
	"content_status", "content_timestamp", "content_md_path", "content_html_path", "aggregated_md_path",
	"feed_id", "feed_name", "feed_url", "feed_is_active",
	"topic_id", "topic_name", "topic_is_active",
}

// EmptyHierarchy returns a zero-row table carrying the full entry-level
// hierarchy schema
func EmptyHierarchy() *table.Table {
	cols := make([]string, 0, len(hierarchyEntryColumns))
	for _, col := range hierarchyEntryColumns {
		if renamed, ok := entryRenames[col]; ok {
			cols = append(cols, renamed)
			continue
		}
		cols = append(cols, col)
	}
	return table.New(cols...)
}

// HierarchicalView builds the denormalized topic-feed-entry table. Topics and
// feeds are joined first and the optional feed or topic filter is applied
// before any entry fetching, so entries are only fetched for surviving feeds.
// Entries are fetched per feed because the all-entries endpoint does not echo
// feed identifiers; stamping each entry with its parent's fields is the only
// way to guarantee correct attribution.
func (m *Manager) HierarchicalView(ctx context.Context, opts ViewOptions) (*table.Table, error) {
	lgr.Printf("[DEBUG] building hierarchical view (entries=%v, feed_id=%q, topic_id=%q)",
		opts.IncludeEntries, opts.FeedID, opts.TopicID)

	topics, err := m.Topics(ctx)
	if err != nil {
		return nil, err
	}
	feeds, err := m.Feeds(ctx, "")
	if err != nil {
		return nil, err
	}

	topics = topics.Rename(topicRenames)
	// the feeds table carries a denormalized topic_name, the joined topics
	// value is authoritative
	feeds = feeds.Drop("topic_name").Rename(feedRenames)

	// a feed referencing an unknown topic is silently excluded
	hierarchy := topics.InnerJoin(feeds, "topic_id")

	switch {
	case opts.FeedID != "":
		hierarchy = hierarchy.Filter(func(row table.Row) bool { return row["feed_id"] == opts.FeedID })
	case opts.TopicID != "":
		hierarchy = hierarchy.Filter(func(row table.Row) bool { return row["topic_id"] == opts.TopicID })
	}

	if !opts.IncludeEntries {
		lgr.Printf("[DEBUG] built topic-feed view with %d rows", hierarchy.Len())
		return hierarchy, nil
	}

	if hierarchy.Len() == 0 {
		lgr.Printf("[WARN] no feeds found to fetch entries for")
		return EmptyHierarchy(), nil
	}

	lgr.Printf("[DEBUG] fetching entries for %d feeds", hierarchy.Len())
	var allEntries []table.Row
	for _, feedRow := range hierarchy.Rows() {
		feedID := table.String(feedRow, "feed_id")
		entries, err := m.client.GetFeedEntries(ctx, feedID, DefaultFetchLimit)
		if err != nil {
			return nil, err
		}
		postProcessEntries(entries, feedID)
		for _, entry := range entries {
			entry["feed_id"] = feedRow["feed_id"]
			entry["feed_name"] = feedRow["feed_name"]
			entry["feed_url"] = feedRow["feed_url"]
			entry["feed_is_active"] = feedRow["feed_is_active"]
			entry["topic_id"] = feedRow["topic_id"]
			entry["topic_name"] = feedRow["topic_name"]
			entry["topic_is_active"] = feedRow["topic_is_active"]
			allEntries = append(allEntries, entry)
		}
	}

	if len(allEntries) == 0 {
		lgr.Printf("[DEBUG] no entries found for the selected feeds")
		return EmptyHierarchy(), nil
	}

	result := table.FromRecords(allEntries, hierarchyEntryColumns)
	coerceDates(result, "published_at", "created_at", "content_timestamp")
	coerceBool(result, "is_active")
	result = result.Rename(entryRenames)

	m.hydrateContent(ctx, result, opts.HydrateContent)

	lgr.Printf("[DEBUG] built hierarchy with %d entries", result.Len())
	return result, nil
}

// hydrateContent fills entry_content_markdown from object storage. Without
// hydration the body column still exists so downstream access is uniform;
// with hydration but no store the gap is logged since missing credentials
// are the likely cause.
func (m *Manager) hydrateContent(ctx context.Context, t *table.Table, requested bool) {
	if !t.HasColumn("entry_content_markdown") {
		t.SetColumn("entry_content_markdown", func(table.Row) any { return nil })
	}
	if !requested {
		return
	}
	if m.store == nil {
		lgr.Printf("[WARN] content hydration requested but no storage client available, check storage credentials")
		return
	}

	seen := map[string]bool{}
	var paths []string
	for _, row := range t.Rows() {
		if path := table.String(row, "entry_content_md_path"); path != "" && !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return
	}

	lgr.Printf("[DEBUG] hydrating content for %d distinct storage paths", len(paths))
	contents := m.store.BatchFetch(ctx, paths)
	for _, row := range t.Rows() {
		path := table.String(row, "entry_content_md_path")
		if path == "" {
			continue
		}
		if content, ok := contents[path]; ok && content != nil {
			row["entry_content_markdown"] = *content
		} else {
			// unresolved paths leave a nil body, partial hydration is normal
			row["entry_content_markdown"] = nil
		}
	}
}
