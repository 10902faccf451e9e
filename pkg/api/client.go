package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
)

// API configuration defaults
const (
	DefaultBaseURL    = "https://app.carveragents.ai"
	DefaultPageLimit  = 1000
	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = time.Second
)

// Client talks to the Carver Feeds REST API. Authentication is a static
// X-API-Key header on every call; 429 and 5xx responses are retried with
// exponential backoff, everything else fails fast.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	pageLimit  int
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithMaxRetries sets the total number of attempts for retryable failures
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets the initial backoff delay
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithPageLimit sets the default page size for paginated endpoints
func WithPageLimit(n int) Option {
	return func(c *Client) { c.pageLimit = n }
}

// New creates a client for the given base URL and API key
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &ValidationError{Msg: "base URL is required"}
	}
	if apiKey == "" {
		return nil, &AuthenticationError{Msg: "api key is required, set CARVER_API_KEY or pass it explicitly"}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		pageLimit:  DefaultPageLimit,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromEnv creates a client from CARVER_API_KEY and CARVER_BASE_URL
func NewFromEnv(opts ...Option) (*Client, error) {
	baseURL := os.Getenv("CARVER_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return New(baseURL, os.Getenv("CARVER_API_KEY"), opts...)
}

// errPermanent marks failures the retrier must not repeat
var errPermanent = errors.New("permanent api failure")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string        { return e.err.Error() }
func (e *criticalError) Unwrap() error        { return e.err }
func (e *criticalError) Is(target error) bool { return target == errPermanent }

// request performs one logical call with authentication and retry. Only 429
// and 5xx responses are retried; other failure classes are permanent. The
// parsed body is returned raw so callers decode into whatever shape the
// endpoint uses.
func (c *Client) request(ctx context.Context, method, path string, params url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	retrier := repeater.NewBackoff(c.maxRetries, c.retryDelay, repeater.WithJitter(0.25))

	var payload json.RawMessage
	err := retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
		if err != nil {
			return &criticalError{err: &APIError{Err: fmt.Errorf("create request: %w", err)}}
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// connection failures and timeouts are not retried
			return &criticalError{err: &APIError{Err: fmt.Errorf("request %s: %w", reqURL, err)}}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &criticalError{err: &APIError{Err: fmt.Errorf("read response from %s: %w", reqURL, err)}}
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			payload = body
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return &criticalError{err: &AuthenticationError{Msg: "authentication failed, check your api key"}}
		case resp.StatusCode == http.StatusTooManyRequests:
			lgr.Printf("[WARN] rate limit exceeded for %s, retrying", path)
			return &RateLimitError{Retries: c.maxRetries, Body: string(body)}
		case resp.StatusCode >= 500:
			lgr.Printf("[WARN] server error %d for %s, retrying", resp.StatusCode, path)
			return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		default:
			return &criticalError{err: &APIError{StatusCode: resp.StatusCode, Body: string(body)}}
		}
	}, errPermanent)

	if err != nil {
		var ce *criticalError
		if errors.As(err, &ce) {
			return nil, ce.err
		}
		return nil, err
	}
	return payload, nil
}

// paginate fetches a list endpoint with limit/offset paging and concatenates
// the pages. Stops after the first short page, or after the first page when
// fetchAll is false.
func (c *Client) paginate(ctx context.Context, path string, params url.Values, limit int, fetchAll bool) ([]map[string]any, error) {
	if limit <= 0 {
		limit = c.pageLimit
	}

	var all []map[string]any
	offset := 0
	for {
		pageParams := url.Values{}
		for k, vv := range params {
			pageParams[k] = vv
		}
		pageParams.Set("limit", strconv.Itoa(limit))
		pageParams.Set("offset", strconv.Itoa(offset))

		raw, err := c.request(ctx, http.MethodGet, path, pageParams)
		if err != nil {
			return nil, err
		}
		page, err := decodeRecordList(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if !fetchAll || len(page) < limit {
			break
		}
		offset += limit
		lgr.Printf("[DEBUG] fetched %d records so far from %s", len(all), path)
	}
	lgr.Printf("[DEBUG] total records fetched from %s: %d", path, len(all))
	return all, nil
}

// decodeRecordList accepts either a bare JSON array of records or an object
// exposing the list under one of the conventional keys.
func decodeRecordList(raw json.RawMessage) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, &ValidationError{Msg: "expected a list of records or a wrapping object"}
	}
	for _, key := range []string{"results", "data", "items"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &records); err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("expected a list of records under %q", key)}
		}
		return records, nil
	}
	return []map[string]any{}, nil
}

// ListTopics fetches all topics
func (c *Client) ListTopics(ctx context.Context) ([]map[string]any, error) {
	lgr.Printf("[DEBUG] fetching topics")
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/feeds/topics", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(raw)
}

// ListFeeds fetches all feeds. The endpoint has no server-side topic filter,
// callers filter client-side.
func (c *Client) ListFeeds(ctx context.Context) ([]map[string]any, error) {
	lgr.Printf("[DEBUG] fetching feeds")
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/feeds/", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(raw)
}

// EntriesRequest holds filters for ListEntries
type EntriesRequest struct {
	FeedID   string
	IsActive *bool
	Limit    int
	FetchAll bool
}

// ListEntries fetches entries from the paginated all-entries endpoint. The
// raw records carry no feed or topic identifiers.
func (c *Client) ListEntries(ctx context.Context, req EntriesRequest) ([]map[string]any, error) {
	params := url.Values{}
	if req.FeedID != "" {
		params.Set("feed_id", req.FeedID)
	}
	if req.IsActive != nil {
		params.Set("is_active", strconv.FormatBool(*req.IsActive))
	}
	lgr.Printf("[DEBUG] fetching entries (feed_id=%q, fetch_all=%v)", req.FeedID, req.FetchAll)
	return c.paginate(ctx, "/api/v1/feeds/entries/list", params, req.Limit, req.FetchAll)
}

// GetFeedEntries fetches entries for a single feed. The response does not
// echo the feed identifier.
func (c *Client) GetFeedEntries(ctx context.Context, feedID string, limit int) ([]map[string]any, error) {
	if feedID == "" {
		return nil, &ValidationError{Msg: "feed id is required"}
	}
	if limit <= 0 {
		limit = c.pageLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/feeds/"+feedID+"/entries", params)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(raw)
}

// GetTopicEntries fetches entries across all feeds of a topic. Records carry
// feed identifiers since a topic may span multiple feeds.
func (c *Client) GetTopicEntries(ctx context.Context, topicID string, limit int) ([]map[string]any, error) {
	if topicID == "" {
		return nil, &ValidationError{Msg: "topic id is required"}
	}
	if limit <= 0 {
		limit = c.pageLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/feeds/topics/"+topicID+"/entries", params)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(raw)
}

// Subscription is one topic a user subscribes to
type Subscription struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BaseDomain  string `json:"base_domain"`
	IsActive    bool   `json:"is_active"`
}

// SubscriptionList is the user-subscriptions response envelope
type SubscriptionList struct {
	Subscriptions []Subscription `json:"subscriptions"`
	TotalCount    int            `json:"total_count"`
}

// GetUserTopicSubscriptions fetches topic subscriptions for a user
func (c *Client) GetUserTopicSubscriptions(ctx context.Context, userID string) (*SubscriptionList, error) {
	if userID == "" {
		return nil, &ValidationError{Msg: "user id is required"}
	}
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/users/"+userID+"/topic-subscriptions", nil)
	if err != nil {
		return nil, err
	}
	var res SubscriptionList
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &APIError{Err: fmt.Errorf("decode subscriptions: %w", err)}
	}
	return &res, nil
}

// AnnotationFilter selects annotations by exactly one id list
type AnnotationFilter struct {
	FeedEntryIDs []string
	TopicIDs     []string
	UserIDs      []string
}

// GetAnnotations fetches annotations filtered by exactly one of the three id
// lists. Zero or multiple filters, or an empty list for the chosen filter,
// fail before any network call.
func (c *Client) GetAnnotations(ctx context.Context, filter AnnotationFilter) ([]map[string]any, error) {
	type choice struct {
		param string
		ids   []string
	}
	var picked []choice
	if filter.FeedEntryIDs != nil {
		picked = append(picked, choice{"feed_entry_ids_in", filter.FeedEntryIDs})
	}
	if filter.TopicIDs != nil {
		picked = append(picked, choice{"topic_ids_in", filter.TopicIDs})
	}
	if filter.UserIDs != nil {
		picked = append(picked, choice{"user_ids_in", filter.UserIDs})
	}

	if len(picked) == 0 {
		return nil, &ValidationError{Msg: "exactly one of feed entry ids, topic ids or user ids must be provided"}
	}
	if len(picked) > 1 {
		return nil, &ValidationError{Msg: "only one annotation filter may be provided at a time"}
	}
	if len(picked[0].ids) == 0 {
		return nil, &ValidationError{Msg: "annotation filter id list must not be empty"}
	}

	params := url.Values{}
	params.Set(picked[0].param, strings.Join(picked[0].ids, ","))
	raw, err := c.request(ctx, http.MethodGet, "/api/v1/annotations/", params)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(raw)
}
