package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	carver "github.com/carveragents/carver-feeds-go"
	"github.com/carveragents/carver-feeds-go/pkg/api"
	"github.com/carveragents/carver-feeds-go/pkg/config"
	"github.com/carveragents/carver-feeds-go/pkg/dataset"
	"github.com/carveragents/carver-feeds-go/pkg/query"
	"github.com/carveragents/carver-feeds-go/pkg/storage"
	"github.com/carveragents/carver-feeds-go/pkg/table"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CARVER_CONFIG" description:"path to YAML config file"`
	APIKey  string `long:"api-key" env:"CARVER_API_KEY" description:"API key"`
	BaseURL string `long:"base-url" env:"CARVER_BASE_URL" description:"API base URL"`
	Hydrate bool   `long:"hydrate" description:"hydrate entry bodies from object storage"`

	Topics        TopicsCommand        `command:"topics" description:"list topics"`
	Feeds         FeedsCommand         `command:"feeds" description:"list feeds"`
	Entries       EntriesCommand       `command:"entries" description:"fetch entries"`
	Search        SearchCommand        `command:"search" description:"search entries by keyword"`
	Subscriptions SubscriptionsCommand `command:"subscriptions" description:"list a user's topic subscriptions"`
	Annotations   AnnotationsCommand   `command:"annotations" description:"fetch annotations"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

// OutputOpts shared by all data commands
type OutputOpts struct {
	JSON bool   `long:"json" description:"print JSON instead of CSV"`
	Out  string `short:"o" long:"out" description:"write CSV to file instead of stdout"`
}

var revision = "unknown"

var opts Opts

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		setupLog(opts.Debug, opts.APIKey)
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if opts.Version {
			fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
			os.Exit(0)
		}
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// commandCtx returns a context cancelled on termination signals
func commandCtx() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()
	return ctx, cancel
}

// buildManager wires the API client and optional storage client. A missing
// storage setup degrades to no hydration instead of failing the command.
func buildManager(ctx context.Context) (*dataset.Manager, error) {
	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if cfg.Storage.Hydrate {
			opts.Hydrate = true
		}
		return carver.NewManagerFromConfig(ctx, cfg)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	client, err := api.New(baseURL, opts.APIKey)
	if err != nil {
		return nil, err
	}

	var store dataset.ContentStore
	if s, serr := storage.NewFromEnv(ctx); serr == nil {
		store = s
	} else {
		var credErr *storage.CredentialsError
		if !errors.As(serr, &credErr) {
			lgr.Printf("[WARN] storage client unavailable: %v", serr)
		}
	}
	return dataset.NewManager(client, store), nil
}

// emit writes the table as CSV to stdout, CSV to a file, or JSON to stdout
func emit(t *table.Table, out OutputOpts) error {
	if out.JSON {
		s, err := t.ToJSON(2)
		if err != nil {
			return err
		}
		fmt.Println(s)
		return nil
	}
	if out.Out != "" {
		path, err := t.ToCSV(out.Out)
		if err != nil {
			return err
		}
		lgr.Printf("[INFO] wrote %d rows to %s", t.Len(), path)
		return nil
	}
	return t.WriteCSV(os.Stdout)
}

// TopicsCommand lists all topics
type TopicsCommand struct {
	OutputOpts
}

// Execute runs the topics command
func (cmd *TopicsCommand) Execute(_ []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}
	topics, err := m.Topics(ctx)
	if err != nil {
		return err
	}
	return emit(topics, cmd.OutputOpts)
}

// FeedsCommand lists feeds, optionally narrowed to one topic
type FeedsCommand struct {
	OutputOpts
	TopicID string `long:"topic-id" description:"only feeds under this topic"`
}

// Execute runs the feeds command
func (cmd *FeedsCommand) Execute(_ []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}
	feeds, err := m.Feeds(ctx, cmd.TopicID)
	if err != nil {
		return err
	}
	return emit(feeds, cmd.OutputOpts)
}

// EntriesCommand fetches entries, by feed, by topic, or across all feeds
type EntriesCommand struct {
	OutputOpts
	FeedID   string `long:"feed-id" description:"fetch entries for this feed"`
	TopicID  string `long:"topic-id" description:"fetch entries for this topic"`
	Active   bool   `long:"active" description:"only active entries (all-entries mode)"`
	FetchAll bool   `long:"all" description:"fetch all pages (all-entries mode)"`
}

// Execute runs the entries command
func (cmd *EntriesCommand) Execute(_ []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}
	dsOpts := dataset.EntriesOptions{FeedID: cmd.FeedID, TopicID: cmd.TopicID, FetchAll: cmd.FetchAll}
	if cmd.Active {
		active := true
		dsOpts.IsActive = &active
	}
	entries, err := m.Entries(ctx, dsOpts)
	if err != nil {
		return err
	}
	return emit(entries, cmd.OutputOpts)
}

// SearchCommand runs a keyword search over the hierarchical entry view
type SearchCommand struct {
	OutputOpts
	Topic         string   `long:"topic" description:"topic id or name to narrow the search"`
	Feed          string   `long:"feed" description:"feed id or name to narrow the search"`
	Fields        []string `long:"field" description:"entry fields to search (default entry_content_markdown)"`
	Since         string   `long:"since" description:"only entries published on or after this date (YYYY-MM-DD)"`
	Until         string   `long:"until" description:"only entries published on or before this date (YYYY-MM-DD)"`
	MatchAll      bool     `long:"match-all" description:"require every keyword to match"`
	CaseSensitive bool     `long:"case-sensitive" description:"case-sensitive keyword matching"`
}

// Execute runs the search command; positional args are the keywords
func (cmd *SearchCommand) Execute(args []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}

	var engOpts []query.Option
	if opts.Hydrate {
		engOpts = append(engOpts, query.WithHydration())
	}
	eng := query.New(m, engOpts...)

	if cmd.Topic != "" {
		eng.FilterByTopic(ctx, "", cmd.Topic)
	}
	if cmd.Feed != "" {
		eng.FilterByFeed(ctx, "", cmd.Feed)
	}
	if len(args) > 0 {
		eng.SearchEntries(ctx, args, query.SearchOptions{
			Fields:        cmd.Fields,
			CaseSensitive: cmd.CaseSensitive,
			MatchAll:      cmd.MatchAll,
		})
	}

	start, err := parseDateFlag(cmd.Since)
	if err != nil {
		return err
	}
	end, err := parseDateFlag(cmd.Until)
	if err != nil {
		return err
	}
	if !start.IsZero() || !end.IsZero() {
		eng.FilterByDate(ctx, start, end)
	}

	results, err := eng.ToTable(ctx)
	if err != nil {
		return err
	}
	return emit(results, cmd.OutputOpts)
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// SubscriptionsCommand lists topic subscriptions for a user
type SubscriptionsCommand struct {
	OutputOpts
	UserID string `long:"user-id" required:"true" description:"user id"`
}

// Execute runs the subscriptions command
func (cmd *SubscriptionsCommand) Execute(_ []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}
	subs, err := m.UserTopicSubscriptions(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	return emit(subs, cmd.OutputOpts)
}

// AnnotationsCommand fetches annotations by exactly one id filter
type AnnotationsCommand struct {
	OutputOpts
	EntryIDs []string `long:"entry-id" description:"feed entry ids"`
	TopicIDs []string `long:"topic-id" description:"topic ids"`
	UserIDs  []string `long:"user-id" description:"user ids"`
}

// Execute runs the annotations command
func (cmd *AnnotationsCommand) Execute(_ []string) error {
	ctx, cancel := commandCtx()
	defer cancel()

	m, err := buildManager(ctx)
	if err != nil {
		return err
	}
	annotations, err := m.Annotations(ctx, api.AnnotationFilter{
		FeedEntryIDs: cmd.EntryIDs,
		TopicIDs:     cmd.TopicIDs,
		UserIDs:      cmd.UserIDs,
	})
	if err != nil {
		return err
	}
	return emit(annotations, cmd.OutputOpts)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	if !opts.NoColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
