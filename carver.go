// Package carver wires the SDK layers together: an API client, the dataset
// manager over it, and a query engine over that. Use these helpers for the
// common case and the subpackages directly when the wiring needs control.
package carver

import (
	"context"
	"errors"

	"github.com/go-pkgz/lgr"

	"github.com/carveragents/carver-feeds-go/pkg/api"
	"github.com/carveragents/carver-feeds-go/pkg/config"
	"github.com/carveragents/carver-feeds-go/pkg/dataset"
	"github.com/carveragents/carver-feeds-go/pkg/query"
	"github.com/carveragents/carver-feeds-go/pkg/storage"
)

// NewManager creates a dataset manager from CARVER_API_KEY and
// CARVER_BASE_URL. Storage credentials are discovered from the AWS
// environment; without them the manager works with hydration degraded to
// absent bodies.
func NewManager(ctx context.Context, opts ...api.Option) (*dataset.Manager, error) {
	client, err := api.NewFromEnv(opts...)
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

// NewManagerFromConfig creates a dataset manager from a loaded config.
// A failed storage setup is logged and hydration degrades, mirroring the
// environment-based path.
func NewManagerFromConfig(ctx context.Context, cfg *config.Config) (*dataset.Manager, error) {
	client, err := api.New(cfg.API.BaseURL, cfg.API.Key,
		api.WithTimeout(cfg.API.Timeout),
		api.WithMaxRetries(cfg.API.MaxRetries),
		api.WithRetryDelay(cfg.API.RetryDelay),
		api.WithPageLimit(cfg.API.PageLimit),
	)
	if err != nil {
		return nil, err
	}

	var store dataset.ContentStore
	if s, serr := storage.New(ctx, storage.Config{
		Region:        cfg.Storage.Region,
		Profile:       cfg.Storage.Profile,
		Endpoint:      cfg.Storage.Endpoint,
		MaxObjectSize: cfg.Storage.MaxObjectSize,
		MaxWorkers:    cfg.Storage.MaxWorkers,
	}); serr == nil {
		store = s
	} else {
		lgr.Printf("[WARN] storage client unavailable: %v", serr)
	}
	return dataset.NewManager(client, store), nil
}

// NewEngine creates a query engine backed by a manager from the environment
func NewEngine(ctx context.Context, apiOpts []api.Option, engineOpts ...query.Option) (*query.Engine, error) {
	m, err := NewManager(ctx, apiOpts...)
	if err != nil {
		return nil, err
	}
	return query.New(m, engineOpts...), nil
}

// NewEngineFromConfig creates a query engine backed by a manager from a loaded
// config. Hydration turns on when cfg.Storage.Hydrate is set.
func NewEngineFromConfig(ctx context.Context, cfg *config.Config, engineOpts ...query.Option) (*query.Engine, error) {
	m, err := NewManagerFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Hydrate {
		engineOpts = append(engineOpts, query.WithHydration())
	}
	return query.New(m, engineOpts...), nil
}
