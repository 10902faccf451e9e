package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the SDK configuration
type Config struct {
	API struct {
		BaseURL    string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://app.carveragents.ai,description=Base URL of the Carver Feeds API"`
		Key        string        `yaml:"key" json:"key" jsonschema:"description=API key (can use environment variable)"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Per-request HTTP timeout"`
		MaxRetries int           `yaml:"max_retries" json:"max_retries" jsonschema:"default=3,description=Total attempts for retryable failures"`
		RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=1s,description=Initial backoff delay"`
		PageLimit  int           `yaml:"page_limit" json:"page_limit" jsonschema:"default=1000,description=Page size for paginated endpoints"`
	} `yaml:"api" json:"api" jsonschema:"description=API client configuration"`

	Storage struct {
		Hydrate       bool   `yaml:"hydrate" json:"hydrate" jsonschema:"default=false,description=Hydrate entry bodies from object storage"`
		Region        string `yaml:"region" json:"region" jsonschema:"description=AWS region"`
		Profile       string `yaml:"profile" json:"profile" jsonschema:"description=AWS shared config profile"`
		Endpoint      string `yaml:"endpoint" json:"endpoint" jsonschema:"description=Custom S3 endpoint (MinIO/LocalStack)"`
		MaxObjectSize int64  `yaml:"max_object_size" json:"max_object_size" jsonschema:"default=10485760,description=Maximum object size in bytes"`
		MaxWorkers    int    `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum concurrent object fetches"`
	} `yaml:"storage" json:"storage" jsonschema:"description=Object storage configuration"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://app.carveragents.ai"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = 3
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = time.Second
	}
	if c.API.PageLimit == 0 {
		c.API.PageLimit = 1000
	}
	if c.Storage.MaxObjectSize == 0 {
		c.Storage.MaxObjectSize = 10 * 1024 * 1024
	}
	if c.Storage.MaxWorkers == 0 {
		c.Storage.MaxWorkers = 5
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.API.Key == "" {
		return fmt.Errorf("api.key is required")
	}
	if cfg.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1 second")
	}
	if cfg.API.MaxRetries < 1 {
		return fmt.Errorf("api.max_retries must be at least 1")
	}
	if cfg.API.PageLimit < 1 {
		return fmt.Errorf("api.page_limit must be at least 1")
	}
	if cfg.Storage.MaxObjectSize < 0 {
		return fmt.Errorf("storage.max_object_size must be non-negative")
	}
	if cfg.Storage.MaxWorkers < 0 {
		return fmt.Errorf("storage.max_workers must be non-negative")
	}
	return nil
}
