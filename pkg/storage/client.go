// Package storage fetches entry bodies from S3-compatible object storage.
// It is the content-hydration collaborator of the dataset package: fetch
// failures degrade to absent content per path instead of propagating.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"golang.org/x/sync/errgroup"
)

// storage defaults
const (
	DefaultMaxObjectSize = 10 * 1024 * 1024
	DefaultMaxWorkers    = 5
	MaxWorkersCap        = 10
	defaultMaxRetries    = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// CredentialsError indicates no usable storage credentials were found
type CredentialsError struct {
	Msg string
}

func (e *CredentialsError) Error() string { return e.Msg }

// FetchError indicates a single storage path could not be fetched
type FetchError struct {
	Path string
	Msg  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Path, e.Msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

// objectAPI is the S3 surface the client uses
type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client fetches objects by s3://bucket/key path with a size ceiling and
// bounded-concurrency batch fetching
type Client struct {
	api           objectAPI
	maxObjectSize int64
	maxWorkers    int
	maxRetries    int
	retryDelay    time.Duration
}

// Config holds storage client settings
type Config struct {
	Region        string
	Profile       string
	Endpoint      string // custom endpoint for MinIO/LocalStack style setups
	MaxObjectSize int64
	MaxWorkers    int
}

// New creates a storage client using the AWS default credential chain,
// optionally pinned to a named profile
func New(ctx context.Context, cfg Config) (*Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, &CredentialsError{Msg: fmt.Sprintf("load aws config: %v", err)}
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // required for MinIO/LocalStack
		}
	})

	return &Client{
		api:           s3Client,
		maxObjectSize: normalizeSize(cfg.MaxObjectSize),
		maxWorkers:    normalizeWorkers(cfg.MaxWorkers),
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
	}, nil
}

// NewFromEnv creates a storage client from AWS environment settings. Returns
// a CredentialsError when neither a profile nor static keys are present, so
// callers can degrade to no hydration instead of failing.
func NewFromEnv(ctx context.Context) (*Client, error) {
	profile := os.Getenv("AWS_PROFILE")
	hasKeys := os.Getenv("AWS_ACCESS_KEY_ID") != "" && os.Getenv("AWS_SECRET_ACCESS_KEY") != ""
	if profile == "" && !hasKeys {
		return nil, &CredentialsError{Msg: "no aws profile or access keys in environment"}
	}
	return New(ctx, Config{
		Region:   os.Getenv("AWS_REGION"),
		Profile:  profile,
		Endpoint: os.Getenv("AWS_ENDPOINT_URL"),
	})
}

func normalizeSize(size int64) int64 {
	if size <= 0 {
		return DefaultMaxObjectSize
	}
	return size
}

func normalizeWorkers(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxWorkers
	case n > MaxWorkersCap:
		lgr.Printf("[WARN] max workers %d capped at %d", n, MaxWorkersCap)
		return MaxWorkersCap
	default:
		return n
	}
}

// errPermanent marks fetch failures the retrier must not repeat
var errPermanent = errors.New("permanent storage failure")

type criticalError struct {
	err error
}

func (e *criticalError) Error() string        { return e.err.Error() }
func (e *criticalError) Unwrap() error        { return e.err }
func (e *criticalError) Is(target error) bool { return target == errPermanent }

// FetchContent downloads one object as a string. Objects larger than the
// configured ceiling are rejected without downloading; transient failures
// are retried with backoff.
func (c *Client) FetchContent(ctx context.Context, path string) (string, error) {
	loc, err := ParsePath(path)
	if err != nil {
		return "", err
	}

	// size check before download, tolerate head failures since not every
	// policy grants HeadObject
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err == nil && head.ContentLength != nil && *head.ContentLength > c.maxObjectSize {
		return "", &FetchError{Path: path, Msg: fmt.Sprintf("object size %d exceeds limit %d", *head.ContentLength, c.maxObjectSize)}
	}

	retrier := repeater.NewBackoff(c.maxRetries, c.retryDelay, repeater.WithJitter(0.25))

	var content string
	err = retrier.Do(ctx, func() error {
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(loc.Bucket),
			Key:    aws.String(loc.Key),
		})
		if err != nil {
			if isPermanentObjectError(err) {
				return &criticalError{err: &FetchError{Path: path, Msg: "object not retrievable", Err: err}}
			}
			return &FetchError{Path: path, Msg: "transient fetch failure", Err: err}
		}
		defer out.Body.Close()

		data, err := io.ReadAll(io.LimitReader(out.Body, c.maxObjectSize))
		if err != nil {
			return &FetchError{Path: path, Msg: "read object body", Err: err}
		}
		content = string(data)
		return nil
	}, errPermanent)

	if err != nil {
		var ce *criticalError
		if errors.As(err, &ce) {
			return "", ce.err
		}
		return "", err
	}
	return content, nil
}

// isPermanentObjectError reports S3 failures retrying cannot fix
func isPermanentObjectError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NoSuchBucket") ||
		strings.Contains(errStr, "AccessDenied")
}

// BatchFetch fetches all paths with bounded concurrency and returns a map
// holding every requested path; nil content marks a failed path. The call
// returns only after every path has been attempted.
func (c *Client) BatchFetch(ctx context.Context, paths []string) map[string]*string {
	results := make(map[string]*string, len(paths))
	if len(paths) == 0 {
		return results
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)

	for _, path := range paths {
		g.Go(func() error {
			content, err := c.FetchContent(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lgr.Printf("[WARN] failed to fetch %s: %v", path, err)
				results[path] = nil
				return nil // per-path failures do not abort the batch
			}
			results[path] = &content
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors
	return results
}
