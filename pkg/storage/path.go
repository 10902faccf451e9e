package storage

import (
	"fmt"
	"strings"
)

// maxPathLength bounds the accepted storage path length
const maxPathLength = 1024

// Location is a parsed bucket/key pair
type Location struct {
	Bucket string
	Key    string
}

// ParsePath parses and validates an s3://bucket/key storage path. Bucket
// names must be lowercase without underscores and may not start or end with
// a hyphen; keys with traversal segments are rejected.
func ParsePath(path string) (Location, error) {
	if path == "" {
		return Location{}, &FetchError{Path: path, Msg: "empty storage path"}
	}
	if len(path) > maxPathLength {
		return Location{}, &FetchError{Path: path, Msg: fmt.Sprintf("storage path exceeds %d characters", maxPathLength)}
	}
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return Location{}, &FetchError{Path: path, Msg: "storage path must use the s3:// scheme"}
	}

	bucket, key, found := strings.Cut(rest, "/")
	if !found || key == "" {
		return Location{}, &FetchError{Path: path, Msg: "storage path must include a key"}
	}
	if bucket == "" {
		return Location{}, &FetchError{Path: path, Msg: "storage path must include a bucket"}
	}
	if err := validateBucket(bucket); err != nil {
		return Location{}, &FetchError{Path: path, Msg: err.Error()}
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return Location{}, &FetchError{Path: path, Msg: "storage key must not contain traversal segments"}
		}
	}
	return Location{Bucket: bucket, Key: key}, nil
}

func validateBucket(bucket string) error {
	if strings.HasPrefix(bucket, "-") || strings.HasSuffix(bucket, "-") {
		return fmt.Errorf("bucket name must not start or end with a hyphen")
	}
	for _, r := range bucket {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
		case r == '_':
			return fmt.Errorf("bucket name must not contain underscores")
		case r >= 'A' && r <= 'Z':
			return fmt.Errorf("bucket name must be lowercase")
		default:
			return fmt.Errorf("bucket name contains invalid character %q", r)
		}
	}
	return nil
}
