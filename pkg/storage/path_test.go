package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	t.Run("valid paths", func(t *testing.T) {
		tests := []struct {
			path   string
			bucket string
			key    string
		}{
			{"s3://bucket/key.md", "bucket", "key.md"},
			{"s3://my-bucket/deep/nested/key.md", "my-bucket", "deep/nested/key.md"},
			{"s3://bucket.with.dots/k", "bucket.with.dots", "k"},
			{"s3://b2/entries/2024/06/e1.md", "b2", "entries/2024/06/e1.md"},
		}
		for _, tt := range tests {
			loc, err := ParsePath(tt.path)
			require.NoError(t, err, tt.path)
			assert.Equal(t, tt.bucket, loc.Bucket)
			assert.Equal(t, tt.key, loc.Key)
		}
	})

	t.Run("invalid paths", func(t *testing.T) {
		tests := []struct {
			name string
			path string
		}{
			{"empty", ""},
			{"wrong scheme", "https://bucket/key"},
			{"no scheme", "bucket/key"},
			{"missing key", "s3://bucket"},
			{"empty key", "s3://bucket/"},
			{"missing bucket", "s3:///key"},
			{"uppercase bucket", "s3://Bucket/key"},
			{"underscore bucket", "s3://my_bucket/key"},
			{"leading hyphen", "s3://-bucket/key"},
			{"trailing hyphen", "s3://bucket-/key"},
			{"invalid character", "s3://buc!ket/key"},
			{"traversal", "s3://bucket/a/../b"},
			{"too long", "s3://bucket/" + strings.Repeat("x", maxPathLength)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParsePath(tt.path)
				require.Error(t, err)
				var ferr *FetchError
				assert.ErrorAs(t, err, &ferr)
			})
		}
	})
}
