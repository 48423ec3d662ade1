// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package writer

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakewriter/internal/batch"
)

func TestSanitizeServiceName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"api", "api"},
		{"my-service.v2_x", "my-service.v2_x"},
		{"my service/v2", "my_service_v2"},
		{"svc:8080", "svc_8080"},
		{"日本語", "___"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeServiceName(tt.in), "input %q", tt.in)
	}
}

func TestCatalogDataPathShape(t *testing.T) {
	day := time.Date(2026, 8, 26, 3, 4, 5, 0, time.UTC)
	now := time.Date(2026, 8, 26, 3, 4, 5, 123456789, time.UTC)
	p := catalogDataPath("s3://warehouse/otel/logs/", day, now)

	re := regexp.MustCompile(`^s3://warehouse/otel/logs/data/timestamp_day=2026-08-26/\d+-[0-9a-f-]{36}\.parquet$`)
	assert.Regexp(t, re, p)
}

func TestFileNamesAreUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := fileName(now)
		require.False(t, seen[n], "filename %s reused", n)
		seen[n] = true
	}
}

func TestSplitObjectURI(t *testing.T) {
	bucket, key, err := splitObjectURI("s3://b/some/deep/key.parquet")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "some/deep/key.parquet", key)

	for _, bad := range []string{"", "b/key", "s3://", "s3://bucketonly", "gs://b/key"} {
		_, _, err := splitObjectURI(bad)
		assert.Error(t, err, "uri %q", bad)
	}
}

func TestBatchTimestampPicksMinimum(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := batch.New("logs", []batch.Row{
		{"timestamp": int64(3_000_000_000)},
		{"timestamp": int64(1_000_000_000)},
		{"timestamp": int64(2_000_000_000)},
	})
	got := batchTimestamp(b, now)
	assert.Equal(t, time.Unix(1, 0).UTC(), got)
}

func TestBatchTimestampFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now, batchTimestamp(batch.New("logs", nil), now))
	assert.Equal(t, now, batchTimestamp(batch.New("logs", []batch.Row{{"body": "no ts"}}), now))
}
