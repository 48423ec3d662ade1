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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// fileName builds the collision-free leaf name: nanosecond timestamp plus a
// random ID, so concurrent writers never overwrite each other.
func fileName(now time.Time) string {
	return fmt.Sprintf("%d-%s.parquet", now.UnixNano(), uuid.NewString())
}

// partitionPath renders the day partition segment for a catalog table, e.g.
// "timestamp_day=2026-08-26".
func partitionPath(day time.Time) string {
	return "timestamp_day=" + day.UTC().Format("2006-01-02")
}

// catalogDataPath builds the object path for a catalog-managed file:
// {location}/data/{partition_path}/{filename}.
func catalogDataPath(tableLocation string, day, now time.Time) string {
	return fmt.Sprintf("%s/data/%s/%s",
		strings.TrimRight(tableLocation, "/"), partitionPath(day), fileName(now))
}

// hivePartitionPath renders the direct-mode partition directory:
// service_name={sanitized}/year=YYYY/month=MM/day=DD/hour=HH.
func hivePartitionPath(serviceName string, ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("service_name=%s/year=%04d/month=%02d/day=%02d/hour=%02d",
		sanitizeServiceName(serviceName), ts.Year(), ts.Month(), ts.Day(), ts.Hour())
}

// directDataPath builds the object key for a direct-mode file:
// {namespace}/{signal}/{hive_partition_path}/{filename}. The bucket is
// carried separately.
func directDataPath(namespace string, signal schema.SignalKind, serviceName string, ts, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		namespace, signal, hivePartitionPath(serviceName, ts), fileName(now))
}

// sanitizeServiceName makes a service name safe for use as a path segment.
// Anything outside [a-zA-Z0-9._-] becomes an underscore; empty input maps to
// "unknown".
func sanitizeServiceName(name string) string {
	if name == "" {
		return "unknown"
	}
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// splitObjectURI splits an s3://bucket/key URI into bucket and key.
func splitObjectURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("unsupported object URI %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object URI %q has no key", uri)
	}
	return bucket, key, nil
}

// batchTimestamp finds the smallest timestamp in the batch, in nanoseconds.
// An empty batch (or one with no usable timestamps) partitions by the
// current time.
func batchTimestamp(b *batch.Batch, now time.Time) time.Time {
	var minTS int64
	found := false
	for i := 0; i < b.Len(); i++ {
		ts, ok := rowTimestamp(b.Get(i))
		if !ok {
			continue
		}
		if !found || ts < minTS {
			minTS = ts
			found = true
		}
	}
	if !found {
		return now.UTC()
	}
	return time.Unix(0, minTS).UTC()
}

func rowTimestamp(row batch.Row) (int64, bool) {
	switch v := row["timestamp"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// batchServiceName picks the service name used for the direct-mode
// partition path from the first row that carries one.
func batchServiceName(b *batch.Batch) string {
	for i := 0; i < b.Len(); i++ {
		if s, ok := b.Get(i)["service_name"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
