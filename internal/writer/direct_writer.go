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
	"context"
	"fmt"
	"time"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/cloudstorage"
	"github.com/cardinalhq/lakewriter/internal/logctx"
	"github.com/cardinalhq/lakewriter/internal/parquetenc"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// DirectWriter writes Parquet files straight to a bucket under Hive-style
// partition paths, with no catalog involved. Results always report
// committed=false because there is no catalog to commit to.
type DirectWriter struct {
	store     cloudstorage.Client
	bucket    string
	namespace string
	now       func() time.Time
}

// NewDirectWriter wires a storage client to a bucket and namespace prefix.
func NewDirectWriter(store cloudstorage.Client, bucket, namespace string) *DirectWriter {
	return &DirectWriter{
		store:     store,
		bucket:    bucket,
		namespace: namespace,
		now:       time.Now,
	}
}

// Write encodes b and uploads it under
// {namespace}/{signal}/{hive partition path}/.
func (w *DirectWriter) Write(ctx context.Context, signal schema.SignalKind, subKind string, b *batch.Batch) (*WriteResult, error) {
	ll := logctx.FromContext(ctx)

	colSchema, err := schema.Resolve(signal, subKind)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, err
	}

	enc, err := parquetenc.Encode(colSchema, b)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	now := w.now()
	ts := batchTimestamp(b, now)
	key := directDataPath(w.namespace, signal, batchServiceName(b), ts, now)

	if err := w.store.PutObject(ctx, w.bucket, key, enc.Bytes); err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("upload s3://%s/%s: %w", w.bucket, key, err)
	}

	result := &WriteResult{
		Committed:     false,
		State:         StateWritten,
		Path:          fmt.Sprintf("s3://%s/%s", w.bucket, key),
		FileSizeBytes: int64(len(enc.Bytes)),
		RowCount:      enc.RowCount,
	}
	recordWrite(ctx, signal, StateWritten, enc.RowCount, result.FileSizeBytes)
	ll.Info("batch written without catalog",
		"path", result.Path, "rows", enc.RowCount, "bytes", result.FileSizeBytes)
	return result, nil
}
