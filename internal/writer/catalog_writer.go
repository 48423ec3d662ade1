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
	"errors"
	"fmt"
	"time"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/catalog"
	"github.com/cardinalhq/lakewriter/internal/cloudstorage"
	"github.com/cardinalhq/lakewriter/internal/logctx"
	"github.com/cardinalhq/lakewriter/internal/parquetenc"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// tableCatalog is the slice of the catalog client the writer needs.
type tableCatalog interface {
	Table(ctx context.Context, name string) (*catalog.TableMetadata, error)
	LoadTable(ctx context.Context, name string) (*catalog.LoadTableResponse, error)
	CreateTable(ctx context.Context, name string, schema catalog.TableSchema, spec catalog.PartitionSpec) (*catalog.LoadTableResponse, error)
	CommitTransaction(ctx context.Context, name string, baseSnapshotID *int64, files []catalog.DataFile) (*catalog.TableMetadata, error)
	Invalidate(name string)
}

// CatalogBackedWriter writes Parquet files into a catalog-managed warehouse
// and registers each file in one atomic commit. A file that uploaded but
// whose commit failed is reported as partially written, not as an error; the
// object stays in storage for later reconciliation.
type CatalogBackedWriter struct {
	cat             tableCatalog
	store           cloudstorage.Client
	conflictRetries int
	now             func() time.Time
}

// NewCatalogBackedWriter wires a catalog client to a storage client.
// conflictRetries bounds how many times a commit conflict is resolved by
// reloading the table and retrying; zero surfaces the first conflict as a
// partial write.
func NewCatalogBackedWriter(cat tableCatalog, store cloudstorage.Client, conflictRetries int) *CatalogBackedWriter {
	return &CatalogBackedWriter{
		cat:             cat,
		store:           store,
		conflictRetries: conflictRetries,
		now:             time.Now,
	}
}

// Close releases the catalog client's resources, including its metadata
// cache. The writer must not be used after Close.
func (w *CatalogBackedWriter) Close() {
	if c, ok := w.cat.(interface{ Close() }); ok {
		c.Close()
	}
}

// Write encodes b, uploads it under the table's warehouse location, and
// commits it to the catalog. The returned error is non-nil only when the
// partition spec drifted or no file reached storage.
func (w *CatalogBackedWriter) Write(ctx context.Context, signal schema.SignalKind, subKind string, b *batch.Batch) (*WriteResult, error) {
	ll := logctx.FromContext(ctx)

	tableName, err := schema.TableName(signal, subKind)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, err
	}
	colSchema, err := schema.Resolve(signal, subKind)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, err
	}

	md, err := w.resolveTable(ctx, tableName, signal, subKind, colSchema)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("resolve table %s: %w", tableName, err)
	}

	enc, err := parquetenc.Encode(colSchema, b)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("encode batch for %s: %w", tableName, err)
	}

	now := w.now()
	day := batchTimestamp(b, now)
	path := catalogDataPath(md.Location, day, now)
	bucket, key, err := splitObjectURI(path)
	if err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("table %s location: %w", tableName, err)
	}

	if err := w.store.PutObject(ctx, bucket, key, enc.Bytes); err != nil {
		recordWrite(ctx, signal, StateFailed, 0, 0)
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}

	result := &WriteResult{
		Table:         tableName,
		Path:          path,
		FileSizeBytes: int64(len(enc.Bytes)),
		RowCount:      enc.RowCount,
	}

	values := []PartitionValue{{Name: "timestamp_day", Value: day.UTC().Format("2006-01-02")}}
	df, err := buildDataFile(path, enc, md.DefaultPartitionSpec(), values)
	if err != nil {
		// A partition spec drift is corruption waiting to happen; fail the
		// call. The uploaded object is orphaned but never registered.
		ll.Warn("file uploaded but partition spec mismatch prevents registration",
			"table", tableName, "path", path, "error", err)
		recordWrite(ctx, signal, StateFailed, enc.RowCount, result.FileSizeBytes)
		return nil, fmt.Errorf("data file for %s: %w", tableName, err)
	}

	if err := w.commit(ctx, tableName, md.CurrentSnapshotID, df); err != nil {
		ll.Warn("file uploaded but commit failed", "table", tableName, "path", path, "error", err)
		result.State = StatePartiallyWritten
		recordWrite(ctx, signal, StatePartiallyWritten, enc.RowCount, result.FileSizeBytes)
		return result, nil
	}

	result.Committed = true
	result.State = StateCommitted
	recordWrite(ctx, signal, StateCommitted, enc.RowCount, result.FileSizeBytes)
	ll.Info("batch committed",
		"table", tableName, "path", path, "rows", enc.RowCount, "bytes", result.FileSizeBytes)
	return result, nil
}

// resolveTable loads the table, creating it on first use. A create that
// loses to a concurrent writer converges on the winner's table.
func (w *CatalogBackedWriter) resolveTable(ctx context.Context, name string, signal schema.SignalKind, subKind string, colSchema *schema.Schema) (*catalog.TableMetadata, error) {
	md, err := w.cat.Table(ctx, name)
	if err == nil {
		return md, nil
	}
	if !errors.Is(err, catalog.ErrTableNotFound) {
		return nil, err
	}

	spec := schema.PartitionSpecFor(signal, subKind)
	created, err := w.cat.CreateTable(ctx, name, catalog.SchemaFor(colSchema), catalog.PartitionSpecFor(&spec))
	if err == nil {
		return &created.Metadata, nil
	}
	if !errors.Is(err, catalog.ErrTableAlreadyExists) {
		return nil, err
	}

	resp, err := w.cat.LoadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return &resp.Metadata, nil
}

// commit registers the file, resolving snapshot conflicts by reloading the
// table and retrying against the new snapshot, up to the configured bound.
func (w *CatalogBackedWriter) commit(ctx context.Context, tableName string, base *int64, df *catalog.DataFile) error {
	ll := logctx.FromContext(ctx)
	var lastErr error
	for attempt := 0; attempt <= w.conflictRetries; attempt++ {
		_, err := w.cat.CommitTransaction(ctx, tableName, base, []catalog.DataFile{*df})
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, catalog.ErrCommitConflict) || attempt == w.conflictRetries {
			break
		}

		w.cat.Invalidate(tableName)
		resp, lerr := w.cat.LoadTable(ctx, tableName)
		if lerr != nil {
			return fmt.Errorf("reload after conflict: %w", lerr)
		}
		base = resp.Metadata.CurrentSnapshotID
		ll.Debug("retrying commit after snapshot conflict",
			"table", tableName, "attempt", attempt+1)
	}
	return lastErr
}
