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

// Package writer converts telemetry batches into Parquet files in object
// storage and, in catalog mode, registers each file with a table catalog in
// one atomic commit. No commit is ever attempted for a file that did not
// fully upload.
package writer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// State is where a write ended up.
type State string

const (
	// StateCommitted means the file is in storage and registered with the
	// catalog.
	StateCommitted State = "committed"
	// StatePartiallyWritten means the file is in storage but catalog
	// registration failed; the object remains for later reconciliation.
	StatePartiallyWritten State = "partially_written"
	// StateWritten is direct mode's terminal state: durable in storage,
	// with no catalog in play.
	StateWritten State = "written"
	// StateFailed means no file was produced.
	StateFailed State = "failed"
)

// WriteResult describes one completed write.
type WriteResult struct {
	// Committed is true only when the catalog registered the file. Direct
	// mode never commits.
	Committed bool
	// State is the terminal state of the write.
	State State
	// Table is the catalog table the file belongs to; empty in direct mode.
	Table string
	// Path is the full object URI of the written file.
	Path string
	// FileSizeBytes is the encoded file size.
	FileSizeBytes int64
	// RowCount is the number of rows written.
	RowCount int64
}

// Writer writes one batch per call. Implementations are safe for concurrent
// use.
type Writer interface {
	Write(ctx context.Context, signal schema.SignalKind, subKind string, b *batch.Batch) (*WriteResult, error)
}

var (
	writeCount metric.Int64Counter
	writeRows  metric.Int64Counter
	writeBytes metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/lakewriter/internal/writer")

	var err error
	writeCount, err = meter.Int64Counter(
		"lakewriter.writes.count",
		metric.WithDescription("Number of batch writes by terminal state"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create writes.count counter: %w", err))
	}

	writeRows, err = meter.Int64Counter(
		"lakewriter.writes.rows",
		metric.WithDescription("Rows written to object storage"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create writes.rows counter: %w", err))
	}

	writeBytes, err = meter.Int64Counter(
		"lakewriter.writes.bytes",
		metric.WithDescription("Encoded bytes written to object storage"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create writes.bytes counter: %w", err))
	}
}

func recordWrite(ctx context.Context, signal schema.SignalKind, state State, rows, bytes int64) {
	attrs := metric.WithAttributes(
		attribute.String("signal", string(signal)),
		attribute.String("state", string(state)),
	)
	writeCount.Add(ctx, 1, attrs)
	if rows > 0 {
		writeRows.Add(ctx, rows, attrs)
	}
	if bytes > 0 {
		writeBytes.Add(ctx, bytes, attrs)
	}
}
