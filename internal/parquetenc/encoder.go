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

// Package parquetenc encodes columnar batches into in-memory Parquet files
// and accumulates the per-column statistics the catalog wants alongside a
// registered file.
package parquetenc

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// SchemaMismatchError reports a row whose shape does not fit the table
// schema. The whole encode fails; partially encoded files are never
// produced.
type SchemaMismatchError struct {
	Row    int
	Column string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("row %d column %q: %s", e.Row, e.Column, e.Reason)
}

// ColumnStats holds per-field statistics keyed by field ID, in the string
// form the catalog stores as bounds.
type ColumnStats struct {
	NullCounts  map[int]int64
	LowerBounds map[int]string
	UpperBounds map[int]string
}

// EncodedFile is one complete Parquet file held in memory.
type EncodedFile struct {
	Bytes    []byte
	RowCount int64
	Stats    ColumnStats
}

// writeChunkSize bounds how many rows are handed to the writer at once.
const writeChunkSize = 1000

// Encode writes all rows of b into a Parquet file shaped by s. Every row is
// validated against the schema first: required columns must be present,
// values must coerce to the column type, and unknown columns are rejected.
func Encode(s *schema.Schema, b *batch.Batch) (*EncodedFile, error) {
	parquetSchema, err := buildParquetSchema(s)
	if err != nil {
		return nil, err
	}

	fieldsByName := make(map[string]schema.Field, len(s.Fields))
	for _, f := range s.Fields {
		fieldsByName[f.Name] = f
	}

	stats := ColumnStats{
		NullCounts:  make(map[int]int64, len(s.Fields)),
		LowerBounds: make(map[int]string),
		UpperBounds: make(map[int]string),
	}
	tracker := newBoundsTracker(s)

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[map[string]any](&buf, parquetSchema)

	chunk := make([]map[string]any, 0, writeChunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if _, err := writer.Write(chunk); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		chunk = chunk[:0]
		return nil
	}

	for i := 0; i < b.Len(); i++ {
		row := b.Get(i)
		out := make(map[string]any, len(s.Fields))

		for name := range row {
			if _, ok := fieldsByName[name]; !ok {
				return nil, &SchemaMismatchError{Row: i, Column: name, Reason: "not in table schema"}
			}
		}

		for _, f := range s.Fields {
			raw, present := row[f.Name]
			if !present || raw == nil {
				if f.Required {
					return nil, &SchemaMismatchError{Row: i, Column: f.Name, Reason: "required column is missing"}
				}
				stats.NullCounts[f.ID]++
				continue
			}
			v, err := coerce(raw, f.Type)
			if err != nil {
				return nil, &SchemaMismatchError{Row: i, Column: f.Name, Reason: err.Error()}
			}
			out[f.Name] = v
			tracker.observe(f.ID, f.Type, v)
		}

		chunk = append(chunk, out)
		if len(chunk) == writeChunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}

	tracker.fill(&stats)
	return &EncodedFile{
		Bytes:    buf.Bytes(),
		RowCount: int64(b.Len()),
		Stats:    stats,
	}, nil
}

func buildParquetSchema(s *schema.Schema) (*parquet.Schema, error) {
	nodes := make(parquet.Group, len(s.Fields))
	for _, f := range s.Fields {
		var node parquet.Node
		switch f.Type {
		case schema.TypeString:
			node = parquet.String()
		case schema.TypeLong:
			node = parquet.Int(64)
		case schema.TypeDouble:
			node = parquet.Leaf(parquet.DoubleType)
		case schema.TypeBoolean:
			node = parquet.Leaf(parquet.BooleanType)
		case schema.TypeTimestampNs:
			node = parquet.Timestamp(parquet.Nanosecond)
		default:
			return nil, fmt.Errorf("unsupported column type %q for %s", f.Type, f.Name)
		}
		if !f.Required {
			node = parquet.Optional(node)
		}
		nodes[f.Name] = parquet.FieldID(node, f.ID)
	}
	return parquet.NewSchema("lakewriter", nodes), nil
}

// coerce normalizes a row value to the column's physical representation.
// Integer-valued float64s are accepted for long columns because JSON
// decoding produces them.
func coerce(v any, t schema.FieldType) (any, error) {
	switch t {
	case schema.TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case schema.TypeLong, schema.TypeTimestampNs:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("expected integer, got fractional %v", n)
			}
			return int64(n), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
	case schema.TypeDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("expected float, got %T", v)
		}
	case schema.TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", t)
	}
}

// boundsTracker accumulates min/max per field across every non-null value.
type boundsTracker struct {
	types map[int]schema.FieldType
	mins  map[int]any
	maxs  map[int]any
}

func newBoundsTracker(s *schema.Schema) *boundsTracker {
	types := make(map[int]schema.FieldType, len(s.Fields))
	for _, f := range s.Fields {
		types[f.ID] = f.Type
	}
	return &boundsTracker{
		types: types,
		mins:  make(map[int]any),
		maxs:  make(map[int]any),
	}
}

func (bt *boundsTracker) observe(id int, t schema.FieldType, v any) {
	cur, seen := bt.mins[id]
	if !seen {
		bt.mins[id] = v
		bt.maxs[id] = v
		return
	}
	if less(t, v, cur) {
		bt.mins[id] = v
	}
	if less(t, bt.maxs[id], v) {
		bt.maxs[id] = v
	}
}

func less(t schema.FieldType, a, b any) bool {
	switch t {
	case schema.TypeString:
		return a.(string) < b.(string)
	case schema.TypeLong, schema.TypeTimestampNs:
		return a.(int64) < b.(int64)
	case schema.TypeDouble:
		return a.(float64) < b.(float64)
	case schema.TypeBoolean:
		return !a.(bool) && b.(bool)
	default:
		return false
	}
}

func (bt *boundsTracker) fill(stats *ColumnStats) {
	for id, v := range bt.mins {
		stats.LowerBounds[id] = formatBound(bt.types[id], v)
	}
	for id, v := range bt.maxs {
		stats.UpperBounds[id] = formatBound(bt.types[id], v)
	}
}

func formatBound(t schema.FieldType, v any) string {
	switch t {
	case schema.TypeString:
		return v.(string)
	case schema.TypeLong, schema.TypeTimestampNs:
		return strconv.FormatInt(v.(int64), 10)
	case schema.TypeDouble:
		return strconv.FormatFloat(v.(float64), 'g', -1, 64)
	case schema.TypeBoolean:
		return strconv.FormatBool(v.(bool))
	default:
		return fmt.Sprintf("%v", v)
	}
}
