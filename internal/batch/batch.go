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

// Package batch holds the in-memory columnar batch handed to the writer.
// A batch is immutable once constructed; the writer never mutates it.
package batch

import "maps"

// Row represents a single telemetry record as column name to value.
type Row map[string]any

// CopyRow creates a deep copy of a row.
func CopyRow(in Row) Row {
	out := make(Row, len(in))
	maps.Copy(out, in)
	return out
}

// GetString retrieves a string value from the Row.
// Returns empty string if the key is not found or the value is not a string.
func (r Row) GetString(key string) string {
	if val, ok := r[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt64 retrieves an int64 value from the Row.
// Returns the value and true if found and convertible, or 0 and false otherwise.
func (r Row) GetInt64(key string) (int64, bool) {
	if val, ok := r[key]; ok {
		switch v := val.(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		case float64:
			return int64(v), true
		}
	}
	return 0, false
}

// GetFloat64 retrieves a float64 value from the Row.
// Returns the value and true if found and convertible, or 0 and false otherwise.
func (r Row) GetFloat64(key string) (float64, bool) {
	if val, ok := r[key]; ok {
		switch v := val.(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// Batch is a schema-tagged, immutable collection of rows. The schema tag
// names the canonical schema the rows conform to (e.g. "logs",
// "metrics:gauge"). A zero-row batch is valid and flows through the write
// pipeline producing an empty file.
type Batch struct {
	schemaTag string
	rows      []Row
}

// New builds a batch from rows. The rows are copied so later mutation of
// the caller's slice or maps does not leak into the batch.
func New(schemaTag string, rows []Row) *Batch {
	copied := make([]Row, len(rows))
	for i, r := range rows {
		copied[i] = CopyRow(r)
	}
	return &Batch{schemaTag: schemaTag, rows: copied}
}

// SchemaTag returns the schema identity the rows were built against.
func (b *Batch) SchemaTag() string { return b.schemaTag }

// Len returns the number of rows in the batch.
func (b *Batch) Len() int { return len(b.rows) }

// Get returns the row at index i, or nil if out of range.
func (b *Batch) Get(i int) Row {
	if i < 0 || i >= len(b.rows) {
		return nil
	}
	return b.rows[i]
}
