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

package catalog

// Wire types for the REST catalog protocol. Field names follow the
// catalog's kebab-case JSON convention.

// NestedField is one column in the catalog's schema representation. The ID
// is the stable field identifier shared with the Parquet file metadata.
type NestedField struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     string `json:"type"`
}

// TableSchema is the catalog's schema representation.
type TableSchema struct {
	SchemaID int           `json:"schema-id"`
	Type     string        `json:"type"`
	Fields   []NestedField `json:"fields"`
}

// PartitionField maps a source column through a transform to one partition
// path segment.
type PartitionField struct {
	SourceID  int    `json:"source-id"`
	FieldID   int    `json:"field-id"`
	Name      string `json:"name"`
	Transform string `json:"transform"`
}

// PartitionSpec is an ordered list of partition fields.
type PartitionSpec struct {
	SpecID int              `json:"spec-id"`
	Fields []PartitionField `json:"fields"`
}

// TableMetadata is the immutable snapshot of a table returned by the
// catalog. A committed write produces a new snapshot ID; metadata is never
// mutated in place.
type TableMetadata struct {
	FormatVersion     int             `json:"format-version"`
	TableUUID         string          `json:"table-uuid"`
	Location          string          `json:"location"`
	CurrentSchemaID   int             `json:"current-schema-id"`
	Schemas           []TableSchema   `json:"schemas"`
	DefaultSpecID     int             `json:"default-spec-id"`
	PartitionSpecs    []PartitionSpec `json:"partition-specs,omitempty"`
	CurrentSnapshotID *int64          `json:"current-snapshot-id,omitempty"`
	LastUpdatedMS     int64           `json:"last-updated-ms,omitempty"`
}

// CurrentSchema returns the schema identified by CurrentSchemaID, or nil.
func (m *TableMetadata) CurrentSchema() *TableSchema {
	for i := range m.Schemas {
		if m.Schemas[i].SchemaID == m.CurrentSchemaID {
			return &m.Schemas[i]
		}
	}
	return nil
}

// DefaultPartitionSpec returns the spec identified by DefaultSpecID, or nil.
func (m *TableMetadata) DefaultPartitionSpec() *PartitionSpec {
	for i := range m.PartitionSpecs {
		if m.PartitionSpecs[i].SpecID == m.DefaultSpecID {
			return &m.PartitionSpecs[i]
		}
	}
	return nil
}

// LoadTableResponse is the body of a successful load or create.
type LoadTableResponse struct {
	MetadataLocation string        `json:"metadata-location"`
	Metadata         TableMetadata `json:"metadata"`
}

// DataFile describes one physical file registered as part of a table's
// contents. Partition values are keyed by partition field name; their
// cardinality and order are validated against the table's partition spec
// before a DataFile is ever constructed.
type DataFile struct {
	Content         string            `json:"content"`
	FilePath        string            `json:"file-path"`
	FileFormat      string            `json:"file-format"`
	Partition       map[string]string `json:"partition"`
	RecordCount     int64             `json:"record-count"`
	FileSizeInBytes int64             `json:"file-size-in-bytes"`
	NullValueCounts map[int]int64     `json:"null-value-counts,omitempty"`
	LowerBounds     map[int]string    `json:"lower-bounds,omitempty"`
	UpperBounds     map[int]string    `json:"upper-bounds,omitempty"`
}

// createTableRequest is the body of a create-table call.
type createTableRequest struct {
	Name          string        `json:"name"`
	Schema        TableSchema   `json:"schema"`
	PartitionSpec PartitionSpec `json:"partition-spec"`
}

// commitRequirement asserts a precondition the catalog must check before
// applying updates. A stale snapshot ID fails the whole transaction.
type commitRequirement struct {
	Type string `json:"type"`
	Ref  string `json:"ref,omitempty"`
	// Serialized as null when the table has no snapshot yet.
	SnapshotID *int64 `json:"snapshot-id"`
}

// commitUpdate is one table change; only append-files is issued here.
type commitUpdate struct {
	Action    string     `json:"action"`
	DataFiles []DataFile `json:"data-files"`
}

// commitTransactionRequest applies updates against a base table version,
// fully or not at all.
type commitTransactionRequest struct {
	Requirements []commitRequirement `json:"requirements"`
	Updates      []commitUpdate      `json:"updates"`
}

type commitTransactionResponse struct {
	MetadataLocation string        `json:"metadata-location"`
	Metadata         TableMetadata `json:"metadata"`
}

type createNamespaceRequest struct {
	Namespace []string `json:"namespace"`
}

// errorResponse is the catalog's structured error body.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}
