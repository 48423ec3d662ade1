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

import (
	"github.com/cardinalhq/lakewriter/internal/schema"
)

// SchemaFor converts a column schema to the catalog's wire representation.
func SchemaFor(s *schema.Schema) TableSchema {
	fields := make([]NestedField, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, NestedField{
			ID:       f.ID,
			Name:     f.Name,
			Required: f.Required,
			Type:     string(f.Type),
		})
	}
	return TableSchema{
		SchemaID: s.SchemaID,
		Type:     "struct",
		Fields:   fields,
	}
}

// PartitionSpecFor converts a partition spec to the catalog's wire
// representation.
func PartitionSpecFor(s *schema.PartitionSpec) PartitionSpec {
	fields := make([]PartitionField, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, PartitionField{
			SourceID:  f.SourceID,
			FieldID:   f.FieldID,
			Name:      f.Name,
			Transform: f.Transform,
		})
	}
	return PartitionSpec{
		SpecID: s.SpecID,
		Fields: fields,
	}
}
