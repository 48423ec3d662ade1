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

	"github.com/cardinalhq/lakewriter/internal/catalog"
	"github.com/cardinalhq/lakewriter/internal/parquetenc"
)

// PartitionValue is one resolved partition field, in spec order.
type PartitionValue struct {
	Name  string
	Value string
}

// buildDataFile shapes an uploaded file into the catalog's registration
// record. The partition values must match the table's partition spec field
// for field, in order; a mismatch means the caller resolved the wrong table.
func buildDataFile(path string, enc *parquetenc.EncodedFile, spec *catalog.PartitionSpec, values []PartitionValue) (*catalog.DataFile, error) {
	if spec == nil {
		return nil, fmt.Errorf("table has no partition spec")
	}
	if len(values) != len(spec.Fields) {
		return nil, fmt.Errorf("partition values (%d) do not match partition spec fields (%d)",
			len(values), len(spec.Fields))
	}
	partition := make(map[string]string, len(values))
	for i, v := range values {
		if spec.Fields[i].Name != v.Name {
			return nil, fmt.Errorf("partition value %d is %q, spec expects %q",
				i, v.Name, spec.Fields[i].Name)
		}
		partition[v.Name] = v.Value
	}

	return &catalog.DataFile{
		Content:         "data",
		FilePath:        path,
		FileFormat:      "parquet",
		Partition:       partition,
		RecordCount:     enc.RowCount,
		FileSizeInBytes: int64(len(enc.Bytes)),
		NullValueCounts: enc.Stats.NullCounts,
		LowerBounds:     enc.Stats.LowerBounds,
		UpperBounds:     enc.Stats.UpperBounds,
	}, nil
}
