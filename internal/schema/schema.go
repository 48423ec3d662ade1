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

// Package schema defines the canonical columnar schemas for each telemetry
// signal kind and their mapping to catalog table names and partition specs.
//
// Resolution is pure and deterministic: identical inputs always yield a
// byte-identical schema, including field ID assignment. Two writers racing
// to create the same table must arrive at the same schema without
// coordination, so nothing here may depend on process state.
package schema

import (
	"fmt"
	"strings"
)

// SignalKind identifies the telemetry signal a batch carries.
type SignalKind string

const (
	SignalLogs    SignalKind = "logs"
	SignalMetrics SignalKind = "metrics"
	SignalTraces  SignalKind = "traces"
)

// Metric sub-kinds. Each gets its own table and schema.
const (
	MetricGauge                = "gauge"
	MetricSum                  = "sum"
	MetricHistogram            = "histogram"
	MetricExponentialHistogram = "exponential_histogram"
	MetricSummary              = "summary"
)

// ParseSignal converts a string into a SignalKind.
func ParseSignal(s string) (SignalKind, error) {
	switch SignalKind(strings.ToLower(s)) {
	case SignalLogs:
		return SignalLogs, nil
	case SignalMetrics:
		return SignalMetrics, nil
	case SignalTraces:
		return SignalTraces, nil
	default:
		return "", fmt.Errorf("unknown signal kind %q", s)
	}
}

// FieldType is the logical column type, shared between the Parquet encoder
// and the catalog schema representation.
type FieldType string

const (
	TypeString      FieldType = "string"
	TypeLong        FieldType = "long"
	TypeDouble      FieldType = "double"
	TypeBoolean     FieldType = "boolean"
	TypeTimestampNs FieldType = "timestamp_ns"
)

// Field is one column with a stable identifier. Field IDs never change for
// a given (signal, sub-kind) pair; they are what lets the catalog track
// columns across files.
type Field struct {
	ID       int
	Name     string
	Type     FieldType
	Required bool
}

// Schema is the canonical columnar schema for one table.
type Schema struct {
	SchemaID int
	Fields   []Field
}

// FieldByName returns the field with the given name, or nil.
func (s *Schema) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// PartitionField maps a source column through a transform to one partition
// path segment.
type PartitionField struct {
	SourceID  int
	FieldID   int
	Name      string
	Transform string
}

// PartitionSpec is the ordered rule set mapping row values to path segments.
type PartitionSpec struct {
	SpecID int
	Fields []PartitionField
}

// Field ID layout. Common fields share IDs 1-20 across every signal;
// signal-specific fields start at 21 (logs), 51 (traces), and 101 (metrics).
// Partition fields live at 1000+. These values are part of the on-catalog
// contract and must never be reassigned.
const (
	fieldIDTimestamp          = 1
	fieldIDServiceName        = 2
	fieldIDResourceAttributes = 3
	fieldIDScopeName          = 4
	fieldIDScopeVersion       = 5
	fieldIDScopeAttributes    = 6
	fieldIDTraceID            = 7
	fieldIDSpanID             = 8

	partitionFieldIDDay = 1000
)

func commonFields() []Field {
	return []Field{
		{ID: fieldIDTimestamp, Name: "timestamp", Type: TypeTimestampNs, Required: true},
		{ID: fieldIDServiceName, Name: "service_name", Type: TypeString, Required: true},
		{ID: fieldIDResourceAttributes, Name: "resource_attributes", Type: TypeString},
		{ID: fieldIDScopeName, Name: "scope_name", Type: TypeString},
		{ID: fieldIDScopeVersion, Name: "scope_version", Type: TypeString},
		{ID: fieldIDScopeAttributes, Name: "scope_attributes", Type: TypeString},
		{ID: fieldIDTraceID, Name: "trace_id", Type: TypeString},
		{ID: fieldIDSpanID, Name: "span_id", Type: TypeString},
	}
}

func logsSchema() *Schema {
	fields := commonFields()
	fields = append(fields,
		Field{ID: 21, Name: "observed_timestamp", Type: TypeTimestampNs},
		Field{ID: 22, Name: "severity_number", Type: TypeLong},
		Field{ID: 23, Name: "severity_text", Type: TypeString},
		Field{ID: 24, Name: "body", Type: TypeString},
		Field{ID: 25, Name: "log_attributes", Type: TypeString},
		Field{ID: 26, Name: "flags", Type: TypeLong},
	)
	return &Schema{SchemaID: 0, Fields: fields}
}

func tracesSchema() *Schema {
	fields := commonFields()
	fields = append(fields,
		Field{ID: 51, Name: "parent_span_id", Type: TypeString},
		Field{ID: 52, Name: "name", Type: TypeString, Required: true},
		Field{ID: 53, Name: "kind", Type: TypeString, Required: true},
		Field{ID: 54, Name: "end_timestamp", Type: TypeTimestampNs, Required: true},
		Field{ID: 55, Name: "duration_ns", Type: TypeLong, Required: true},
		Field{ID: 56, Name: "status_code", Type: TypeString},
		Field{ID: 57, Name: "status_message", Type: TypeString},
		Field{ID: 58, Name: "span_attributes", Type: TypeString},
		Field{ID: 59, Name: "events", Type: TypeString},
		Field{ID: 60, Name: "links", Type: TypeString},
	)
	return &Schema{SchemaID: 0, Fields: fields}
}

func metricsCommonFields() []Field {
	fields := commonFields()
	return append(fields,
		Field{ID: 101, Name: "metric_name", Type: TypeString, Required: true},
		Field{ID: 102, Name: "metric_description", Type: TypeString},
		Field{ID: 103, Name: "metric_unit", Type: TypeString},
		Field{ID: 104, Name: "attributes", Type: TypeString},
	)
}

func metricsSchema(subKind string) (*Schema, error) {
	fields := metricsCommonFields()
	switch subKind {
	case MetricGauge:
		fields = append(fields,
			Field{ID: 111, Name: "value", Type: TypeDouble, Required: true},
		)
	case MetricSum:
		fields = append(fields,
			Field{ID: 111, Name: "value", Type: TypeDouble, Required: true},
			Field{ID: 112, Name: "is_monotonic", Type: TypeBoolean},
			Field{ID: 113, Name: "aggregation_temporality", Type: TypeString},
		)
	case MetricHistogram:
		fields = append(fields,
			Field{ID: 121, Name: "count", Type: TypeLong, Required: true},
			Field{ID: 122, Name: "sum", Type: TypeDouble},
			Field{ID: 123, Name: "bucket_counts", Type: TypeString},
			Field{ID: 124, Name: "explicit_bounds", Type: TypeString},
			Field{ID: 125, Name: "min", Type: TypeDouble},
			Field{ID: 126, Name: "max", Type: TypeDouble},
		)
	case MetricExponentialHistogram:
		fields = append(fields,
			Field{ID: 131, Name: "count", Type: TypeLong, Required: true},
			Field{ID: 132, Name: "sum", Type: TypeDouble},
			Field{ID: 133, Name: "scale", Type: TypeLong},
			Field{ID: 134, Name: "zero_count", Type: TypeLong},
			Field{ID: 135, Name: "positive_buckets", Type: TypeString},
			Field{ID: 136, Name: "negative_buckets", Type: TypeString},
		)
	case MetricSummary:
		fields = append(fields,
			Field{ID: 141, Name: "count", Type: TypeLong, Required: true},
			Field{ID: 142, Name: "sum", Type: TypeDouble},
			Field{ID: 143, Name: "quantile_values", Type: TypeString},
		)
	default:
		return nil, fmt.Errorf("unknown metric type %q", subKind)
	}
	return &Schema{SchemaID: 0, Fields: fields}, nil
}

// Resolve returns the canonical schema for a signal kind and optional
// sub-kind (metric type). The sub-kind is required for metrics and must be
// empty for logs and traces. The returned schema is freshly allocated on
// every call; callers may not rely on pointer identity.
func Resolve(signal SignalKind, subKind string) (*Schema, error) {
	switch signal {
	case SignalLogs:
		if subKind != "" {
			return nil, fmt.Errorf("sub-kind %q not valid for logs", subKind)
		}
		return logsSchema(), nil
	case SignalTraces:
		if subKind != "" {
			return nil, fmt.Errorf("sub-kind %q not valid for traces", subKind)
		}
		return tracesSchema(), nil
	case SignalMetrics:
		if subKind == "" {
			return nil, fmt.Errorf("metric type required for metrics")
		}
		return metricsSchema(subKind)
	default:
		return nil, fmt.Errorf("unknown signal kind %q", signal)
	}
}

// PartitionSpecFor returns the partition specification for a signal's table.
// Every signal partitions by the day of the record timestamp.
func PartitionSpecFor(signal SignalKind, subKind string) PartitionSpec {
	_ = signal
	_ = subKind
	return PartitionSpec{
		SpecID: 0,
		Fields: []PartitionField{
			{SourceID: fieldIDTimestamp, FieldID: partitionFieldIDDay, Name: "timestamp_day", Transform: "day"},
		},
	}
}

// TableName derives the catalog table name for a signal kind and optional
// sub-kind. Stable for the lifetime of a deployment.
func TableName(signal SignalKind, subKind string) (string, error) {
	switch signal {
	case SignalLogs:
		return "logs", nil
	case SignalTraces:
		return "traces", nil
	case SignalMetrics:
		switch subKind {
		case MetricGauge, MetricSum, MetricHistogram, MetricExponentialHistogram, MetricSummary:
			return "metrics_" + subKind, nil
		default:
			return "", fmt.Errorf("unknown or missing metric type %q", subKind)
		}
	default:
		return "", fmt.Errorf("unknown signal kind %q", signal)
	}
}

// SchemaTag is the identity string batches carry, e.g. "logs" or
// "metrics:gauge".
func SchemaTag(signal SignalKind, subKind string) string {
	if subKind == "" {
		return string(signal)
	}
	return string(signal) + ":" + subKind
}
