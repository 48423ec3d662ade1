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

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in      string
		want    SignalKind
		wantErr bool
	}{
		{"logs", SignalLogs, false},
		{"LOGS", SignalLogs, false},
		{"metrics", SignalMetrics, false},
		{"traces", SignalTraces, false},
		{"spans", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	cases := []struct {
		signal  SignalKind
		subKind string
	}{
		{SignalLogs, ""},
		{SignalTraces, ""},
		{SignalMetrics, MetricGauge},
		{SignalMetrics, MetricSum},
		{SignalMetrics, MetricHistogram},
		{SignalMetrics, MetricExponentialHistogram},
		{SignalMetrics, MetricSummary},
	}
	for _, c := range cases {
		t.Run(SchemaTag(c.signal, c.subKind), func(t *testing.T) {
			a, err := Resolve(c.signal, c.subKind)
			require.NoError(t, err)
			b, err := Resolve(c.signal, c.subKind)
			require.NoError(t, err)

			// Byte-identical result including field ID assignment, but
			// freshly allocated each call.
			assert.Equal(t, a, b)
			assert.NotSame(t, a, b)
		})
	}
}

func TestResolveRejectsBadInputs(t *testing.T) {
	_, err := Resolve(SignalLogs, "gauge")
	assert.Error(t, err)

	_, err = Resolve(SignalTraces, "gauge")
	assert.Error(t, err)

	_, err = Resolve(SignalMetrics, "")
	assert.Error(t, err)

	_, err = Resolve(SignalMetrics, "percentile")
	assert.Error(t, err)

	_, err = Resolve(SignalKind("events"), "")
	assert.Error(t, err)
}

func TestFieldIDStability(t *testing.T) {
	logs, err := Resolve(SignalLogs, "")
	require.NoError(t, err)

	ts := logs.FieldByName("timestamp")
	require.NotNil(t, ts)
	assert.Equal(t, 1, ts.ID)
	assert.Equal(t, TypeTimestampNs, ts.Type)
	assert.True(t, ts.Required)

	svc := logs.FieldByName("service_name")
	require.NotNil(t, svc)
	assert.Equal(t, 2, svc.ID)

	body := logs.FieldByName("body")
	require.NotNil(t, body)
	assert.Equal(t, 24, body.ID)

	// Common fields carry the same IDs across signals.
	gauge, err := Resolve(SignalMetrics, MetricGauge)
	require.NoError(t, err)
	assert.Equal(t, 1, gauge.FieldByName("timestamp").ID)
	assert.Equal(t, 2, gauge.FieldByName("service_name").ID)
	assert.Equal(t, 111, gauge.FieldByName("value").ID)
}

func TestFieldIDsUnique(t *testing.T) {
	cases := []struct {
		signal  SignalKind
		subKind string
	}{
		{SignalLogs, ""},
		{SignalTraces, ""},
		{SignalMetrics, MetricGauge},
		{SignalMetrics, MetricSum},
		{SignalMetrics, MetricHistogram},
		{SignalMetrics, MetricExponentialHistogram},
		{SignalMetrics, MetricSummary},
	}
	for _, c := range cases {
		t.Run(SchemaTag(c.signal, c.subKind), func(t *testing.T) {
			s, err := Resolve(c.signal, c.subKind)
			require.NoError(t, err)
			seen := make(map[int]string)
			for _, f := range s.Fields {
				prev, dup := seen[f.ID]
				assert.False(t, dup, "field ID %d reused by %q and %q", f.ID, prev, f.Name)
				seen[f.ID] = f.Name
			}
		})
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		signal  SignalKind
		subKind string
		want    string
		wantErr bool
	}{
		{SignalLogs, "", "logs", false},
		{SignalTraces, "", "traces", false},
		{SignalMetrics, MetricGauge, "metrics_gauge", false},
		{SignalMetrics, MetricSum, "metrics_sum", false},
		{SignalMetrics, MetricHistogram, "metrics_histogram", false},
		{SignalMetrics, MetricExponentialHistogram, "metrics_exponential_histogram", false},
		{SignalMetrics, MetricSummary, "metrics_summary", false},
		{SignalMetrics, "", "", true},
		{SignalMetrics, "wat", "", true},
		{SignalKind("events"), "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.want+tt.subKind, func(t *testing.T) {
			got, err := TableName(tt.signal, tt.subKind)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartitionSpec(t *testing.T) {
	spec := PartitionSpecFor(SignalLogs, "")
	require.Len(t, spec.Fields, 1)
	assert.Equal(t, "timestamp_day", spec.Fields[0].Name)
	assert.Equal(t, "day", spec.Fields[0].Transform)
	assert.Equal(t, 1, spec.Fields[0].SourceID)
	assert.Equal(t, 1000, spec.Fields[0].FieldID)

	// Same spec for every signal.
	assert.Equal(t, spec, PartitionSpecFor(SignalMetrics, MetricSum))
}

func TestSchemaTag(t *testing.T) {
	assert.Equal(t, "logs", SchemaTag(SignalLogs, ""))
	assert.Equal(t, "metrics:gauge", SchemaTag(SignalMetrics, MetricGauge))
}
