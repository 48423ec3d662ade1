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

package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesRows(t *testing.T) {
	src := []Row{
		{"service_name": "api", "timestamp": int64(100)},
	}
	b := New("logs", src)

	// Mutating the caller's row must not affect the batch.
	src[0]["service_name"] = "mutated"

	got := b.Get(0)
	require.NotNil(t, got)
	assert.Equal(t, "api", got.GetString("service_name"))
	assert.Equal(t, "logs", b.SchemaTag())
}

func TestEmptyBatch(t *testing.T) {
	b := New("traces", nil)
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Get(0))
	assert.Nil(t, b.Get(-1))
}

func TestRowAccessors(t *testing.T) {
	row := Row{
		"name":   "cpu.usage",
		"value":  3.5,
		"count":  int64(42),
		"whole":  7,
		"bucket": "not-a-number",
	}

	assert.Equal(t, "cpu.usage", row.GetString("name"))
	assert.Equal(t, "", row.GetString("missing"))
	assert.Equal(t, "", row.GetString("count"))

	v, ok := row.GetInt64("count")
	require.True(t, ok)
	assert.Equal(t, int64(42), v)

	v, ok = row.GetInt64("whole")
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = row.GetInt64("bucket")
	assert.False(t, ok)

	f, ok := row.GetFloat64("value")
	require.True(t, ok)
	assert.InDelta(t, 3.5, f, 0.0001)

	f, ok = row.GetFloat64("count")
	require.True(t, ok)
	assert.InDelta(t, 42.0, f, 0.0001)
}

func TestCopyRow(t *testing.T) {
	orig := Row{"a": int64(1), "b": "x"}
	cp := CopyRow(orig)
	cp["a"] = int64(2)
	v, _ := orig.GetInt64("a")
	assert.Equal(t, int64(1), v)
}
