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
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakewriter/internal/batch"
	"github.com/cardinalhq/lakewriter/internal/schema"
)

func TestDirectWriteNeverCommits(t *testing.T) {
	store := newFakeStore()
	w := NewDirectWriter(store, "telemetry", "otel")

	res, err := w.Write(context.Background(), schema.SignalLogs, "", batch.New("logs", tenLogRows()))
	require.NoError(t, err)

	assert.False(t, res.Committed, "direct mode has no catalog to commit to")
	assert.Equal(t, StateWritten, res.State)
	assert.Empty(t, res.Table)
	assert.Equal(t, int64(10), res.RowCount)

	_, ok := store.object(res.Path)
	assert.True(t, ok)
}

func TestDirectWritePathLayout(t *testing.T) {
	store := newFakeStore()
	w := NewDirectWriter(store, "telemetry", "otel")

	rows := []batch.Row{{
		// 2023-11-14T22:13:20Z
		"timestamp":    int64(1_700_000_000_000_000_000),
		"service_name": "my service/v2",
		"body":         "x",
	}}
	res, err := w.Write(context.Background(), schema.SignalLogs, "", batch.New("logs", rows))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Path,
		"s3://telemetry/otel/logs/service_name=my_service_v2/year=2023/month=11/day=14/hour=22/"),
		"path was %s", res.Path)
	assert.True(t, strings.HasSuffix(res.Path, ".parquet"))
}

func TestDirectWriteUnknownServiceName(t *testing.T) {
	store := newFakeStore()
	w := NewDirectWriter(store, "telemetry", "otel")
	fixed := time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	res, err := w.Write(context.Background(), schema.SignalLogs, "", batch.New("logs", nil))
	require.NoError(t, err)
	assert.Contains(t, res.Path, "service_name=unknown/")
	assert.Contains(t, res.Path, "year=2026/month=08/day=26/hour=09/")
}

func TestDirectWriteStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failPut = fmt.Errorf("denied")
	w := NewDirectWriter(store, "telemetry", "otel")

	_, err := w.Write(context.Background(), schema.SignalLogs, "", batch.New("logs", tenLogRows()))
	require.Error(t, err)
}
