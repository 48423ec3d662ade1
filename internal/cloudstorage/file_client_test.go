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

package cloudstorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileClientPutObject(t *testing.T) {
	base := t.TempDir()
	provider := NewFileClientProvider(base)
	client, err := provider.NewClient(context.Background(), Settings{})
	require.NoError(t, err)

	body := []byte("parquet bytes")
	err = client.PutObject(context.Background(), "telemetry", "otel/logs/service_name=api/year=2026/file.parquet", body)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(base, "telemetry", "otel", "logs", "service_name=api", "year=2026", "file.parquet"))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFileClientPutObjectOverwrites(t *testing.T) {
	base := t.TempDir()
	provider := NewFileClientProvider(base)
	client, err := provider.NewClient(context.Background(), Settings{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.PutObject(ctx, "b", "k", []byte("one")))
	require.NoError(t, client.PutObject(ctx, "b", "k", []byte("two")))

	got, err := os.ReadFile(filepath.Join(base, "b", "k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}
