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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakewriter/internal/writer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, writer.ModeCatalog, cfg.Writer.Mode)
	require.Zero(t, cfg.Writer.ConflictRetries)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LAKEWRITER_WRITER_MODE", "none")
	t.Setenv("LAKEWRITER_WRITER_NAMESPACE", "otel")
	t.Setenv("LAKEWRITER_WRITER_BUCKET", "telemetry")
	t.Setenv("LAKEWRITER_WRITER_REGION", "us-west-2")
	t.Setenv("LAKEWRITER_WRITER_CONFLICT_RETRIES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, writer.ModeNone, cfg.Writer.Mode)
	require.Equal(t, "otel", cfg.Writer.Namespace)
	require.Equal(t, "telemetry", cfg.Writer.Bucket)
	require.Equal(t, "us-west-2", cfg.Writer.Region)
	require.Equal(t, 3, cfg.Writer.ConflictRetries)
	require.NoError(t, cfg.Writer.Validate())
}

func TestLoadCatalogEnvVars(t *testing.T) {
	t.Setenv("LAKEWRITER_WRITER_MODE", "catalog")
	t.Setenv("LAKEWRITER_WRITER_NAMESPACE", "otel")
	t.Setenv("LAKEWRITER_WRITER_TABLE_BUCKET_ARN", "arn:aws:s3tables:us-east-1:123456789012:bucket/telemetry")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "arn:aws:s3tables:us-east-1:123456789012:bucket/telemetry", cfg.Writer.TableBucketARN)
	require.NoError(t, cfg.Writer.Validate())
}
