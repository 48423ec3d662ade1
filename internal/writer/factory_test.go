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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/lakewriter/internal/cloudstorage"
)

func TestConfigValidate(t *testing.T) {
	arn := "arn:aws:s3tables:us-east-1:123456789012:bucket/telemetry"

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "catalog with ARN",
			cfg:  Config{Mode: ModeCatalog, Namespace: "otel", TableBucketARN: arn},
		},
		{
			name: "catalog with endpoint",
			cfg: Config{Mode: ModeCatalog, Namespace: "otel",
				CatalogEndpoint: "http://catalog:8181", Bucket: "b", Region: "us-east-1"},
		},
		{
			name: "direct",
			cfg:  Config{Mode: ModeNone, Namespace: "otel", Bucket: "b", Region: "us-east-1"},
		},
		{
			name:    "catalog with neither backend",
			cfg:     Config{Mode: ModeCatalog, Namespace: "otel"},
			wantErr: "table bucket ARN or a catalog endpoint",
		},
		{
			name: "catalog with both backends",
			cfg: Config{Mode: ModeCatalog, Namespace: "otel",
				TableBucketARN: arn, CatalogEndpoint: "http://catalog:8181"},
			wantErr: "mutually exclusive",
		},
		{
			name: "catalog endpoint without bucket",
			cfg: Config{Mode: ModeCatalog, Namespace: "otel",
				CatalogEndpoint: "http://catalog:8181", Region: "us-east-1"},
			wantErr: "requires a bucket",
		},
		{
			name: "catalog endpoint without region",
			cfg: Config{Mode: ModeCatalog, Namespace: "otel",
				CatalogEndpoint: "http://catalog:8181", Bucket: "b"},
			wantErr: "requires a region",
		},
		{
			name: "catalog with malformed ARN",
			cfg: Config{Mode: ModeCatalog, Namespace: "otel",
				TableBucketARN: "arn:aws:s3:::plain"},
			wantErr: "not an s3tables bucket ARN",
		},
		{
			name:    "direct without bucket",
			cfg:     Config{Mode: ModeNone, Namespace: "otel", Region: "us-east-1"},
			wantErr: "requires a bucket",
		},
		{
			name:    "direct without region",
			cfg:     Config{Mode: ModeNone, Namespace: "otel", Bucket: "b"},
			wantErr: "requires a region",
		},
		{
			name:    "missing namespace",
			cfg:     Config{Mode: ModeNone, Bucket: "b", Region: "us-east-1"},
			wantErr: "namespace is required",
		},
		{
			name:    "unknown mode",
			cfg:     Config{Mode: "hybrid", Namespace: "otel"},
			wantErr: "unknown mode",
		},
		{
			name: "negative conflict retries",
			cfg: Config{Mode: ModeNone, Namespace: "otel", Bucket: "b",
				Region: "us-east-1", ConflictRetries: -1},
			wantErr: "conflict_retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidateCollectsAllViolations(t *testing.T) {
	err := (&Config{Mode: ModeNone}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace is required")
	assert.Contains(t, err.Error(), "requires a bucket")
	assert.Contains(t, err.Error(), "requires a region")
}

func TestNewWriterDirect(t *testing.T) {
	provider := cloudstorage.NewFileClientProvider(t.TempDir())
	cfg := Config{Mode: ModeNone, Namespace: "otel", Bucket: "b", Region: "us-east-1"}

	w, err := NewWriter(context.Background(), cfg, provider)
	require.NoError(t, err)
	_, ok := w.(*DirectWriter)
	assert.True(t, ok)
}

func TestNewWriterCatalogEnsuresNamespace(t *testing.T) {
	var nsCreated bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/namespaces" && r.Method == http.MethodPost {
			nsCreated = true
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	provider := cloudstorage.NewFileClientProvider(t.TempDir())
	cfg := Config{Mode: ModeCatalog, Namespace: "otel",
		CatalogEndpoint: srv.URL, Bucket: "b", Region: "us-east-1"}

	w, err := NewWriter(context.Background(), cfg, provider)
	require.NoError(t, err)
	_, ok := w.(*CatalogBackedWriter)
	assert.True(t, ok)
	assert.True(t, nsCreated)
}

func TestNewWriterRejectsInvalidConfig(t *testing.T) {
	provider := cloudstorage.NewFileClientProvider(t.TempDir())
	_, err := NewWriter(context.Background(), Config{Mode: "bogus"}, provider)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}
