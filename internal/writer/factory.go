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

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/lakewriter/internal/catalog"
	"github.com/cardinalhq/lakewriter/internal/cloudstorage"
)

// Writer modes. ModeNone writes straight to a bucket; ModeCatalog commits
// every file to a table catalog.
const (
	ModeCatalog = "catalog"
	ModeNone    = "none"
)

// Config gates writer construction. The mode choice is made exactly once;
// writes never branch on configuration.
type Config struct {
	// Mode selects the writer variant: "catalog" or "none".
	Mode string `mapstructure:"mode"`

	// Namespace is the logical table grouping; in direct mode it prefixes
	// every object key. Always required.
	Namespace string `mapstructure:"namespace"`

	// TableBucketARN is an S3 Tables bucket ARN; its region implies the
	// catalog endpoint. Mutually exclusive with CatalogEndpoint.
	TableBucketARN string `mapstructure:"table_bucket_arn"`

	// CatalogEndpoint is an explicit REST catalog base URI. Mutually
	// exclusive with TableBucketARN, and requires Bucket and Region.
	CatalogEndpoint string `mapstructure:"catalog_endpoint"`

	// Bucket and Region target file writes in direct mode, and in catalog
	// mode when an explicit CatalogEndpoint is used.
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint (MinIO, Ceph).
	Endpoint string `mapstructure:"endpoint"`
	// Role is an optional IAM role to assume for storage access.
	Role string `mapstructure:"role"`

	UsePathStyle bool `mapstructure:"use_path_style"`
	InsecureTLS  bool `mapstructure:"insecure_tls"`

	// ConflictRetries bounds reload-and-recommit attempts after a commit
	// conflict. Zero surfaces the first conflict as a partial write.
	ConflictRetries int `mapstructure:"conflict_retries"`
}

// ConfigError reports invalid configuration at construction. It is fatal;
// no writer is produced.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid writer configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks the mode-specific requirements and collects every
// violation rather than stopping at the first.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Namespace == "" {
		errs = multierror.Append(errs, fmt.Errorf("namespace is required"))
	}

	switch c.Mode {
	case ModeCatalog:
		hasARN := c.TableBucketARN != ""
		hasEndpoint := c.CatalogEndpoint != ""
		switch {
		case !hasARN && !hasEndpoint:
			errs = multierror.Append(errs, fmt.Errorf("catalog mode requires a table bucket ARN or a catalog endpoint"))
		case hasARN && hasEndpoint:
			errs = multierror.Append(errs, fmt.Errorf("table bucket ARN and catalog endpoint are mutually exclusive"))
		case hasARN:
			if _, err := catalog.ParseTableBucketARN(c.TableBucketARN); err != nil {
				errs = multierror.Append(errs, err)
			}
		case hasEndpoint:
			if c.Bucket == "" {
				errs = multierror.Append(errs, fmt.Errorf("catalog mode with an explicit endpoint requires a bucket"))
			}
			if c.Region == "" {
				errs = multierror.Append(errs, fmt.Errorf("catalog mode with an explicit endpoint requires a region"))
			}
		}
	case ModeNone:
		if c.Bucket == "" {
			errs = multierror.Append(errs, fmt.Errorf("direct mode requires a bucket"))
		}
		if c.Region == "" {
			errs = multierror.Append(errs, fmt.Errorf("direct mode requires a region"))
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, ModeCatalog, ModeNone))
	}

	if c.ConflictRetries < 0 {
		errs = multierror.Append(errs, fmt.Errorf("conflict_retries must not be negative"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

// NewWriter validates cfg and constructs the one writer variant the process
// will use. In catalog mode the namespace is created if missing, so first
// writes on a fresh deployment do not fail on table creation.
func NewWriter(ctx context.Context, cfg Config, provider cloudstorage.ClientProvider, catalogOpts ...catalog.Option) (Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	settings := cloudstorage.Settings{
		Region:       cfg.Region,
		Endpoint:     cfg.Endpoint,
		Role:         cfg.Role,
		UsePathStyle: cfg.UsePathStyle,
		InsecureTLS:  cfg.InsecureTLS,
	}

	if cfg.Mode == ModeNone {
		store, err := provider.NewClient(ctx, settings)
		if err != nil {
			return nil, err
		}
		return NewDirectWriter(store, cfg.Bucket, cfg.Namespace), nil
	}

	endpoint := cfg.CatalogEndpoint
	if cfg.TableBucketARN != "" {
		bucket, err := catalog.ParseTableBucketARN(cfg.TableBucketARN)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		endpoint = bucket.Endpoint()
		if settings.Region == "" {
			settings.Region = bucket.Region
		}
	}

	cat := catalog.NewClient(endpoint, cfg.Namespace, catalogOpts...)
	if err := cat.EnsureNamespace(ctx); err != nil {
		cat.Close()
		return nil, fmt.Errorf("ensure namespace %s: %w", cfg.Namespace, err)
	}

	store, err := provider.NewClient(ctx, settings)
	if err != nil {
		cat.Close()
		return nil, err
	}
	return NewCatalogBackedWriter(cat, store, cfg.ConflictRetries), nil
}
