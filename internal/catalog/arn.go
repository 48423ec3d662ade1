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
	"fmt"
	"strings"
)

// TableBucket is a parsed S3 Tables bucket ARN.
type TableBucket struct {
	ARN       string
	Region    string
	AccountID string
	Name      string
}

// ParseTableBucketARN parses an ARN of the form
// arn:aws:s3tables:{region}:{account}:bucket/{name}.
func ParseTableBucketARN(arn string) (*TableBucket, error) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[0] != "arn" || parts[2] != "s3tables" {
		return nil, fmt.Errorf("not an s3tables bucket ARN: %q", arn)
	}
	region, account, resource := parts[3], parts[4], parts[5]
	name, ok := strings.CutPrefix(resource, "bucket/")
	if !ok || name == "" || region == "" {
		return nil, fmt.Errorf("not an s3tables bucket ARN: %q", arn)
	}
	return &TableBucket{
		ARN:       arn,
		Region:    region,
		AccountID: account,
		Name:      name,
	}, nil
}

// Endpoint returns the regional REST catalog endpoint for this bucket.
func (b *TableBucket) Endpoint() string {
	return fmt.Sprintf("https://s3tables.%s.amazonaws.com/iceberg", b.Region)
}

// Warehouse returns the warehouse identifier sent to the catalog, which for
// S3 Tables is the full bucket ARN.
func (b *TableBucket) Warehouse() string {
	return b.ARN
}
