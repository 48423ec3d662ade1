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
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/lakewriter/internal/awsclient"
)

var (
	uploadCount metric.Int64Counter
	uploadBytes metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/lakewriter/internal/cloudstorage")

	var err error
	uploadCount, err = meter.Int64Counter(
		"lakewriter.s3.upload.count",
		metric.WithDescription("Number of S3 uploads"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.count counter: %w", err))
	}

	uploadBytes, err = meter.Int64Counter(
		"lakewriter.s3.upload.bytes",
		metric.WithDescription("Bytes uploaded to S3"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.bytes counter: %w", err))
	}
}

type s3Client struct {
	awsS3Client *awsclient.S3Client
}

// PutObject uploads body to bucket/key via the SDK's managed uploader.
func (c *s3Client) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	var span trace.Span
	ctx, span = c.awsS3Client.Tracer.Start(ctx, "cloudstorage.PutObject",
		trace.WithAttributes(
			attribute.String("bucket", bucket),
			attribute.String("key", key),
		),
	)
	defer span.End()

	uploader := manager.NewUploader(c.awsS3Client.Client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/vnd.apache.parquet"),
		Metadata: map[string]string{
			"writer": "lakewriter-go",
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}

	uploadCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bucket", bucket),
	))
	uploadBytes.Add(ctx, int64(len(body)), metric.WithAttributes(
		attribute.String("bucket", bucket),
	))

	return nil
}
