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
	"fmt"

	"github.com/cardinalhq/lakewriter/internal/awsclient"
)

// Managers holds the shared AWS client manager. One Managers instance is
// created at startup and reused for every storage client.
type Managers struct {
	AWS *awsclient.Manager
}

var _ ClientProvider = (*Managers)(nil)

// NewManagers loads AWS configuration once and returns the shared manager
// set.
func NewManagers(ctx context.Context, opts ...awsclient.ManagerOption) (*Managers, error) {
	awsManager, err := awsclient.NewManager(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create AWS manager: %w", err)
	}
	return &Managers{AWS: awsManager}, nil
}

// NewClient creates a storage client for the given settings.
func (m *Managers) NewClient(ctx context.Context, settings Settings) (Client, error) {
	var opts []awsclient.S3Option
	if settings.Role != "" {
		opts = append(opts, awsclient.WithRole(settings.Role))
	}
	if settings.Region != "" {
		opts = append(opts, awsclient.WithRegion(settings.Region))
	}
	if settings.Endpoint != "" {
		opts = append(opts, awsclient.WithEndpoint(settings.Endpoint))
	}
	if settings.UsePathStyle {
		opts = append(opts, awsclient.WithPathStyle())
	}
	if settings.InsecureTLS {
		opts = append(opts, awsclient.WithInsecureTLS())
	}
	awsS3Client, err := m.AWS.GetS3(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}
	return &s3Client{awsS3Client: awsS3Client}, nil
}
