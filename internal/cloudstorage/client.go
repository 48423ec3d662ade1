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

// Package cloudstorage uploads encoded files to object storage. The write
// path never reads back or deletes what it wrote; a failed commit leaves
// the object in place for later reconciliation.
package cloudstorage

import "context"

// Client uploads objects to a storage backend.
type Client interface {
	// PutObject writes body to bucket/key, overwriting any existing object.
	PutObject(ctx context.Context, bucket, key string, body []byte) error
}

// Settings selects and configures the storage backend for one client.
type Settings struct {
	Region       string
	Endpoint     string
	Role         string
	UsePathStyle bool
	InsecureTLS  bool
}

// ClientProvider creates storage clients. Implemented by Managers for real
// backends and by FileClientProvider for tests.
type ClientProvider interface {
	NewClient(ctx context.Context, settings Settings) (Client, error)
}
