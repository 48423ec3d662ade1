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
)

// FileClientProvider creates clients that write to the local filesystem.
// It is intended for tests that want to bypass real cloud providers.
type FileClientProvider struct {
	base string
}

// NewFileClientProvider returns a new provider rooted at base.
func NewFileClientProvider(base string) ClientProvider {
	return &FileClientProvider{base: base}
}

// NewClient returns a client that writes files under the base path.
// Bucket names become subdirectories under the base path.
func (p *FileClientProvider) NewClient(ctx context.Context, settings Settings) (Client, error) {
	return &fileClient{base: p.base}, nil
}

type fileClient struct {
	base string
}

func (c *fileClient) path(bucket, key string) string {
	return filepath.Join(c.base, bucket, filepath.FromSlash(key))
}

// PutObject writes body to the bucket/key location, creating directories as
// needed.
func (c *fileClient) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	dst := c.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, body, 0o644)
}
