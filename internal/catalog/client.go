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

// Package catalog talks to an Iceberg-style REST table catalog: loading and
// creating tables, and atomically registering data files against a known
// table snapshot.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/cardinalhq/lakewriter/internal/logctx"
)

const (
	defaultMaxRetries = 3
	defaultRetryBase  = 250 * time.Millisecond
	maxRetryBackoff   = 5 * time.Second
	defaultCacheTTL   = 5 * time.Minute
)

// Client is a REST catalog client scoped to a single namespace. It is safe
// for concurrent use.
type Client struct {
	baseURL    string
	namespace  string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
	cache      *ttlcache.Cache[string, *TableMetadata]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries bounds how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryBase sets the initial backoff between retries.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

// WithCacheTTL sets how long loaded table metadata is reused before the
// catalog is consulted again.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ttlcache.New(
			ttlcache.WithTTL[string, *TableMetadata](ttl),
			ttlcache.WithDisableTouchOnHit[string, *TableMetadata](),
		)
	}
}

// NewClient builds a client for the catalog at baseURL, scoped to namespace.
func NewClient(baseURL, namespace string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		namespace:  namespace,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = ttlcache.New(
			ttlcache.WithTTL[string, *TableMetadata](defaultCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *TableMetadata](),
		)
	}
	go c.cache.Start()
	return c
}

// Close stops the cache janitor.
func (c *Client) Close() {
	c.cache.Stop()
}

// Namespace returns the namespace this client is scoped to.
func (c *Client) Namespace() string { return c.namespace }

func (c *Client) tableURL(name string) string {
	return fmt.Sprintf("%s/v1/namespaces/%s/tables/%s",
		c.baseURL, url.PathEscape(c.namespace), url.PathEscape(name))
}

// LoadTable fetches current metadata for the named table. Returns
// ErrTableNotFound when the table does not exist.
func (c *Client) LoadTable(ctx context.Context, name string) (*LoadTableResponse, error) {
	var resp LoadTableResponse
	err := c.doJSON(ctx, http.MethodGet, c.tableURL(name), nil, &resp, func(status int, body []byte) error {
		if status == http.StatusNotFound {
			return fmt.Errorf("load table %s.%s: %w", c.namespace, name, ErrTableNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.cache.Set(name, &resp.Metadata, ttlcache.DefaultTTL)
	return &resp, nil
}

// CreateTable registers a new table with the given schema and partition
// spec. Returns ErrTableAlreadyExists when another writer won the race.
func (c *Client) CreateTable(ctx context.Context, name string, schema TableSchema, spec PartitionSpec) (*LoadTableResponse, error) {
	reqBody := createTableRequest{
		Name:          name,
		Schema:        schema,
		PartitionSpec: spec,
	}
	u := fmt.Sprintf("%s/v1/namespaces/%s/tables", c.baseURL, url.PathEscape(c.namespace))
	var resp LoadTableResponse
	err := c.doJSON(ctx, http.MethodPost, u, reqBody, &resp, func(status int, body []byte) error {
		if status == http.StatusConflict {
			return fmt.Errorf("create table %s.%s: %w", c.namespace, name, ErrTableAlreadyExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.cache.Set(name, &resp.Metadata, ttlcache.DefaultTTL)
	return &resp, nil
}

// CommitTransaction appends files to the named table, asserting that the
// main branch still points at baseSnapshotID. A nil baseSnapshotID asserts
// the table has no snapshot yet. Returns ErrCommitConflict when the
// assertion fails.
func (c *Client) CommitTransaction(ctx context.Context, name string, baseSnapshotID *int64, files []DataFile) (*TableMetadata, error) {
	reqBody := commitTransactionRequest{
		Requirements: []commitRequirement{{
			Type:       "assert-ref-snapshot-id",
			Ref:        "main",
			SnapshotID: baseSnapshotID,
		}},
		Updates: []commitUpdate{{
			Action:    "append-files",
			DataFiles: files,
		}},
	}
	u := c.tableURL(name) + "/transactions/commit"
	var resp commitTransactionResponse
	err := c.doJSON(ctx, http.MethodPost, u, reqBody, &resp, func(status int, body []byte) error {
		if status == http.StatusConflict {
			return fmt.Errorf("commit to %s.%s: %w", c.namespace, name, ErrCommitConflict)
		}
		return nil
	})
	if err != nil {
		c.cache.Delete(name)
		return nil, err
	}
	c.cache.Set(name, &resp.Metadata, ttlcache.DefaultTTL)
	return &resp.Metadata, nil
}

// EnsureNamespace creates the client's namespace, treating already-exists
// as success.
func (c *Client) EnsureNamespace(ctx context.Context) error {
	reqBody := createNamespaceRequest{Namespace: []string{c.namespace}}
	u := c.baseURL + "/v1/namespaces"
	err := c.doJSON(ctx, http.MethodPost, u, reqBody, nil, func(status int, body []byte) error {
		if status == http.StatusConflict {
			return errAlreadyHandled
		}
		return nil
	})
	if err != nil && err != errAlreadyHandled {
		return err
	}
	return nil
}

// Table returns cached metadata for the named table, loading it from the
// catalog on a miss. Returns ErrTableNotFound when the table does not exist.
func (c *Client) Table(ctx context.Context, name string) (*TableMetadata, error) {
	if item := c.cache.Get(name); item != nil {
		return item.Value(), nil
	}
	resp, err := c.LoadTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return &resp.Metadata, nil
}

// Invalidate drops any cached metadata for the named table.
func (c *Client) Invalidate(name string) {
	c.cache.Delete(name)
}

// errAlreadyHandled marks a status the caller treats as success.
var errAlreadyHandled = fmt.Errorf("already handled")

// doJSON issues one request with bounded retries on transient failures.
// Non-2xx statuses are first offered to classify, which maps protocol
// statuses to typed errors; those are returned without retrying. Remaining
// 5xx and network errors become TransientError and are retried with
// exponential backoff until the retry budget runs out.
func (c *Client) doJSON(ctx context.Context, method, u string, reqBody, respBody any, classify func(status int, body []byte) error) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	ll := logctx.FromContext(ctx)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBase << (attempt - 1)
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
			ll.Debug("retrying catalog request",
				"method", method, "url", u, "attempt", attempt, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.doOnce(ctx, method, u, payload, respBody, classify)
		if err == nil || err == errAlreadyHandled {
			return err
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, u string, payload []byte, respBody any, classify func(status int, body []byte) error) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if respBody != nil && len(data) > 0 {
			if err := json.Unmarshal(data, respBody); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if classify != nil {
		if cerr := classify(resp.StatusCode, data); cerr != nil {
			return cerr
		}
	}

	msg := catalogErrorMessage(data)
	if resp.StatusCode >= 500 {
		return &TransientError{Err: fmt.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, msg)}
	}
	return fmt.Errorf("%s %s: status %d: %s", method, u, resp.StatusCode, msg)
}

func catalogErrorMessage(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "(no body)"
	}
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}
