// Package connector talks to a query broker over HTTP and exposes the
// results through cursors.
package connector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/logger"
	"github.com/Konsultn-Engineering/pinotconn/query"
	"github.com/Konsultn-Engineering/pinotconn/rows"
)

// Connection is a handle on one broker. It is safe for concurrent use;
// the cursors it creates are not.
type Connection struct {
	cfg          Config
	base         string
	client       *http.Client
	ownsClient   bool
	log          *slog.Logger
	queryOptions query.Options

	mu      sync.Mutex
	cursors map[cursorHandle]struct{}
	closed  bool

	executed atomic.Int64
	failed   atomic.Int64
}

// cursorHandle is what the connection needs to close a cursor it created.
type cursorHandle interface {
	shutdown()
}

type Option func(*Connection)

// WithHTTPClient makes the connection send requests through client
// instead of building its own from Config.Client. The caller keeps
// ownership of client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connection) {
		c.client = client
		c.ownsClient = false
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Connection) { c.log = l }
}

// WithQueryOptions overlays opts on the options from Config.
func WithQueryOptions(opts query.Options) Option {
	return func(c *Connection) { c.queryOptions = query.Merge(c.queryOptions, opts) }
}

// Connect validates cfg and returns a connection. No request is sent.
func Connect(cfg Config, opts ...Option) (*Connection, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, dberr.Wrap(dberr.Interface, err, "invalid connection config")
	}

	c := &Connection{
		cfg:          cfg,
		base:         cfg.urlBuilder().Build(),
		log:          logger.Get(),
		queryOptions: cfg.QueryOptions,
		cursors:      make(map[cursorHandle]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		client, err := newHTTPClient(cfg.Client)
		if err != nil {
			return nil, dberr.Wrap(dberr.Interface, err, "invalid client options")
		}
		c.client = client
		c.ownsClient = true
	}
	if err := c.queryOptions.Validate(); err != nil {
		return nil, dberr.Wrap(dberr.Programming, err, "invalid query options")
	}
	return c, nil
}

// Cursor returns a cursor producing rows.Tuple rows.
func (c *Connection) Cursor(opts ...CursorOption) (*Cursor[rows.Tuple], error) {
	return NewCursor(c, rows.TupleRow, opts...)
}

// Config returns the effective configuration.
func (c *Connection) Config() Config { return c.cfg }

// QueryOptions returns the options every cursor of this connection starts from.
func (c *Connection) QueryOptions() query.Options { return c.queryOptions }

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes every open cursor, then the transport. Calling Close
// again is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	open := make([]cursorHandle, 0, len(c.cursors))
	for h := range c.cursors {
		open = append(open, h)
	}
	c.mu.Unlock()

	for _, h := range open {
		h.shutdown()
	}
	if c.ownsClient {
		c.client.CloseIdleConnections()
	}
	c.log.Debug("connection closed", "base_url", c.base, "cursors_closed", len(open))
	return nil
}

func (c *Connection) Stats() ConnectionStats {
	c.mu.Lock()
	open := len(c.cursors)
	c.mu.Unlock()
	return ConnectionStats{
		OpenCursors:     open,
		QueriesExecuted: c.executed.Load(),
		QueriesFailed:   c.failed.Load(),
	}
}

// Health asks the broker whether it is ready to serve queries.
func (c *Connection) Health(ctx context.Context) error {
	if c.Closed() {
		return dberr.New(dberr.Programming, "cannot check health: the connection is closed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(HealthPath, ""), nil)
	if err != nil {
		return dberr.Wrap(dberr.Interface, err, "failed to build health request")
	}
	c.decorate(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return dberr.Wrap(dberr.Operational, err, "health check failed")
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return dberr.New(dberr.Operational, "health check failed [%d]: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

func (c *Connection) register(h cursorHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return dberr.New(dberr.Programming, "cannot create a cursor: the connection is closed")
	}
	c.cursors[h] = struct{}{}
	return nil
}

func (c *Connection) unregister(h cursorHandle) {
	c.mu.Lock()
	delete(c.cursors, h)
	c.mu.Unlock()
}

func (c *Connection) endpoint(path, encodedOptions string) string {
	return c.cfg.urlBuilder().
		Path(path).
		Param("queryOptions", encodedOptions).
		Build()
}

// decorate sets the headers and credentials every request carries.
func (c *Connection) decorate(req *http.Request) {
	for k, v := range c.cfg.Client.Headers {
		req.Header.Set(k, v)
	}
	if c.cfg.Database != "" {
		req.Header.Set("database", c.cfg.Database)
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

type queryRequest struct {
	SQL string `json:"sql"`
}

// send posts one bound statement and reads the whole reply. The returned
// response carries a re-readable copy of the body. fingerprint identifies
// the unbound statement in logs.
func (c *Connection) send(ctx context.Context, sql, fingerprint string, opts query.Options, ro RequestOptions) (*http.Response, []byte, error) {
	payload, err := json.Marshal(queryRequest{SQL: sql})
	if err != nil {
		return nil, nil, dberr.Wrap(dberr.Interface, err, "failed to encode query")
	}

	if ro.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.Timeout)
		defer cancel()
	}

	id := ulid.Make().String()
	log := logger.WithRequestID(logger.ContextWithRequestID(ctx, id), c.log).With("fingerprint", fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.QueryPath, opts.Encode()), bytes.NewReader(payload))
	if err != nil {
		return nil, nil, dberr.Wrap(dberr.Interface, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)
	for k, v := range ro.Headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range ro.Cookies {
		req.AddCookie(cookie)
	}

	start := time.Now()
	c.executed.Add(1)
	log.Debug("executing query", "url", req.URL.Redacted(), "sql_len", len(sql))

	resp, err := c.client.Do(req)
	if err != nil {
		c.failed.Add(1)
		log.Debug("query transport failed", "error", err, "elapsed", time.Since(start))
		return nil, nil, dberr.Wrap(dberr.Database, err, "failed to execute query")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failed.Add(1)
		log.Debug("reading query response failed", "error", err, "elapsed", time.Since(start))
		return nil, nil, dberr.Wrap(dberr.Database, err, "failed to execute query")
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	log.Debug("query response received",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start))
	return resp, body, nil
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection(%s)", c.base)
}
