package connector

import (
	"context"
	"iter"
	"net/http"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/query"
	"github.com/Konsultn-Engineering/pinotconn/resultset"
	"github.com/Konsultn-Engineering/pinotconn/rows"
	"github.com/Konsultn-Engineering/pinotconn/schema"
	"github.com/Konsultn-Engineering/pinotconn/utils"
)

// Cursor executes queries on a connection and reads their rows. A cursor
// must not be used from two goroutines at once.
type Cursor[T any] struct {
	conn         *Connection
	result       resultset.ResultSet[T]
	queryOptions query.Options
	closed       bool
	lastQuery    *query.Query
	stats        *QueryStatistics

	// handle is what the connection tracks for this cursor.
	handle cursorHandle
}

type cursorConfig struct {
	queryOptions query.Options
	arraySize    int
}

type CursorOption func(*cursorConfig)

// WithCursorQueryOptions overlays opts on the connection's query options
// for every execute of the cursor.
func WithCursorQueryOptions(opts query.Options) CursorOption {
	return func(c *cursorConfig) { c.queryOptions = opts }
}

// WithArraySize sets the initial FetchMany size.
func WithArraySize(n int) CursorOption {
	return func(c *cursorConfig) { c.arraySize = n }
}

// NewCursor creates a cursor whose rows are built by factory.
func NewCursor[T any](conn *Connection, factory rows.RowFactory[T], opts ...CursorOption) (*Cursor[T], error) {
	c, err := newCursor(conn, factory, opts...)
	if err != nil {
		return nil, err
	}
	c.handle = c
	if err := conn.register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func newCursor[T any](conn *Connection, factory rows.RowFactory[T], opts ...CursorOption) (*Cursor[T], error) {
	var cfg cursorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.queryOptions.Validate(); err != nil {
		return nil, dberr.Wrap(dberr.Programming, err, "invalid query options")
	}
	if factory == nil {
		return nil, dberr.New(dberr.Programming, "a row factory is required")
	}

	return &Cursor[T]{
		conn:         conn,
		result:       resultset.NewEmpty(factory, cfg.arraySize),
		queryOptions: query.Merge(conn.queryOptions, cfg.queryOptions),
	}, nil
}

type execConfig struct {
	queryOptions query.Options
	request      RequestOptions
}

type ExecOption func(*execConfig)

// WithExecQueryOptions overlays opts on the cursor's query options for one execute.
func WithExecQueryOptions(opts query.Options) ExecOption {
	return func(c *execConfig) { c.queryOptions = opts }
}

func WithRequestOptions(ro RequestOptions) ExecOption {
	return func(c *execConfig) { c.request = ro }
}

// Execute binds params into operation, sends it to the broker and makes
// the result the cursor's current result set. The returned response has
// a re-readable body and is mostly useful for debugging.
func (c *Cursor[T]) Execute(ctx context.Context, operation string, params any, opts ...ExecOption) (*http.Response, error) {
	if err := c.checkOpen("execute"); err != nil {
		return nil, err
	}

	var cfg execConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	options := query.Merge(c.queryOptions, cfg.queryOptions)
	if err := options.Validate(); err != nil {
		return nil, dberr.Wrap(dberr.Programming, err, "invalid query options")
	}

	q, err := query.New(operation, params)
	if err != nil {
		return nil, err
	}
	c.lastQuery = q
	sql, err := q.OperationWithParams()
	if err != nil {
		return nil, err
	}

	resp, body, err := c.conn.send(ctx, sql, utils.Fingerprint(operation), options, cfg.request)
	if err != nil {
		return nil, err
	}

	br, err := decodeResponse(resp.StatusCode, body)
	if err == nil && !c.conn.cfg.AllowPartialResults {
		err = checkServersResponded(&br.QueryStatistics)
	}
	if err != nil {
		c.conn.failed.Add(1)
		c.conn.log.Debug("query failed", "error", err, "status", resp.StatusCode)
		return nil, err
	}

	table := br.ResultTable
	types := table.DataSchema.ColumnDataTypes
	c.result = resultset.New(
		resultset.NewStream(table.Rows, schema.ForTypes(types)),
		schema.Describe(table.DataSchema.ColumnNames, types),
		len(table.Rows),
		c.result.Factory(),
		c.result.ArraySize(),
	)
	stats := br.QueryStatistics
	c.stats = &stats
	if stats.RequestID != nil {
		c.conn.log.Debug("query succeeded", "rows", len(table.Rows), "broker_request_id", *stats.RequestID)
	}
	return resp, nil
}

// ExecuteMany always fails: the broker is read only.
func (c *Cursor[T]) ExecuteMany(context.Context, string, []any) error {
	return errExecuteMany
}

var errExecuteMany = dberr.New(dberr.NotSupported, "the broker is read only, executemany is not supported")

// FetchOne returns the next row. ok is false once the rows are exhausted.
func (c *Cursor[T]) FetchOne() (row T, ok bool, err error) {
	if err := c.checkOpen("fetchone"); err != nil {
		return row, false, err
	}
	return c.result.FetchOne()
}

func (c *Cursor[T]) FetchMany(size ...int) ([]T, error) {
	if err := c.checkOpen("fetchmany"); err != nil {
		return nil, err
	}
	return c.result.FetchMany(size...)
}

func (c *Cursor[T]) FetchAll() ([]T, error) {
	if err := c.checkOpen("fetchall"); err != nil {
		return nil, err
	}
	return c.result.FetchAll()
}

func (c *Cursor[T]) Scroll(value int, mode resultset.ScrollMode) error {
	if err := c.checkOpen("scroll"); err != nil {
		return err
	}
	return c.result.Scroll(value, mode)
}

// Rows iterates the remaining rows. Iteration stops after the first error.
func (c *Cursor[T]) Rows() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			row, ok, err := c.FetchOne()
			if err != nil {
				yield(row, err)
				return
			}
			if !ok || !yield(row, nil) {
				return
			}
		}
	}
}

// Mogrify returns operation with params bound, as Execute would send it.
func (c *Cursor[T]) Mogrify(operation string, params any) (string, error) {
	q, err := query.New(operation, params)
	if err != nil {
		return "", err
	}
	return q.OperationWithParams()
}

// Description is nil until a query has been executed.
func (c *Cursor[T]) Description() []schema.Column { return c.result.Description() }

func (c *Cursor[T]) RowCount() int { return c.result.RowCount() }

func (c *Cursor[T]) RowNumber() int { return c.result.RowNumber() }

func (c *Cursor[T]) ArraySize() int { return c.result.ArraySize() }

func (c *Cursor[T]) SetArraySize(n int) error { return c.result.SetArraySize(n) }

func (c *Cursor[T]) Closed() bool { return c.closed }

// Query returns the last executed operation, before binding.
func (c *Cursor[T]) Query() (string, bool) {
	if c.lastQuery == nil {
		return "", false
	}
	return c.lastQuery.Operation(), true
}

// QueryStatistics returns the statistics of the last successful execute.
func (c *Cursor[T]) QueryStatistics() *QueryStatistics { return c.stats }

func (c *Cursor[T]) Connection() *Connection { return c.conn }

// Close drops the current result and detaches the cursor from its
// connection. Calling Close again is a no-op.
func (c *Cursor[T]) Close() error {
	if c.closed {
		return nil
	}
	c.shutdown()
	return nil
}

func (c *Cursor[T]) shutdown() {
	c.result = c.result.MakeEmpty()
	c.closed = true
	c.conn.unregister(c.handle)
}

func (c *Cursor[T]) checkOpen(op string) error {
	if c.closed {
		return dberr.New(dberr.Programming, "cannot call %s on closed cursor", op)
	}
	return nil
}
