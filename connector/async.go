package connector

import (
	"context"
	"database/sql"
	"iter"
	"net/http"
	"runtime"
	"sync"

	"github.com/Konsultn-Engineering/pinotconn/resultset"
	"github.com/Konsultn-Engineering/pinotconn/rows"
	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// Future is the pending result of an operation running on its own goroutine.
type Future[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// goAfter runs fn once prev is closed. A nil prev runs fn right away.
func goAfter[V any](prev <-chan struct{}, fn func() (V, error)) *Future[V] {
	f := &Future[V]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		if prev != nil {
			<-prev
		}
		f.val, f.err = fn()
	}()
	return f
}

// Await blocks until the operation finishes or ctx is done. Giving up on
// ctx does not stop the operation.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Done is closed once the operation has finished.
func (f *Future[V]) Done() <-chan struct{} { return f.done }

// AsyncConnection is a Connection whose blocking calls return futures.
type AsyncConnection struct {
	conn *Connection
}

// ConnectAsync builds the connection on a separate goroutine.
func ConnectAsync(cfg Config, opts ...Option) *Future[*AsyncConnection] {
	return goAfter(nil, func() (*AsyncConnection, error) {
		c, err := Connect(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return &AsyncConnection{conn: c}, nil
	})
}

// Cursor returns an async cursor producing rows.Tuple rows.
func (a *AsyncConnection) Cursor(opts ...CursorOption) (*AsyncCursor[rows.Tuple], error) {
	return NewAsyncCursor(a, rows.TupleRow, opts...)
}

// Conn returns the underlying connection.
func (a *AsyncConnection) Conn() *Connection { return a.conn }

func (a *AsyncConnection) Closed() bool { return a.conn.Closed() }

func (a *AsyncConnection) Stats() ConnectionStats { return a.conn.Stats() }

func (a *AsyncConnection) Health(ctx context.Context) *Future[struct{}] {
	return goAfter(nil, func() (struct{}, error) {
		return struct{}{}, a.conn.Health(ctx)
	})
}

// Close waits for each open cursor's queued operations, closes the
// cursors and then the transport.
func (a *AsyncConnection) Close() *Future[struct{}] {
	return goAfter(nil, func() (struct{}, error) {
		return struct{}{}, a.conn.Close()
	})
}

// AsyncCursor runs cursor operations on background goroutines. Operations
// run one at a time, in the order they were called.
type AsyncCursor[T any] struct {
	cur *Cursor[T]

	mu   sync.Mutex
	tail <-chan struct{}
}

// NewAsyncCursor creates an async cursor whose rows are built by factory.
func NewAsyncCursor[T any](a *AsyncConnection, factory rows.RowFactory[T], opts ...CursorOption) (*AsyncCursor[T], error) {
	c, err := newCursor(a.conn, factory, opts...)
	if err != nil {
		return nil, err
	}
	ac := &AsyncCursor[T]{cur: c}
	c.handle = ac
	if err := a.conn.register(ac); err != nil {
		return nil, err
	}
	return ac, nil
}

func submit[T, V any](a *AsyncCursor[T], fn func() (V, error)) *Future[V] {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := goAfter(a.tail, fn)
	a.tail = f.done
	return f
}

func (a *AsyncCursor[T]) Execute(ctx context.Context, operation string, params any, opts ...ExecOption) *Future[*http.Response] {
	return submit(a, func() (*http.Response, error) {
		return a.cur.Execute(ctx, operation, params, opts...)
	})
}

func (a *AsyncCursor[T]) ExecuteMany(ctx context.Context, operation string, seq []any) *Future[struct{}] {
	return submit(a, func() (struct{}, error) {
		return struct{}{}, a.cur.ExecuteMany(ctx, operation, seq)
	})
}

// FetchOne resolves to an invalid sql.Null once the rows are exhausted.
func (a *AsyncCursor[T]) FetchOne() *Future[sql.Null[T]] {
	return submit(a, func() (sql.Null[T], error) {
		row, ok, err := a.cur.FetchOne()
		return sql.Null[T]{V: row, Valid: ok}, err
	})
}

func (a *AsyncCursor[T]) FetchMany(size ...int) *Future[[]T] {
	return submit(a, func() ([]T, error) {
		return a.cur.FetchMany(size...)
	})
}

func (a *AsyncCursor[T]) FetchAll() *Future[[]T] {
	return submit(a, a.cur.FetchAll)
}

func (a *AsyncCursor[T]) Scroll(value int, mode resultset.ScrollMode) *Future[struct{}] {
	return submit(a, func() (struct{}, error) {
		return struct{}{}, a.cur.Scroll(value, mode)
	})
}

func (a *AsyncCursor[T]) Close() *Future[struct{}] {
	return submit(a, func() (struct{}, error) {
		return struct{}{}, a.cur.Close()
	})
}

// Rows iterates the remaining rows, yielding the processor before each
// one so a long fetch loop does not hog it.
func (a *AsyncCursor[T]) Rows(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			row, err := a.FetchOne().Await(ctx)
			if err != nil {
				yield(zero, err)
				return
			}
			if !row.Valid || !yield(row.V, nil) {
				return
			}
		}
	}
}

// Mogrify binds params without touching the cursor state.
func (a *AsyncCursor[T]) Mogrify(operation string, params any) (string, error) {
	return a.cur.Mogrify(operation, params)
}

// The accessors below read the state left by the last awaited operation.

func (a *AsyncCursor[T]) Description() []schema.Column { return a.cur.Description() }

func (a *AsyncCursor[T]) RowCount() int { return a.cur.RowCount() }

func (a *AsyncCursor[T]) RowNumber() int { return a.cur.RowNumber() }

func (a *AsyncCursor[T]) ArraySize() int { return a.cur.ArraySize() }

func (a *AsyncCursor[T]) SetArraySize(n int) error { return a.cur.SetArraySize(n) }

func (a *AsyncCursor[T]) Closed() bool { return a.cur.Closed() }

func (a *AsyncCursor[T]) Query() (string, bool) { return a.cur.Query() }

func (a *AsyncCursor[T]) QueryStatistics() *QueryStatistics { return a.cur.QueryStatistics() }

func (a *AsyncCursor[T]) Connection() *Connection { return a.cur.Connection() }

// shutdown queues a close behind the pending operations and waits for it.
func (a *AsyncCursor[T]) shutdown() {
	<-a.Close().Done()
}
