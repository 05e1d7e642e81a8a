package resultset

import (
	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/rows"
	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// Empty is the result set of a cursor that has not executed a query.
type Empty[T any] struct {
	holder[T]
}

var _ ResultSet[rows.Tuple] = (*Empty[rows.Tuple])(nil)

func NewEmpty[T any](factory rows.RowFactory[T], arraySize int) *Empty[T] {
	return &Empty[T]{holder: newHolder(factory, arraySize)}
}

func (e *Empty[T]) Description() []schema.Column { return nil }

func (e *Empty[T]) RowCount() int { return -1 }

func (e *Empty[T]) RowNumber() int { return -1 }

func (e *Empty[T]) FetchOne() (T, bool, error) {
	var zero T
	return zero, false, notExecuted("fetchone")
}

func (e *Empty[T]) FetchMany(...int) ([]T, error) {
	return nil, notExecuted("fetchmany")
}

func (e *Empty[T]) FetchAll() ([]T, error) {
	return nil, notExecuted("fetchall")
}

func (e *Empty[T]) Scroll(int, ScrollMode) error {
	return notExecuted("scroll")
}

func notExecuted(op string) error {
	return dberr.New(dberr.Programming, "cannot %s - must execute a query first", op)
}
