// Package resultset holds the state of one executed query: its column
// description and the forward-only position over its rows.
package resultset

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/rows"
	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// DefaultArraySize is the number of rows FetchMany returns when no size is given.
const DefaultArraySize = 1

// ScrollMode selects how Scroll interprets its value.
type ScrollMode int

const (
	Relative ScrollMode = iota
	Absolute
)

func (m ScrollMode) String() string {
	switch m {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	}
	return fmt.Sprintf("ScrollMode(%d)", int(m))
}

// ParseScrollMode accepts "relative" and "absolute".
func ParseScrollMode(s string) (ScrollMode, error) {
	switch strings.ToLower(s) {
	case "relative":
		return Relative, nil
	case "absolute":
		return Absolute, nil
	}
	return 0, dberr.New(dberr.NotSupported, "mode must be 'relative' or 'absolute', got %s", s)
}

// ResultSet is the row source behind a cursor.
type ResultSet[T any] interface {
	Description() []schema.Column
	// RowCount is -1 until a query has produced a result.
	RowCount() int
	// RowNumber is the 0-based index of the next row, or -1 before execution.
	RowNumber() int
	ArraySize() int
	SetArraySize(n int) error
	Factory() rows.RowFactory[T]

	// FetchOne returns ok=false once the rows are exhausted.
	FetchOne() (row T, ok bool, err error)
	// FetchMany returns up to size rows, ArraySize when size is omitted.
	FetchMany(size ...int) ([]T, error)
	FetchAll() ([]T, error)
	Scroll(value int, mode ScrollMode) error

	MakeEmpty() *Empty[T]
}

// holder carries the settings that survive a reset.
type holder[T any] struct {
	factory   rows.RowFactory[T]
	arraySize int
}

func (h *holder[T]) ArraySize() int { return h.arraySize }

func (h *holder[T]) SetArraySize(n int) error {
	if n < 1 {
		return dberr.New(dberr.Value, "arraysize must be positive and greater than 0, got %d", n)
	}
	h.arraySize = n
	return nil
}

func (h *holder[T]) Factory() rows.RowFactory[T] { return h.factory }

// MakeEmpty returns an empty result set with the same factory and array size.
func (h *holder[T]) MakeEmpty() *Empty[T] {
	return &Empty[T]{holder: holder[T]{factory: h.factory, arraySize: h.arraySize}}
}

func newHolder[T any](factory rows.RowFactory[T], arraySize int) holder[T] {
	if arraySize < 1 {
		arraySize = DefaultArraySize
	}
	return holder[T]{factory: factory, arraySize: arraySize}
}
