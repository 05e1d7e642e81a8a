package resultset

import (
	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/rows"
	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// Populated is the result set of a successful query. It reads its rows
// once, front to back.
type Populated[T any] struct {
	holder[T]

	description []schema.Column
	stream      RowStream
	maker       rows.RowMaker[T]
	rowCount    int
	rowNumber   int
}

var _ ResultSet[rows.Tuple] = (*Populated[rows.Tuple])(nil)

// New builds a populated result set. The factory is asked for its row
// maker once, here.
func New[T any](stream RowStream, description []schema.Column, rowCount int, factory rows.RowFactory[T], arraySize int) *Populated[T] {
	return &Populated[T]{
		holder:      newHolder(factory, arraySize),
		description: description,
		stream:      stream,
		maker:       factory.Build(description),
		rowCount:    rowCount,
	}
}

func (p *Populated[T]) Description() []schema.Column { return p.description }

func (p *Populated[T]) RowCount() int { return p.rowCount }

func (p *Populated[T]) RowNumber() int { return p.rowNumber }

func (p *Populated[T]) FetchOne() (T, bool, error) {
	var zero T
	raw, ok, err := p.stream.Next()
	if !ok {
		return zero, false, err
	}
	p.rowNumber++
	if err != nil {
		return zero, false, err
	}
	row, err := p.maker(raw)
	if err != nil {
		return zero, false, dberr.Wrap(dberr.Data, err, "failed to build row %d", p.rowNumber-1)
	}
	return row, true, nil
}

func (p *Populated[T]) FetchMany(size ...int) ([]T, error) {
	n := p.arraySize
	switch len(size) {
	case 0:
	case 1:
		n = size[0]
	default:
		return nil, dberr.New(dberr.Value, "fetchmany() takes at most one size, got %d", len(size))
	}
	if n < 1 {
		return nil, dberr.New(dberr.Value, "fetchmany() requires a positive size, got %d", n)
	}
	return p.fetch(n)
}

func (p *Populated[T]) FetchAll() ([]T, error) {
	return p.fetch(-1)
}

// fetch reads up to limit rows, or all remaining rows when limit < 0.
func (p *Populated[T]) fetch(limit int) ([]T, error) {
	var out []T
	if limit > 0 {
		out = make([]T, 0, min(limit, max(p.rowCount-p.rowNumber, 0)))
	} else {
		out = make([]T, 0, max(p.rowCount-p.rowNumber, 0))
	}
	for limit < 0 || len(out) < limit {
		row, ok, err := p.FetchOne()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, row)
	}
	return out, nil
}

// Scroll moves the position forward without building rows. Relative
// mode skips value rows; absolute mode moves to index value.
func (p *Populated[T]) Scroll(value int, mode ScrollMode) error {
	switch mode {
	case Relative:
		if value < 1 {
			return dberr.New(dberr.Programming, "cursor can only move forward, got %d", value)
		}
		return p.advance(value)
	case Absolute:
		switch {
		case value < 0:
			return dberr.New(dberr.Programming, "cursor index cannot be negative, got %d", value)
		case value < p.rowNumber:
			return dberr.New(dberr.Programming, "cannot move cursor backward: currently at row %d, requested %d", p.rowNumber, value)
		case value == p.rowNumber:
			return dberr.New(dberr.Programming, "tried to move cursor to %d, but cursor is already at %d", value, p.rowNumber)
		}
		return p.advance(value - p.rowNumber)
	}
	return dberr.New(dberr.NotSupported, "mode must be 'relative' or 'absolute', got %s", mode)
}

func (p *Populated[T]) advance(n int) error {
	for skipped := 0; skipped < n; skipped++ {
		if !p.stream.Skip() {
			return dberr.New(dberr.Index, "cursor is exhausted: skipped %d of %d rows", skipped, n)
		}
		p.rowNumber++
	}
	return nil
}
