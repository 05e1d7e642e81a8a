package resultset

import (
	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// RowStream yields raw rows once, in order. ok is false when exhausted.
// A row that fails conversion is still consumed: Next reports ok with the
// error.
type RowStream interface {
	Next() (row []any, ok bool, err error)
	// Skip drops the next row without converting it.
	Skip() bool
}

type stream struct {
	rows       [][]any
	converters schema.Converters
	pos        int
}

// NewStream returns a lazy stream over decoded rows. Converters run on a
// row only when it is pulled.
func NewStream(rows [][]any, converters schema.Converters) RowStream {
	return &stream{rows: rows, converters: converters}
}

func (s *stream) Next() ([]any, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.rows[s.pos] = nil
	s.pos++

	if len(s.converters) > 0 {
		if err := s.converters.Apply(row); err != nil {
			return nil, true, dberr.Wrap(dberr.Data, err, "failed to convert row %d", s.pos-1)
		}
	}
	return row, true, nil
}

func (s *stream) Skip() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.rows[s.pos] = nil
	s.pos++
	return true
}
