package dialect

import (
	"errors"
	"fmt"
	"time"
)

// Dialect renders bound parameter values as SQL literals.
type Dialect interface {
	RenderValue(v any) (string, error)
}

// ErrUnsupported matches every *UnsupportedError.
var ErrUnsupported = errors.New("unsupported param")

// UnsupportedError reports a value that has no SQL literal form.
type UnsupportedError struct {
	Type   string
	Reason string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported param type %s: %s", e.Type, e.Reason)
	}
	return "unsupported param type " + e.Type
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// Date is a calendar date rendered without a time component.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}
