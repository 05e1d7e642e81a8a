package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
	"github.com/Konsultn-Engineering/pinotconn/dialect"
)

const supportedTypes = "Only supported values are string, integer, float, decimal, bool, date, time, uuid and string-keyed maps. " +
	"A slice, array or set of any of those types (for IN clauses) is also allowed."

// Escaped holds rendered parameters. At most one of the fields is set.
type Escaped struct {
	Positional []string
	Named      map[string]string
}

// Empty reports whether there is nothing to substitute.
func (e Escaped) Empty() bool {
	return len(e.Positional) == 0 && len(e.Named) == 0
}

// Query is an operation bound to its parameters. Rendering happens on
// first use and the result, error included, is kept for later calls.
type Query struct {
	operation  string
	params     any
	positional []any
	named      map[string]any
	dialect    dialect.Dialect

	escapeOnce sync.Once
	escaped    Escaped
	escapeErr  error

	bindOnce sync.Once
	bound    string
	bindErr  error
}

type Option func(*Query)

// WithDialect replaces the renderer used for parameter values.
func WithDialect(d dialect.Dialect) Option {
	return func(q *Query) { q.dialect = d }
}

// New binds operation to params. params is nil, a slice or array of
// positional values, or a map with string keys for named values.
func New(operation string, params any, opts ...Option) (*Query, error) {
	q := &Query{
		operation: operation,
		params:    params,
		dialect:   dialect.Pinot{},
	}
	for _, opt := range opts {
		opt(q)
	}

	if params == nil {
		return q, nil
	}

	switch p := params.(type) {
	case []any:
		q.positional = p
		return q, nil
	case map[string]any:
		q.named = p
		return q, nil
	}

	rv := reflect.ValueOf(params)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		q.positional = make([]any, rv.Len())
		for i := range q.positional {
			q.positional[i] = rv.Index(i).Interface()
		}
		return q, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || dialect.IsSet(rv.Type()) {
			break
		}
		q.named = make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			q.named[iter.Key().String()] = iter.Value().Interface()
		}
		return q, nil
	}
	return nil, dberr.New(dberr.Programming, "params must be a map or a slice, got %T", params)
}

// MustNew is New for statically known inputs. It panics on error.
func MustNew(operation string, params any, opts ...Option) *Query {
	q, err := New(operation, params, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) Operation() string { return q.operation }

// Params returns the parameters as passed to New.
func (q *Query) Params() any { return q.params }

// EscapedParams renders every parameter to its SQL literal.
func (q *Query) EscapedParams() (Escaped, error) {
	q.escapeOnce.Do(func() {
		q.escaped, q.escapeErr = q.escape()
	})
	return q.escaped, q.escapeErr
}

// OperationWithParams substitutes the escaped parameters into the
// operation. Without parameters the operation is returned unchanged.
func (q *Query) OperationWithParams() (string, error) {
	q.bindOnce.Do(func() {
		esc, err := q.EscapedParams()
		if err != nil {
			q.bindErr = err
			return
		}
		if esc.Empty() {
			q.bound = q.operation
			return
		}
		q.bound, q.bindErr = substitute(q.operation, esc)
	})
	return q.bound, q.bindErr
}

func (q *Query) String() string {
	return q.operation
}

func (q *Query) escape() (Escaped, error) {
	if len(q.positional) > 0 {
		out := make([]string, len(q.positional))
		for i, v := range q.positional {
			s, err := q.dialect.RenderValue(v)
			if err != nil {
				return Escaped{}, unsupported(fmt.Sprintf("index=%d", i), err)
			}
			out[i] = s
		}
		return Escaped{Positional: out}, nil
	}

	if len(q.named) > 0 {
		keys := make([]string, 0, len(q.named))
		for k := range q.named {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]string, len(q.named))
		for _, k := range keys {
			s, err := q.dialect.RenderValue(q.named[k])
			if err != nil {
				return Escaped{}, unsupported("name="+k, err)
			}
			out[k] = s
		}
		return Escaped{Named: out}, nil
	}

	return Escaped{}, nil
}

func unsupported(at string, err error) error {
	var ue *dialect.UnsupportedError
	if errors.As(err, &ue) {
		detail := ue.Type
		if ue.Reason != "" {
			detail += " (" + ue.Reason + ")"
		}
		return dberr.New(dberr.Programming, "unsupported param type at param %s: %s. %s", at, detail, supportedTypes)
	}
	return dberr.Wrap(dberr.Programming, err, "cannot render param %s", at)
}
