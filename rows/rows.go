// Package rows provides the strategies that shape raw result rows into
// caller-facing values.
package rows

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/Konsultn-Engineering/pinotconn/schema"
)

// RowMaker turns one row of cell values into a caller-facing row.
type RowMaker[T any] func(values []any) (T, error)

// RowFactory builds a RowMaker once per result set, given its columns.
type RowFactory[T any] interface {
	Build(description []schema.Column) RowMaker[T]
}

// FactoryFunc adapts a function to RowFactory.
type FactoryFunc[T any] func(description []schema.Column) RowMaker[T]

func (f FactoryFunc[T]) Build(description []schema.Column) RowMaker[T] {
	return f(description)
}

// Tuple is an immutable-by-convention ordered row. It is the default row shape.
type Tuple []any

// TupleRow copies each row into a Tuple.
var TupleRow RowFactory[Tuple] = FactoryFunc[Tuple](func([]schema.Column) RowMaker[Tuple] {
	return func(values []any) (Tuple, error) {
		return append(make(Tuple, 0, len(values)), values...), nil
	}
})

// ListRow returns the row values as is.
var ListRow RowFactory[[]any] = FactoryFunc[[]any](func([]schema.Column) RowMaker[[]any] {
	return func(values []any) ([]any, error) {
		if values == nil {
			return []any{}, nil
		}
		return values, nil
	}
})

// DictRow keys each value by its column name.
var DictRow RowFactory[map[string]any] = FactoryFunc[map[string]any](func(description []schema.Column) RowMaker[map[string]any] {
	names := schema.Names(description)
	return func(values []any) (map[string]any, error) {
		return zip(names, values), nil
	}
})

// DictRowJSONFields is DictRow with the named fields decoded from JSON
// text. Nil values stay nil.
func DictRowJSONFields(fields ...string) RowFactory[map[string]any] {
	return FactoryFunc[map[string]any](func(description []schema.Column) RowMaker[map[string]any] {
		names := schema.Names(description)
		return func(values []any) (map[string]any, error) {
			row := zip(names, values)
			for _, field := range fields {
				raw, ok := row[field]
				if !ok {
					return nil, fmt.Errorf("json field %q is not a result column", field)
				}
				decoded, err := decodeJSON(raw)
				if err != nil {
					return nil, fmt.Errorf("json field %q: %w", field, err)
				}
				row[field] = decoded
			}
			return row, nil
		}
	})
}

// KwargsRow passes each row to ctor as a map keyed by column name.
func KwargsRow[T any](ctor func(kwargs map[string]any) (T, error)) RowFactory[T] {
	return FactoryFunc[T](func(description []schema.Column) RowMaker[T] {
		names := schema.Names(description)
		return func(values []any) (T, error) {
			return ctor(zip(names, values))
		}
	})
}

// ArgsRow passes each row's values to ctor positionally.
func ArgsRow[T any](ctor func(args ...any) (T, error)) RowFactory[T] {
	return FactoryFunc[T](func([]schema.Column) RowMaker[T] {
		return func(values []any) (T, error) {
			return ctor(values...)
		}
	})
}

// StructRow maps each row onto a T using the default schema context.
func StructRow[T any]() RowFactory[T] {
	return StructRowWith[T](schema.Default())
}

// StructRowWith maps each row onto a T. Columns without a matching
// field are ignored.
func StructRowWith[T any](ctx *schema.Context) RowFactory[T] {
	return FactoryFunc[T](func(description []schema.Column) RowMaker[T] {
		names := schema.Names(description)
		meta, err := ctx.Introspect(reflect.TypeFor[T]())
		return func(values []any) (T, error) {
			var out T
			if err != nil {
				return out, err
			}
			if err := meta.Populate(&out, names, values); err != nil {
				return out, err
			}
			return out, nil
		}
	})
}

func zip(names []string, values []any) map[string]any {
	row := make(map[string]any, len(names))
	for i, name := range names {
		if i < len(values) {
			row[name] = values[i]
		} else {
			row[name] = nil
		}
	}
	return row
}

func decodeJSON(raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		return nil, fmt.Errorf("expected JSON text, got %T", raw)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
