package dialect

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// TimestampLayout is the ISO-8601 form used for time.Time literals.
const TimestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

type Pinot struct{}

var _ Dialect = Pinot{}

// RenderValue turns a Go value into a SQL literal. Slices, arrays and
// sets render as a parenthesized list for IN clauses; other maps render
// as a quoted JSON document.
func (p Pinot) RenderValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quote(val), nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32:
		return renderFloat(float64(val), 32)
	case float64:
		return renderFloat(val, 64)
	case json.Number:
		if _, err := val.Float64(); err != nil {
			return "", &UnsupportedError{Type: "json.Number", Reason: "not a number"}
		}
		return val.String(), nil
	case pgtype.Numeric:
		return renderNumeric(val)
	case *big.Int:
		if val == nil {
			return "NULL", nil
		}
		return val.String(), nil
	case *big.Float:
		if val == nil {
			return "NULL", nil
		}
		if val.IsInf() {
			return "", &UnsupportedError{Type: "*big.Float", Reason: "infinite"}
		}
		return val.Text('f', -1), nil
	case *big.Rat:
		if val == nil {
			return "NULL", nil
		}
		return ratString(val), nil
	case Date:
		return quote(val.String()), nil
	case time.Time:
		return quote(val.Format(TimestampLayout)), nil
	case uuid.UUID:
		return quote(val.String()), nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, val); err != nil {
			return "", &UnsupportedError{Type: "json.RawMessage", Reason: err.Error()}
		}
		return quote(buf.String()), nil
	case []byte:
		return "", &UnsupportedError{Type: "[]byte"}
	}
	return p.renderReflect(reflect.ValueOf(v))
}

// renderReflect covers named types and containers.
func (p Pinot) renderReflect(rv reflect.Value) (string, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "NULL", nil
		}
		return p.RenderValue(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String()), nil
	case reflect.Bool:
		return p.RenderValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return renderFloat(rv.Float(), 32)
	case reflect.Float64:
		return renderFloat(rv.Float(), 64)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return "", &UnsupportedError{Type: rv.Type().String()}
		}
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := p.RenderValue(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	case reflect.Map:
		if IsSet(rv.Type()) {
			return p.renderSet(rv)
		}
		return renderJSON(rv.Interface())
	}
	if !rv.IsValid() {
		return "NULL", nil
	}
	return "", &UnsupportedError{Type: rv.Type().String()}
}

func (p Pinot) renderSet(rv reflect.Value) (string, error) {
	items := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		s, err := p.RenderValue(iter.Key().Interface())
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}
	sort.Strings(items)
	return "(" + strings.Join(items, ", ") + ")", nil
}

// IsSet reports whether t is a map used as a set (map[K]struct{}).
func IsSet(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func renderFloat(f float64, bitSize int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &UnsupportedError{Type: fmt.Sprintf("float%d", bitSize), Reason: "not finite"}
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize), nil
}

func renderNumeric(n pgtype.Numeric) (string, error) {
	if !n.Valid {
		return "NULL", nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return "", &UnsupportedError{Type: "pgtype.Numeric", Reason: "not finite"}
	}
	v, err := n.Value()
	if err != nil {
		return "", &UnsupportedError{Type: "pgtype.Numeric", Reason: err.Error()}
	}
	s, _ := v.(string)
	return s, nil
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(20)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func renderJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", &UnsupportedError{Type: fmt.Sprintf("%T", v), Reason: err.Error()}
	}
	return quote(strings.TrimSuffix(buf.String(), "\n")), nil
}
