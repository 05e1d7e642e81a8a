package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	numericType = reflect.TypeOf(pgtype.Numeric{})
)

// assignValue stores a decoded cell into dst, converting between the
// shapes a JSON response produces and the field's declared type.
func assignValue(dst reflect.Value, value any) error {
	if value == nil {
		dst.SetZero()
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assignValue(dst.Elem(), value)
	}

	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	switch v := value.(type) {
	case json.Number:
		return assignNumber(dst, v)
	case pgtype.Numeric:
		return assignNumeric(dst, v)
	case string:
		switch {
		case dst.Type() == timeType:
			t, err := ConvertTimestamp(v)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		case dst.Type() == numericType:
			n, err := ConvertDecimal(v)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(n))
			return nil
		case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
			dst.SetBytes([]byte(v))
			return nil
		case isComposite(dst.Kind()):
			return json.Unmarshal([]byte(v), dst.Addr().Interface())
		}
	case time.Time:
		if dst.Kind() == reflect.String {
			dst.SetString(v.Format(time.RFC3339Nano))
			return nil
		}
	case []any, map[string]any:
		if isComposite(dst.Kind()) {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return json.Unmarshal(raw, dst.Addr().Interface())
		}
	}

	if isNumber(src.Kind()) && isNumber(dst.Kind()) {
		return setNumber(dst, src)
	}
	if src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dst.Type()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, dst.Type())
}

func assignNumber(dst reflect.Value, n json.Number) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int64()
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", n, err)
		}
		return setNumber(dst, reflect.ValueOf(i))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q: %w", n, err)
		}
		return setNumber(dst, reflect.ValueOf(u))
	case reflect.Float32, reflect.Float64:
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("invalid float %q: %w", n, err)
		}
		return setNumber(dst, reflect.ValueOf(f))
	case reflect.String:
		dst.SetString(n.String())
		return nil
	}
	if dst.Type() == numericType {
		d, err := ConvertDecimal(n)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(d))
		return nil
	}
	return fmt.Errorf("cannot assign number to %s", dst.Type())
}

func assignNumeric(dst reflect.Value, n pgtype.Numeric) error {
	switch dst.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := n.Float64Value()
		if err != nil {
			return err
		}
		return setNumber(dst, reflect.ValueOf(f.Float64))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int64Value()
		if err != nil {
			return err
		}
		return setNumber(dst, reflect.ValueOf(i.Int64))
	case reflect.String:
		v, err := n.Value()
		if err != nil {
			return err
		}
		s, _ := v.(string)
		dst.SetString(s)
		return nil
	}
	return fmt.Errorf("cannot assign decimal to %s", dst.Type())
}

// setNumber converts between numeric kinds, rejecting overflow and
// fractional values assigned to integer fields.
func setNumber(dst, src reflect.Value) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		switch {
		case src.CanInt():
			i = src.Int()
		case src.CanUint():
			u := src.Uint()
			if u > math.MaxInt64 {
				return fmt.Errorf("value %d overflows %s", u, dst.Type())
			}
			i = int64(u)
		default:
			f := src.Float()
			if f != math.Trunc(f) {
				return fmt.Errorf("value %v is not an integer", f)
			}
			if f < -0x1p63 || f >= 0x1p63 {
				return fmt.Errorf("value %v overflows %s", f, dst.Type())
			}
			i = int64(f)
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, dst.Type())
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		switch {
		case src.CanUint():
			u = src.Uint()
		case src.CanInt():
			if src.Int() < 0 {
				return fmt.Errorf("value %d overflows %s", src.Int(), dst.Type())
			}
			u = uint64(src.Int())
		default:
			f := src.Float()
			if f < 0 || f != math.Trunc(f) {
				return fmt.Errorf("value %v is not an unsigned integer", f)
			}
			if f >= 0x1p64 {
				return fmt.Errorf("value %v overflows %s", f, dst.Type())
			}
			u = uint64(f)
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, dst.Type())
		}
		dst.SetUint(u)
	default:
		var f float64
		switch {
		case src.CanInt():
			f = float64(src.Int())
		case src.CanUint():
			f = float64(src.Uint())
		default:
			f = src.Float()
		}
		dst.SetFloat(f)
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isComposite(k reflect.Kind) bool {
	return k == reflect.Map || k == reflect.Slice || k == reflect.Struct || k == reflect.Array
}
