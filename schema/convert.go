package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
)

// Converter turns a decoded JSON cell into its Go value. Converters
// never see nil cells.
type Converter func(v any) (any, error)

// Converters maps column indexes to the converter applied to that column.
type Converters map[int]Converter

// registry is read-only after package initialization.
var registry = map[string]Converter{
	WireTimestamp:  ConvertTimestamp,
	WireBigDecimal: ConvertDecimal,
	WireInt:        convertInt,
	WireLong:       convertInt,
	WireFloat:      convertFloat,
	WireDouble:     convertFloat,

	"INT_ARRAY":       convertArray(convertInt),
	"LONG_ARRAY":      convertArray(convertInt),
	"FLOAT_ARRAY":     convertArray(convertFloat),
	"DOUBLE_ARRAY":    convertArray(convertFloat),
	"TIMESTAMP_ARRAY": convertArray(ConvertTimestamp),
}

// ConverterFor returns the converter registered for a wire type.
func ConverterFor(wire string) (Converter, bool) {
	c, ok := registry[strings.ToUpper(wire)]
	return c, ok
}

// ForTypes builds the converter set for a result schema. Columns whose
// type needs no conversion are absent from the result.
func ForTypes(wireTypes []string) Converters {
	out := make(Converters)
	for i, wt := range wireTypes {
		if c, ok := ConverterFor(wt); ok {
			out[i] = c
		}
	}
	return out
}

// Apply converts the flagged cells of row in place.
func (cs Converters) Apply(row []any) error {
	for i, conv := range cs {
		if i >= len(row) || row[i] == nil {
			continue
		}
		v, err := conv(row[i])
		if err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = v
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ConvertTimestamp parses an ISO-8601 timestamp. Values without an
// offset are read as UTC. Numbers are taken as epoch milliseconds.
func ConvertTimestamp(v any) (any, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", val)
	case json.Number:
		ms, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", val, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(val)).UTC(), nil
	}
	return nil, fmt.Errorf("cannot convert %T to timestamp", v)
}

// ConvertDecimal parses an arbitrary precision decimal.
func ConvertDecimal(v any) (any, error) {
	var s string
	switch val := v.(type) {
	case pgtype.Numeric:
		return val, nil
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("cannot convert %T to decimal", v)
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err == nil {
		return n, nil
	}
	if err := n.ScanScientific(s); err != nil {
		return nil, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return n, nil
}

func convertInt(v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", n, err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return int64(f), nil
	}
	return f, nil
}

func convertFloat(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", val, err)
		}
		return f, nil
	case string:
		switch val {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return v, nil
}

func convertArray(elem Converter) Converter {
	return func(v any) (any, error) {
		items, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			if item == nil {
				continue
			}
			c, err := elem(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	}
}
