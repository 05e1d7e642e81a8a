package schema

import (
	"math"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeCodeOf(t *testing.T) {
	tests := []struct {
		wire     string
		expected TypeCode
	}{
		{"STRING", String},
		{"BOOLEAN", Bool},
		{"INT", Int},
		{"LONG", Int},
		{"FLOAT", Float},
		{"DOUBLE", Float},
		{"BYTES", Bytes},
		{"TIMESTAMP", Timestamp},
		{"BIG_DECIMAL", Decimal},
		{"JSON", Unknown},
		{"INT_ARRAY", Unknown},
		{"long", Int},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			assert.Equal(t, tt.expected, TypeCodeOf(tt.wire))
		})
	}
}

func TestDescribe(t *testing.T) {
	cols := Describe([]string{"a", "b", "c"}, []string{"STRING", "JSON"})
	require.Len(t, cols, 3)
	assert.Equal(t, Column{Name: "a", TypeCode: String}, cols[0])
	assert.Equal(t, Unknown, cols[1].TypeCode)
	assert.Equal(t, Unknown, cols[2].TypeCode)
	assert.Nil(t, cols[0].DisplaySize)
	assert.Nil(t, cols[0].NullOK)
	assert.Equal(t, []string{"a", "b", "c"}, Names(cols))
	assert.Empty(t, Describe(nil, nil))
}

func TestForTypes(t *testing.T) {
	convs := ForTypes([]string{"STRING", "TIMESTAMP", "JSON", "BIG_DECIMAL", "LONG", "DOUBLE", "BOOLEAN"})

	assert.Len(t, convs, 4)
	for _, i := range []int{1, 3, 4, 5} {
		assert.Contains(t, convs, i)
	}
	assert.NotContains(t, convs, 0)
	assert.NotContains(t, convs, 2)
	assert.NotContains(t, convs, 6)
}

func TestConvertersApply(t *testing.T) {
	convs := ForTypes([]string{"STRING", "TIMESTAMP", "BIG_DECIMAL", "LONG", "DOUBLE", "INT_ARRAY"})

	row := []any{
		"x",
		"2024-05-01 12:30:45.123",
		"12.340",
		json.Number("9007199254740993"),
		json.Number("1.5"),
		[]any{json.Number("1"), nil, json.Number("3")},
	}
	require.NoError(t, convs.Apply(row))

	assert.Equal(t, "x", row[0])
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 45, 123000000, time.UTC), row[1])

	n, ok := row[2].(pgtype.Numeric)
	require.True(t, ok)
	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, "12.340", v)

	assert.Equal(t, int64(9007199254740993), row[3])
	assert.Equal(t, 1.5, row[4])
	assert.Equal(t, []any{int64(1), nil, int64(3)}, row[5])
}

func TestConvertersApplyNilPassthrough(t *testing.T) {
	convs := ForTypes([]string{"TIMESTAMP", "BIG_DECIMAL"})
	row := []any{nil, nil}
	require.NoError(t, convs.Apply(row))
	assert.Equal(t, []any{nil, nil}, row)
}

func TestConvertersApplyError(t *testing.T) {
	convs := ForTypes([]string{"STRING", "TIMESTAMP"})
	err := convs.Apply([]any{"a", "not a time"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 1")
}

func TestConvertTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected time.Time
	}{
		{"ISO", "2024-01-02T03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"Space", "2024-01-02 03:04:05.5", time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"Offset", "2024-01-02T03:04:05+02:00", time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC)},
		{"Zulu", "2024-01-02T03:04:05.000001Z", time.Date(2024, 1, 2, 3, 4, 5, 1000, time.UTC)},
		{"DateOnly", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"EpochMillis", json.Number("1704164645000"), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got.(time.Time)), "got %v", got)
		})
	}

	_, err := ConvertTimestamp(true)
	assert.Error(t, err)
}

func TestConvertDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"String", "123.45", "123.45"},
		{"Negative", "-0.001", "-0.001"},
		{"Integer", "100", "100"},
		{"Number", json.Number("7.25"), "7.25"},
		{"Scientific", "1.5E+3", "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertDecimal(tt.input)
			require.NoError(t, err)
			v, err := got.(pgtype.Numeric).Value()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	_, err := ConvertDecimal("abc")
	assert.Error(t, err)
}

func TestConvertFloatSpecialValues(t *testing.T) {
	c, ok := ConverterFor("DOUBLE")
	require.True(t, ok)

	v, err := c("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.(float64)))

	v, err = c("-Infinity")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), -1))
}
