package dialect

import (
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string

type level int

func TestPinotRenderValue(t *testing.T) {
	d := Pinot{}
	name := "bob"
	var nilPtr *string

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"Nil", nil, "NULL"},
		{"NilPointer", nilPtr, "NULL"},
		{"Pointer", &name, "'bob'"},
		{"String", "hello", "'hello'"},
		{"StringWithQuote", "O'Reilly", "'O''Reilly'"},
		{"NamedString", status("on'"), "'on'''"},
		{"True", true, "TRUE"},
		{"False", false, "FALSE"},
		{"Int", 42, "42"},
		{"NegativeInt64", int64(-7), "-7"},
		{"Uint8", uint8(9), "9"},
		{"NamedInt", level(3), "3"},
		{"Float", 1.5, "1.5"},
		{"FloatWhole", 100.0, "100"},
		{"Float32", float32(0.25), "0.25"},
		{"JSONNumber", json.Number("12.50"), "12.50"},
		{"BigInt", big.NewInt(123456789), "123456789"},
		{"BigFloat", big.NewFloat(2.5), "2.5"},
		{"BigRat", big.NewRat(1, 4), "0.25"},
		{"BigRatWhole", big.NewRat(8, 2), "4"},
		{"Date", Date{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}, "'2024-03-09'"},
		{"Time", time.Date(2024, 3, 9, 10, 11, 12, 500000000, time.UTC), "'2024-03-09T10:11:12.5Z'"},
		{"UUID", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{"List", []any{"a", 1, true}, "('a', 1, TRUE)"},
		{"TypedList", []int{1, 2, 3}, "(1, 2, 3)"},
		{"Array", [2]string{"x", "y"}, "('x', 'y')"},
		{"EmptyList", []string{}, "()"},
		{"Set", map[string]struct{}{"b": {}, "a": {}}, "('a', 'b')"},
		{"Mapping", map[string]any{"k": "it's", "n": 1}, `'{"k":"it''s","n":1}'`},
		{"MappingNoHTMLEscape", map[string]string{"h": "<b>&"}, `'{"h":"<b>&"}'`},
		{"RawMessage", json.RawMessage(`{ "a" : [1, 2] }`), `'{"a":[1,2]}'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.RenderValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPinotRenderNumeric(t *testing.T) {
	d := Pinot{}

	var n pgtype.Numeric
	require.NoError(t, n.Scan("123.45"))
	got, err := d.RenderValue(n)
	require.NoError(t, err)
	assert.Equal(t, "123.45", got)

	got, err = d.RenderValue(pgtype.Numeric{})
	require.NoError(t, err)
	assert.Equal(t, "NULL", got)

	_, err = d.RenderValue(pgtype.Numeric{NaN: true, Valid: true})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPinotRenderUnsupported(t *testing.T) {
	d := Pinot{}

	tests := []struct {
		name     string
		input    any
		typeName string
	}{
		{"Bytes", []byte("abc"), "[]byte"},
		{"Channel", make(chan int), "chan int"},
		{"Struct", struct{ A int }{1}, "struct { A int }"},
		{"NaN", math.NaN(), "float64"},
		{"Inf", math.Inf(1), "float64"},
		{"NestedInList", []any{1, make(chan int)}, "chan int"},
		{"Func", func() {}, "func()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.RenderValue(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupported)

			var ue *UnsupportedError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.typeName, ue.Type)
		})
	}
}

func TestDateOf(t *testing.T) {
	d := DateOf(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2023-12-31", d.String())
}
