package query

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
)

func TestNewParamsShape(t *testing.T) {
	tests := []struct {
		name        string
		params      any
		expectError bool
	}{
		{"Nil", nil, false},
		{"AnySlice", []any{1, "a"}, false},
		{"TypedSlice", []string{"a"}, false},
		{"Array", [2]int{1, 2}, false},
		{"AnyMap", map[string]any{"a": 1}, false},
		{"TypedMap", map[string]int{"a": 1}, false},
		{"Set", map[string]struct{}{"a": {}}, true},
		{"IntKeyMap", map[int]any{1: 1}, true},
		{"Scalar", 42, true},
		{"String", "abc", true},
		{"Bytes", []byte("abc"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New("SELECT 1", tt.params)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, dberr.Programming))
				assert.Contains(t, err.Error(), "params must be a map or a slice")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SELECT 1", q.Operation())
		})
	}
}

func TestOperationWithParams(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		params    any
		expected  string
	}{
		{
			name:      "NoParams",
			operation: "SELECT * FROM t WHERE a LIKE '%x%'",
			params:    nil,
			expected:  "SELECT * FROM t WHERE a LIKE '%x%'",
		},
		{
			name:      "EmptyParams",
			operation: "SELECT '%'",
			params:    []any{},
			expected:  "SELECT '%'",
		},
		{
			name:      "Positional",
			operation: "SELECT * FROM t WHERE a = %s AND b = %s",
			params:    []any{"x'y", 3},
			expected:  "SELECT * FROM t WHERE a = 'x''y' AND b = 3",
		},
		{
			name:      "Named",
			operation: "SELECT * FROM t WHERE a = %(a)s AND b IN %(b)s",
			params:    map[string]any{"a": true, "b": []int{1, 2}},
			expected:  "SELECT * FROM t WHERE a = TRUE AND b IN (1, 2)",
		},
		{
			name:      "NamedReused",
			operation: "SELECT %(a)s, %(a)s",
			params:    map[string]any{"a": nil, "unused": 1},
			expected:  "SELECT NULL, NULL",
		},
		{
			name:      "EscapedPercent",
			operation: "SELECT * FROM t WHERE a LIKE '%%x' AND b = %s",
			params:    []any{1},
			expected:  "SELECT * FROM t WHERE a LIKE '%x' AND b = 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(tt.operation, tt.params)
			require.NoError(t, err)

			got, err := q.OperationWithParams()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOperationWithParamsErrors(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		params    any
		contains  string
	}{
		{"TooFew", "SELECT %s, %s", []any{1}, "not enough params"},
		{"TooMany", "SELECT %s", []any{1, 2}, "not all params converted"},
		{"MissingKey", "SELECT %(a)s", map[string]any{"b": 1}, `missing param "a"`},
		{"MapWithPositional", "SELECT %s", map[string]any{"a": 1}, "requires positional"},
		{"SliceWithNamed", "SELECT %(a)s", []any{1}, "requires a map"},
		{"BadVerb", "SELECT %d", []any{1}, "unsupported format character"},
		{"Trailing", "SELECT %", []any{1}, "incomplete format"},
		{"UnsupportedValue", "SELECT %s", []any{make(chan int)}, "param index=0: chan int"},
		{"UnsupportedNamed", "SELECT %(x)s", map[string]any{"x": struct{}{}}, "param name=x: struct {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(tt.operation, tt.params)
			require.NoError(t, err)

			_, err = q.OperationWithParams()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dberr.Programming))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestEscapedParamsMemoized(t *testing.T) {
	q := MustNew("SELECT %s", []any{"a"})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = q.OperationWithParams()
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "SELECT 'a'", r)
	}

	esc, err := q.EscapedParams()
	require.NoError(t, err)
	assert.Equal(t, []string{"'a'"}, esc.Positional)
	assert.Nil(t, esc.Named)
}

func TestEscapedParamsNamed(t *testing.T) {
	q := MustNew("SELECT %(n)s", map[string]any{"n": 1.25})
	esc, err := q.EscapedParams()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"n": "1.25"}, esc.Named)
	assert.False(t, esc.Empty())
}

type upperDialect struct{}

func (upperDialect) RenderValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("strings only")
	}
	return "'" + strings.ToUpper(s) + "'", nil
}

func TestWithDialect(t *testing.T) {
	q, err := New("SELECT %s", []any{"abc"}, WithDialect(upperDialect{}))
	require.NoError(t, err)
	sql, err := q.OperationWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'ABC'", sql)

	q, err = New("SELECT %s", []any{1}, WithDialect(upperDialect{}))
	require.NoError(t, err)
	_, err = q.OperationWithParams()
	assert.Error(t, err)
}
