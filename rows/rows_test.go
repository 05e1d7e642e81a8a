package rows

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/pinotconn/schema"
)

var description = schema.Describe([]string{"name", "score", "meta"}, []string{"STRING", "DOUBLE", "JSON"})

func TestTupleRow(t *testing.T) {
	maker := TupleRow.Build(description)
	values := []any{"a", 1.5, nil}

	row, err := maker(values)
	require.NoError(t, err)
	assert.Equal(t, Tuple{"a", 1.5, nil}, row)

	values[0] = "mutated"
	assert.Equal(t, "a", row[0])
}

func TestListRow(t *testing.T) {
	maker := ListRow.Build(description)
	values := []any{"a", 1.5, nil}

	row, err := maker(values)
	require.NoError(t, err)
	assert.Equal(t, values, row)
}

func TestDictRow(t *testing.T) {
	maker := DictRow.Build(description)

	row, err := maker([]any{"a", 1.5, `{"x":1}`})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "a", "score": 1.5, "meta": `{"x":1}`}, row)
}

func TestDictRowJSONFields(t *testing.T) {
	maker := DictRowJSONFields("meta").Build(description)

	row, err := maker([]any{"a", 1.5, `{"x":[1,"y"]}`})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": []any{float64(1), "y"}}, row["meta"])
	assert.Equal(t, "a", row["name"])

	row, err = maker([]any{"a", 1.5, nil})
	require.NoError(t, err)
	assert.Nil(t, row["meta"])

	_, err = maker([]any{"a", 1.5, "{broken"})
	assert.Error(t, err)

	_, err = DictRowJSONFields("missing").Build(description)([]any{"a", 1.5, "{}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)

	raw, err := DictRowJSONFields("meta").Build(description)([]any{"a", 1.5, json.RawMessage(`[1]`)})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1)}, raw["meta"])
}

type scored struct {
	Name  string
	Score float64
}

func TestKwargsRow(t *testing.T) {
	factory := KwargsRow(func(kw map[string]any) (scored, error) {
		if kw["name"] == nil {
			return scored{}, errors.New("name required")
		}
		return scored{Name: kw["name"].(string), Score: kw["score"].(float64)}, nil
	})
	maker := factory.Build(description)

	row, err := maker([]any{"a", 2.0, nil})
	require.NoError(t, err)
	assert.Equal(t, scored{Name: "a", Score: 2}, row)

	_, err = maker([]any{nil, 2.0, nil})
	assert.EqualError(t, err, "name required")
}

func TestArgsRow(t *testing.T) {
	maker := ArgsRow(func(args ...any) (scored, error) {
		return scored{Name: args[0].(string), Score: args[1].(float64)}, nil
	}).Build(description)

	row, err := maker([]any{"b", 3.5, nil})
	require.NoError(t, err)
	assert.Equal(t, scored{Name: "b", Score: 3.5}, row)
}

type flight struct {
	Name  string  `db:"name"`
	Score float64 `db:"score"`
	Extra string
}

func TestStructRow(t *testing.T) {
	maker := StructRow[flight]().Build(description)

	row, err := maker([]any{"c", json.Number("4.25"), "ignored"})
	require.NoError(t, err)
	assert.Equal(t, flight{Name: "c", Score: 4.25}, row)

	_, err = StructRow[int]().Build(description)([]any{1})
	assert.Error(t, err)
}

func TestZeroColumns(t *testing.T) {
	var empty []schema.Column

	tuple, err := TupleRow.Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, Tuple{}, tuple)

	list, err := ListRow.Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, list)

	dict, err := DictRow.Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, dict)

	args, err := ArgsRow(func(args ...any) (int, error) { return len(args), nil }).Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, args)

	kw, err := KwargsRow(func(kw map[string]any) (int, error) { return len(kw), nil }).Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, kw)

	s, err := StructRow[flight]().Build(empty)(nil)
	require.NoError(t, err)
	assert.Equal(t, flight{}, s)
}
