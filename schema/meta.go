package schema

import (
	"fmt"
	"reflect"
	"strings"
)

type EntityMeta struct {
	Type      reflect.Type
	Name      string
	Fields    []*FieldMeta
	FieldMap  map[string]*FieldMeta // Go field name -> FieldMeta
	ColumnMap map[string]*FieldMeta // column name -> FieldMeta

	// Go field names and their snake_case form, for untagged fields.
	aliases       map[string]*FieldMeta
	caseSensitive bool
}

type FieldMeta struct {
	Name   string
	Column string
	Type   reflect.Type
	Index  []int
	Tag    ParsedTag
}

func (m *EntityMeta) normalize(name string) string {
	if m.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

// Lookup finds the field a column maps to, or nil.
func (m *EntityMeta) Lookup(column string) *FieldMeta {
	key := m.normalize(column)
	if f, ok := m.ColumnMap[key]; ok {
		return f
	}
	return m.aliases[key]
}

// Assign converts value and stores it in the field mapped to column.
// dest must be an addressable struct of the described type. Unmapped
// columns are ignored.
func (m *EntityMeta) Assign(dest reflect.Value, column string, value any) error {
	field := m.Lookup(column)
	if field == nil {
		return nil
	}
	fv, err := dest.FieldByIndexErr(field.Index)
	if err != nil {
		return fmt.Errorf("column %s: %w", column, err)
	}
	if err := assignValue(fv, value); err != nil {
		return fmt.Errorf("column %s -> field %s: %w", column, field.Name, err)
	}
	return nil
}

// Populate assigns every column of a row to dest, a pointer to a struct.
func (m *EntityMeta) Populate(dest any, columns []string, values []any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	rv = rv.Elem()
	if rv.Type() != m.Type {
		return fmt.Errorf("destination type %s does not match %s", rv.Type(), m.Type)
	}
	for i, col := range columns {
		if i >= len(values) {
			break
		}
		if err := m.Assign(rv, col, values[i]); err != nil {
			return err
		}
	}
	return nil
}
