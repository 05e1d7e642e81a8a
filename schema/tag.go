package schema

import (
	"reflect"
	"strings"
)

// ParsedTag is the mapping configuration read from a struct field tag.
type ParsedTag struct {
	ColumnName string // explicit or derived column name
	Skip       bool   // db:"-"
	Explicit   bool   // ColumnName came from the tag
}

// parseTag reads the mapping tag of a field.
//
// Supported tag syntax:
//
//	`db:"columnName"`         // column mapping
//	`db:"column:columnName"`  // explicit column key
//	`db:"-"`                  // skip field entirely
//
// Unknown options separated by ';' are ignored.
func parseTag(fieldName string, tag reflect.StructTag, tagName string, naming NamingStrategy) ParsedTag {
	value, ok := tag.Lookup(tagName)
	if !ok || value == "" {
		return ParsedTag{ColumnName: naming.ColumnName(fieldName)}
	}
	if value == "-" {
		return ParsedTag{Skip: true}
	}

	parsed := ParsedTag{ColumnName: naming.ColumnName(fieldName)}
	if !strings.ContainsAny(value, ";:") {
		parsed.ColumnName = value
		parsed.Explicit = true
		return parsed
	}

	for _, option := range strings.Split(value, ";") {
		key, val, found := strings.Cut(strings.TrimSpace(option), ":")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "column", "name":
			parsed.ColumnName = strings.TrimSpace(val)
			parsed.Explicit = true
		}
	}
	return parsed
}
