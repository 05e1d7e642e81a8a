package schema

import (
	"strings"
	"unicode"
)

// NamingStrategy converts Go field names to result column names.
type NamingStrategy interface {
	// ColumnName converts a Go field name to a column name.
	// Should return consistent results for the same input.
	ColumnName(fieldName string) string
}

// ColumnNamingType represents different column naming conventions.
type ColumnNamingType int

const (
	ColumnSnakeCase  ColumnNamingType = iota // user_id, first_name, created_at
	ColumnCamelCase                          // userId, firstName, createdAt
	ColumnPascalCase                         // UserId, FirstName, CreatedAt
	ColumnExact                              // field name unchanged
)

type columnNamingStrategy struct {
	namingType ColumnNamingType
}

// NewNamingStrategy creates a column naming strategy.
func NewNamingStrategy(namingType ColumnNamingType) NamingStrategy {
	return &columnNamingStrategy{namingType: namingType}
}

// DefaultNamingStrategy maps FieldName to fieldName, the usual casing of
// columns in analytical schemas.
func DefaultNamingStrategy() NamingStrategy {
	return NewNamingStrategy(ColumnCamelCase)
}

func (c *columnNamingStrategy) ColumnName(fieldName string) string {
	switch c.namingType {
	case ColumnSnakeCase:
		return toSnakeCase(fieldName)
	case ColumnPascalCase:
		return toPascalCase(fieldName)
	case ColumnExact:
		return fieldName
	default:
		return toCamelCase(fieldName)
	}
}

// toSnakeCase converts any naming convention to snake_case.
// Acronyms stay grouped: UserID -> user_id, HTTPServer -> http_server.
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteByte('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// toCamelCase converts any naming convention to camelCase.
func toCamelCase(name string) string {
	pascal := toPascalCase(name)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// toPascalCase converts any naming convention to PascalCase.
func toPascalCase(name string) string {
	parts := strings.Split(toSnakeCase(name), "_")

	var result strings.Builder
	result.Grow(len(name))
	for _, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		result.WriteString(string(runes))
	}
	return result.String()
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
