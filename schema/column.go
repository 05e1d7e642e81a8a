package schema

import "strings"

// TypeCode is the client-side classification of a wire column type.
type TypeCode int

const (
	Unknown TypeCode = iota
	String
	Bool
	Int
	Float
	Bytes
	Timestamp
	Decimal
)

var typeCodeNames = [...]string{
	Unknown:   "UNKNOWN",
	String:    "STRING",
	Bool:      "BOOL",
	Int:       "INT",
	Float:     "FLOAT",
	Bytes:     "BYTES",
	Timestamp: "TIMESTAMP",
	Decimal:   "DECIMAL",
}

func (c TypeCode) String() string {
	if c < 0 || int(c) >= len(typeCodeNames) {
		return typeCodeNames[Unknown]
	}
	return typeCodeNames[c]
}

// Wire type names as reported in dataSchema.columnDataTypes.
const (
	WireString     = "STRING"
	WireBoolean    = "BOOLEAN"
	WireInt        = "INT"
	WireLong       = "LONG"
	WireFloat      = "FLOAT"
	WireDouble     = "DOUBLE"
	WireBytes      = "BYTES"
	WireTimestamp  = "TIMESTAMP"
	WireBigDecimal = "BIG_DECIMAL"
	WireJSON       = "JSON"
)

var wireTypeCodes = map[string]TypeCode{
	WireString:     String,
	WireBoolean:    Bool,
	WireInt:        Int,
	WireLong:       Int,
	WireFloat:      Float,
	WireDouble:     Float,
	WireBytes:      Bytes,
	WireTimestamp:  Timestamp,
	WireBigDecimal: Decimal,
}

// TypeCodeOf maps a wire type name to its TypeCode. Array types such as
// INT_ARRAY and unrecognized names are Unknown.
func TypeCodeOf(wire string) TypeCode {
	return wireTypeCodes[strings.ToUpper(wire)]
}

// Column describes one result column. Only Name and TypeCode are known
// from a broker response; the remaining fields are always nil.
type Column struct {
	Name         string
	TypeCode     TypeCode
	DisplaySize  *int
	InternalSize *int
	Precision    *int
	Scale        *int
	NullOK       *bool
}

// Describe pairs column names with their wire types. Missing types are
// treated as Unknown.
func Describe(names, wireTypes []string) []Column {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i].Name = name
		if i < len(wireTypes) {
			cols[i].TypeCode = TypeCodeOf(wireTypes[i])
		}
	}
	return cols
}

// Names returns the column names in order.
func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
