package query

import (
	"strings"

	"github.com/Konsultn-Engineering/pinotconn/dberr"
)

// substitute performs printf-style interpolation of already escaped
// values. Recognized directives are %s, %(name)s and %%.
func substitute(operation string, esc Escaped) (string, error) {
	var sb strings.Builder
	sb.Grow(len(operation) + 16*len(esc.Positional))

	next := 0
	for i := 0; i < len(operation); i++ {
		c := operation[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(operation) {
			return "", dberr.New(dberr.Programming, "incomplete format at index %d", i)
		}

		i++
		switch operation[i] {
		case '%':
			sb.WriteByte('%')
		case 's':
			if esc.Named != nil {
				return "", dberr.New(dberr.Programming, "format requires positional params, got a map")
			}
			if next >= len(esc.Positional) {
				return "", dberr.New(dberr.Programming, "not enough params for format string: got %d", len(esc.Positional))
			}
			sb.WriteString(esc.Positional[next])
			next++
		case '(':
			end := strings.IndexByte(operation[i:], ')')
			if end < 0 {
				return "", dberr.New(dberr.Programming, "incomplete format key at index %d", i-1)
			}
			name := operation[i+1 : i+end]
			i += end + 1
			if i >= len(operation) || operation[i] != 's' {
				return "", dberr.New(dberr.Programming, "unsupported format for param %q: only %%(name)s is allowed", name)
			}
			if esc.Named == nil {
				return "", dberr.New(dberr.Programming, "format requires a map of params")
			}
			v, ok := esc.Named[name]
			if !ok {
				return "", dberr.New(dberr.Programming, "missing param %q", name)
			}
			sb.WriteString(v)
		default:
			return "", dberr.New(dberr.Programming, "unsupported format character %q at index %d", operation[i], i)
		}
	}

	if esc.Named == nil && next < len(esc.Positional) {
		return "", dberr.New(dberr.Programming, "not all params converted during formatting: used %d of %d", next, len(esc.Positional))
	}
	return sb.String(), nil
}
