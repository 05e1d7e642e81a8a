package dberr

import "fmt"

// codeKinds maps broker exception codes to error kinds. It is never
// written after initialization.
var codeKinds = map[int]Kind{
	100: Interface, 101: Interface,

	150: Programming, 190: Programming, 429: Programming,
	700: Programming, 710: Programming,

	160: Operational, 170: Operational, 180: Operational, 191: Operational,
	200: Operational, 211: Operational, 230: Operational, 235: Operational,
	240: Operational, 245: Operational, 250: Operational, 300: Operational,
	305: Operational, 600: Operational,

	210: Database, 400: Database, 410: Database, 420: Database,
	425: Database, 427: Database, 500: Database, 503: Database,
	550: Database, 720: Database,

	260: Internal, 310: Internal, 350: Internal, 450: Internal,

	1000: Base,
}

// KindForCode returns the kind registered for a broker exception code.
// Unknown codes map to Base.
func KindForCode(code int) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return Base
}

// FromCode builds the error reported for a broker exception.
func FromCode(code int, message string) *Error {
	return &Error{
		Kind:    KindForCode(code),
		Message: fmt.Sprintf("[Error %d] %s", code, message),
	}
}
