package dberr

import (
	"errors"
	"fmt"
)

// Kind classifies an error. Kinds form a hierarchy so that
// errors.Is(err, Database) holds for every Programming error.
type Kind int

const (
	Base Kind = iota
	Interface
	Database
	Data
	Operational
	Internal
	Programming
	NotSupported

	// Value and Index sit outside the hierarchy.
	Value
	Index
)

var kindNames = [...]string{
	Base:         "error",
	Interface:    "interface error",
	Database:     "database error",
	Data:         "data error",
	Operational:  "operational error",
	Internal:     "internal error",
	Programming:  "programming error",
	NotSupported: "not supported error",
	Value:        "value error",
	Index:        "index error",
}

var kindParents = map[Kind]Kind{
	Interface:    Base,
	Database:     Base,
	Data:         Database,
	Operational:  Database,
	Internal:     Database,
	Programming:  Database,
	NotSupported: Programming,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error lets a bare Kind be used as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Parent returns the enclosing kind. ok is false for roots.
func (k Kind) Parent() (Kind, bool) {
	p, ok := kindParents[k]
	return p, ok
}

// IsA reports whether k equals target or descends from it.
func (k Kind) IsA(target Kind) bool {
	for {
		if k == target {
			return true
		}
		p, ok := k.Parent()
		if !ok {
			return false
		}
		k = p
	}
}

// Error is the error type returned by every package of this module.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target against the kind hierarchy.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind.IsA(k)
}

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or Base when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Base
}
