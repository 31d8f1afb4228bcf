// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import (
	"errors"
	"fmt"
)

// Kind classifies the errors reported by the table editor.
type Kind byte

// Constants defining the valid Kind values.
const (
	ParseError        Kind = iota + 1 // the source text is not valid JSON
	InvalidCoordinate                 // a row index or column key does not address a cell
	NotAnArray                        // a row operation was applied to a non-array root
	ReadOnly                          // a mutation was attempted on a read-only session
	SessionClosed                     // an operation was attempted after Close
	NestedNotEditable                 // a nested table was opened on a non-container value
	PersistFailed                     // the host did not persist the serialized document
)

var kindStr = [...]string{
	ParseError:        "parse error",
	InvalidCoordinate: "invalid coordinate",
	NotAnArray:        "not an array",
	ReadOnly:          "read only",
	SessionClosed:     "session closed",
	NestedNotEditable: "nested value not editable",
	PersistFailed:     "persist failed",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindStr) {
		return kindStr[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error is the concrete type of errors reported by this package.
type Error struct {
	Kind Kind
	Err  error // the underlying cause, or nil
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind with no cause.
// This allows the sentinel values ErrParse, ErrInvalidCoordinate, and so on,
// to match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// Sentinel errors for use with errors.Is.
var (
	ErrParse             = &Error{Kind: ParseError}
	ErrInvalidCoordinate = &Error{Kind: InvalidCoordinate}
	ErrNotAnArray        = &Error{Kind: NotAnArray}
	ErrReadOnly          = &Error{Kind: ReadOnly}
	ErrSessionClosed     = &Error{Kind: SessionClosed}
	ErrNestedNotEditable = &Error{Kind: NestedNotEditable}
	ErrPersistFailed     = &Error{Kind: PersistFailed}
)

// KindOf returns the Kind of err, if it is or wraps an *Error. Otherwise it
// returns 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errorf(kind Kind, msg string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(msg, args...)}
}
