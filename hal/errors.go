package hal

import (
	"errors"
	"fmt"
)

// Space classifies who is at fault for an error.
type Space uint8

const (
	SpaceGeneric Space = iota
	// SpaceUser means the caller supplied invalid arguments or called out of order.
	SpaceUser
	// SpaceInternal means a host-side bug or broken invariant.
	SpaceInternal
	// SpaceWorld means the hardware or environment failed.
	SpaceWorld
)

func (s Space) String() string {
	switch s {
	case SpaceGeneric:
		return "generic"
	case SpaceUser:
		return "user"
	case SpaceInternal:
		return "internal"
	case SpaceWorld:
		return "world"
	default:
		return "unknown"
	}
}

// Code is the detail of an error within its space.
type Code uint16

const (
	CodeGeneric Code = iota
	CodeNotImplemented
	CodeInvalidArgument
	CodeInvalidState
	CodeInvalidLength
	CodeInvalidAlign
	CodeNotFound
	CodeNotEnough
	CodeOutOfBounds
)

func (c Code) String() string {
	switch c {
	case CodeGeneric:
		return "generic"
	case CodeNotImplemented:
		return "not_implemented"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeInvalidState:
		return "invalid_state"
	case CodeInvalidLength:
		return "invalid_length"
	case CodeInvalidAlign:
		return "invalid_align"
	case CodeNotFound:
		return "not_found"
	case CodeNotEnough:
		return "not_enough"
	case CodeOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// Error is a domain error reported by a board capability.
//
// It is returned to the applet as a normal reply, never as a trap.
type Error struct {
	Space Space
	Code  Code
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Space.String() + "/" + e.Code.String() + ": " + e.Msg
	}
	return e.Space.String() + "/" + e.Code.String()
}

// Is matches on space and code, ignoring the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Space == t.Space && e.Code == t.Code
}

func ErrUser(code Code) *Error     { return &Error{Space: SpaceUser, Code: code} }
func ErrWorld(code Code) *Error    { return &Error{Space: SpaceWorld, Code: code} }
func ErrInternal(code Code) *Error { return &Error{Space: SpaceInternal, Code: code} }

// Errorf builds an Error with a formatted message.
func Errorf(space Space, code Code, format string, args ...any) *Error {
	return &Error{Space: space, Code: code, Msg: fmt.Sprintf(format, args...)}
}

var (
	// ErrUnsupported is returned by every operation of a missing capability.
	ErrUnsupported = &Error{Space: SpaceWorld, Code: CodeNotImplemented}

	ErrInvalidArgument = ErrUser(CodeInvalidArgument)
	ErrInvalidState    = ErrUser(CodeInvalidState)
	ErrInvalidLength   = ErrUser(CodeInvalidLength)
	ErrNotFound        = ErrUser(CodeNotFound)
	ErrNotEnough       = ErrWorld(CodeNotEnough)
)

// ErrorOf extracts the domain error carried by err.
//
// Errors that carry no domain error are reported as internal/generic.
func ErrorOf(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal(CodeGeneric)
}
