// Package apperr defines the error taxonomy shared by the stores, the engine
// gateway and the services. Codes are stable and machine-readable; the HTTP
// layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

const (
	EInternal           = "internal"
	ENotFound           = "not_found"
	EForbidden          = "forbidden"
	EAccessDenied       = "access_denied"
	EConflict           = "conflict"
	EInvalid            = "invalid"
	EUnauthorized       = "unauthorized"
	EEngineUnavailable  = "engine_unavailable"
	EEngineInconsistent = "engine_inconsistent"

	// EStoreConflict marks a unique-constraint race in the relational store.
	// Services retry on it; it never reaches a caller.
	EStoreConflict = "store_conflict"
)

// Error carries a Code for automated handling, a Msg safe to show to the
// caller, the Op that failed and the underlying Err for operators.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "<%s>", e.Code)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error with a code and a caller-facing message.
func New(code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Wrap builds an error with a code around an underlying cause.
func Wrap(code, op, msg string, err error) *Error {
	return &Error{Code: code, Op: op, Msg: msg, Err: err}
}

// ErrorCode returns the code of the outermost *Error in the chain that has
// one. Plain errors are EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return EInternal
}

// ErrorMessage returns the caller-facing message of the outermost *Error
// that has one.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return "an internal error has occurred"
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// Retryable reports whether the caller may retry the operation unchanged.
func Retryable(err error) bool {
	return Is(err, EEngineUnavailable)
}
