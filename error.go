package vorlage

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be generic; they map the error taxonomy of the
// extraction and rendering pipeline onto a small, stable set of codes that
// callers can branch on without string matching.
const (
	ECONFLICT = "conflict"       // conflicting state, e.g. duplicate slot IDs
	ECORPUS   = "corpus"         // too few valid documents to extract from
	EINTERNAL = "internal"       // unexpected internal error
	EINVALID  = "invalid"        // validation failed, incl. schema errors
	ENOTFOUND = "not_found"      // artifact or family does not exist
)

// Error represents an application-specific error. Application errors carry
// a machine-readable code and a human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("vorlage error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL. A nil error returns an
// empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message. A nil error returns an
// empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper for constructing an *Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
