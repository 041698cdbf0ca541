package kbharvest

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be generic and mappable to a user-facing message or
// an exit status. Codes that matter to the pipeline's skip/continue
// policy (blocked fetches, selector misses, short content) get their own
// code so callers can branch on ErrorCode without string matching.
const (
	EBLOCKED      = "blocked"       // fetch rejected by anti-bot or non-2xx response
	ECONFIG       = "config"        // invalid source or pipeline configuration
	EINTERNAL     = "internal"      // internal error
	EINVALID      = "invalid"       // validation failed
	ENOTFOUND     = "not_found"     // entity does not exist
	EPDF          = "pdf"           // unreadable PDF page or document
	ESELECTORMISS = "selector_miss" // extraction rule matched nothing
	ETOOSHORT     = "too_short"     // normalized content below configured minimum
	EUNAVAILABLE  = "unavailable"   // network failure or timeout
)

// Error represents an application-specific error. Application errors can
// be unwrapped by the caller to extract the machine-readable code and a
// human-readable message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface. Not used by the application
// otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("kbharvest error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
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
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
