// internal/cursor/errors.go
package cursor

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures returned by directed actions.
type ErrorCode string

const (
	// ErrCodeConfiguration marks an unknown persona or invalid options. It is
	// raised before any randomness is consumed.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeTargetNotFound marks a selector that matched no element.
	ErrCodeTargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	// ErrCodeTargetUnreachable marks an element that kept evading the cursor
	// until the retry budget ran out.
	ErrCodeTargetUnreachable ErrorCode = "TARGET_UNREACHABLE"
	// ErrCodeGeometryUnavailable marks an element whose bounding box could
	// not be obtained by any strategy. It is a kind of resolution failure.
	ErrCodeGeometryUnavailable ErrorCode = "GEOMETRY_UNAVAILABLE"
)

// Sentinels for errors.Is.
var (
	ErrConfiguration       = errors.New("invalid cursor configuration")
	ErrTargetNotFound      = errors.New("target not found")
	ErrTargetUnreachable   = errors.New("target unreachable")
	ErrGeometryUnavailable = errors.New("element geometry unavailable")
)

// Error is the error type returned by Cursor methods.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func newError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cursor: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("cursor: %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel belonging to the error's code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeConfiguration:
		return target == ErrConfiguration
	case ErrCodeTargetNotFound:
		return target == ErrTargetNotFound
	case ErrCodeTargetUnreachable:
		return target == ErrTargetUnreachable
	case ErrCodeGeometryUnavailable:
		return target == ErrGeometryUnavailable || target == ErrTargetNotFound
	}
	return false
}

// CodeOf extracts the ErrorCode of err, or "" when err is not a cursor error.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
