// Package errors defines the error taxonomy of the pool: typed errors that
// let callers distinguish environmental conditions (exhaustion, closed pool)
// from caller bugs (double release) when deciding whether to retry.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a pool error.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	// ErrCodeConnection - the factory could not create an underlying connection
	ErrCodeConnection
	// ErrCodePoolExhausted - no connection became available within the acquire timeout
	ErrCodePoolExhausted
	// ErrCodePoolClosed - operation attempted after Close
	ErrCodePoolClosed
	// ErrCodeRelease - release of a connection the pool did not issue, or a double release
	ErrCodeRelease
	// ErrCodeConfiguration - invalid pool options or unknown driver
	ErrCodeConfiguration
)

// String returns the string representation of ErrorCode
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConnection:
		return "connection"
	case ErrCodePoolExhausted:
		return "pool exhausted"
	case ErrCodePoolClosed:
		return "pool closed"
	case ErrCodeRelease:
		return "bad release"
	case ErrCodeConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// PoolError carries the failed operation and the database path alongside the
// underlying cause, so log lines can identify which pool misbehaved.
type PoolError struct {
	Code ErrorCode
	Op   string
	Path string
	Err  error
}

func (e *PoolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (path=%q): %v", e.Op, e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s (path=%q)", e.Op, e.Code, e.Path)
}

// Unwrap returns the underlying error
func (e *PoolError) Unwrap() error {
	return e.Err
}

// New creates a new PoolError with the given parameters
func New(code ErrorCode, op, path string, err error) *PoolError {
	return &PoolError{
		Code: code,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Wrap wraps an existing error into a PoolError. A nil err yields nil.
func Wrap(err error, code ErrorCode, op, path string) *PoolError {
	if err == nil {
		return nil
	}
	return &PoolError{
		Code: code,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// CodeOf extracts the ErrorCode from err, or ErrCodeUnknown when err is not
// a PoolError.
func CodeOf(err error) ErrorCode {
	var pe *PoolError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ErrCodeUnknown
}

// IsErrorCode checks whether err carries the given error code
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsPoolClosed reports whether err means the pool has been closed. Fatal for
// that pool instance; the caller must not retry against it.
func IsPoolClosed(err error) bool {
	return IsErrorCode(err, ErrCodePoolClosed)
}

// IsPoolExhausted reports whether err is an acquire timeout.
func IsPoolExhausted(err error) bool {
	return IsErrorCode(err, ErrCodePoolExhausted)
}

// IsCallerError reports whether err indicates a caller bug rather than an
// environmental condition.
func IsCallerError(err error) bool {
	return IsErrorCode(err, ErrCodeRelease)
}

// IsRetryable reports whether the caller may reasonably retry the operation
// against the same pool.
func IsRetryable(err error) bool {
	return IsPoolExhausted(err)
}
