package paging

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of paging errors
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota

	// Construction errors
	ErrCodeConfig

	// Reference errors
	ErrCodeInvalidPage

	// Engine defects. Never returned, only raised through panic.
	ErrCodeInternalConsistency
)

// String returns a short name for the code
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConfig:
		return "CONFIG"
	case ErrCodeInvalidPage:
		return "INVALID_PAGE"
	case ErrCodeInternalConsistency:
		return "INTERNAL_CONSISTENCY"
	default:
		return "UNKNOWN"
	}
}

// PagingError represents a paging engine error with context
type PagingError struct {
	Code    ErrorCode
	Message string
	Op      string // Operation that failed
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *PagingError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *PagingError) Unwrap() error {
	return e.Err
}

// Is matches any *PagingError carrying the same code
func (e *PagingError) Is(target error) bool {
	if t, ok := target.(*PagingError); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is
var (
	ErrConfig              = &PagingError{Code: ErrCodeConfig, Message: "invalid configuration"}
	ErrInvalidPage         = &PagingError{Code: ErrCodeInvalidPage, Message: "invalid page"}
	ErrInternalConsistency = &PagingError{Code: ErrCodeInternalConsistency, Message: "internal consistency violation"}
)

// NewPagingError creates a new paging error
func NewPagingError(code ErrorCode, op, message string, err error) *PagingError {
	return &PagingError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Helper functions for common errors

func ErrNonPositive(op, what string, value int) *PagingError {
	return NewPagingError(
		ErrCodeConfig,
		op,
		fmt.Sprintf("%s must be positive, got %d", what, value),
		nil,
	)
}

func ErrPageOutOfRange(op string, page PageID, numPages int) *PagingError {
	return NewPagingError(
		ErrCodeInvalidPage,
		op,
		fmt.Sprintf("page %d out of range [0,%d)", page, numPages),
		nil,
	)
}

func ErrInconsistent(op, message string) *PagingError {
	return NewPagingError(ErrCodeInternalConsistency, op, message, nil)
}

// violation panics with an internal consistency error.
// Continuing after one would operate on corrupted state.
func violation(op, format string, args ...any) {
	panic(ErrInconsistent(op, fmt.Sprintf(format, args...)))
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// GetErrorCode returns the error code from an error, or ErrCodeUnknown
func GetErrorCode(err error) ErrorCode {
	var pe *PagingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrCodeUnknown
}
