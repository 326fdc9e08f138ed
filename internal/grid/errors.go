package grid

import (
	"errors"
	"fmt"
)

// GridError is a structured error returned by Grid operations that cannot
// be expressed as a boolean failure.
type GridError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes grid errors.
type ErrorCode string

const (
	// ErrCodeNoDataSource indicates Load or Save was called on a grid
	// without a bound DataSource.
	ErrCodeNoDataSource ErrorCode = "NO_DATA_SOURCE"

	// ErrCodeSaveInFlight indicates a second Save started while one was
	// still running.
	ErrCodeSaveInFlight ErrorCode = "SAVE_IN_FLIGHT"

	// ErrCodeInvalidPage indicates a page number or page size out of range.
	ErrCodeInvalidPage ErrorCode = "INVALID_PAGE"

	// ErrCodeEditInvalid indicates an open edit could not be committed
	// because its value failed validation.
	ErrCodeEditInvalid ErrorCode = "EDIT_INVALID"

	// ErrCodeCanceled indicates a listener vetoed the operation.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Error implements the error interface.
func (e *GridError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a GridError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

func newGridError(code ErrorCode, format string, args ...any) *GridError {
	return &GridError{Code: code, Message: fmt.Sprintf(format, args...)}
}
