// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// ErrConflict indicates a resource already exists or is linked elsewhere.
// Check with errors.Is().
var ErrConflict = errors.New("resource conflict")

// AccountError represents account service call failures with context.
type AccountError struct {
	Operation  string
	StatusCode int
	Detail     string
	Err        error
}

func (e *AccountError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("account error (op=%s, status=%d, detail=%s): %v", e.Operation, e.StatusCode, e.Detail, e.Err)
	}
	return fmt.Sprintf("account error (op=%s): %v", e.Operation, e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

// NewAccountError creates a new account service error.
func NewAccountError(operation string, statusCode int, detail string, err error) *AccountError {
	return &AccountError{
		Operation:  operation,
		StatusCode: statusCode,
		Detail:     detail,
		Err:        err,
	}
}
