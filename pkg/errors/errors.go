package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrBackendUnavailable  = errors.New("backend service unavailable")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodeInvalidID           = "INVALID_ID"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeBackendError        = "BACKEND_ERROR"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapInstallmentNotFound(loanID, installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %s not found in loan %s", installmentID, loanID),
		ErrInstallmentNotFound,
	)
}

func WrapInvalidID(field string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidID,
		fmt.Sprintf("%s must not be empty", field),
		ErrInvalidID,
	)
}

func WrapInvalidRequest(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRequest,
		"request validation failed",
		fmt.Errorf("%w: %v", ErrInvalidRequest, err),
	)
}

// WrapBackendError keeps the message the backend sent, or the fallback when it sent none
func WrapBackendError(message, fallback string, err error) *BusinessError {
	if message == "" {
		message = fallback
	}
	return NewBusinessError(ErrCodeBackendError, message, fmt.Errorf("%w: %w", ErrBackendUnavailable, err))
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
