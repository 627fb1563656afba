package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	ErrConflict = errors.New("resource conflict")

	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// Domain errors. Each one wraps a category above so callers can match either.
var (
	ErrLoanNotFound     = fmt.Errorf("loan %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("loan product %w", ErrNotFound)
	ErrCoSignerNotFound = fmt.Errorf("co-signer %w", ErrNotFound)
	ErrPaymentNotFound  = fmt.Errorf("payment %w", ErrNotFound)

	ErrInvalidAmount             = fmt.Errorf("%w: payment amount must be a positive number of whole cents", ErrValidation)
	ErrExceedsOutstandingBalance = fmt.Errorf("%w: payment amount exceeds outstanding balance", ErrValidation)
	ErrInvalidDate               = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrNoDisbursementDate        = fmt.Errorf("%w: loan has not been disbursed", ErrValidation)
	ErrInvalidLoanParameters     = fmt.Errorf("%w: invalid loan parameters", ErrValidation)

	ErrAlreadyDisbursed      = fmt.Errorf("%w: loan already disbursed", ErrConflict)
	ErrScheduleAlreadyExists = fmt.Errorf("%w: repayment schedule already exists", ErrConflict)
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// StateTransitionError reports an operation attempted from the wrong lifecycle state.
type StateTransitionError struct {
	Operation string
	Current   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: loan is in status %q", e.Operation, e.Current)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

func NewStateTransitionError(operation, current string) error {
	return &StateTransitionError{Operation: operation, Current: current}
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
