package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrorType classifies a DomainError; handlers map it to an HTTP status
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeUnavailable  ErrorType = "unavailable"
)

// DomainError is the error returned by the attendance, leave and
// performance services. Message is safe to show to callers; Err is not.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	msg := string(e.Type) + ": " + e.Message
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches any DomainError of the same type, so errors.Is(err, ErrEmployeeNotFound)
// holds for every not_found error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Type == t.Type
}

// WithDetail sets a detail key and returns e for chaining
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{Type: errType, Message: message, Err: err, Details: map[string]interface{}{}}
}

// NewValidationError builds a validation error from a format string
func NewValidationError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrorTypeValidation, fmt.Sprintf(format, args...), nil)
}

// WrapInternal hides err behind an internal error carrying message
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapUnavailable marks err as a transient backend outage
func WrapUnavailable(message string, err error) error {
	return NewDomainError(ErrorTypeUnavailable, message, err)
}

// WrapStorage classifies a repository failure: lost connections and expired
// deadlines are unavailable, anything else is internal.
func WrapStorage(message string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return WrapUnavailable(message, err)
	default:
		return WrapInternal(message, err)
	}
}

// Shared sentinels. They are compared by type, never mutated: use
// NewDomainError when details are needed.
var (
	ErrEmployeeNotFound   = NewDomainError(ErrorTypeNotFound, "employee not found", nil)
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrForbidden          = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrInternal           = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrStorageUnavailable = NewDomainError(ErrorTypeUnavailable, "storage unavailable", nil)
)

// Attendance
var (
	ErrInvalidEntryType = NewDomainError(ErrorTypeValidation, "entry type must be login or logout", nil)
	ErrAlreadyLoggedIn  = NewDomainError(ErrorTypeValidation, "employee is already logged in", nil)
	ErrNotLoggedIn      = NewDomainError(ErrorTypeValidation, "employee is not logged in", nil)
)

// Leave
var (
	ErrLeaveRequestNotFound = NewDomainError(ErrorTypeNotFound, "leave request not found", nil)
	ErrInvalidTransition    = NewDomainError(ErrorTypeValidation, "invalid leave status transition", nil)
	ErrOverlappingLeave     = NewDomainError(ErrorTypeConflict, "leave request overlaps an existing request", nil)
)

// GetErrorType returns the type of the first DomainError in err's chain, or ""
func GetErrorType(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// GetErrorDetails returns the details of the first DomainError in err's chain
func GetErrorDetails(err error) map[string]interface{} {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

func IsNotFoundError(err error) bool     { return GetErrorType(err) == ErrorTypeNotFound }
func IsValidationError(err error) bool   { return GetErrorType(err) == ErrorTypeValidation }
func IsUnauthorizedError(err error) bool { return GetErrorType(err) == ErrorTypeUnauthorized }
func IsForbiddenError(err error) bool    { return GetErrorType(err) == ErrorTypeForbidden }
func IsConflictError(err error) bool     { return GetErrorType(err) == ErrorTypeConflict }
func IsInternalError(err error) bool     { return GetErrorType(err) == ErrorTypeInternal }
func IsUnavailableError(err error) bool  { return GetErrorType(err) == ErrorTypeUnavailable }
