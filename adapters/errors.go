package adapters

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the class of an adapter failure
type ErrorKind string

const (
	KindUnsupportedCategory ErrorKind = "unsupported_category"
	KindUnsupportedProvider ErrorKind = "unsupported_provider"
	KindAlreadyRegistered   ErrorKind = "already_registered"
	KindInitialization      ErrorKind = "initialization"
	KindAlreadyInitialized  ErrorKind = "already_initialized"
	KindNotInitialized      ErrorKind = "not_initialized"
	KindOperation           ErrorKind = "operation"
	KindCancelled           ErrorKind = "cancelled"
	KindClosed              ErrorKind = "closed"
)

// Error is the error type returned by the adapter layer
type Error struct {
	Kind     ErrorKind
	Category Category
	Provider ProviderName

	// Code is a provider-specific failure code (e.g. "queue_full")
	Code    string
	Message string

	// Retryable is a hint from the provider; adapters never retry themselves
	Retryable bool

	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Category != "" {
		if e.Provider != "" {
			msg = fmt.Sprintf("%s/%s: %s", e.Category, e.Provider, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Category, msg)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks
var (
	ErrUnsupportedCategory       = &Error{Kind: KindUnsupportedCategory, Message: "unsupported adapter category"}
	ErrUnsupportedProvider       = &Error{Kind: KindUnsupportedProvider, Message: "unsupported adapter provider"}
	ErrProviderAlreadyRegistered = &Error{Kind: KindAlreadyRegistered, Message: "provider already registered"}
	ErrInitialization            = &Error{Kind: KindInitialization, Message: "adapter initialization failed"}
	ErrAlreadyInitialized        = &Error{Kind: KindAlreadyInitialized, Message: "adapter already initialized"}
	ErrNotInitialized            = &Error{Kind: KindNotInitialized, Message: "adapter not initialized"}
	ErrAdapterOperation          = &Error{Kind: KindOperation, Message: "adapter operation failed"}
	ErrCancelled                 = &Error{Kind: KindCancelled, Message: "operation cancelled"}
	ErrClosed                    = &Error{Kind: KindClosed, Message: "adapter closed"}
)

// NewInitializationError reports a failed Initialize call
func NewInitializationError(category Category, provider ProviderName, message string, cause error) *Error {
	return &Error{
		Kind:     KindInitialization,
		Category: category,
		Provider: provider,
		Message:  message,
		Err:      cause,
	}
}

// NewOperationError reports a failure of the wrapped provider during HandleData
func NewOperationError(category Category, provider ProviderName, code, message string, retryable bool, cause error) *Error {
	return &Error{
		Kind:      KindOperation,
		Category:  category,
		Provider:  provider,
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Err:       cause,
	}
}

// IsRetryable reports whether the provider flagged the failure as transient
func IsRetryable(err error) bool {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Retryable
	}
	return false
}

// ErrorCode returns the provider code of an adapter error, or empty string
func ErrorCode(err error) string {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Code
	}
	return ""
}

func newKindError(kind ErrorKind, category Category, provider ProviderName, message string) *Error {
	return &Error{
		Kind:     kind,
		Category: category,
		Provider: provider,
		Message:  message,
	}
}
