package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for transport mapping.
type ErrorKind int

const (
	// KindValidation covers bad input shape and self-action violations;
	// surfaced verbatim to the caller.
	KindValidation ErrorKind = iota

	// KindNotFound covers missing and not-owned resources; the two are never
	// distinguished so existence does not leak.
	KindNotFound

	// KindAuthorization covers insufficient permission; the message never
	// names the missing permission.
	KindAuthorization

	// KindStorage covers persistence failures; surfaced generically.
	KindStorage
)

// ServiceError is the typed failure returned by every service operation.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewAuthorizationError() *ServiceError {
	return &ServiceError{Kind: KindAuthorization, Message: "insufficient permissions"}
}

func NewStorageError(err error) *ServiceError {
	return &ServiceError{Kind: KindStorage, Message: "storage operation failed", Err: err}
}

// WrapValidation attaches an underlying error to a validation failure so the
// field detail survives for the handler layer.
func WrapValidation(err error) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: "validation failed", Err: err}
}

// KindOf extracts the error kind; unknown errors map to storage.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStorage
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }
