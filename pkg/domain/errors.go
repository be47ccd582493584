package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so transport layers can map it to a
// status code without inspecting message text.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation_error"
	KindPolicyViolation  ErrorKind = "policy_violation"
	KindConflict         ErrorKind = "conflict"
	KindForbidden        ErrorKind = "forbidden"
	KindInvalidOperation ErrorKind = "invalid_operation"
)

// Error is the common error type returned by domain and application code.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewNotFoundError indicates a referenced entity does not exist.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewValidationError indicates malformed or out-of-range input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewPolicyViolationError indicates input that is well-formed but rejected by
// a business rule.
func NewPolicyViolationError(message string) *Error {
	return &Error{Kind: KindPolicyViolation, Message: message}
}

// NewConflictError indicates the request conflicts with existing data.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError indicates the actor lacks permission for the entity.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewInvalidOperationError indicates a state-machine guard rejected the
// operation in the entity's current state.
func NewInvalidOperationError(message string) *Error {
	return &Error{Kind: KindInvalidOperation, Message: message}
}

// NewInvalidStateError indicates a disallowed state transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidOperation,
		Message: fmt.Sprintf("invalid transition from %s to %s", from, to),
	}
}

// KindOf extracts the ErrorKind from err, returning ok=false for non-domain
// errors.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
