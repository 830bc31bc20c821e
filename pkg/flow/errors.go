package flow

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the flow packages.
var (
	ErrInvalidPrincipal     = errors.New("invalid principal")
	ErrInvalidRoute         = errors.New("invalid route")
	ErrInvalidSessionKey    = errors.New("invalid session key")
	ErrInvalidIntent        = errors.New("invalid post-login intent")
	ErrNoPlanSelected       = errors.New("no plan selected")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrWizardTransition     = errors.New("invalid wizard transition")
	ErrPurchaseInFlight     = errors.New("purchase already in flight")
	ErrInvalidWatcherConfig = errors.New("invalid watcher config")
	ErrInvalidGuardConfig   = errors.New("invalid guard config")
	ErrActorUnavailable     = errors.New("actor not available")
)

// OperationError annotates a session-store failure with the flow
// component and step it surfaced from, so a gateway log line reads
// "intent.consume.store_get" rather than a bare store error.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation names the flow component that failed.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject names the step within the component.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code is the stable failure label for the step.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError annotates err with component, step, and failure labels.
// A nil err passes through untouched.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
