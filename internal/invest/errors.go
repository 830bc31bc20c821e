package invest

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the invest service. The
// messages on errors that reach end users are part of the contract the
// web tier renders verbatim.
var (
	ErrNotAuthenticated     = errors.New("caller is not authenticated")
	ErrNotAdmin             = errors.New("Unauthorized: Only admins can perform this action")
	ErrUnknownUser          = errors.New("unknown user")
	ErrUnknownPlan          = errors.New("unknown investment plan")
	ErrWalletNotInitialized = errors.New("wallet not initialized")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidPrincipal     = errors.New("invalid principal")
	ErrInvalidRole          = errors.New("invalid user role")
	ErrInvalidProfile       = errors.New("invalid user profile")
	ErrInvalidLead          = errors.New("invalid lead")
	ErrInvalidNumber        = errors.New("invalid user number")
	ErrNumberTaken          = errors.New("user number already registered")
	ErrNumberRegistered     = errors.New("caller already registered a number")
	ErrEmptyScreenshot      = errors.New("deposit screenshot is empty")
	ErrNotEligible          = errors.New("caller is not eligible to make a deposit")
	ErrInvalidBotConfig     = errors.New("invalid telegram bot config")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// Wire codes carried in error envelopes so clients never have to match
// on message text.
const (
	CodeNotAuthenticated     = "not_authenticated"
	CodeNotAdmin             = "not_admin"
	CodeUnknownUser          = "unknown_user"
	CodeUnknownPlan          = "unknown_plan"
	CodeWalletNotInitialized = "wallet_not_initialized"
	CodeInsufficientBalance  = "insufficient_balance"
	CodeNotEligible          = "not_eligible"
	CodeInvalidArgument      = "invalid_argument"
	CodeConflict             = "conflict"
	CodeInternal             = "internal"
)

// CodeOf maps a service error to its stable wire code.
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return CodeNotAuthenticated
	case errors.Is(err, ErrNotAdmin):
		return CodeNotAdmin
	case errors.Is(err, ErrUnknownUser):
		return CodeUnknownUser
	case errors.Is(err, ErrUnknownPlan):
		return CodeUnknownPlan
	case errors.Is(err, ErrWalletNotInitialized):
		return CodeWalletNotInitialized
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrNotEligible):
		return CodeNotEligible
	case errors.Is(err, ErrNumberTaken), errors.Is(err, ErrNumberRegistered):
		return CodeConflict
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidPrincipal),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidProfile),
		errors.Is(err, ErrInvalidLead),
		errors.Is(err, ErrInvalidNumber),
		errors.Is(err, ErrEmptyScreenshot),
		errors.Is(err, ErrInvalidBotConfig):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

// ErrOfCode maps a wire code back to the matching sentinel so clients
// can use errors.Is on decoded failures. Unknown codes return nil.
func ErrOfCode(code string) error {
	switch code {
	case CodeNotAuthenticated:
		return ErrNotAuthenticated
	case CodeNotAdmin:
		return ErrNotAdmin
	case CodeUnknownUser:
		return ErrUnknownUser
	case CodeUnknownPlan:
		return ErrUnknownPlan
	case CodeWalletNotInitialized:
		return ErrWalletNotInitialized
	case CodeInsufficientBalance:
		return ErrInsufficientBalance
	case CodeNotEligible:
		return ErrNotEligible
	default:
		return nil
	}
}

// OperationError is how the persistence layer reports failures into the
// service: the store tags each error with the operation, the record it
// touched, and a code, keeping sentinel matching via errors.Is intact.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the store error so sentinel checks see through the tag.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation identifies the store operation that failed.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject identifies the record the operation touched.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code classifies the failure for operation logs.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError tags a store error with operation, subject, and code.
// Stores call it at their boundary; nil errors stay nil.
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
