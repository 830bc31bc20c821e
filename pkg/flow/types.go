package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Principal identifies an authenticated user.
type Principal struct {
	value string
}

// NewPrincipal validates and normalizes a principal string.
func NewPrincipal(raw string) (Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Principal{}, fmt.Errorf("%w: empty value", ErrInvalidPrincipal)
	}
	return Principal{value: trimmed}, nil
}

// String returns the normalized principal.
func (principal Principal) String() string {
	return principal.value
}

// IsZero reports whether the principal is unset.
func (principal Principal) IsZero() bool {
	return principal.value == ""
}

// SessionKey names a value in a session-scoped store.
type SessionKey struct {
	value string
}

// NewSessionKey validates and normalizes a session storage key.
func NewSessionKey(raw string) (SessionKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SessionKey{}, fmt.Errorf("%w: empty value", ErrInvalidSessionKey)
	}
	return SessionKey{value: trimmed}, nil
}

// String returns the normalized key.
func (key SessionKey) String() string {
	return key.value
}

// ParseAmount parses a user-entered decimal amount string. The amount
// must be a finite number strictly greater than zero.
func ParseAmount(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, trimmed)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAmount, trimmed)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return parsed, nil
}

// FormatUSD renders a dollar amount with two decimal places.
func FormatUSD(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', 2, 64)
}
