package flow

import (
	"context"
	"fmt"
	"strings"
)

// SessionID identifies one browser session's server-side state.
type SessionID struct {
	value string
}

// NewSessionID validates and normalizes a session identifier.
func NewSessionID(raw string) (SessionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SessionID{}, fmt.Errorf("%w: empty session id", ErrInvalidSessionKey)
	}
	return SessionID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id SessionID) String() string {
	return id.value
}

// SessionStore is the session-scoped key-value contract used by the
// intent and parameter stores. Implementations live in internal/store
// (memstore, redisstore).
type SessionStore interface {
	Get(ctx context.Context, sessionID SessionID, key SessionKey) (string, bool, error)
	Set(ctx context.Context, sessionID SessionID, key SessionKey, value string) error
	Delete(ctx context.Context, sessionID SessionID, key SessionKey) error
}
