package memstore

import (
	"context"
	"testing"

	"github.com/NexaProfitLabs/platform/pkg/flow"
)

func mustSessionID(test *testing.T, raw string) flow.SessionID {
	test.Helper()
	sessionID, err := flow.NewSessionID(raw)
	if err != nil {
		test.Fatalf("session id %q: %v", raw, err)
	}
	return sessionID
}

func mustKey(test *testing.T, raw string) flow.SessionKey {
	test.Helper()
	key, err := flow.NewSessionKey(raw)
	if err != nil {
		test.Fatalf("key %q: %v", raw, err)
	}
	return key
}

func TestSetGetDeleteRoundTrip(test *testing.T) {
	test.Parallel()
	store := New()
	sessionID := mustSessionID(test, "session-1")
	key := mustKey(test, "postLoginIntent")

	if _, exists, err := store.Get(context.Background(), sessionID, key); err != nil || exists {
		test.Fatalf("expected empty store, got exists=%v err=%v", exists, err)
	}

	if err := store.Set(context.Background(), sessionID, key, "value-1"); err != nil {
		test.Fatalf("set: %v", err)
	}
	if err := store.Set(context.Background(), sessionID, key, "value-2"); err != nil {
		test.Fatalf("overwrite: %v", err)
	}
	value, exists, err := store.Get(context.Background(), sessionID, key)
	if err != nil || !exists || value != "value-2" {
		test.Fatalf("get returned %q exists=%v err=%v", value, exists, err)
	}

	if err := store.Delete(context.Background(), sessionID, key); err != nil {
		test.Fatalf("delete: %v", err)
	}
	if _, exists, _ := store.Get(context.Background(), sessionID, key); exists {
		test.Fatalf("value survived delete")
	}
	if err := store.Delete(context.Background(), sessionID, key); err != nil {
		test.Fatalf("repeat delete: %v", err)
	}
}

func TestSessionsAreIsolated(test *testing.T) {
	test.Parallel()
	store := New()
	key := mustKey(test, "secret")

	if err := store.Set(context.Background(), mustSessionID(test, "session-1"), key, "alpha"); err != nil {
		test.Fatalf("set: %v", err)
	}
	if _, exists, _ := store.Get(context.Background(), mustSessionID(test, "session-2"), key); exists {
		test.Fatalf("value leaked across sessions")
	}
}
