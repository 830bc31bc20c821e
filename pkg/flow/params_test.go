package flow

import (
	"context"
	"testing"
)

type fakeSessionStore struct {
	values map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{values: map[string]string{}}
}

func (store *fakeSessionStore) Get(_ context.Context, sessionID SessionID, key SessionKey) (string, bool, error) {
	value, found := store.values[sessionID.String()+"/"+key.String()]
	return value, found, nil
}

func (store *fakeSessionStore) Set(_ context.Context, sessionID SessionID, key SessionKey, value string) error {
	store.values[sessionID.String()+"/"+key.String()] = value
	return nil
}

func (store *fakeSessionStore) Delete(_ context.Context, sessionID SessionID, key SessionKey) error {
	delete(store.values, sessionID.String()+"/"+key.String())
	return nil
}

func mustSessionID(t *testing.T, raw string) SessionID {
	t.Helper()
	sessionID, err := NewSessionID(raw)
	if err != nil {
		t.Fatalf("session id init failed: %v", err)
	}
	return sessionID
}

func TestHashParamRoutedAndBareForms(t *testing.T) {
	if value, found := HashParam("#/dashboard?adminToken=abc&other=1", "adminToken"); !found || value != "abc" {
		t.Fatalf("routed form: got (%q,%v)", value, found)
	}
	if value, found := HashParam("#adminToken=abc", "adminToken"); !found || value != "abc" {
		t.Fatalf("bare form: got (%q,%v)", value, found)
	}
	if _, found := HashParam("#/dashboard", "adminToken"); found {
		t.Fatalf("expected absent parameter")
	}
}

func TestStripHashParamPreservesRouteAndOthers(t *testing.T) {
	stripped := StripHashParam("#/dashboard?adminToken=abc&other=1", "adminToken")
	if stripped != "#/dashboard?other=1" {
		t.Fatalf("unexpected stripped hash %q", stripped)
	}
	if StripHashParam("#/dashboard?adminToken=abc", "adminToken") != "#/dashboard" {
		t.Fatalf("expected bare route after stripping only parameter")
	}
	if StripHashParam("#/dashboard", "adminToken") != "#/dashboard" {
		t.Fatalf("expected hash without query untouched")
	}
	if StripHashParam("#adminToken=abc", "adminToken") != "" {
		t.Fatalf("expected empty hash after stripping bare secret")
	}
}

func TestSecretParamExtractStoreStrip(t *testing.T) {
	store := newFakeSessionStore()
	params, err := NewParamStore(store)
	if err != nil {
		t.Fatalf("param store init failed: %v", err)
	}
	sessionID := mustSessionID(t, "session-1")

	value, strippedHash, found, err := params.Secret(context.Background(), sessionID, "#/dashboard?adminToken=topsecret", "adminToken")
	if err != nil {
		t.Fatalf("secret extraction failed: %v", err)
	}
	if !found || value != "topsecret" {
		t.Fatalf("expected secret from hash, got (%q,%v)", value, found)
	}
	if strippedHash != "#/dashboard" {
		t.Fatalf("expected stripped hash, got %q", strippedHash)
	}

	// Second lookup must come from the session store and leave the
	// (already clean) hash alone.
	value, unchangedHash, found, err := params.Secret(context.Background(), sessionID, "#/dashboard", "adminToken")
	if err != nil {
		t.Fatalf("secret lookup failed: %v", err)
	}
	if !found || value != "topsecret" {
		t.Fatalf("expected stored secret, got (%q,%v)", value, found)
	}
	if unchangedHash != "#/dashboard" {
		t.Fatalf("expected hash untouched, got %q", unchangedHash)
	}
}

func TestSecretParamAbsentEverywhere(t *testing.T) {
	params, err := NewParamStore(newFakeSessionStore())
	if err != nil {
		t.Fatalf("param store init failed: %v", err)
	}
	value, rawHash, found, err := params.Secret(context.Background(), mustSessionID(t, "session-1"), "#/wallet", "adminToken")
	if err != nil {
		t.Fatalf("secret lookup failed: %v", err)
	}
	if found || value != "" {
		t.Fatalf("expected absent secret, got (%q,%v)", value, found)
	}
	if rawHash != "#/wallet" {
		t.Fatalf("expected hash untouched, got %q", rawHash)
	}
}

func TestPersistedParamHashTakesPrecedenceAndIsStored(t *testing.T) {
	store := newFakeSessionStore()
	params, err := NewParamStore(store)
	if err != nil {
		t.Fatalf("param store init failed: %v", err)
	}
	sessionID := mustSessionID(t, "session-1")

	value, found, err := params.Persisted(context.Background(), sessionID, "#/plans?ref=partner", "ref")
	if err != nil {
		t.Fatalf("persisted lookup failed: %v", err)
	}
	if !found || value != "partner" {
		t.Fatalf("expected hash value, got (%q,%v)", value, found)
	}

	value, found, err = params.Persisted(context.Background(), sessionID, "#/plans", "ref")
	if err != nil {
		t.Fatalf("persisted lookup failed: %v", err)
	}
	if !found || value != "partner" {
		t.Fatalf("expected stored value on later navigation, got (%q,%v)", value, found)
	}

	if err := params.Clear(context.Background(), sessionID, "ref"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found, _ := params.Persisted(context.Background(), sessionID, "#/plans", "ref"); found {
		t.Fatalf("expected value cleared")
	}
}
