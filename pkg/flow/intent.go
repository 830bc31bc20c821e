package flow

import (
	"context"
	"encoding/json"
)

// PostLoginIntent records where a user wanted to go (and optionally
// what they wanted to do) before being redirected through the external
// authentication provider.
type PostLoginIntent struct {
	Route  Route  `json:"route"`
	Action string `json:"action,omitempty"`
}

// IntentStore persists at most one pending post-login intent per
// session. The last write wins.
type IntentStore struct {
	store SessionStore
	key   SessionKey
}

// NewIntentStore wires an IntentStore over a session store.
func NewIntentStore(store SessionStore) (*IntentStore, error) {
	if store == nil {
		return nil, WrapError("intent", "store", "nil_dependency", ErrInvalidIntent)
	}
	key, err := NewSessionKey(postLoginIntentKey)
	if err != nil {
		return nil, err
	}
	return &IntentStore{store: store, key: key}, nil
}

// Set persists the intent, overwriting any prior value.
func (intents *IntentStore) Set(ctx context.Context, sessionID SessionID, intent PostLoginIntent) error {
	if _, err := ParseRoute(string(intent.Route)); err != nil {
		return err
	}
	encoded, err := json.Marshal(intent)
	if err != nil {
		return WrapError("intent", "set", "encode", err)
	}
	if err := intents.store.Set(ctx, sessionID, intents.key, string(encoded)); err != nil {
		return WrapError("intent", "set", "store_set", err)
	}
	return nil
}

// Consume returns the pending intent and deletes it. A second
// consecutive call returns nil. A stored value that fails to decode is
// discarded and reported as absent, matching the read-once contract.
func (intents *IntentStore) Consume(ctx context.Context, sessionID SessionID) (*PostLoginIntent, error) {
	raw, found, err := intents.store.Get(ctx, sessionID, intents.key)
	if err != nil {
		return nil, WrapError("intent", "consume", "store_get", err)
	}
	if !found {
		return nil, nil
	}
	if err := intents.store.Delete(ctx, sessionID, intents.key); err != nil {
		return nil, WrapError("intent", "consume", "store_delete", err)
	}
	return decodeIntent(raw), nil
}

// Peek returns the pending intent without consuming it.
func (intents *IntentStore) Peek(ctx context.Context, sessionID SessionID) (*PostLoginIntent, error) {
	raw, found, err := intents.store.Get(ctx, sessionID, intents.key)
	if err != nil {
		return nil, WrapError("intent", "peek", "store_get", err)
	}
	if !found {
		return nil, nil
	}
	return decodeIntent(raw), nil
}

func decodeIntent(raw string) *PostLoginIntent {
	var intent PostLoginIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil
	}
	return &intent
}
