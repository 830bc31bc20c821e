// Package memstore provides an in-memory flow.SessionStore for tests
// and single-node deployments.
package memstore

import (
	"context"
	"sync"

	"github.com/NexaProfitLabs/platform/pkg/flow"
)

// Store keeps session state in process memory. Entries live until
// deleted; there is no TTL.
type Store struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: make(map[string]map[string]string)}
}

// Get returns the value stored for the session key.
func (store *Store) Get(_ context.Context, sessionID flow.SessionID, key flow.SessionKey) (string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	session, exists := store.values[sessionID.String()]
	if !exists {
		return "", false, nil
	}
	value, exists := session[key.String()]
	return value, exists, nil
}

// Set stores the value for the session key, overwriting any prior
// value.
func (store *Store) Set(_ context.Context, sessionID flow.SessionID, key flow.SessionKey, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, exists := store.values[sessionID.String()]
	if !exists {
		session = make(map[string]string)
		store.values[sessionID.String()] = session
	}
	session[key.String()] = value
	return nil
}

// Delete removes the value for the session key. Deleting an absent key
// is a no-op.
func (store *Store) Delete(_ context.Context, sessionID flow.SessionID, key flow.SessionKey) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, exists := store.values[sessionID.String()]
	if !exists {
		return nil
	}
	delete(session, key.String())
	if len(session) == 0 {
		delete(store.values, sessionID.String())
	}
	return nil
}
