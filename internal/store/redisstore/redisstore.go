// Package redisstore provides a Redis-backed flow.SessionStore so the
// gateway can run with more than one replica.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NexaProfitLabs/platform/pkg/flow"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long idle session state survives in Redis.
const DefaultTTL = 24 * time.Hour

var errNilClient = errors.New("redisstore: nil redis client")

// Store implements flow.SessionStore over a Redis hash per session.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the session TTL.
func WithTTL(ttl time.Duration) Option {
	return func(store *Store) {
		if ttl > 0 {
			store.ttl = ttl
		}
	}
}

// New wires a Store over an existing Redis client.
func New(client *redis.Client, options ...Option) (*Store, error) {
	if client == nil {
		return nil, errNilClient
	}
	store := &Store{client: client, ttl: DefaultTTL}
	for _, option := range options {
		if option != nil {
			option(store)
		}
	}
	return store, nil
}

// Get returns the value stored for the session key.
func (store *Store) Get(ctx context.Context, sessionID flow.SessionID, key flow.SessionKey) (string, bool, error) {
	value, err := store.client.HGet(ctx, sessionHashKey(sessionID), key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore get: %w", err)
	}
	return value, true, nil
}

// Set stores the value for the session key and refreshes the session
// TTL.
func (store *Store) Set(ctx context.Context, sessionID flow.SessionID, key flow.SessionKey, value string) error {
	hashKey := sessionHashKey(sessionID)
	pipeline := store.client.TxPipeline()
	pipeline.HSet(ctx, hashKey, key.String(), value)
	pipeline.Expire(ctx, hashKey, store.ttl)
	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore set: %w", err)
	}
	return nil
}

// Delete removes the value for the session key.
func (store *Store) Delete(ctx context.Context, sessionID flow.SessionID, key flow.SessionKey) error {
	if err := store.client.HDel(ctx, sessionHashKey(sessionID), key.String()).Err(); err != nil {
		return fmt.Errorf("redisstore delete: %w", err)
	}
	return nil
}

func sessionHashKey(sessionID flow.SessionID) string {
	return "session:" + sessionID.String()
}
