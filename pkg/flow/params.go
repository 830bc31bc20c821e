package flow

import (
	"context"
	"net/url"
	"strings"
)

// HashParam extracts a named parameter embedded in a hash fragment.
// Both the bare form ("#token=xxx") and the routed form
// ("#/dashboard?token=xxx") are recognized.
func HashParam(rawHash string, name string) (string, bool) {
	_, query := splitHash(rawHash)
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", false
	}
	if !values.Has(name) {
		return "", false
	}
	return values.Get(name), true
}

// StripHashParam removes a named parameter from a hash fragment while
// preserving the route path and any remaining parameters. Used to take
// sensitive values out of the address bar after extraction.
func StripHashParam(rawHash string, name string) string {
	path, query := splitHash(rawHash)
	values, err := url.ParseQuery(query)
	if err != nil {
		return rawHash
	}
	values.Del(name)
	remaining := values.Encode()
	switch {
	case path == "" && remaining == "":
		return ""
	case remaining == "":
		return "#" + path
	case path == "":
		return "#" + remaining
	default:
		return "#" + path + "?" + remaining
	}
}

// ParamStore persists hash/query parameters across navigations in a
// session-scoped store.
type ParamStore struct {
	store SessionStore
}

// NewParamStore wires a ParamStore over a session store.
func NewParamStore(store SessionStore) (*ParamStore, error) {
	if store == nil {
		return nil, WrapError("params", "store", "nil_dependency", ErrInvalidSessionKey)
	}
	return &ParamStore{store: store}, nil
}

// Persisted returns a parameter from the hash fragment, falling back to
// the session store. A value found in the hash is stored for later
// navigations before being returned.
func (params *ParamStore) Persisted(ctx context.Context, sessionID SessionID, rawHash string, name string) (string, bool, error) {
	key, err := NewSessionKey(name)
	if err != nil {
		return "", false, err
	}
	if value, found := HashParam(rawHash, name); found {
		if err := params.store.Set(ctx, sessionID, key, value); err != nil {
			return "", false, WrapError("params", "persisted", "store_set", err)
		}
		return value, true, nil
	}
	value, found, err := params.store.Get(ctx, sessionID, key)
	if err != nil {
		return "", false, WrapError("params", "persisted", "store_get", err)
	}
	return value, found, nil
}

// Secret returns a sensitive parameter, preferring the session store
// over the hash so the URL is touched only once. When the value is
// pulled from the hash it is persisted and the returned hash has the
// parameter stripped; otherwise the hash is returned unchanged.
func (params *ParamStore) Secret(ctx context.Context, sessionID SessionID, rawHash string, name string) (string, string, bool, error) {
	key, err := NewSessionKey(name)
	if err != nil {
		return "", rawHash, false, err
	}
	stored, found, err := params.store.Get(ctx, sessionID, key)
	if err != nil {
		return "", rawHash, false, WrapError("params", "secret", "store_get", err)
	}
	if found {
		return stored, rawHash, true, nil
	}
	value, inHash := HashParam(rawHash, name)
	if !inHash {
		return "", rawHash, false, nil
	}
	if err := params.store.Set(ctx, sessionID, key, value); err != nil {
		return "", rawHash, false, WrapError("params", "secret", "store_set", err)
	}
	return value, StripHashParam(rawHash, name), true, nil
}

// Clear removes a persisted parameter from the session store.
func (params *ParamStore) Clear(ctx context.Context, sessionID SessionID, name string) error {
	key, err := NewSessionKey(name)
	if err != nil {
		return err
	}
	if err := params.store.Delete(ctx, sessionID, key); err != nil {
		return WrapError("params", "clear", "store_delete", err)
	}
	return nil
}

// splitHash separates a hash fragment into route path and query string.
// A fragment without '?' that does not start with '/' is treated as a
// bare query string ("#token=xxx").
func splitHash(rawHash string) (string, string) {
	content := strings.TrimPrefix(rawHash, "#")
	if queryIndex := strings.Index(content, "?"); queryIndex != -1 {
		return content[:queryIndex], content[queryIndex+1:]
	}
	if strings.HasPrefix(content, "/") || content == "" {
		return content, ""
	}
	return "", content
}
