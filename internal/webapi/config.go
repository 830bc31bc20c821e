package webapi

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultListenAddr    = ":9090"
	defaultBackendAddr   = "http://localhost:7000"
	defaultAllowedOrigin = "http://localhost:8000"
	defaultSessionIssuer = "tauth"
	defaultSessionCookie = "app_session"
	defaultFlowCookie    = "flow_session"

	// SessionStoreMemory keeps flow session state in process memory.
	SessionStoreMemory = "memory"
	// SessionStoreRedis keeps flow session state in Redis.
	SessionStoreRedis = "redis"
)

// Config aggregates runtime settings for the app gateway.
type Config struct {
	ListenAddr        string
	BackendAddress    string
	BackendToken      string
	BackendTimeout    time.Duration
	AllowedOrigins    []string
	SessionSigningKey string
	SessionIssuer     string
	SessionCookieName string
	FlowCookieName    string
	SessionStore      string
	RedisAddress      string
	RedisPassword     string
	InactivityTimeout time.Duration
	WizardSettleDelay time.Duration
}

// Validate ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	cfg.ListenAddr = defaultIfEmpty(cfg.ListenAddr, defaultListenAddr)
	cfg.BackendAddress = defaultIfEmpty(cfg.BackendAddress, defaultBackendAddr)
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 10 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultAllowedOrigin}
	}
	cfg.SessionIssuer = defaultIfEmpty(cfg.SessionIssuer, defaultSessionIssuer)
	cfg.SessionCookieName = defaultIfEmpty(cfg.SessionCookieName, defaultSessionCookie)
	cfg.FlowCookieName = defaultIfEmpty(cfg.FlowCookieName, defaultFlowCookie)
	cfg.SessionStore = defaultIfEmpty(cfg.SessionStore, SessionStoreMemory)
	if cfg.InactivityTimeout < 0 {
		return fmt.Errorf("inactivity timeout must not be negative")
	}
	if cfg.WizardSettleDelay < 0 {
		return fmt.Errorf("wizard settle delay must not be negative")
	}
	if cfg.WizardSettleDelay == 0 {
		cfg.WizardSettleDelay = 2 * time.Second
	}
	if len(cfg.SessionSigningKey) == 0 {
		return fmt.Errorf("jwt signing key is required")
	}
	switch cfg.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if strings.TrimSpace(cfg.RedisAddress) == "" {
			return fmt.Errorf("redis address is required for the redis session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// ParseAllowedOrigins splits comma-delimited origins into a slice.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
