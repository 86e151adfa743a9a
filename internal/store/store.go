// Package store persists session state between requests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bmcnav/internal/config"
	"bmcnav/internal/logger"
	"bmcnav/internal/session"
)

var ErrNotFound = errors.New("session not found")

// Store defines operations for persisting session state.
type Store interface {
	Get(ctx context.Context, id string) (session.State, error)
	Put(ctx context.Context, s session.State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewFromConfig picks the backend: Postgres when a DSN is set, then Redis,
// then a JSON file, then memory. Remote backends get an in-process cache.
func NewFromConfig(cfg config.StoreConfig, log *logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pg, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres session store: %w", err)
		}
		log.Info("session store: postgres")
		return NewCachedStore(pg, cfg.CacheSize, cfg.TTL), nil
	}
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rs, err := NewRedisStore(addr, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("open redis session store: %w", err)
		}
		log.Info("session store: redis", "addr", addr)
		return NewCachedStore(rs, cfg.CacheSize, cfg.TTL), nil
	}
	if path := strings.TrimSpace(cfg.FilePath); path != "" {
		log.Info("session store: file", "path", path)
		return NewFileStore(path), nil
	}
	log.Info("session store: in-memory", "size", cfg.CacheSize, "ttl", cfg.TTL)
	return NewMemoryStore(cfg.CacheSize, cfg.TTL), nil
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("session id is required")
	}
	return id, nil
}
