// Package cache keeps successful upstream payloads for a short revalidation
// window so that switching back and forth between views does not refetch.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// New builds the configured cache backend.
// A Redis backend that cannot be reached falls back to memory.
func New(cfg config.CacheConfig, logger *slog.Logger) (domain.ResponseCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.CacheNone:
		return Nop{}, nil
	case config.CacheBolt:
		c, err := NewBoltCache(cfg.Path)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheRedis:
		c, err := NewRedisCache(RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, logger)
		if err != nil {
			logger.Warn("redis cache unavailable, using memory", "error", err)
			return NewMemoryCache(cfg.Size, cfg.TTL), nil
		}
		return c, nil
	case config.CacheMemory, "":
		return NewMemoryCache(cfg.Size, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Nop is a cache that never hits
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}
func (Nop) Close() error                                       { return nil }
