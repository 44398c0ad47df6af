package cache

// Package cache caches slow-changing upstream reads: the merchant UPI
// settings and per-product review lists.

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Provider stores JSON-encoded values under string keys.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// UPISettingsKey caches the merchant UPI settings list.
const UPISettingsKey = "upi:settings"

// ReviewsKey caches the review list for one product. Invalidated on every
// review write.
func ReviewsKey(productID string) string {
	return "reviews:" + productID
}
