package session

import (
	"context"
	"fmt"

	"github.com/orderdeskapp/orderdesk/internal/crypto"
)

type Config struct {
	Provider              string
	RedisConnectionString string
	// Encryptor, when set, seals redis-stored sessions at rest. The
	// in-process memory store never needs it.
	Encryptor *crypto.Encryptor
}

func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisConnectionString, cfg.Encryptor)
	default:
		return nil, fmt.Errorf("unsupported session store provider: %s", cfg.Provider)
	}
}
