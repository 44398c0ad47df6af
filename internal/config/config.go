package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	// CommerceBaseURL is the root of the upstream commerce REST API that
	// owns orders, payments and reviews.
	CommerceBaseURL string        `env:"COMMERCE_BASE_URL,required" validate:"required,url"`
	CommerceTimeout time.Duration `env:"COMMERCE_TIMEOUT" envDefault:"15s"`

	// DefaultPageSize is the per-bucket page size used when the storefront
	// does not override it.
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"9" validate:"min=1,max=100"`

	// SearchDebounce is how long a search keystroke must settle before a
	// filter value is committed.
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	// SessionEncryptionKey seals bearer tokens at rest in the redis session
	// store. 32 bytes when set; the memory store ignores it.
	SessionEncryptionKey string `env:"SESSION_ENCRYPTION_KEY" validate:"omitempty,len=32"`

	SentryDSN string `env:"SENTRY_DSN"`

	BaseURL   string     `env:"BASE_URL" validate:"omitempty,url"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	parsed, err := url.Parse(strings.TrimSpace(c.CommerceBaseURL))
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("COMMERCE_BASE_URL must be a valid absolute URL")
	}
	if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
		return fmt.Errorf("COMMERCE_BASE_URL must use https outside local development")
	}

	return nil
}

// CommerceHost returns the hostname trace headers may propagate to.
func (c *Config) CommerceHost() string {
	parsed, err := url.Parse(strings.TrimSpace(c.CommerceBaseURL))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
