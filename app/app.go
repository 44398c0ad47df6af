package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"

	"github.com/orderdeskapp/orderdesk/internal/cache"
	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/config"
	"github.com/orderdeskapp/orderdesk/internal/crypto"
	"github.com/orderdeskapp/orderdesk/internal/handlers"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/observability"
	"github.com/orderdeskapp/orderdesk/internal/reasons"
	"github.com/orderdeskapp/orderdesk/internal/services"
	"github.com/orderdeskapp/orderdesk/internal/session"
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	var encryptor *crypto.Encryptor
	if cfg.SessionEncryptionKey != "" {
		encryptor, err = crypto.NewEncryptor(cfg.SessionEncryptionKey)
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			return nil, fmt.Errorf("failed to initialize session encryptor: %w", err)
		}
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
		Encryptor:             encryptor,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore, handlers.SecureCookiesFromConfig(cfg))

	httpClient := observability.NewHTTPClient(cfg.CommerceTimeout, cfg.CommerceHost())
	commerceClient := commerce.NewClient(cfg.CommerceBaseURL, httpClient, logger.With("component", "commerce_client"))

	paymentService := services.NewPaymentService(commerceClient, cacheProvider, logger.With("component", "payment_service"))
	repaymentService := services.NewRepaymentService(commerceClient, logger.With("component", "repayment_service"))
	cancellationService := services.NewCancellationService(commerceClient, reasons.Default(), logger.With("component", "cancellation_service"))
	reviewService := services.NewReviewService(commerceClient, cacheProvider, logger.With("component", "review_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:              cfg,
		Commerce:            commerceClient,
		CacheProvider:       cacheProvider,
		PaymentService:      paymentService,
		RepaymentService:    repaymentService,
		CancellationService: cancellationService,
		ReviewService:       reviewService,
		SessionManager:      sessionManager,
		Logger:              logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Handlers:       h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.Config != nil && a.Config.SentryDSN != "" {
		sentry.Flush(2 * time.Second)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		})
	}

	if cfg.SentryDSN != "" {
		sentryHandler := sentryslog.Option{
			EventLevel: []slog.Level{slog.LevelError},
			LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelInfo},
		}.NewSentryHandler(context.Background())
		handler = logging.Fanout(handler, sentryHandler)
	}

	return slog.New(handler)
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
