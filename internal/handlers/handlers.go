package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/orderdeskapp/orderdesk/internal/buckets"
	"github.com/orderdeskapp/orderdesk/internal/cache"
	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/config"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/services"
	"github.com/orderdeskapp/orderdesk/internal/session"
)

// maxProofBytes bounds the multipart body of proof uploads.
const maxProofBytes = 5 << 20 // 5 MB

const maxJSONBodyBytes = 1 << 20 // 1 MB

// Handlers provides the HTTP request handlers for the order desk API.
type Handlers struct {
	config              *config.Config
	commerce            *commerce.Client
	cacheProvider       cache.Provider
	paymentService      *services.PaymentService
	repaymentService    *services.RepaymentService
	cancellationService *services.CancellationService
	reviewService       *services.ReviewService
	sessionManager      *session.Manager
	logger              *slog.Logger

	// Each shopper gets their own bucket view state.
	mu    sync.Mutex
	views map[string]*shopperView
}

// shopperView is one shopper's tab state: the bucket controller plus the
// debouncer that settles their search keystrokes.
type shopperView struct {
	ctrl   *buckets.Controller
	search *buckets.Debouncer

	tokenMu sync.Mutex
	token   string
}

func (v *shopperView) setToken(token string) {
	v.tokenMu.Lock()
	v.token = token
	v.tokenMu.Unlock()
}

// authContext builds a fresh context for work that outlives the request,
// such as a debounced search commit.
func (v *shopperView) authContext() context.Context {
	v.tokenMu.Lock()
	token := v.token
	v.tokenMu.Unlock()
	return commerce.ContextWithToken(context.Background(), token)
}

type Dependencies struct {
	Config              *config.Config
	Commerce            *commerce.Client
	CacheProvider       cache.Provider
	PaymentService      *services.PaymentService
	RepaymentService    *services.RepaymentService
	CancellationService *services.CancellationService
	ReviewService       *services.ReviewService
	SessionManager      *session.Manager
	Logger              *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Commerce == nil {
		return nil, fmt.Errorf("handlers dependencies: commerce client is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.PaymentService == nil {
		return nil, fmt.Errorf("handlers dependencies: paymentService is required")
	}
	if deps.RepaymentService == nil {
		return nil, fmt.Errorf("handlers dependencies: repaymentService is required")
	}
	if deps.CancellationService == nil {
		return nil, fmt.Errorf("handlers dependencies: cancellationService is required")
	}
	if deps.ReviewService == nil {
		return nil, fmt.Errorf("handlers dependencies: reviewService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:              deps.Config,
		commerce:            deps.Commerce,
		cacheProvider:       deps.CacheProvider,
		paymentService:      deps.PaymentService,
		repaymentService:    deps.RepaymentService,
		cancellationService: deps.CancellationService,
		reviewService:       deps.ReviewService,
		sessionManager:      deps.SessionManager,
		logger:              logger.With("component", "handlers"),
		views:               map[string]*shopperView{},
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	// A reachable cache provider is the only local dependency to probe;
	// everything else lives upstream.
	if _, err := h.cacheProvider.Get(ctx, "health:probe"); err != nil && !errors.Is(err, cache.ErrNotFound) {
		logger.Error("cache health check failed", "error", err)
		http.Error(w, "Cache unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return h.sessionManager.RequireSession(next)
}

// requestContext returns the session data and a context that carries the
// shopper's bearer token for commerce calls.
func (h *Handlers) requestContext(r *http.Request) (context.Context, *session.Data) {
	ctx := r.Context()
	data := session.FromContext(ctx)
	if data != nil && data.BearerToken != "" {
		ctx = commerce.ContextWithToken(ctx, data.BearerToken)
	}
	return ctx, data
}

// viewFor returns the view state holding this shopper's tab, pagination
// and search state, creating it on first use.
func (h *Handlers) viewFor(data *session.Data) *shopperView {
	key := data.BearerToken
	if data.Email != "" {
		key = data.Email
	}

	h.mu.Lock()
	view, ok := h.views[key]
	if !ok {
		view = &shopperView{
			ctrl: buckets.NewController(
				buckets.NewStore(h.config.DefaultPageSize),
				h.commerce,
				h.logger,
			),
		}
		view.search = buckets.NewDebouncer(h.config.SearchDebounce, func(term string) {
			if _, err := view.ctrl.CommitQuery(view.authContext(), term); err != nil {
				h.logger.Warn("debounced search commit failed", "error", err)
			}
		})
		h.views[key] = view
	}
	h.mu.Unlock()

	view.setToken(data.BearerToken)
	return view
}

func (h *Handlers) controllerFor(data *session.Data) *buckets.Controller {
	return h.viewFor(data).ctrl
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
