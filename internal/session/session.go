// Package session keeps the shopper's durable client state: the email and
// bearer token issued by the commerce API at login. The coordinator only
// reads this state; authentication itself lives upstream.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "orderdesk_session"
	ttl        = 24 * time.Hour
)

// Data is what one session stores.
type Data struct {
	// Email identifies the shopper for the review-ownership heuristic.
	Email string `json:"email"`
	// BearerToken authenticates commerce API calls on the shopper's behalf.
	BearerToken string `json:"bearer_token"`
	CreatedAt   int64  `json:"created_at"`
}

// Store defines the interface for session storage.
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// Manager handles session creation, lookup, and teardown.
type Manager struct {
	store  Store
	secure bool
}

func NewManager(store Store, secure bool) *Manager {
	return &Manager{store: store, secure: secure}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Create stores a new session and sets the cookie. When the caller did not
// supply an email, the bearer token's email claim is used instead.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is required")
	}
	if data == nil || data.BearerToken == "" {
		return "", fmt.Errorf("session bearer token is required")
	}

	stored := *data
	if stored.Email == "" {
		stored.Email = EmailFromToken(stored.BearerToken)
	}
	stored.CreatedAt = time.Now().Unix()

	sessionID := uuid.NewString()
	m.store.Set(ctx, sessionID, &stored, ttl)

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sessionID, nil
}

// Get retrieves the session data from the request cookie.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie found: %w", err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	data, ok := m.store.Get(ctx, cookie.Value)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}
	if time.Now().Unix()-data.CreatedAt > int64(ttl.Seconds()) {
		m.store.Delete(ctx, cookie.Value)
		return nil, fmt.Errorf("session expired")
	}

	return data, nil
}

// Destroy removes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if ctx == nil {
		ctx = r.Context()
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		m.store.Delete(ctx, cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
