package session

import (
	"context"
	"net/http"
)

type contextKey struct{}

// Middleware places session data in the request context when a valid
// session cookie is present.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if data, err := m.Get(r.Context(), r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, data))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession rejects requests without a valid session. The storefront
// API speaks JSON, so this answers 401 rather than redirecting.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := m.Get(r.Context(), r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"please login"}`))
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKey{}, data))
		next.ServeHTTP(w, r)
	})
}

// FromContext retrieves session data from the request context.
func FromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	data, ok := ctx.Value(contextKey{}).(*Data)
	if !ok {
		return nil
	}
	return data
}
