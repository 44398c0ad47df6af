package handlers

import (
	"net/http"
	"strings"

	"github.com/orderdeskapp/orderdesk/internal/session"
)

type loginRequest struct {
	// Token is the bearer token the commerce API issued at login.
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// Login exchanges an upstream bearer token for a session cookie. The
// email, when not supplied, is recovered from the token's claims.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		h.writeError(w, r, http.StatusBadRequest, "token is required")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = session.EmailFromToken(token)
	}

	data := &session.Data{
		Email:       email,
		BearerToken: token,
	}
	if _, err := h.sessionManager.Create(ctx, w, data); err != nil {
		h.loggerFromContext(ctx).Error("failed to create session", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "could not create session")
		return
	}

	h.writeJSON(w, r, http.StatusCreated, map[string]string{
		"email": data.Email,
	})
}

// Logout destroys the session and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
