package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/services"
)

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// serviceError maps a coordinator failure onto an HTTP status. Local
// validation failures are the caller's fault; upstream statuses pass
// through where they are meaningful to the client.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if services.IsValidationError(err) {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	switch commerce.StatusCode(err) {
	case http.StatusUnauthorized:
		h.writeError(w, r, http.StatusUnauthorized, "please login")
		return
	case http.StatusForbidden:
		h.writeError(w, r, http.StatusForbidden, "not authorized")
		return
	case http.StatusNotFound:
		h.writeError(w, r, http.StatusNotFound, "not found")
		return
	case http.StatusBadRequest:
		h.writeError(w, r, http.StatusBadRequest, "invalid input")
		return
	}

	h.loggerFromContext(r.Context()).Error("upstream call failed", "error", err)
	h.writeError(w, r, http.StatusBadGateway, "something went wrong, please try again")
}

// badRequest is for malformed requests that never reach a coordinator.
func (h *Handlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	h.writeError(w, r, http.StatusBadRequest, "invalid request body")
}
