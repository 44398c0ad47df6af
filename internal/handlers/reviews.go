package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/services"
)

type resolutionResponse struct {
	HasExistingReview bool   `json:"has_existing_review"`
	ReviewID          string `json:"review_id,omitempty"`
	InitialRating     int    `json:"initial_rating,omitempty"`
	InitialComment    string `json:"initial_comment,omitempty"`
}

// MyReview reports whether the shopper already reviewed a product, so the
// client can open the dialog in edit mode with the stored values.
func (h *Handlers) MyReview(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	productID := mux.Vars(r)["id"]

	resolution, err := h.reviewService.Resolve(ctx, productID, data.Email)
	if err != nil {
		h.reviewError(w, r, err, false)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resolutionResponse{
		HasExistingReview: resolution.HasExistingReview,
		ReviewID:          resolution.ReviewID,
		InitialRating:     resolution.InitialRating,
		InitialComment:    resolution.InitialComment,
	})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview submits a review, updating in place when the shopper
// already has one for this product.
func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	productID := mux.Vars(r)["id"]

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resolution, err := h.reviewService.Resolve(ctx, productID, data.Email)
	if err != nil {
		h.reviewError(w, r, err, false)
		return
	}

	review, err := h.reviewService.Submit(ctx, productID, resolution, req.Rating, req.Comment)
	if err != nil {
		h.reviewError(w, r, err, false)
		return
	}

	status := http.StatusCreated
	if resolution.HasExistingReview {
		status = http.StatusOK
	}
	h.writeJSON(w, r, status, review)
}

// UpdateReview rewrites an existing review by id.
func (h *Handlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx, _ := h.requestContext(r)
	vars := mux.Vars(r)

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resolution := services.Resolution{HasExistingReview: true, ReviewID: vars["reviewID"]}
	review, err := h.reviewService.Submit(ctx, vars["id"], resolution, req.Rating, req.Comment)
	if err != nil {
		h.reviewError(w, r, err, false)
		return
	}

	h.writeJSON(w, r, http.StatusOK, review)
}

// DeleteReview removes the shopper's review of a product.
func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, _ := h.requestContext(r)
	vars := mux.Vars(r)

	resolution := services.Resolution{HasExistingReview: true, ReviewID: vars["reviewID"]}
	if err := h.reviewService.Delete(ctx, vars["id"], resolution); err != nil {
		h.reviewError(w, r, err, true)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// reviewError renders review failures with the notice text the storefront
// shows, keeping the status-code mapping in one place.
func (h *Handlers) reviewError(w http.ResponseWriter, r *http.Request, err error, deleting bool) {
	message := services.ReviewNotice(err, deleting)

	if services.IsValidationError(err) {
		h.writeError(w, r, http.StatusBadRequest, message)
		return
	}

	switch commerce.StatusCode(err) {
	case http.StatusUnauthorized:
		h.writeError(w, r, http.StatusUnauthorized, message)
	case http.StatusBadRequest:
		h.writeError(w, r, http.StatusBadRequest, message)
	case http.StatusNotFound:
		h.writeError(w, r, http.StatusNotFound, message)
	case http.StatusForbidden:
		h.writeError(w, r, http.StatusForbidden, message)
	default:
		h.loggerFromContext(r.Context()).Error("review call failed", "error", err)
		h.writeError(w, r, http.StatusBadGateway, message)
	}
}
