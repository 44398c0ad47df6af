package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orderdeskapp/orderdesk/internal/orders"
	"github.com/orderdeskapp/orderdesk/internal/services"
)

// proofFromRequest extracts the optional "proof" file from a multipart
// form. A missing file is not an error; UPI validation happens in the
// coordinator.
func proofFromRequest(r *http.Request) (*services.Proof, error) {
	file, header, err := r.FormFile("proof")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &services.Proof{Filename: header.Filename, Content: file}, nil
}

// SubmitPayment creates a payment request for an order. The body is
// multipart: a "mode" field and, for UPI, a "proof" image.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	orderID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxProofBytes)
	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		h.badRequest(w, r, err)
		return
	}

	mode := orders.PaymentMode(strings.TrimSpace(r.FormValue("mode")))
	proof, err := proofFromRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	order, err := h.commerce.GetOrder(ctx, orderID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	request, err := h.paymentService.Submit(ctx, order, mode, proof)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if _, err := h.controllerFor(data).Refresh(ctx); err != nil {
		h.loggerFromContext(ctx).Warn("bucket refresh after payment failed", "error", err)
	}

	h.writeJSON(w, r, http.StatusCreated, request)
}

// ReuploadProof attaches a fresh proof image to a rejected payment request.
// The same request id stays in play; no new request is minted.
func (h *Handlers) ReuploadProof(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	requestID := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxProofBytes)
	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		h.badRequest(w, r, err)
		return
	}

	orderID := strings.TrimSpace(r.FormValue("order_id"))
	if orderID == "" {
		h.writeError(w, r, http.StatusBadRequest, "order_id is required")
		return
	}

	proof, err := proofFromRequest(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	order, err := h.commerce.GetOrder(ctx, orderID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	request, err := h.repaymentService.Recover(ctx, order, services.ReuploadProof{
		RequestID: requestID,
		Proof:     proof,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if _, err := h.controllerFor(data).Refresh(ctx); err != nil {
		h.loggerFromContext(ctx).Warn("bucket refresh after proof reupload failed", "error", err)
	}

	h.writeJSON(w, r, http.StatusOK, request)
}

type repaymentRequest struct {
	Mode orders.PaymentMode `json:"mode"`
}

// CreateRepayment abandons a rejected payment request and opens a fresh
// one, possibly with a different mode.
func (h *Handlers) CreateRepayment(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	orderID := mux.Vars(r)["id"]

	var req repaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	order, err := h.commerce.GetOrder(ctx, orderID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	request, err := h.repaymentService.Recover(ctx, order, services.NewRequest{
		OrderID: orderID,
		Mode:    req.Mode,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if _, err := h.controllerFor(data).Refresh(ctx); err != nil {
		h.loggerFromContext(ctx).Warn("bucket refresh after repayment failed", "error", err)
	}

	h.writeJSON(w, r, http.StatusCreated, request)
}

// UPISettings returns the active UPI payment destination.
func (h *Handlers) UPISettings(w http.ResponseWriter, r *http.Request) {
	ctx, _ := h.requestContext(r)

	setting, err := h.paymentService.ActiveUPISetting(ctx)
	if errors.Is(err, services.ErrNoActiveUPISetting) {
		h.writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]*orders.UPISetting{
		"setting": setting,
	})
}
