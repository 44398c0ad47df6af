package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orderdeskapp/orderdesk/internal/buckets"
	"github.com/orderdeskapp/orderdesk/internal/orders"
	"github.com/orderdeskapp/orderdesk/internal/reasons"
)

type orderView struct {
	orders.Order
	Classification orders.Classification `json:"classification"`
}

type bucketStateResponse struct {
	Bucket     orders.Bucket `json:"bucket"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	TotalCount int           `json:"total_count"`
	PageSize   int           `json:"page_size"`
	Query      string        `json:"query,omitempty"`
	Error      string        `json:"error,omitempty"`
	Orders     []orderView   `json:"orders"`
}

func bucketState(bucket orders.Bucket, query string, state buckets.State) bucketStateResponse {
	views := make([]orderView, 0, len(state.Items))
	for i := range state.Items {
		order := state.Items[i]
		views = append(views, orderView{
			Order:          order,
			Classification: orders.Classify(&order),
		})
	}
	return bucketStateResponse{
		Bucket:     bucket,
		Page:       state.Page,
		TotalPages: state.TotalPages,
		TotalCount: state.TotalCount,
		PageSize:   state.PageSize,
		Query:      query,
		Error:      state.Err,
		Orders:     views,
	}
}

// ListOrders serves one page of one bucket. Changing bucket or search term
// resets to page 1; a failed fetch is reported inside the bucket state so
// the other buckets stay presentable.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)

	bucket := orders.BucketCurrent
	if raw := strings.TrimSpace(r.URL.Query().Get("bucket")); raw != "" {
		bucket = orders.Bucket(raw)
	}
	if !bucket.Valid() {
		h.writeError(w, r, http.StatusBadRequest, "unknown bucket")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, r, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	state, err := h.controllerFor(data).View(ctx, bucket, page, query)
	if err != nil {
		h.loggerFromContext(ctx).Warn("bucket fetch failed", "bucket", bucket, "error", err)
	}

	h.writeJSON(w, r, http.StatusOK, bucketState(bucket, query, state))
}

type searchRequest struct {
	Query string `json:"q"`
}

// TypeSearch registers one search keystroke. The term is committed against
// the active bucket only after input settles; superseded keystrokes never
// reach the commerce API.
func (h *Handlers) TypeSearch(w http.ResponseWriter, r *http.Request) {
	_, data := h.requestContext(r)

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.viewFor(data).search.Type(strings.TrimSpace(req.Query))

	h.writeJSON(w, r, http.StatusAccepted, map[string]any{
		"debounce_ms": h.config.SearchDebounce.Milliseconds(),
	})
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Note   string `json:"note,omitempty"`
}

type cancelResponse struct {
	Cancelled       bool                 `json:"cancelled"`
	RefundRequested bool                 `json:"refund_requested"`
	RefundFailed    bool                 `json:"refund_failed"`
	Refusal         orders.CancelRefusal `json:"refusal,omitempty"`
}

// CancelOrder cancels one order and, for UPI payments, requests the refund.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, data := h.requestContext(r)
	orderID := mux.Vars(r)["id"]

	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	order, err := h.commerce.GetOrder(ctx, orderID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	outcome, err := h.cancellationService.Cancel(ctx, order, req.Reason, req.Note)
	if outcome.Refusal != orders.CancelAllowed {
		h.writeJSON(w, r, http.StatusConflict, cancelResponse{Refusal: outcome.Refusal})
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	if _, err := h.controllerFor(data).Refresh(ctx); err != nil {
		h.loggerFromContext(ctx).Warn("bucket refresh after cancel failed", "error", err)
	}

	h.writeJSON(w, r, http.StatusOK, cancelResponse{
		Cancelled:       outcome.Cancelled,
		RefundRequested: outcome.RefundRequested,
		RefundFailed:    outcome.RefundFailed,
	})
}

// CancellationReasons lists the reason catalog the cancel dialog offers.
func (h *Handlers) CancellationReasons(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string][]reasons.Reason{
		"reasons": h.cancellationService.Catalog().Reasons(),
	})
}
