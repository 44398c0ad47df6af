package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/observability"
	"github.com/orderdeskapp/orderdesk/internal/orders"
	"github.com/orderdeskapp/orderdesk/internal/reasons"
)

type cancelAPI interface {
	CancelOrder(ctx context.Context, orderID, reason string) error
	RequestRefund(ctx context.Context, orderID, reason string) error
}

type CancellationService struct {
	api     cancelAPI
	catalog *reasons.Catalog
	logger  *slog.Logger
}

func NewCancellationService(api cancelAPI, catalog *reasons.Catalog, logger *slog.Logger) *CancellationService {
	if catalog == nil {
		catalog = reasons.Default()
	}
	return &CancellationService{api: api, catalog: catalog, logger: logger}
}

func (s *CancellationService) Catalog() *reasons.Catalog {
	return s.catalog
}

// CancelOutcome reports the two halves of a cancellation distinctly: the
// cancellation itself and, for UPI orders, the follow-up refund request.
type CancelOutcome struct {
	Cancelled bool
	// RefundRequested is true when the refund call was issued and accepted.
	RefundRequested bool
	// RefundFailed is true when the order was cancelled but the refund call
	// failed; the user must track the refund separately.
	RefundFailed bool
	// Refusal explains a local refusal (order already shipped/resolved).
	Refusal orders.CancelRefusal
}

// Cancel cancels an order and, for UPI payments, requests a refund carrying
// the same reason. The refund step is best-effort: its failure never rolls
// back the cancellation. COD orders captured no money, so no refund call is
// issued for them.
func (s *CancellationService) Cancel(ctx context.Context, order *orders.Order, reasonCode, note string) (CancelOutcome, error) {
	span := sentry.StartSpan(
		ctx,
		"service.cancellation.cancel",
		sentry.WithOpName("service.cancellation"),
		sentry.WithDescription("Cancel"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	recordRejection := func(reason string) {
		meter.Count("cancellation.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	classification := orders.Classify(order)
	if !classification.CanCancel {
		recordRejection("not_cancellable")
		return CancelOutcome{Refusal: classification.CancelRefusal}, ErrCancellationRefused
	}

	if strings.TrimSpace(reasonCode) == "" {
		recordRejection("missing_reason")
		return CancelOutcome{}, ErrReasonRequired
	}
	if !s.catalog.Valid(reasonCode) {
		recordRejection("unknown_reason")
		return CancelOutcome{}, ErrUnknownReason
	}
	if s.catalog.RequiresNote(reasonCode) && strings.TrimSpace(note) == "" {
		recordRejection("missing_note")
		return CancelOutcome{}, ErrNoteRequired
	}

	reason := reasonCode
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		reason = reasonCode + ": " + trimmed
	}

	if err := s.api.CancelOrder(ctx, order.ID, reason); err != nil {
		meter.Count("cancellation.failed", 1)
		return CancelOutcome{}, fmt.Errorf("failed to cancel order: %w", err)
	}
	meter.Count("cancellation.succeeded", 1, sentry.WithAttributes(
		attribute.String("mode", string(order.PaymentMode)),
	))
	outcome := CancelOutcome{Cancelled: true}

	if order.PaymentMode == orders.ModeUPI {
		if err := s.api.RequestRefund(ctx, order.ID, reason); err != nil {
			// The order stays cancelled; the refund must be retried or
			// handled manually.
			meter.Count("cancellation.refund_failed", 1)
			logger.Warn("refund request failed after cancellation", "order_id", order.ID, "error", err)
			outcome.RefundFailed = true
			return outcome, nil
		}
		outcome.RefundRequested = true
		meter.Count("cancellation.refund_requested", 1)
	}

	logger.Info("order cancelled",
		"order_id", order.ID,
		"reason", reasonCode,
		"refund_requested", outcome.RefundRequested,
	)

	return outcome, nil
}
