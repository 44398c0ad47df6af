package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/observability"
	"github.com/orderdeskapp/orderdesk/internal/orders"
)

// RepaymentAction is one of the two recovery paths after a rejected UPI
// payment request. Exactly one action executes per recovery attempt.
type RepaymentAction interface {
	kind() string
}

// ReuploadProof attaches a new proof image to the same rejected request,
// moving it back to pending verification. No new request id is minted.
type ReuploadProof struct {
	RequestID string
	Proof     *Proof
}

func (ReuploadProof) kind() string { return "reupload_proof" }

// NewRequest abandons the rejected request and opens a fresh one, possibly
// with a different mode. The rejected request stays as history.
type NewRequest struct {
	OrderID string
	Mode    orders.PaymentMode
}

func (NewRequest) kind() string { return "new_request" }

type repaymentAPI interface {
	ReuploadPaymentProof(ctx context.Context, requestID, filename string, proof io.Reader) (*orders.PaymentRequest, error)
	CreateRepayment(ctx context.Context, params commerce.CreateRepaymentParams) (*orders.PaymentRequest, error)
}

type RepaymentService struct {
	api    repaymentAPI
	logger *slog.Logger
}

func NewRepaymentService(api repaymentAPI, logger *slog.Logger) *RepaymentService {
	return &RepaymentService{api: api, logger: logger}
}

// Recover dispatches one repayment action for an order whose latest UPI
// request was rejected. The order must actually need repayment.
func (s *RepaymentService) Recover(ctx context.Context, order *orders.Order, action RepaymentAction) (*orders.PaymentRequest, error) {
	span := sentry.StartSpan(
		ctx,
		"service.repayment.recover",
		sentry.WithOpName("service.repayment"),
		sentry.WithDescription("Recover"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)

	if !orders.NeedsRepayment(order) {
		meter.Count("repayment.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", "not_required"),
		))
		return nil, ErrRepaymentNotRequired
	}

	var request *orders.PaymentRequest
	var err error

	switch a := action.(type) {
	case ReuploadProof:
		if a.Proof == nil || a.Proof.Content == nil {
			meter.Count("repayment.rejected", 1, sentry.WithAttributes(
				attribute.String("reason", "missing_proof"),
			))
			return nil, ErrRepaymentProofMissing
		}
		request, err = s.api.ReuploadPaymentProof(ctx, a.RequestID, a.Proof.Filename, a.Proof.Content)
	case NewRequest:
		if a.Mode != orders.ModeUPI && a.Mode != orders.ModeCOD {
			meter.Count("repayment.rejected", 1, sentry.WithAttributes(
				attribute.String("reason", "missing_payment_mode"),
			))
			return nil, ErrModeRequired
		}
		request, err = s.api.CreateRepayment(ctx, commerce.CreateRepaymentParams{OrderID: a.OrderID, Mode: a.Mode})
	default:
		return nil, fmt.Errorf("unknown repayment action %T", action)
	}

	if err != nil {
		meter.Count("repayment.failed", 1, sentry.WithAttributes(
			attribute.String("action", action.kind()),
		))
		return nil, fmt.Errorf("repayment %s: %w", action.kind(), err)
	}

	meter.Count("repayment.succeeded", 1, sentry.WithAttributes(
		attribute.String("action", action.kind()),
	))
	logger.Info("repayment recovered", "order_id", order.ID, "action", action.kind(), "payment_id", request.ID)

	return request, nil
}
