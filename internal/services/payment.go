package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderdeskapp/orderdesk/internal/cache"
	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/observability"
	"github.com/orderdeskapp/orderdesk/internal/orders"
)

const upiSettingsTTL = 5 * time.Minute

// Proof is an uploaded UPI payment proof image.
type Proof struct {
	Filename string
	Content  io.Reader
}

type paymentAPI interface {
	CreatePayment(ctx context.Context, params commerce.CreatePaymentParams) (*orders.PaymentRequest, error)
	UploadPaymentProof(ctx context.Context, paymentID, filename string, proof io.Reader) error
	GetUPISettings(ctx context.Context) ([]orders.UPISetting, error)
}

type PaymentService struct {
	api    paymentAPI
	cache  cache.Provider
	logger *slog.Logger
}

func NewPaymentService(api paymentAPI, cacheProvider cache.Provider, logger *slog.Logger) *PaymentService {
	return &PaymentService{api: api, cache: cacheProvider, logger: logger}
}

// AuthoritativeAmount computes the amount a payment request must carry from
// the order's own line items, rounded to 2 decimal places. A stale client
// total is never trusted.
func AuthoritativeAmount(order *orders.Order) float64 {
	var total float64
	for _, item := range order.Items {
		price := item.DiscountedPrice
		if price <= 0 {
			price = item.UnitPrice
		}
		total += price * float64(item.Quantity)
	}
	return math.Round(total*100) / 100
}

// Submit creates a payment request for the order. UPI requires a proof
// image and an active merchant UPI setting; both are checked before any
// network call. The proof is attached to the freshly created request.
func (s *PaymentService) Submit(ctx context.Context, order *orders.Order, mode orders.PaymentMode, proof *Proof) (*orders.PaymentRequest, error) {
	span := sentry.StartSpan(
		ctx,
		"service.payment.submit",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("Submit"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := logging.FromContext(ctx, s.logger)
	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("payment.submit.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	if mode != orders.ModeUPI && mode != orders.ModeCOD {
		recordFailure("missing_payment_mode")
		return nil, ErrModeRequired
	}

	if mode == orders.ModeUPI {
		if proof == nil || proof.Content == nil {
			recordFailure("missing_proof")
			return nil, ErrProofRequired
		}
		setting, err := s.ActiveUPISetting(ctx)
		if err != nil {
			recordFailure("upi_settings_unavailable")
			return nil, fmt.Errorf("failed to load UPI settings: %w", err)
		}
		if setting == nil {
			recordFailure("missing_payment_method")
			return nil, ErrNoActiveUPISetting
		}
	}

	request, err := s.api.CreatePayment(ctx, commerce.CreatePaymentParams{
		OrderID: order.ID,
		Amount:  AuthoritativeAmount(order),
		Mode:    mode,
	})
	if err != nil {
		recordFailure("create_failed")
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	if mode == orders.ModeUPI {
		if err := s.api.UploadPaymentProof(ctx, request.ID, proof.Filename, proof.Content); err != nil {
			recordFailure("proof_upload_failed")
			return nil, fmt.Errorf("failed to upload payment proof: %w", err)
		}
	}

	meter.Count("payment.submit.succeeded", 1, sentry.WithAttributes(
		attribute.String("mode", string(mode)),
	))
	logger.Info("payment submitted", "order_id", order.ID, "payment_id", request.ID, "mode", mode)

	return request, nil
}

// ActiveUPISetting returns the merchant's active UPI collection endpoint,
// or nil when none is configured. Settings are cached; a cache failure
// falls through to the upstream call.
func (s *PaymentService) ActiveUPISetting(ctx context.Context) (*orders.UPISetting, error) {
	logger := logging.FromContext(ctx, s.logger)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.UPISettingsKey); err == nil {
			var settings []orders.UPISetting
			if json.Unmarshal([]byte(cached), &settings) == nil {
				return orders.ActiveUPISetting(settings), nil
			}
		}
	}

	settings, err := s.api.GetUPISettings(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(settings); err == nil {
			if err := s.cache.Set(ctx, cache.UPISettingsKey, string(encoded), upiSettingsTTL); err != nil {
				logger.Warn("failed to cache UPI settings", "error", err)
			}
		}
	}

	return orders.ActiveUPISetting(settings), nil
}
