package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/orderdeskapp/orderdesk/internal/orders"
)

type fakeCancelAPI struct {
	cancelCalls []string
	refundCalls []string
	cancelErr   error
	refundErr   error
	lastReason  string
}

func (f *fakeCancelAPI) CancelOrder(ctx context.Context, orderID, reason string) error {
	f.cancelCalls = append(f.cancelCalls, orderID)
	f.lastReason = reason
	return f.cancelErr
}

func (f *fakeCancelAPI) RequestRefund(ctx context.Context, orderID, reason string) error {
	f.refundCalls = append(f.refundCalls, orderID)
	return f.refundErr
}

func cancellableOrder(mode orders.PaymentMode) *orders.Order {
	return &orders.Order{ID: "ord-1", Status: orders.StatusConfirmed, PaymentMode: mode}
}

func TestCancelRefusedForShippedOrder(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{}
	service := NewCancellationService(api, nil, nil)

	order := cancellableOrder(orders.ModeUPI)
	order.Status = orders.StatusShipped

	outcome, err := service.Cancel(context.Background(), order, "ordered_by_mistake", "")
	if !errors.Is(err, ErrCancellationRefused) {
		t.Fatalf("Cancel() error = %v, want ErrCancellationRefused", err)
	}
	if outcome.Refusal != orders.CancelAlreadyShipped {
		t.Errorf("Refusal = %q, want already_shipped", outcome.Refusal)
	}
	if len(api.cancelCalls) != 0 {
		t.Fatal("refused cancellation must not issue network calls")
	}
}

func TestCancelValidatesReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reason  string
		note    string
		wantErr error
	}{
		{name: "missing reason", reason: "", wantErr: ErrReasonRequired},
		{name: "unknown reason", reason: "changed_my_horoscope", wantErr: ErrUnknownReason},
		{name: "other without note", reason: "Other", wantErr: ErrNoteRequired},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := &fakeCancelAPI{}
			service := NewCancellationService(api, nil, nil)

			_, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeCOD), tc.reason, tc.note)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Cancel() error = %v, want %v", err, tc.wantErr)
			}
			if len(api.cancelCalls) != 0 {
				t.Fatal("validation failure must not issue network calls")
			}
		})
	}
}

func TestCancelUPIRequestsRefund(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{}
	service := NewCancellationService(api, nil, nil)

	outcome, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeUPI), "payment_issues", "")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !outcome.Cancelled || !outcome.RefundRequested || outcome.RefundFailed {
		t.Errorf("outcome = %+v, want cancelled with refund requested", outcome)
	}
	if len(api.cancelCalls) != 1 || len(api.refundCalls) != 1 {
		t.Errorf("calls = %d cancel / %d refund, want 1 / 1", len(api.cancelCalls), len(api.refundCalls))
	}
}

func TestCancelCODSkipsRefund(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{}
	service := NewCancellationService(api, nil, nil)

	outcome, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeCOD), "delivery_too_slow", "")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if outcome.RefundRequested {
		t.Error("COD cancellation requested a refund; no money was captured")
	}
	if len(api.refundCalls) != 0 {
		t.Errorf("refund calls = %d, want 0", len(api.refundCalls))
	}
}

func TestCancelSurvivesRefundFailure(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{refundErr: errors.New("refund service down")}
	service := NewCancellationService(api, nil, nil)

	outcome, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeUPI), "payment_issues", "")
	if err != nil {
		t.Fatalf("Cancel() error = %v, want nil; cancellation is not rolled back", err)
	}
	if !outcome.Cancelled {
		t.Error("Cancelled = false, want true")
	}
	if !outcome.RefundFailed || outcome.RefundRequested {
		t.Errorf("outcome = %+v, want refund flagged failed", outcome)
	}
}

func TestCancelFailureStopsBeforeRefund(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{cancelErr: errors.New("conflict")}
	service := NewCancellationService(api, nil, nil)

	_, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeUPI), "payment_issues", "")
	if err == nil {
		t.Fatal("Cancel() = nil error, want failure")
	}
	if len(api.refundCalls) != 0 {
		t.Fatal("refund must not be requested when cancellation failed")
	}
}

func TestCancelAppendsNoteToReason(t *testing.T) {
	t.Parallel()

	api := &fakeCancelAPI{}
	service := NewCancellationService(api, nil, nil)

	_, err := service.Cancel(context.Background(), cancellableOrder(orders.ModeCOD), "Other", "moving abroad next week")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !strings.HasPrefix(api.lastReason, "Other: ") || !strings.Contains(api.lastReason, "moving abroad") {
		t.Errorf("reason = %q, want note appended", api.lastReason)
	}
}
