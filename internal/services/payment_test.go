package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/orderdeskapp/orderdesk/internal/cache"
	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/orders"
)

type fakePaymentAPI struct {
	createCalls   []commerce.CreatePaymentParams
	uploadCalls   []string
	settingsCalls int

	createErr   error
	uploadErr   error
	settings    []orders.UPISetting
	settingsErr error
}

func (f *fakePaymentAPI) CreatePayment(ctx context.Context, params commerce.CreatePaymentParams) (*orders.PaymentRequest, error) {
	f.createCalls = append(f.createCalls, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &orders.PaymentRequest{ID: "pr-1", OrderID: params.OrderID, Mode: params.Mode, Amount: params.Amount, Status: orders.PaymentSubmitted}, nil
}

func (f *fakePaymentAPI) UploadPaymentProof(ctx context.Context, paymentID, filename string, proof io.Reader) error {
	f.uploadCalls = append(f.uploadCalls, paymentID)
	return f.uploadErr
}

func (f *fakePaymentAPI) GetUPISettings(ctx context.Context) ([]orders.UPISetting, error) {
	f.settingsCalls++
	return f.settings, f.settingsErr
}

func upiOrder() *orders.Order {
	return &orders.Order{
		ID:            "ord-1",
		Status:        orders.StatusPending,
		PaymentMode:   orders.ModeUPI,
		PaymentStatus: orders.PaymentPending,
		Items: []orders.OrderItem{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: 40, DiscountedPrice: 33.333},
			{ProductID: "prod-2", Quantity: 1, UnitPrice: 19.99},
		},
	}
}

func activeSettings() []orders.UPISetting {
	return []orders.UPISetting{{ID: "upi-1", VPA: "shop@bank", IsActive: true}}
}

func TestAuthoritativeAmount(t *testing.T) {
	t.Parallel()

	// 3 * 33.333 + 1 * 19.99, rounded to 2 decimal places. The second item
	// has no discounted price, so the unit price carries.
	if got := AuthoritativeAmount(upiOrder()); got != 119.99 {
		t.Fatalf("AuthoritativeAmount() = %v, want 119.99", got)
	}
}

func TestSubmitUPIWithoutProofIsLocal(t *testing.T) {
	t.Parallel()

	api := &fakePaymentAPI{settings: activeSettings()}
	service := NewPaymentService(api, nil, nil)

	_, err := service.Submit(context.Background(), upiOrder(), orders.ModeUPI, nil)
	if !errors.Is(err, ErrProofRequired) {
		t.Fatalf("Submit() error = %v, want ErrProofRequired", err)
	}
	if api.settingsCalls != 0 || len(api.createCalls) != 0 || len(api.uploadCalls) != 0 {
		t.Fatal("validation failure must not issue network calls")
	}
}

func TestSubmitWithoutModeIsLocal(t *testing.T) {
	t.Parallel()

	api := &fakePaymentAPI{}
	service := NewPaymentService(api, nil, nil)

	_, err := service.Submit(context.Background(), upiOrder(), "", nil)
	if !errors.Is(err, ErrModeRequired) {
		t.Fatalf("Submit() error = %v, want ErrModeRequired", err)
	}
	if len(api.createCalls) != 0 {
		t.Fatal("validation failure must not issue network calls")
	}
}

func TestSubmitUPIRequiresActiveSetting(t *testing.T) {
	t.Parallel()

	api := &fakePaymentAPI{settings: []orders.UPISetting{{ID: "upi-1", IsActive: false}}}
	service := NewPaymentService(api, nil, nil)

	proof := &Proof{Filename: "proof.png", Content: strings.NewReader("png")}
	_, err := service.Submit(context.Background(), upiOrder(), orders.ModeUPI, proof)
	if !errors.Is(err, ErrNoActiveUPISetting) {
		t.Fatalf("Submit() error = %v, want ErrNoActiveUPISetting", err)
	}
	if len(api.createCalls) != 0 {
		t.Fatal("payment must not be created without an active UPI setting")
	}
}

func TestSubmitUPIAttachesProofToCreatedRequest(t *testing.T) {
	t.Parallel()

	api := &fakePaymentAPI{settings: activeSettings()}
	service := NewPaymentService(api, nil, nil)

	proof := &Proof{Filename: "proof.png", Content: strings.NewReader("png")}
	request, err := service.Submit(context.Background(), upiOrder(), orders.ModeUPI, proof)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(api.createCalls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(api.createCalls))
	}
	if got := api.createCalls[0].Amount; got != 119.99 {
		t.Errorf("amount = %v, want authoritative 119.99", got)
	}
	if len(api.uploadCalls) != 1 || api.uploadCalls[0] != request.ID {
		t.Errorf("upload calls = %v, want one for %s", api.uploadCalls, request.ID)
	}
}

func TestSubmitCODSkipsProofUpload(t *testing.T) {
	t.Parallel()

	api := &fakePaymentAPI{}
	service := NewPaymentService(api, nil, nil)

	order := upiOrder()
	order.PaymentMode = orders.ModeCOD
	if _, err := service.Submit(context.Background(), order, orders.ModeCOD, nil); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if api.settingsCalls != 0 {
		t.Error("COD submission should not consult UPI settings")
	}
	if len(api.uploadCalls) != 0 {
		t.Error("COD submission should not upload a proof")
	}
	if len(api.createCalls) != 1 || api.createCalls[0].Mode != orders.ModeCOD {
		t.Errorf("create calls = %+v, want one COD request", api.createCalls)
	}
}

func TestActiveUPISettingUsesCache(t *testing.T) {
	t.Parallel()

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	api := &fakePaymentAPI{settings: activeSettings()}
	service := NewPaymentService(api, provider, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		setting, err := service.ActiveUPISetting(ctx)
		if err != nil {
			t.Fatalf("ActiveUPISetting() error = %v", err)
		}
		if setting == nil || setting.ID != "upi-1" {
			t.Fatalf("setting = %+v, want upi-1", setting)
		}
	}
	if api.settingsCalls != 1 {
		t.Fatalf("settings calls = %d, want 1 (cached afterwards)", api.settingsCalls)
	}
}
