package commerce

import (
	"context"
	"io"
	"net/url"

	"github.com/orderdeskapp/orderdesk/internal/orders"
)

type CreatePaymentParams struct {
	OrderID string             `json:"order"`
	Amount  float64            `json:"amount"`
	Mode    orders.PaymentMode `json:"mode"`
}

func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*orders.PaymentRequest, error) {
	var request orders.PaymentRequest
	if err := c.postJSON(ctx, "/payments/", params, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// UploadPaymentProof attaches the UPI proof image to a freshly created
// payment request.
func (c *Client) UploadPaymentProof(ctx context.Context, paymentID, filename string, proof io.Reader) error {
	return c.postFile(ctx, "/payments/"+url.PathEscape(paymentID)+"/proof/", "proof", filename, proof, nil)
}

// ReuploadPaymentProof replaces the proof on an existing rejected request,
// moving it back to pending verification. The request id never changes.
func (c *Client) ReuploadPaymentProof(ctx context.Context, requestID, filename string, proof io.Reader) (*orders.PaymentRequest, error) {
	var request orders.PaymentRequest
	if err := c.postFile(ctx, "/payments/"+url.PathEscape(requestID)+"/proof/reupload/", "proof", filename, proof, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

type CreateRepaymentParams struct {
	OrderID string             `json:"order_id"`
	Mode    orders.PaymentMode `json:"payment_mode"`
}

// CreateRepayment opens a brand-new payment request for an order whose
// previous request was rejected. The rejected request stays as history.
func (c *Client) CreateRepayment(ctx context.Context, params CreateRepaymentParams) (*orders.PaymentRequest, error) {
	var request orders.PaymentRequest
	if err := c.postJSON(ctx, "/payments/repayment/", params, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) GetUPISettings(ctx context.Context) ([]orders.UPISetting, error) {
	var settings []orders.UPISetting
	if err := c.getJSON(ctx, "/payments/upi-settings/", &settings); err != nil {
		return nil, err
	}
	return settings, nil
}
