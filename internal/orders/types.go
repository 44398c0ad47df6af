package orders

// Package orders defines the order and payment lifecycle domain types shared
// by the coordinators. The records mirror what the commerce API returns; the
// coordinator never mutates them in place.

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSubmitted PaymentStatus = "submitted"
	PaymentApproved  PaymentStatus = "approved"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentFailed    PaymentStatus = "failed"
	// PaymentPaid appears on legacy records where the verifier wrote "paid"
	// instead of "completed". Both mean settled.
	PaymentPaid PaymentStatus = "paid"
)

type PaymentMode string

const (
	ModeUPI PaymentMode = "UPI"
	ModeCOD PaymentMode = "COD"
)

// Order is one order record as returned by the commerce API.
// PaymentStatus is empty on COD orders that completed without a payment
// record.
type Order struct {
	ID                        string          `json:"id"`
	Status                    OrderStatus     `json:"status"`
	PaymentStatus             PaymentStatus   `json:"payment_status,omitempty"`
	PaymentMode               PaymentMode     `json:"payment_mode"`
	Items                     []OrderItem     `json:"items"`
	PaymentRequestInfo        *PaymentRequest `json:"payment_request_info,omitempty"`
	CancellationReason        string          `json:"cancellation_reason,omitempty"`
	CancellationRefundMessage string          `json:"cancellation_refund_message,omitempty"`
	RefundStatus              *RefundStatus   `json:"refund_status,omitempty"`
	Courier                   *Courier        `json:"courier,omitempty"`
	CreatedAt                 time.Time       `json:"created_at"`
}

type OrderItem struct {
	ProductID       string  `json:"product_id"`
	Size            string  `json:"size,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountedPrice float64 `json:"discounted_price"`
}

// PrimaryProductID returns the product the review flow targets, the first
// line item of the order.
func (o *Order) PrimaryProductID() string {
	if o == nil || len(o.Items) == 0 {
		return ""
	}
	return o.Items[0].ProductID
}

// PaymentRequest is one attempt to settle an order's amount. An order has at
// most one active request at a time; repayment supersedes rather than
// duplicates it.
type PaymentRequest struct {
	ID               string        `json:"id"`
	OrderID          string        `json:"order"`
	Mode             PaymentMode   `json:"mode"`
	Amount           float64       `json:"amount"`
	Status           PaymentStatus `json:"status"`
	UPIProofImageURL string        `json:"upi_proof_image_url,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

type RefundStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Courier struct {
	Name        string `json:"name"`
	TrackingID  string `json:"tracking_id,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// UPISetting is a merchant collection endpoint. The storefront pays against
// the single active entry.
type UPISetting struct {
	ID       string `json:"id"`
	VPA      string `json:"vpa"`
	Payee    string `json:"payee_name"`
	QRImage  string `json:"qr_image_url,omitempty"`
	IsActive bool   `json:"is_active"`
}

// ActiveUPISetting returns the first active entry, or nil.
func ActiveUPISetting(settings []UPISetting) *UPISetting {
	for i := range settings {
		if settings[i].IsActive {
			return &settings[i]
		}
	}
	return nil
}
