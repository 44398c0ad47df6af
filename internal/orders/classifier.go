package orders

// Bucket is a lifecycle partition of orders, used both as the storefront tab
// key and to pick the server-side filter for listing.
type Bucket string

const (
	BucketCurrent        Bucket = "current"
	BucketPendingPayment Bucket = "pending_payment"
	BucketPrevious       Bucket = "previous"
	BucketCancelled      Bucket = "cancelled"
	BucketUPIPending     Bucket = "upi_pending"
	BucketCODOrders      Bucket = "cod_orders"
)

// Buckets lists every bucket in tab order.
var Buckets = []Bucket{
	BucketCurrent,
	BucketPendingPayment,
	BucketPrevious,
	BucketCancelled,
	BucketUPIPending,
	BucketCODOrders,
}

func (b Bucket) Valid() bool {
	switch b {
	case BucketCurrent, BucketPendingPayment, BucketPrevious,
		BucketCancelled, BucketUPIPending, BucketCODOrders:
		return true
	}
	return false
}

type Badge string

const (
	BadgePending              Badge = "pending"
	BadgeConfirmed            Badge = "confirmed"
	BadgeShipped              Badge = "shipped"
	BadgeDelivered            Badge = "delivered"
	BadgeCancelled            Badge = "cancelled"
	BadgePaymentDue           Badge = "payment_due"
	BadgeAwaitingVerification Badge = "awaiting_verification"
	BadgePaymentRejected      Badge = "payment_rejected"
)

// CancelRefusal says why an order cannot be cancelled.
type CancelRefusal string

const (
	CancelAllowed         CancelRefusal = ""
	CancelAlreadyShipped  CancelRefusal = "already_shipped"
	CancelAlreadyResolved CancelRefusal = "already_resolved"
)

// Classification is everything the order card needs to render: the bucket
// the order belongs to and the action set enabled for it.
type Classification struct {
	Bucket            Bucket        `json:"bucket"`
	Badge             Badge         `json:"badge"`
	CanCancel         bool          `json:"can_cancel"`
	CancelRefusal     CancelRefusal `json:"cancel_refusal,omitempty"`
	NeedsRepayment    bool          `json:"needs_repayment"`
	ShowPaymentButton bool          `json:"show_payment_button"`
	CanRate           bool          `json:"can_rate"`
}

// badgeKey is one row of the badge lookup table.
type badgeKey struct {
	status        OrderStatus
	paymentStatus PaymentStatus
	mode          PaymentMode
}

// badgeTable holds the combinations that do not render as the plain
// order-status badge. Everything absent falls through to statusBadge.
var badgeTable = map[badgeKey]Badge{
	// UPI payment handed in, verifier has not resolved it yet.
	{StatusPending, PaymentSubmitted, ModeUPI}: BadgeAwaitingVerification,

	{StatusPending, PaymentPending, ModeUPI}: BadgePaymentDue,
	{StatusPending, PaymentPending, ModeCOD}: BadgePaymentDue,

	{StatusPending, PaymentRejected, ModeUPI}: BadgePaymentRejected,
	{StatusPending, PaymentFailed, ModeUPI}:   BadgePaymentRejected,
}

var statusBadge = map[OrderStatus]Badge{
	StatusPending:   BadgePending,
	StatusConfirmed: BadgeConfirmed,
	StatusShipped:   BadgeShipped,
	StatusDelivered: BadgeDelivered,
	StatusCancelled: BadgeCancelled,
}

// Classify maps an order to its lifecycle bucket and allowed actions. It is
// total: every order lands in exactly one bucket.
//
// Bucket precedence, first match wins:
//
//	Cancelled status        -> cancelled
//	Delivered status        -> previous
//	payment_status pending  -> pending_payment
//	UPI + submitted         -> upi_pending
//	COD mode                -> cod_orders
//	otherwise               -> current
func Classify(order *Order) Classification {
	c := Classification{
		Bucket:         classifyBucket(order),
		Badge:          badgeFor(order),
		NeedsRepayment: NeedsRepayment(order),
	}

	c.CanCancel, c.CancelRefusal = cancelEligibility(order.Status)
	c.ShowPaymentButton = c.Bucket == BucketPendingPayment && !c.NeedsRepayment
	c.CanRate = order.Status == StatusDelivered

	return c
}

func classifyBucket(order *Order) Bucket {
	switch {
	case order.Status == StatusCancelled:
		return BucketCancelled
	case order.Status == StatusDelivered:
		return BucketPrevious
	case order.PaymentStatus == PaymentPending:
		return BucketPendingPayment
	case order.PaymentMode == ModeUPI && order.PaymentStatus == PaymentSubmitted:
		return BucketUPIPending
	case order.PaymentMode == ModeCOD:
		return BucketCODOrders
	default:
		return BucketCurrent
	}
}

// NeedsRepayment reports whether the order's latest payment request was a
// rejected UPI attempt that has not since been settled.
func NeedsRepayment(order *Order) bool {
	pri := order.PaymentRequestInfo
	if pri == nil {
		return false
	}
	if pri.Mode != ModeUPI || pri.Status != PaymentRejected {
		return false
	}
	return order.PaymentStatus != PaymentPaid && order.PaymentStatus != PaymentCompleted
}

// CanCancel reports whether the order may still be cancelled. Only orders
// that have not shipped qualify.
func CanCancel(order *Order) bool {
	ok, _ := cancelEligibility(order.Status)
	return ok
}

func cancelEligibility(status OrderStatus) (bool, CancelRefusal) {
	switch status {
	case StatusPending, StatusConfirmed:
		return true, CancelAllowed
	case StatusShipped:
		return false, CancelAlreadyShipped
	default:
		// Delivered and Cancelled orders are settled history.
		return false, CancelAlreadyResolved
	}
}

func badgeFor(order *Order) Badge {
	key := badgeKey{order.Status, order.PaymentStatus, order.PaymentMode}
	if badge, ok := badgeTable[key]; ok {
		return badge
	}
	if badge, ok := statusBadge[order.Status]; ok {
		return badge
	}
	return BadgePending
}
