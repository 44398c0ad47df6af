package orders

import "testing"

func TestClassifyBucketPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order Order
		want  Bucket
	}{
		{
			name:  "cancelled wins over everything",
			order: Order{Status: StatusCancelled, PaymentMode: ModeUPI, PaymentStatus: PaymentPending},
			want:  BucketCancelled,
		},
		{
			name:  "delivered goes to previous",
			order: Order{Status: StatusDelivered, PaymentMode: ModeCOD},
			want:  BucketPrevious,
		},
		{
			name:  "pending payment before upi pending",
			order: Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentPending},
			want:  BucketPendingPayment,
		},
		{
			name:  "upi submitted awaits verification",
			order: Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentSubmitted},
			want:  BucketUPIPending,
		},
		{
			name:  "cod order without pending payment",
			order: Order{Status: StatusConfirmed, PaymentMode: ModeCOD, PaymentStatus: PaymentCompleted},
			want:  BucketCODOrders,
		},
		{
			name:  "cod completed with null payment status",
			order: Order{Status: StatusShipped, PaymentMode: ModeCOD},
			want:  BucketCODOrders,
		},
		{
			name:  "active upi order lands in current",
			order: Order{Status: StatusConfirmed, PaymentMode: ModeUPI, PaymentStatus: PaymentCompleted},
			want:  BucketCurrent,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(&tc.order)
			if got.Bucket != tc.want {
				t.Fatalf("Classify().Bucket = %q, want %q", got.Bucket, tc.want)
			}
		})
	}
}

func TestClassifyTotality(t *testing.T) {
	t.Parallel()

	statuses := []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
	paymentStatuses := []PaymentStatus{"", PaymentPending, PaymentSubmitted, PaymentApproved, PaymentCompleted, PaymentRejected, PaymentFailed, PaymentPaid}
	modes := []PaymentMode{ModeUPI, ModeCOD}

	for _, status := range statuses {
		for _, ps := range paymentStatuses {
			for _, mode := range modes {
				order := Order{Status: status, PaymentStatus: ps, PaymentMode: mode}
				got := Classify(&order)
				if !got.Bucket.Valid() {
					t.Errorf("Classify(%s/%s/%s) produced invalid bucket %q", status, ps, mode, got.Bucket)
				}
				if got.Badge == "" {
					t.Errorf("Classify(%s/%s/%s) produced empty badge", status, ps, mode)
				}
			}
		}
	}
}

func TestNeedsRepayment(t *testing.T) {
	t.Parallel()

	rejected := &PaymentRequest{ID: "pr-1", Mode: ModeUPI, Status: PaymentRejected}

	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{
			name:  "rejected upi request needs repayment",
			order: Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentPending, PaymentRequestInfo: rejected},
			want:  true,
		},
		{
			name:  "no payment request info",
			order: Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentPending},
			want:  false,
		},
		{
			name:  "rejected cod request never repays",
			order: Order{Status: StatusPending, PaymentMode: ModeCOD, PaymentStatus: PaymentPending, PaymentRequestInfo: &PaymentRequest{Mode: ModeCOD, Status: PaymentRejected}},
			want:  false,
		},
		{
			name:  "request not rejected",
			order: Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentSubmitted, PaymentRequestInfo: &PaymentRequest{Mode: ModeUPI, Status: PaymentSubmitted}},
			want:  false,
		},
		{
			name:  "already settled as completed",
			order: Order{Status: StatusConfirmed, PaymentMode: ModeUPI, PaymentStatus: PaymentCompleted, PaymentRequestInfo: rejected},
			want:  false,
		},
		{
			name:  "already settled as paid",
			order: Order{Status: StatusConfirmed, PaymentMode: ModeUPI, PaymentStatus: PaymentPaid, PaymentRequestInfo: rejected},
			want:  false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NeedsRepayment(&tc.order); got != tc.want {
				t.Fatalf("NeedsRepayment() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCancelEligibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  OrderStatus
		can     bool
		refusal CancelRefusal
	}{
		{StatusPending, true, CancelAllowed},
		{StatusConfirmed, true, CancelAllowed},
		{StatusShipped, false, CancelAlreadyShipped},
		{StatusDelivered, false, CancelAlreadyResolved},
		{StatusCancelled, false, CancelAlreadyResolved},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()
			got := Classify(&Order{Status: tc.status, PaymentMode: ModeCOD})
			if got.CanCancel != tc.can {
				t.Fatalf("CanCancel = %v, want %v", got.CanCancel, tc.can)
			}
			if got.CancelRefusal != tc.refusal {
				t.Fatalf("CancelRefusal = %q, want %q", got.CancelRefusal, tc.refusal)
			}
		})
	}
}

func TestClassifyAwaitingVerificationScenario(t *testing.T) {
	t.Parallel()

	order := Order{Status: StatusPending, PaymentMode: ModeUPI, PaymentStatus: PaymentSubmitted}
	got := Classify(&order)

	if got.Bucket != BucketUPIPending {
		t.Errorf("Bucket = %q, want %q", got.Bucket, BucketUPIPending)
	}
	if got.Badge != BadgeAwaitingVerification {
		t.Errorf("Badge = %q, want %q", got.Badge, BadgeAwaitingVerification)
	}
	if !got.CanCancel {
		t.Error("CanCancel = false, want true")
	}
	if got.NeedsRepayment {
		t.Error("NeedsRepayment = true, want false")
	}
}

func TestClassifyRejectedRepaymentScenario(t *testing.T) {
	t.Parallel()

	order := Order{
		Status:             StatusPending,
		PaymentMode:        ModeUPI,
		PaymentStatus:      PaymentPending,
		PaymentRequestInfo: &PaymentRequest{ID: "pr-9", Mode: ModeUPI, Status: PaymentRejected},
	}
	got := Classify(&order)

	if got.Bucket != BucketPendingPayment {
		t.Errorf("Bucket = %q, want %q", got.Bucket, BucketPendingPayment)
	}
	if !got.NeedsRepayment {
		t.Error("NeedsRepayment = false, want true")
	}
	if got.ShowPaymentButton {
		t.Error("ShowPaymentButton = true, want false; repay UI takes precedence")
	}
}

func TestActiveUPISetting(t *testing.T) {
	t.Parallel()

	settings := []UPISetting{
		{ID: "upi-1", VPA: "old@bank", IsActive: false},
		{ID: "upi-2", VPA: "shop@bank", IsActive: true},
		{ID: "upi-3", VPA: "backup@bank", IsActive: true},
	}

	got := ActiveUPISetting(settings)
	if got == nil || got.ID != "upi-2" {
		t.Fatalf("ActiveUPISetting() = %+v, want upi-2", got)
	}

	if got := ActiveUPISetting([]UPISetting{{ID: "upi-1"}}); got != nil {
		t.Fatalf("ActiveUPISetting() without active entry = %+v, want nil", got)
	}
}
