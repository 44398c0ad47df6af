package services

// Package services holds the lifecycle coordinators. Each coordinator
// validates locally before touching the network, performs its upstream
// calls sequentially, and reports outcomes the handlers turn into
// user-facing notices. None of them mutate bucket state; completion is
// signalled by asking the fetch controller for a re-fetch.

import "errors"

// Validation errors, raised before any network call is issued.
var (
	ErrModeRequired          = errors.New("payment mode is required")
	ErrProofRequired         = errors.New("a payment proof image is required")
	ErrNoActiveUPISetting    = errors.New("no active UPI payment method is configured")
	ErrReasonRequired        = errors.New("a cancellation reason is required")
	ErrUnknownReason         = errors.New("unknown cancellation reason")
	ErrNoteRequired          = errors.New("a note is required for this cancellation reason")
	ErrCancellationRefused   = errors.New("order can no longer be cancelled")
	ErrRatingOutOfRange      = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong        = errors.New("comment must be at most 300 characters")
	ErrNoExistingReview      = errors.New("no existing review to operate on")
	ErrRepaymentNotRequired  = errors.New("order does not need repayment")
	ErrRepaymentProofMissing = errors.New("a new proof image is required to reupload")
)

// IsValidationError reports whether err is a local precondition failure
// rather than a transport or upstream error.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrModeRequired, ErrProofRequired, ErrNoActiveUPISetting,
		ErrReasonRequired, ErrUnknownReason, ErrNoteRequired,
		ErrCancellationRefused, ErrRatingOutOfRange, ErrCommentTooLong,
		ErrNoExistingReview, ErrRepaymentNotRequired, ErrRepaymentProofMissing,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
