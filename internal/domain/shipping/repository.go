package shipping

import (
	"context"
	"time"
)

// Repository defines the store operations of the purchase auto-confirm reconciler.
type Repository interface {
	// ListConfirmCandidates returns SHIPPING_COMPLETE rows completed at or before cutoff.
	ListConfirmCandidates(ctx context.Context, cutoff time.Time) ([]*ConfirmCandidate, error)
	// ConfirmPurchases advances the given rows to PURCHASE_CONFIRM, attributing the change
	// to memberID. Only rows still in SHIPPING_COMPLETE are touched; the count is returned.
	ConfirmPurchases(ctx context.Context, memberID int64, detailIDs []int64, at time.Time) (int64, error)
}
