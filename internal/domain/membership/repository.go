package membership

import (
	"context"
	"errors"
	"time"

	"franchise_ops_worker/internal/domain/notification"
)

// ErrOrderAlreadyNotified is returned when the order's notification flag was
// already set by a previous or concurrent run.
var ErrOrderAlreadyNotified = errors.New("membership order already notified")

// Repository defines the store operations of the expiry notifier.
type Repository interface {
	// ListExpiringOrders returns orders with start_date <= now < end_date < windowEnd
	// and notification_sent = false, ordered by member, latest end date first.
	ListExpiringOrders(ctx context.Context, now, windowEnd time.Time) ([]*ExpiringOrder, error)
	// MarkNotified inserts n and sets the order's notification flag in one transaction.
	MarkNotified(ctx context.Context, orderID int64, n *notification.Notification) error
}
