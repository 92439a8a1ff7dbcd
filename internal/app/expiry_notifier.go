package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"franchise_ops_worker/internal/domain/event"
	"franchise_ops_worker/internal/domain/membership"
	"franchise_ops_worker/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultExpiryWindowDays = 5

// ExpiryReport summarizes a membership expiry notifier run.
type ExpiryReport struct {
	Candidates int
	Notified   int
	Skipped    int
	Failed     int
}

func (r *ExpiryReport) String() string {
	return fmt.Sprintf("candidates=%d notified=%d skipped=%d failed=%d", r.Candidates, r.Notified, r.Skipped, r.Failed)
}

func (r *ExpiryReport) Changed() bool { return r.Notified > 0 }

// ExpiryNotifier notifies centers about memberships that end within the window.
type ExpiryNotifier struct {
	repo       membership.Repository
	publisher  event.Publisher
	clock      Clock
	windowDays int
	logger     *logrus.Entry
}

func NewExpiryNotifier(
	repo membership.Repository,
	publisher event.Publisher,
	clock Clock,
	windowDays int, // orders with DATEDIFF(end_date, now) <= windowDays are notified
	logger *logrus.Entry,
) *ExpiryNotifier {
	if windowDays <= 0 {
		windowDays = DefaultExpiryWindowDays
	}
	return &ExpiryNotifier{
		repo:       repo,
		publisher:  publisher,
		clock:      clock,
		windowDays: windowDays,
		logger:     logger.WithField("job", "membership-expiry"),
	}
}

func (n *ExpiryNotifier) Name() string { return "membership-expiry" }

// Run performs one notifier pass. Per-order failures are logged and counted;
// the remaining orders are still processed.
func (n *ExpiryNotifier) Run(ctx context.Context) (Report, error) {
	now := n.clock.Now()
	// DATEDIFF(end_date, now) <= windowDays  <=>  end_date < start of (today + windowDays + 1)
	windowEnd := startOfDay(now).AddDate(0, 0, n.windowDays+1)

	orders, err := n.repo.ListExpiringOrders(ctx, now, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring membership orders: %w", err)
	}

	candidates := latestOrderPerMember(orders)
	report := &ExpiryReport{Candidates: len(candidates)}
	if len(candidates) == 0 {
		n.logger.Info("No memberships entering the expiry window")
		return report, nil
	}
	n.logger.WithField("count", len(candidates)).Info("Found memberships entering the expiry window")

	var errs []error
	for _, o := range candidates {
		logCtx := n.logger.WithFields(logrus.Fields{
			"order_id":  o.OrderID,
			"member_id": o.MemberID,
			"center_id": o.CenterID,
			"days_left": o.DaysLeft(now),
		})

		notice := notification.NewMembershipExpiry(o.CenterID, o.OrderID, o.MemberName, o.EndDate, now)
		err := n.repo.MarkNotified(ctx, o.OrderID, notice)
		switch {
		case errors.Is(err, membership.ErrOrderAlreadyNotified):
			logCtx.Info("Order already notified, skipping")
			report.Skipped++
			continue
		case err != nil:
			logCtx.WithError(err).Error("Failed to record expiry notification")
			report.Failed++
			errs = append(errs, fmt.Errorf("order %d: %w", o.OrderID, err))
			continue
		}

		report.Notified++
		logCtx.Info("Expiry notification recorded")
		n.publish(ctx, logCtx, o, now)
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d expiry notifications failed: %w", len(errs), len(candidates), errors.Join(errs...))
	}
	return report, nil
}

func (n *ExpiryNotifier) publish(ctx context.Context, logCtx *logrus.Entry, o *membership.ExpiringOrder, now time.Time) {
	evt := event.MembershipExpiryNotified{
		EventID:    uuid.NewString(),
		OrderID:    o.OrderID,
		MemberID:   o.MemberID,
		CenterID:   o.CenterID,
		EndDate:    string(notification.WindowFor(o.EndDate)),
		OccurredAt: now,
	}
	if err := n.publisher.Publish(ctx, event.RoutingKeyExpiryNotified, evt); err != nil {
		logCtx.WithError(err).Warn("Failed to publish expiry event")
	}
}

// latestOrderPerMember keeps one order per member. The repository returns rows
// ordered by member, latest end date first, so the first row of each member wins.
func latestOrderPerMember(orders []*membership.ExpiringOrder) []*membership.ExpiringOrder {
	seen := make(map[int64]struct{}, len(orders))
	out := make([]*membership.ExpiringOrder, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.MemberID]; ok {
			continue
		}
		seen[o.MemberID] = struct{}{}
		out = append(out, o)
	}
	return out
}
