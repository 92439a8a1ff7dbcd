package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"franchise_ops_worker/internal/domain/event"
	"franchise_ops_worker/internal/domain/shipping"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultGracePeriod        = 72 * time.Hour
	DefaultAutoConfirmWorkers = 4
)

// AutoConfirmReport summarizes a purchase auto-confirm run.
type AutoConfirmReport struct {
	Rows          int
	Groups        int
	ConfirmedRows int64
	FailedGroups  int
}

func (r *AutoConfirmReport) String() string {
	return fmt.Sprintf("rows=%d groups=%d confirmed=%d failed_groups=%d", r.Rows, r.Groups, r.ConfirmedRows, r.FailedGroups)
}

func (r *AutoConfirmReport) Changed() bool { return r.ConfirmedRows > 0 }

// AutoConfirmer confirms purchases of delivered orders once the grace period has passed.
type AutoConfirmer struct {
	repo      shipping.Repository
	publisher event.Publisher
	clock     Clock
	grace     time.Duration
	workers   int
	logger    *logrus.Entry
}

func NewAutoConfirmer(
	repo shipping.Repository,
	publisher event.Publisher,
	clock Clock,
	grace time.Duration,
	workers int, // max concurrent group updates
	logger *logrus.Entry,
) *AutoConfirmer {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if workers <= 0 {
		workers = DefaultAutoConfirmWorkers
	}
	return &AutoConfirmer{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		grace:     grace,
		workers:   workers,
		logger:    logger.WithField("job", "purchase-auto-confirm"),
	}
}

func (a *AutoConfirmer) Name() string { return "purchase-auto-confirm" }

// Run performs one reconciler pass. Groups are updated independently; a failed
// group stays in SHIPPING_COMPLETE and is picked up again by the next run.
func (a *AutoConfirmer) Run(ctx context.Context) (Report, error) {
	now := a.clock.Now()
	cutoff := now.Add(-a.grace)

	candidates, err := a.repo.ListConfirmCandidates(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase confirm candidates: %w", err)
	}

	groups := shipping.GroupByMember(candidates)
	report := &AutoConfirmReport{Rows: len(candidates), Groups: len(groups)}
	if len(groups) == 0 {
		a.logger.Debug("No delivered orders past the grace period")
		return report, nil
	}
	a.logger.WithFields(logrus.Fields{"rows": len(candidates), "groups": len(groups)}).Info("Confirming delivered orders past the grace period")

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(a.workers)
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			logCtx := a.logger.WithFields(logrus.Fields{"member_id": grp.MemberID, "detail_ids": grp.DetailIDs})

			n, err := a.repo.ConfirmPurchases(ctx, grp.MemberID, grp.DetailIDs, now)
			if err != nil {
				logCtx.WithError(err).Error("Failed to confirm purchases for member")
				mu.Lock()
				report.FailedGroups++
				errs = append(errs, fmt.Errorf("member %d: %w", grp.MemberID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			report.ConfirmedRows += n
			mu.Unlock()
			logCtx.WithField("confirmed", n).Info("Purchases confirmed")
			if n > 0 {
				a.publish(ctx, logCtx, grp, now)
			}
			return nil
		})
	}
	_ = g.Wait() // group errors are collected in errs

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d confirm groups failed: %w", len(errs), len(groups), errors.Join(errs...))
	}
	return report, nil
}

func (a *AutoConfirmer) publish(ctx context.Context, logCtx *logrus.Entry, grp *shipping.MemberGroup, now time.Time) {
	evt := event.PurchaseConfirmed{
		EventID:     uuid.NewString(),
		MemberID:    grp.MemberID,
		DetailIDs:   grp.DetailIDs,
		ConfirmedAt: now,
	}
	if err := a.publisher.Publish(ctx, event.RoutingKeyPurchaseConfirmed, evt); err != nil {
		logCtx.WithError(err).Warn("Failed to publish purchase confirmed event")
	}
}
