package app

import (
	"context"
	"fmt"
	"time"

	"franchise_ops_worker/internal/domain/lock"

	"github.com/sirupsen/logrus"
)

const releaseTimeout = 5 * time.Second

// ExclusiveRunner runs functions under a named store lock so that only one
// instance of a clustered deployment executes a given pass at a time.
type ExclusiveRunner struct {
	locker lock.Locker
	logger *logrus.Entry
}

func NewExclusiveRunner(locker lock.Locker, logger *logrus.Entry) *ExclusiveRunner {
	return &ExclusiveRunner{locker: locker, logger: logger}
}

// RunExclusive tries lockName once without waiting. Contention and acquisition
// errors are logged and reported as ran=false with a nil error. When the lock is
// acquired fn runs and the lock is released on every exit path, panics included.
// The returned error is fn's.
func (r *ExclusiveRunner) RunExclusive(ctx context.Context, lockName string, fn func(ctx context.Context) error) (ran bool, err error) {
	logCtx := r.logger.WithField("lock", lockName)

	lease, acquired, err := r.locker.TryAcquire(ctx, lockName)
	if err != nil {
		logCtx.WithError(err).Error("Lock acquisition failed, skipping run")
		return false, nil
	}
	if !acquired {
		logCtx.Info("Lock held by another instance, skipping run")
		return false, nil
	}
	logCtx.Debug("Lock acquired")

	defer func() {
		// the job context may already be cancelled or past its deadline
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if relErr := lease.Release(releaseCtx); relErr != nil {
			logCtx.WithError(relErr).Warn("Lock release failed")
			return
		}
		logCtx.Debug("Lock released")
	}()

	return true, fn(ctx)
}

// Wrap returns a Job that runs job under lockName.
func (r *ExclusiveRunner) Wrap(lockName string, job Job) Job {
	return &exclusiveJob{runner: r, lockName: lockName, inner: job}
}

type exclusiveJob struct {
	runner   *ExclusiveRunner
	lockName string
	inner    Job
}

func (j *exclusiveJob) Name() string { return j.inner.Name() }

func (j *exclusiveJob) Run(ctx context.Context) (Report, error) {
	var report Report
	ran, err := j.runner.RunExclusive(ctx, j.lockName, func(ctx context.Context) error {
		var runErr error
		report, runErr = j.inner.Run(ctx)
		return runErr
	})
	if !ran {
		return skippedReport{lockName: j.lockName}, nil
	}
	if err != nil {
		return report, fmt.Errorf("%s: %w", j.inner.Name(), err)
	}
	return report, nil
}

// LockName derives the store lock name of a job.
func LockName(job Job) string {
	return "franchise-ops:" + job.Name()
}
