package app

import (
	"context"
	"fmt"
)

// Job is a recurring reconciliation pass.
type Job interface {
	// Name identifies the job in logs and lock names.
	Name() string
	Run(ctx context.Context) (Report, error)
}

// Report summarizes a single run.
type Report interface {
	fmt.Stringer
	// Changed reports whether the run wrote anything to the store.
	Changed() bool
}

type skippedReport struct {
	lockName string
}

func (r skippedReport) String() string {
	return fmt.Sprintf("skipped: lock %q is held by another instance", r.lockName)
}

func (skippedReport) Changed() bool { return false }
