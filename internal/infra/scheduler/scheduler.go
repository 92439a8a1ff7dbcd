package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"franchise_ops_worker/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Announcer is told about every finished run. The ops chat relay implements it.
type Announcer interface {
	Announce(jobName string, report app.Report) error
}

// JobScheduler triggers jobs on cron schedules in local time. Overlapping
// triggers of the same job on one instance are skipped, and panics are
// recovered by the cron chain.
type JobScheduler struct {
	cronEngine *cron.Cron
	logger     *logrus.Entry
	jobTimeout time.Duration
	announcers []Announcer
	jobNames   []string
}

func NewJobScheduler(logger *logrus.Entry, jobTimeout time.Duration, announcers ...Announcer) *JobScheduler {
	cronLogger := cron.PrintfLogger(logger.WithField("component", "cron"))
	return &JobScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:     logger,
		jobTimeout: jobTimeout,
		announcers: announcers,
	}
}

// Register adds job under spec (standard 5-field cron or @every/@daily descriptors).
func (s *JobScheduler) Register(spec string, job app.Job) error {
	if _, err := s.cronEngine.AddFunc(spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("could not schedule %s with %q: %w", job.Name(), spec, err)
	}
	s.jobNames = append(s.jobNames, job.Name())
	s.logger.WithFields(logrus.Fields{"job": job.Name(), "schedule": spec}).Info("Scheduled job")
	return nil
}

// JobNames lists registered jobs in registration order.
func (s *JobScheduler) JobNames() []string {
	return append([]string(nil), s.jobNames...)
}

func (s *JobScheduler) execute(job app.Job) {
	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	started := time.Now()
	logCtx := s.logger.WithFields(logrus.Fields{"job": job.Name(), "run_id": app.RunID(job.Name(), started)})
	report, err := job.Run(ctx)
	if isNilReport(report) {
		report = nil
	}
	logCtx = logCtx.WithField("elapsed", time.Since(started).Round(time.Millisecond).String())
	if report != nil {
		logCtx = logCtx.WithField("report", report.String())
	}
	if err != nil {
		logCtx.WithError(err).Error("Job run finished with errors")
	} else {
		logCtx.Info("Job run finished")
	}

	for _, a := range s.announcers {
		if aErr := a.Announce(job.Name(), report); aErr != nil {
			logCtx.WithError(aErr).Warn("Could not announce job run")
		}
	}
}

// isNilReport also catches a nil pointer stored in the interface.
func isNilReport(r app.Report) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (s *JobScheduler) Start() {
	s.logger.WithField("jobs", len(s.jobNames)).Info("Starting job scheduler")
	s.cronEngine.Start()
}

// Stop prevents new triggers and waits for running jobs or ctx, whichever ends first.
func (s *JobScheduler) Stop(ctx context.Context) {
	s.logger.Info("Stopping job scheduler...")
	select {
	case <-s.cronEngine.Stop().Done():
		s.logger.Info("Job scheduler gracefully stopped")
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out; running jobs abandoned")
	}
}
