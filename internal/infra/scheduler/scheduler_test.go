package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"franchise_ops_worker/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countReport struct{ n int }

func (r countReport) String() string { return "n" }
func (r countReport) Changed() bool  { return r.n > 0 }

type stubJob struct {
	name   string
	report app.Report
	err    error

	mu       sync.Mutex
	calls    int
	deadline bool
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Run(ctx context.Context) (app.Report, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	_, j.deadline = ctx.Deadline()
	return j.report, j.err
}

type recordingAnnouncer struct {
	mu      sync.Mutex
	names   []string
	reports []app.Report
	err     error
}

func (a *recordingAnnouncer) Announce(jobName string, report app.Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, jobName)
	a.reports = append(a.reports, report)
	return a.err
}

type downPinger struct{}

func (downPinger) PingContext(context.Context) error { return errors.New("store unreachable") }

func testEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRegister_RejectsBadSpec(t *testing.T) {
	s := NewJobScheduler(testEntry(), time.Minute)

	err := s.Register("every tuesday", &stubJob{name: "bad"})
	assert.Error(t, err)
	assert.Empty(t, s.JobNames())
}

func TestRegister_AcceptsDescriptorsAndFiveFieldSpecs(t *testing.T) {
	s := NewJobScheduler(testEntry(), time.Minute)

	require.NoError(t, s.Register("0 10 * * *", &stubJob{name: "membership-expiry"}))
	require.NoError(t, s.Register("*/10 * * * *", &stubJob{name: "purchase-auto-confirm"}))
	require.NoError(t, s.Register("@every 5m", &stubJob{name: "keepalive"}))

	assert.Equal(t, []string{"membership-expiry", "purchase-auto-confirm", "keepalive"}, s.JobNames())
}

func TestExecute_AppliesTimeoutAndAnnounces(t *testing.T) {
	ann := &recordingAnnouncer{}
	s := NewJobScheduler(testEntry(), time.Minute, ann)
	job := &stubJob{name: "membership-expiry", report: countReport{n: 1}}

	s.execute(job)

	assert.Equal(t, 1, job.calls)
	assert.True(t, job.deadline)
	assert.Equal(t, []string{"membership-expiry"}, ann.names)
}

func TestExecute_JobErrorAndAnnouncerErrorAreContained(t *testing.T) {
	ann := &recordingAnnouncer{err: errors.New("telegram down")}
	s := NewJobScheduler(testEntry(), 0, ann)
	job := &stubJob{name: "purchase-auto-confirm", err: errors.New("1 of 2 confirm groups failed")}

	assert.NotPanics(t, func() { s.execute(job) })
	assert.False(t, job.deadline)
	assert.Equal(t, []string{"purchase-auto-confirm"}, ann.names)
}

func TestExecute_NilPointerReportWithError(t *testing.T) {
	ann := &recordingAnnouncer{}
	s := NewJobScheduler(testEntry(), time.Minute, ann)
	job := &stubJob{name: "keepalive", report: (*app.PingReport)(nil), err: errors.New("store ping failed")}

	assert.NotPanics(t, func() { s.execute(job) })
	require.Len(t, ann.reports, 1)
	assert.True(t, ann.reports[0] == nil)
}

func TestExecute_FailedKeepAliveIsLogged(t *testing.T) {
	ann := &recordingAnnouncer{}
	s := NewJobScheduler(testEntry(), time.Minute, ann)

	assert.NotPanics(t, func() { s.execute(app.NewKeepAlive(downPinger{})) })
	assert.Equal(t, []string{"keepalive"}, ann.names)
}

func TestStartStop(t *testing.T) {
	s := NewJobScheduler(testEntry(), time.Minute)
	require.NoError(t, s.Register("@every 1h", &stubJob{name: "keepalive"}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
