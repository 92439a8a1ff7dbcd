package app

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"franchise_ops_worker/internal/domain/event"
	"franchise_ops_worker/internal/domain/shipping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confirmCall struct {
	memberID  int64
	detailIDs []int64
	at        time.Time
}

type fakeShippingRepo struct {
	mu         sync.Mutex
	candidates []*shipping.ConfirmCandidate
	listErr    error
	failFor    map[int64]error
	calls      []confirmCall
	cutoff     time.Time
}

func (r *fakeShippingRepo) ListConfirmCandidates(ctx context.Context, cutoff time.Time) ([]*shipping.ConfirmCandidate, error) {
	r.cutoff = cutoff
	return r.candidates, r.listErr
}

func (r *fakeShippingRepo) ConfirmPurchases(ctx context.Context, memberID int64, detailIDs []int64, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[memberID]; err != nil {
		return 0, err
	}
	r.calls = append(r.calls, confirmCall{memberID: memberID, detailIDs: detailIDs, at: at})
	return int64(len(detailIDs)), nil
}

func (r *fakeShippingRepo) sortedCalls() []confirmCall {
	out := append([]confirmCall(nil), r.calls...)
	sort.Slice(out, func(i, j int) bool { return out[i].memberID < out[j].memberID })
	return out
}

var confirmNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

func newTestConfirmer(repo shipping.Repository, pub event.Publisher) *AutoConfirmer {
	return NewAutoConfirmer(repo, pub, fixedClock{now: confirmNow}, 72*time.Hour, 2, testLogger())
}

func TestAutoConfirmer_GroupsByOwningMember(t *testing.T) {
	repo := &fakeShippingRepo{candidates: []*shipping.ConfirmCandidate{
		{DetailID: 10, OrderID: 1, MemberID: 501},
		{DetailID: 11, OrderID: 1, MemberID: 501},
		{DetailID: 20, OrderID: 2, MemberID: 502},
	}}
	pub := &recordingPublisher{}

	report, err := newTestConfirmer(repo, pub).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &AutoConfirmReport{Rows: 3, Groups: 2, ConfirmedRows: 3}, report)

	assert.Equal(t, confirmNow.Add(-72*time.Hour), repo.cutoff)
	calls := repo.sortedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, confirmCall{memberID: 501, detailIDs: []int64{10, 11}, at: confirmNow}, calls[0])
	assert.Equal(t, confirmCall{memberID: 502, detailIDs: []int64{20}, at: confirmNow}, calls[1])
	assert.Len(t, pub.events, 2)
}

func TestAutoConfirmer_FailedGroupDoesNotAbortOthers(t *testing.T) {
	repo := &fakeShippingRepo{
		candidates: []*shipping.ConfirmCandidate{
			{DetailID: 10, OrderID: 1, MemberID: 501},
			{DetailID: 20, OrderID: 2, MemberID: 502},
			{DetailID: 30, OrderID: 3, MemberID: 503},
		},
		failFor: map[int64]error{502: errStoreDown},
	}

	report, err := newTestConfirmer(repo, &recordingPublisher{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, &AutoConfirmReport{Rows: 3, Groups: 3, ConfirmedRows: 2, FailedGroups: 1}, report)
	assert.Len(t, repo.calls, 2)
}

func TestAutoConfirmer_NothingToDo(t *testing.T) {
	repo := &fakeShippingRepo{}
	report, err := newTestConfirmer(repo, &recordingPublisher{}).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Empty(t, repo.calls)
}

func TestAutoConfirmer_ListErrorAbortsRun(t *testing.T) {
	repo := &fakeShippingRepo{listErr: errStoreDown}
	report, err := newTestConfirmer(repo, &recordingPublisher{}).Run(context.Background())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGroupByMember_PreservesFirstSeenOrder(t *testing.T) {
	groups := shipping.GroupByMember([]*shipping.ConfirmCandidate{
		{DetailID: 3, MemberID: 9},
		{DetailID: 1, MemberID: 4},
		{DetailID: 2, MemberID: 9},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, &shipping.MemberGroup{MemberID: 9, DetailIDs: []int64{3, 2}}, groups[0])
	assert.Equal(t, &shipping.MemberGroup{MemberID: 4, DetailIDs: []int64{1}}, groups[1])
}
