package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"franchise_ops_worker/internal/domain/shipping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shippingNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

func newShippingRepo(t *testing.T) *SQLShippingRepository {
	db, dialect := openTestDB(t)
	return NewSQLShippingRepository(db, dialect)
}

func seedDetail(t *testing.T, r *SQLShippingRepository, id, orderID, memberID int64, status shipping.Status, completed time.Time) {
	t.Helper()
	mustExec(t, r.db, `INSERT OR IGNORE INTO shipping_orders (id, member_id) VALUES (?, ?)`, orderID, memberID)
	mustExec(t, r.db, `INSERT INTO shipping_order_details (id, order_id, status, shipping_complete_time) VALUES (?, ?, ?, ?)`,
		id, orderID, string(status), ts(completed))
}

type detailRow struct {
	status       string
	confirmTime  sql.NullString
	modifiedTime sql.NullString
	modifiedBy   sql.NullInt64
}

func loadDetail(t *testing.T, r *SQLShippingRepository, id int64) detailRow {
	t.Helper()
	var d detailRow
	err := r.db.QueryRow(`SELECT status, purchase_confirm_time, modified_time, modified_by FROM shipping_order_details WHERE id = ?`, id).
		Scan(&d.status, &d.confirmTime, &d.modifiedTime, &d.modifiedBy)
	require.NoError(t, err)
	return d
}

func detailIDs(cands []*shipping.ConfirmCandidate) []int64 {
	ids := make([]int64, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.DetailID)
	}
	return ids
}

func TestListConfirmCandidates_CutoffBoundary(t *testing.T) {
	repo := newShippingRepo(t)
	cutoff := shippingNow.Add(-72 * time.Hour)

	seedDetail(t, repo, 1, 10, 501, shipping.StatusShippingComplete, cutoff)
	seedDetail(t, repo, 2, 11, 502, shipping.StatusShippingComplete, cutoff.Add(time.Second))
	seedDetail(t, repo, 3, 12, 503, shipping.StatusShippingComplete, cutoff.Add(-24*time.Hour))
	seedDetail(t, repo, 4, 13, 504, shipping.StatusPurchaseConfirm, cutoff.Add(-24*time.Hour))
	seedDetail(t, repo, 5, 14, 505, shipping.StatusShipping, cutoff.Add(-24*time.Hour))

	cands, err := repo.ListConfirmCandidates(context.Background(), cutoff)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, detailIDs(cands))

	for _, c := range cands {
		if c.DetailID == 1 {
			assert.Equal(t, int64(10), c.OrderID)
			assert.Equal(t, int64(501), c.MemberID)
			assert.Equal(t, cutoff, c.ShippingCompleteTime)
		}
	}
}

func TestConfirmPurchases_AttributesEachGroupToItsMember(t *testing.T) {
	repo := newShippingRepo(t)
	completed := shippingNow.Add(-96 * time.Hour)
	seedDetail(t, repo, 1, 10, 501, shipping.StatusShippingComplete, completed)
	seedDetail(t, repo, 2, 10, 501, shipping.StatusShippingComplete, completed)
	seedDetail(t, repo, 3, 20, 502, shipping.StatusShippingComplete, completed)

	cands, err := repo.ListConfirmCandidates(context.Background(), shippingNow.Add(-72*time.Hour))
	require.NoError(t, err)
	groups := shipping.GroupByMember(cands)
	require.Len(t, groups, 2)

	for _, g := range groups {
		n, err := repo.ConfirmPurchases(context.Background(), g.MemberID, g.DetailIDs, shippingNow)
		require.NoError(t, err)
		assert.Equal(t, int64(len(g.DetailIDs)), n)
	}

	for id, member := range map[int64]int64{1: 501, 2: 501, 3: 502} {
		d := loadDetail(t, repo, id)
		assert.Equal(t, string(shipping.StatusPurchaseConfirm), d.status)
		assert.Equal(t, "2026-10-16 12:00:00", d.confirmTime.String)
		assert.Equal(t, d.confirmTime, d.modifiedTime)
		assert.Equal(t, member, d.modifiedBy.Int64)
	}

	// confirmed rows fall out of the candidate set
	cands, err = repo.ListConfirmCandidates(context.Background(), shippingNow.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestConfirmPurchases_NeverTouchesOtherStatuses(t *testing.T) {
	repo := newShippingRepo(t)
	earlier := shippingNow.Add(-240 * time.Hour)
	seedDetail(t, repo, 1, 10, 501, shipping.StatusPurchaseConfirm, earlier)
	mustExec(t, repo.db, `UPDATE shipping_order_details SET purchase_confirm_time = ?, modified_by = ? WHERE id = 1`, ts(earlier), 999)
	seedDetail(t, repo, 2, 10, 501, shipping.StatusReturnRequest, earlier)

	n, err := repo.ConfirmPurchases(context.Background(), 501, []int64{1, 2}, shippingNow)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	d := loadDetail(t, repo, 1)
	assert.Equal(t, string(shipping.StatusPurchaseConfirm), d.status)
	assert.Equal(t, ts(earlier), d.confirmTime.String)
	assert.Equal(t, int64(999), d.modifiedBy.Int64)
	assert.Equal(t, string(shipping.StatusReturnRequest), loadDetail(t, repo, 2).status)
}

func TestConfirmPurchases_EmptyGroup(t *testing.T) {
	repo := newShippingRepo(t)
	n, err := repo.ConfirmPurchases(context.Background(), 501, nil, shippingNow)
	require.NoError(t, err)
	assert.Zero(t, n)
}
