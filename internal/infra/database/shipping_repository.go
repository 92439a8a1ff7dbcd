// internal/infra/database/shipping_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"franchise_ops_worker/internal/domain/shipping"
)

type SQLShippingRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLShippingRepository(db *sql.DB, dialect Dialect) *SQLShippingRepository {
	return &SQLShippingRepository{db: db, dialect: dialect}
}

func (r *SQLShippingRepository) ListConfirmCandidates(ctx context.Context, cutoff time.Time) ([]*shipping.ConfirmCandidate, error) {
	query := r.dialect.Rebind(`SELECT d.id, d.order_id, o.member_id, d.shipping_complete_time
               FROM shipping_order_details d
               JOIN shipping_orders o ON o.id = d.order_id
               WHERE d.status = ?
                 AND d.shipping_complete_time <= ?
               ORDER BY o.member_id, d.id`)

	rows, err := r.db.QueryContext(ctx, query, string(shipping.StatusShippingComplete), formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("error querying purchase confirm candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*shipping.ConfirmCandidate, 0)
	for rows.Next() {
		c := &shipping.ConfirmCandidate{}
		var completed dbTime
		if err := rows.Scan(&c.DetailID, &c.OrderID, &c.MemberID, &completed); err != nil {
			return nil, fmt.Errorf("error scanning purchase confirm candidate: %w", err)
		}
		c.ShippingCompleteTime = completed.Time
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase confirm candidates: %w", err)
	}
	return candidates, nil
}

func (r *SQLShippingRepository) ConfirmPurchases(ctx context.Context, memberID int64, detailIDs []int64, at time.Time) (int64, error) {
	if len(detailIDs) == 0 {
		return 0, nil
	}

	stamp := formatTime(at)
	args := make([]any, 0, 5+len(detailIDs))
	args = append(args, string(shipping.StatusPurchaseConfirm), stamp, stamp, memberID, string(shipping.StatusShippingComplete))
	for _, id := range detailIDs {
		args = append(args, id)
	}

	query := r.dialect.Rebind(`UPDATE shipping_order_details
               SET status = ?, purchase_confirm_time = ?, modified_time = ?, modified_by = ?
               WHERE status = ? AND id IN (` + placeholders(len(detailIDs)) + `)`)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error confirming purchases for member %d: %w", memberID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows for member %d: %w", memberID, err)
	}
	return n, nil
}
