// internal/infra/database/membership_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"franchise_ops_worker/internal/domain/membership"
	"franchise_ops_worker/internal/domain/notification"
)

type SQLMembershipRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLMembershipRepository(db *sql.DB, dialect Dialect) *SQLMembershipRepository {
	return &SQLMembershipRepository{db: db, dialect: dialect}
}

func (r *SQLMembershipRepository) ListExpiringOrders(ctx context.Context, now, windowEnd time.Time) ([]*membership.ExpiringOrder, error) {
	query := r.dialect.Rebind(`SELECT o.id, o.member_id, m.name, o.center_id, o.start_date, o.end_date
               FROM membership_orders o
               JOIN members m ON m.id = o.member_id
               WHERE o.start_date <= ?
                 AND o.end_date > ?
                 AND o.end_date < ?
                 AND o.notification_sent = ?
               ORDER BY o.member_id, o.end_date DESC, o.id`)

	nowStr := formatTime(now)
	rows, err := r.db.QueryContext(ctx, query, nowStr, nowStr, formatTime(windowEnd), false)
	if err != nil {
		return nil, fmt.Errorf("error querying expiring membership orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*membership.ExpiringOrder, 0)
	for rows.Next() {
		o := &membership.ExpiringOrder{}
		var start, end dbTime
		if err := rows.Scan(&o.OrderID, &o.MemberID, &o.MemberName, &o.CenterID, &start, &end); err != nil {
			return nil, fmt.Errorf("error scanning expiring membership order: %w", err)
		}
		o.StartDate, o.EndDate = start.Time, end.Time
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expiring membership orders: %w", err)
	}
	return orders, nil
}

// MarkNotified flips the order's flag and inserts the notification in one
// transaction. The flag update is guarded so a concurrent or repeated call
// inserts nothing and returns membership.ErrOrderAlreadyNotified.
func (r *SQLMembershipRepository) MarkNotified(ctx context.Context, orderID int64, n *notification.Notification) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for order %d: %w", orderID, err)
	}
	defer txn.Rollback() // no-op after commit

	res, err := txn.ExecContext(ctx, r.dialect.Rebind(`UPDATE membership_orders
               SET notification_sent = ?
               WHERE id = ? AND notification_sent = ?`), true, orderID, false)
	if err != nil {
		return fmt.Errorf("error flagging membership order %d as notified: %w", orderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for order %d: %w", orderID, err)
	}
	if affected == 0 {
		return membership.ErrOrderAlreadyNotified
	}

	_, err = txn.ExecContext(ctx, r.dialect.Rebind(`INSERT INTO notifications
               (recipient_id, order_id, notification_window, type, title, message, is_read, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		n.RecipientID, n.OrderID, string(n.Window), string(n.Type), n.Title, n.Message, n.IsRead, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting expiry notification for order %d: %w", orderID, err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit notification for order %d: %w", orderID, err)
	}
	return nil
}
