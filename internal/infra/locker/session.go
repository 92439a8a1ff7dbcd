// Package locker implements the store-backed lockers used by the job runner.
package locker

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"franchise_ops_worker/internal/domain/lock"
	"franchise_ops_worker/internal/infra/database"
)

// SessionLocker grants session-scoped advisory locks. Each lease pins one
// pooled connection for its lifetime; the store drops the lock by itself if
// that connection dies.
type SessionLocker struct {
	db         *sql.DB
	acquireSQL string
	releaseSQL string
}

// NewMySQLLocker uses GET_LOCK with a zero timeout.
func NewMySQLLocker(db *sql.DB) *SessionLocker {
	return &SessionLocker{
		db:         db,
		acquireSQL: `SELECT GET_LOCK(?, 0)`,
		releaseSQL: `SELECT RELEASE_LOCK(?)`,
	}
}

// NewPostgresLocker uses session-level advisory locks keyed by hashtext(name).
func NewPostgresLocker(db *sql.DB) *SessionLocker {
	return &SessionLocker{
		db:         db,
		acquireSQL: `SELECT pg_try_advisory_lock(hashtext($1))`,
		releaseSQL: `SELECT pg_advisory_unlock(hashtext($1))`,
	}
}

// NewDatabaseLocker picks the session locker matching the store's driver.
func NewDatabaseLocker(db *sql.DB, driver string) (*SessionLocker, error) {
	switch driver {
	case database.DriverMySQL:
		return NewMySQLLocker(db), nil
	case database.DriverPostgres:
		return NewPostgresLocker(db), nil
	default:
		return nil, fmt.Errorf("%w: no advisory lock support for %q", database.ErrUnsupportedDriver, driver)
	}
}

func (l *SessionLocker) TryAcquire(ctx context.Context, name string) (lock.Lease, bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check out connection for lock %q: %w", name, err)
	}

	// GET_LOCK answers 1/0/NULL, pg_try_advisory_lock true/false; both scan into NullBool.
	var acquired sql.NullBool
	if err := conn.QueryRowContext(ctx, l.acquireSQL, name).Scan(&acquired); err != nil {
		// the lock may have been granted before the error surfaced
		discard(conn)
		conn.Close()
		return nil, false, fmt.Errorf("error acquiring lock %q: %w", name, err)
	}
	if !acquired.Valid || !acquired.Bool {
		conn.Close()
		return nil, false, nil
	}

	return &sessionLease{conn: conn, name: name, releaseSQL: l.releaseSQL}, true, nil
}

type sessionLease struct {
	conn       *sql.Conn
	name       string
	releaseSQL string
}

func (s *sessionLease) Name() string { return s.name }

// Release unlocks and always returns the connection to the pool.
// A failed unlock discards the connection instead, so the store ends the
// session and drops the lock with it.
func (s *sessionLease) Release(ctx context.Context) error {
	defer s.conn.Close()

	var released sql.NullBool
	if err := s.conn.QueryRowContext(ctx, s.releaseSQL, s.name).Scan(&released); err != nil {
		discard(s.conn)
		return fmt.Errorf("error releasing lock %q: %w", s.name, err)
	}
	if !released.Valid || !released.Bool {
		return fmt.Errorf("releasing %q: %w", s.name, lock.ErrNotHeld)
	}
	return nil
}

// discard makes database/sql close conn instead of returning it to the pool.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
}
