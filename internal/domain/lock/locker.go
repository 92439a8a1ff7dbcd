// Package lock defines named mutual-exclusion tokens granted by a shared store.
package lock

import (
	"context"
	"errors"
)

// ErrNotHeld is returned by Release when the store reports the lock was not
// held by this session (expired or taken over).
var ErrNotHeld = errors.New("lock not held")

// Locker grants named locks without waiting.
type Locker interface {
	// TryAcquire returns acquired=false with a nil error when another holder owns name.
	TryAcquire(ctx context.Context, name string) (lease Lease, acquired bool, err error)
}

// Lease is a held lock. Release must be called exactly once.
type Lease interface {
	Name() string
	Release(ctx context.Context) error
}
