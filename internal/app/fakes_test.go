package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"franchise_ops_worker/internal/domain/lock"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// memLocker is an in-process Locker with the same contract as the store lockers.
type memLocker struct {
	mu         sync.Mutex
	held       map[string]bool
	acquireErr error
	releases   int
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) TryAcquire(ctx context.Context, name string) (lock.Lease, bool, error) {
	if l.acquireErr != nil {
		return nil, false, l.acquireErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true
	return &memLease{locker: l, name: name}, true, nil
}

func (l *memLocker) isHeld(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[name]
}

type memLease struct {
	locker *memLocker
	name   string
}

func (m *memLease) Name() string { return m.name }

func (m *memLease) Release(ctx context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	if !m.locker.held[m.name] {
		return lock.ErrNotHeld
	}
	delete(m.locker.held, m.name)
	m.locker.releases++
	return nil
}

type publishedEvent struct {
	routingKey string
	payload    any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

var errStoreDown = errors.New("store unreachable")
