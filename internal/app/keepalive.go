package app

import (
	"context"
	"fmt"
	"time"
)

const pingTimeout = 5 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingReport carries the round-trip time of a keep-alive ping.
type PingReport struct {
	Latency time.Duration
}

func (r *PingReport) String() string { return fmt.Sprintf("latency=%s", r.Latency) }

func (r *PingReport) Changed() bool { return false }

// KeepAlive pings the store so idle pooled connections are exercised and a
// dead store shows up in the logs before the next reconciliation pass.
type KeepAlive struct {
	pinger Pinger
}

func NewKeepAlive(p Pinger) *KeepAlive {
	return &KeepAlive{pinger: p}
}

func (k *KeepAlive) Name() string { return "keepalive" }

func (k *KeepAlive) Run(ctx context.Context) (Report, error) {
	r, err := k.Ping(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Ping issues one bounded ping. Also served by the ops HTTP endpoint and the chat /ping command.
func (k *KeepAlive) Ping(ctx context.Context) (*PingReport, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	started := time.Now()
	if err := k.pinger.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store ping failed: %w", err)
	}
	return &PingReport{Latency: time.Since(started)}, nil
}
