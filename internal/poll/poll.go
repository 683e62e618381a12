// Package poll runs a function on a fixed interval with manual re-arming,
// used to keep the mailbox unread count fresh while a watch command runs.
package poll

import (
	"context"
	"time"
)

// Poller invokes fn every interval. Kick triggers an immediate invocation
// and restarts the interval, so a kick right before a scheduled tick does
// not produce a double poll.
type Poller struct {
	interval time.Duration
	fn       func(context.Context)
	kick     chan struct{}
}

// New creates a poller. fn runs on the poller's goroutine; a slow fn delays
// the next tick rather than overlapping it.
func New(interval time.Duration, fn func(context.Context)) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate poll. Safe from any goroutine; kicks arriving
// while one is already pending coalesce.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	p.fn(ctx)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.fn(ctx)
			timer.Reset(p.interval)
		case <-p.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			p.fn(ctx)
			timer.Reset(p.interval)
		}
	}
}
