package redlock

import (
	"context"
	"sync/atomic"
	"time"
)

// renewer runs a renewal tick on a fixed interval until stopped. A nil
// renewer is a daemon that was never started.
type renewer struct {
	stopRequested atomic.Bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// startRenewer spawns the daemon. The daemon keeps the values of ctx but not
// its cancellation: it lives until stop, not until the acquiring call returns.
func startRenewer(ctx context.Context, interval time.Duration, tick func(context.Context)) *renewer {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &renewer{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.run(ctx, interval, tick)
	return r
}

func (r *renewer) run(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if r.stopRequested.Load() {
			return
		}
		tick(ctx)
	}
}

// stop requests termination and waits for the daemon to exit, so no tick is
// in flight once it returns. Safe to call more than once.
func (r *renewer) stop() {
	if r == nil {
		return
	}
	r.stopRequested.Store(true)
	r.cancel()
	<-r.done
}
