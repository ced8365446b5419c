package redlock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/huimingz/redlock/metrics"
)

var ErrHandleReleased = errors.New("redlock: handle already released")

type lockImpl struct {
	store   Store
	key     string
	token   string
	options *LockOptions
	backoff Backoff
	logger  Logger
	tracer  trace.Tracer

	// acquired is read by the renewal daemon without holding mu
	acquired atomic.Bool

	mu       sync.Mutex
	released bool
	renewer  *renewer
}

func newLock(store Store, key, token string, options *LockOptions, logger Logger, tracer trace.Tracer) *lockImpl {
	return &lockImpl{
		store:   store,
		key:     key,
		token:   token,
		options: options,
		backoff: Backoff{Low: options.BackoffLow, High: options.BackoffHigh},
		logger:  logger,
		tracer:  tracer,
	}
}

func (l *lockImpl) Lock(ctx context.Context) (bool, error) {
	return l.acquire(ctx, l.options.RetryTimes)
}

func (l *lockImpl) TryLock(ctx context.Context) (bool, error) {
	return l.acquire(ctx, 1)
}

func (l *lockImpl) acquire(ctx context.Context, budget int) (ok bool, err error) {
	if err := l.options.Validate(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return false, ErrHandleReleased
	}
	if l.acquired.Load() {
		return true, nil
	}

	variant := string(l.options.Variant)
	ctx, span := l.tracer.Start(ctx, "redlock.Acquire", trace.WithAttributes(
		attribute.String("redlock.key", l.key),
		attribute.String("redlock.variant", variant),
		attribute.Int("redlock.budget", budget),
	))
	start := time.Now()
	attempts := 0
	defer func() {
		metrics.AcquireDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
		metrics.AcquireAttempts.WithLabelValues(variant).Observe(float64(attempts))
		span.SetAttributes(attribute.Int("redlock.attempts", attempts), attribute.Bool("redlock.acquired", ok))
		switch {
		case err != nil:
			metrics.AcquireTotal.WithLabelValues(variant, metrics.StatusError).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case ok:
			metrics.AcquireTotal.WithLabelValues(variant, metrics.StatusAcquired).Inc()
			metrics.Held.WithLabelValues(variant).Inc()
		default:
			metrics.AcquireTotal.WithLabelValues(variant, metrics.StatusExhausted).Inc()
		}
		span.End()
	}()

	for attempt := 0; attempt < budget; attempt++ {
		attempts++
		created, serr := l.store.SetIfAbsent(ctx, l.key, l.token, l.options.TTL)
		if serr != nil {
			return false, serr
		}
		if created {
			l.acquired.Store(true)
			if l.options.EnableRenewal {
				l.renewer = startRenewer(ctx, l.options.renewalInterval(), l.renew)
			}
			l.logger.Debug(ctx, "lock %s acquired after %d attempt(s)", l.key, attempts)
			return true, nil
		}
		if attempt == budget-1 {
			break
		}

		delay := l.backoff.Delay(attempt)
		l.logger.Debug(ctx, "lock %s is held, retrying in %s", l.key, delay)
		if serr := sleep(ctx, delay); serr != nil {
			return false, serr
		}
	}

	l.logger.Debug(ctx, "lock %s not acquired after %d attempt(s)", l.key, attempts)
	return false, nil
}

func (l *lockImpl) Unlock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// the daemon must be gone before the key is deleted
	l.renewer.stop()

	if !l.acquired.Load() {
		return false, nil
	}
	l.released = true

	variant := string(l.options.Variant)
	ctx, span := l.tracer.Start(ctx, "redlock.Release", trace.WithAttributes(
		attribute.String("redlock.key", l.key),
		attribute.String("redlock.variant", variant),
	))
	defer span.End()

	released, err := l.store.CompareAndDelete(ctx, l.key, l.token)
	l.acquired.Store(false)
	metrics.Held.WithLabelValues(variant).Dec()
	if err != nil {
		metrics.ReleaseTotal.WithLabelValues(variant, metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("redlock.released", released))
	if !released {
		metrics.ReleaseTotal.WithLabelValues(variant, metrics.OutcomeLost).Inc()
		l.logger.Warn(ctx, "lock %s was no longer held by %s at release", l.key, l.token)
		return false, nil
	}
	metrics.ReleaseTotal.WithLabelValues(variant, metrics.OutcomeOK).Inc()
	l.logger.Debug(ctx, "lock %s released", l.key)
	return true, nil
}

func (l *lockImpl) Refresh(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.acquired.Load() {
		return false, nil
	}
	return l.extend(ctx)
}

// renew is the daemon tick. It never takes mu: Unlock holds mu while it waits
// for the daemon to exit.
func (l *lockImpl) renew(ctx context.Context) {
	if !l.acquired.Load() {
		return
	}
	ok, err := l.extend(ctx)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn(ctx, "failed to renew lock %s: %v", l.key, err)
	case !ok:
		l.logger.Warn(ctx, "lock %s lost before renewal", l.key)
	default:
		l.logger.Debug(ctx, "lock %s renewed for %s", l.key, l.options.TTL)
	}
}

func (l *lockImpl) extend(ctx context.Context) (bool, error) {
	variant := string(l.options.Variant)
	ok, err := l.store.CompareAndExpire(ctx, l.key, l.token, l.options.TTL)
	switch {
	case err != nil:
		metrics.RenewTotal.WithLabelValues(variant, metrics.OutcomeError).Inc()
	case !ok:
		metrics.RenewTotal.WithLabelValues(variant, metrics.OutcomeLost).Inc()
	default:
		metrics.RenewTotal.WithLabelValues(variant, metrics.OutcomeOK).Inc()
	}
	return ok, err
}

func (l *lockImpl) IsLocked() bool {
	return l.acquired.Load()
}

func (l *lockImpl) Key() string {
	return l.key
}

func (l *lockImpl) Token() string {
	return l.token
}

func (l *lockImpl) Carry() any {
	return l.options.Carry
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
