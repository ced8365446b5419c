package redlock

import "context"

// Lock is a single-use handle on a named lock. Create one per critical
// section and discard it after Unlock.
type Lock interface {
	// Lock runs the acquisition loop. It returns false with a nil error when
	// every attempt found the lock held by someone else.
	// With renewal enabled a daemon extends the lease until Unlock.
	Lock(ctx context.Context) (bool, error)

	// TryLock makes a single acquisition attempt.
	TryLock(ctx context.Context) (bool, error)

	// Unlock stops renewal and releases the lock if this handle still owns it.
	// It returns false with a nil error when the lease was lost meanwhile.
	Unlock(ctx context.Context) (bool, error)

	// Refresh manually extends the lease to the full TTL
	Refresh(ctx context.Context) (bool, error)

	// IsLocked reports whether the handle believes it holds the lock
	IsLocked() bool

	// Key returns the namespaced store key
	Key() string

	// Token returns the holder token written to the store
	Token() string

	// Carry returns the annotation given with WithCarry
	Carry() any
}
