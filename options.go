package redlock

import (
	"errors"
	"time"
)

var (
	ErrInvalidVariant         = errors.New("redlock: unknown lock variant")
	ErrInvalidTTL             = errors.New("redlock: ttl must be positive")
	ErrInvalidRetryTimes      = errors.New("redlock: retry times must be at least 1")
	ErrInvalidBackoff         = errors.New("redlock: backoff bounds must satisfy 0 <= low <= high")
	ErrInvalidRenewalInterval = errors.New("redlock: renewal interval must be positive and shorter than ttl")
)

// Variant selects the key namespace and the default behaviour of a lock.
type Variant string

const (
	// VariantRedLock is a plain lease lock without renewal.
	VariantRedLock Variant = "redlock"
	// VariantRedisson keeps the lease alive with a background renewal daemon.
	VariantRedisson Variant = "redisson"
)

const (
	defaultRetryTimes  = 10
	defaultBackoffLow  = 20 * time.Millisecond
	defaultBackoffHigh = 100 * time.Millisecond
)

// LockOptions defines the options for lock configuration
type LockOptions struct {
	// Variant selects the key prefix and defaults
	Variant Variant

	// TTL is the lease written to the store on acquisition
	TTL time.Duration

	// RetryTimes is the maximum number of acquisition attempts
	RetryTimes int

	// BackoffLow and BackoffHigh bound the sleep between attempts
	BackoffLow  time.Duration
	BackoffHigh time.Duration

	// EnableRenewal starts the lease renewal daemon after acquisition
	EnableRenewal bool

	// RenewalInterval is the period of the renewal daemon, 0 means 2/3 of TTL
	RenewalInterval time.Duration

	// Carry is an opaque annotation kept on the handle for debugging
	Carry any

	ttlSet     bool
	renewalSet bool
}

// Option is a function type for setting lock options
type Option func(*LockOptions)

// WithVariant switches the variant. Defaults not overridden by other options
// follow the variant.
func WithVariant(v Variant) Option {
	return func(o *LockOptions) {
		o.Variant = v
		if !o.renewalSet {
			o.EnableRenewal = v == VariantRedisson
		}
		if !o.ttlSet {
			o.TTL = v.defaultTTL()
		}
	}
}

// WithTTL sets the lease duration
func WithTTL(ttl time.Duration) Option {
	return func(o *LockOptions) {
		o.TTL = ttl
		o.ttlSet = true
	}
}

// WithRetryTimes sets the acquisition attempt budget
func WithRetryTimes(n int) Option {
	return func(o *LockOptions) {
		o.RetryTimes = n
	}
}

// WithBackoff sets the backoff bounds
func WithBackoff(low, high time.Duration) Option {
	return func(o *LockOptions) {
		o.BackoffLow = low
		o.BackoffHigh = high
	}
}

// WithRenewal enables or disables the renewal daemon
func WithRenewal(enable bool) Option {
	return func(o *LockOptions) {
		o.EnableRenewal = enable
		o.renewalSet = true
	}
}

// WithRenewalInterval sets the renewal period
func WithRenewalInterval(d time.Duration) Option {
	return func(o *LockOptions) {
		o.RenewalInterval = d
	}
}

// WithCarry attaches an opaque value to the handle
func WithCarry(v any) Option {
	return func(o *LockOptions) {
		o.Carry = v
	}
}

// defaultOptions returns the default lock options
func defaultOptions() *LockOptions {
	return &LockOptions{
		Variant:     VariantRedLock,
		TTL:         VariantRedLock.defaultTTL(),
		RetryTimes:  defaultRetryTimes,
		BackoffLow:  defaultBackoffLow,
		BackoffHigh: defaultBackoffHigh,
	}
}

func (v Variant) defaultTTL() time.Duration {
	if v == VariantRedisson {
		return 20 * time.Second
	}
	return 10 * time.Second
}

// renewalInterval returns the effective renewal period.
func (o *LockOptions) renewalInterval() time.Duration {
	if o.RenewalInterval > 0 {
		return o.RenewalInterval
	}
	return o.TTL * 2 / 3
}

// Validate reports the first option that breaks the lock protocol.
func (o *LockOptions) Validate() error {
	if o.Variant != VariantRedLock && o.Variant != VariantRedisson {
		return ErrInvalidVariant
	}
	if o.TTL <= 0 {
		return ErrInvalidTTL
	}
	if o.RetryTimes < 1 {
		return ErrInvalidRetryTimes
	}
	if o.BackoffLow < 0 || o.BackoffHigh < o.BackoffLow {
		return ErrInvalidBackoff
	}
	if o.EnableRenewal {
		if iv := o.renewalInterval(); iv <= 0 || iv >= o.TTL {
			return ErrInvalidRenewalInterval
		}
	}
	return nil
}
