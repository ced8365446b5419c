package redlock

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/huimingz/redlock"

// Client represents a distributed lock client
type Client struct {
	redis  redis.UniversalClient
	store  Store
	logger Logger
	tracer trace.Tracer
}

// ClientOption is a function type for setting client options
type ClientOption func(*Client)

// WithLogger sets the logger for the client
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracerProvider sets the provider used for acquire and release spans
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// NewClient creates a new distributed lock client on top of a Redis client.
func NewClient(rdb redis.UniversalClient, opts ...ClientOption) *Client {
	return newClient(rdb, nil, opts)
}

// NewClientWithStore creates a client that coordinates through store for
// every variant.
func NewClientWithStore(store Store, opts ...ClientOption) *Client {
	return newClient(nil, store, opts)
}

func newClient(rdb redis.UniversalClient, store Store, opts []ClientOption) *Client {
	c := &Client{
		redis:  rdb,
		store:  store,
		logger: newDefaultLogger(),
		tracer: otel.GetTracerProvider().Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewLock creates a new lock handle for name. The handle is not acquired.
func (c *Client) NewLock(name string, opts ...Option) Lock {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	store := c.store
	if store == nil {
		store = NewRedisStore(c.redis, options.Variant)
	}
	return newLock(store, lockKey(options.Variant, name), uuid.NewString(), options, c.logger, c.tracer)
}

// Acquire creates a handle and runs its acquisition loop. It returns a nil
// Lock and a nil error when the retry budget is exhausted.
func (c *Client) Acquire(ctx context.Context, name string, opts ...Option) (Lock, error) {
	l := c.NewLock(name, opts...)
	ok, err := l.Lock(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return l, nil
}

// Outcome describes a scoped critical section run by Do.
type Outcome struct {
	// Acquired reports whether fn ran.
	Acquired bool
	// Released reports whether the lock was still ours when it was released.
	Released bool
}

// Do acquires name, runs fn while holding it and releases it afterwards, also
// when fn panics. fn does not run if the lock could not be acquired. The error
// from fn takes precedence over a release error.
func (c *Client) Do(ctx context.Context, name string, fn func(ctx context.Context, l Lock) error, opts ...Option) (out Outcome, err error) {
	l, err := c.Acquire(ctx, name, opts...)
	if err != nil || l == nil {
		return out, err
	}
	out.Acquired = true

	defer func() {
		released, uerr := l.Unlock(context.WithoutCancel(ctx))
		out.Released = released
		if err == nil {
			err = uerr
		}
	}()

	return out, fn(ctx, l)
}

func lockKey(v Variant, name string) string {
	return string(v) + ":" + name
}
