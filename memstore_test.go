package redlock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// memStore is an in-process Store with real expiry, used to observe the
// protocol without a Redis server. Calls are counted per operation.
type memStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memEntry

	setCalls    atomic.Int64
	deleteCalls atomic.Int64
	expireCalls atomic.Int64
}

type memEntry struct {
	value    string
	expireAt time.Time
}

func newMemStore() *memStore {
	return &memStore{now: time.Now, entries: make(map[string]memEntry)}
}

// lookup must be called with mu held.
func (s *memStore) lookup(key string) (memEntry, bool) {
	e, ok := s.entries[key]
	if ok && !s.now().Before(e.expireAt) {
		delete(s.entries, key)
		return memEntry{}, false
	}
	return e, ok
}

func (s *memStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.setCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.entries[key] = memEntry{value: value, expireAt: s.now().Add(ttl)}
	return true, nil
}

func (s *memStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	s.deleteCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.lookup(key); !ok || e.value != value {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

func (s *memStore) CompareAndExpire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.expireCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok || e.value != value {
		return false, nil
	}
	e.expireAt = s.now().Add(ttl)
	s.entries[key] = e
	return true, nil
}

func (s *memStore) put(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: value, expireAt: s.now().Add(ttl)}
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	return e.value, ok
}

// fakeClock is a manually advanced clock for memStore.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var errStoreDown = errors.New("store down")

// failingStore fails every call with errStoreDown.
type failingStore struct {
	calls atomic.Int64
}

func (s *failingStore) SetIfAbsent(context.Context, string, string, time.Duration) (bool, error) {
	s.calls.Add(1)
	return false, errStoreDown
}

func (s *failingStore) CompareAndDelete(context.Context, string, string) (bool, error) {
	s.calls.Add(1)
	return false, errStoreDown
}

func (s *failingStore) CompareAndExpire(context.Context, string, string, time.Duration) (bool, error) {
	s.calls.Add(1)
	return false, errStoreDown
}
