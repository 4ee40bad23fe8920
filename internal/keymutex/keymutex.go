// Package keymutex provides a non-blocking mutex keyed by an arbitrary
// comparable identifier. Acquisition never waits: TryAcquire either takes
// the key immediately or reports that someone else holds it. There is no
// queue and no fairness — a caller that loses the race is expected to
// abandon its attempt, not retry in a loop.
//
// The map insert happens under a single mutex, so the acquire is atomic
// even when callers run on separate OS threads.
package keymutex

import "sync"

// TryMutex is a set of independently held locks, one per key.
// The zero value is not usable; construct with New.
type TryMutex[K comparable] struct {
	mu   sync.Mutex
	held map[K]struct{}
}

// New creates an empty TryMutex.
func New[K comparable]() *TryMutex[K] {
	return &TryMutex[K]{
		held: make(map[K]struct{}),
	}
}

// TryAcquire takes the lock for key if it is free and returns true.
// If the key is already held it returns false immediately without
// blocking or queueing.
func (m *TryMutex[K]) TryAcquire(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[key]; ok {
		return false
	}
	m.held[key] = struct{}{}
	return true
}

// Release frees the lock for key. Releasing a key that is not held is a
// no-op, so callers can release unconditionally in a defer.
func (m *TryMutex[K]) Release(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
}

// IsHeld reports whether the lock for key is currently held.
func (m *TryMutex[K]) IsHeld(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key]
	return ok
}

// Size returns the number of currently held keys. A nonzero size after
// all work has drained indicates a leaked lock.
func (m *TryMutex[K]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}
