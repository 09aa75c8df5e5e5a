package actor

import "sync"

// SafeRef provides thread-safe access to a single binding slot. Reads
// (Get) take a shared lock and writes (Set, Swap) an exclusive one, so
// concurrent binds on the same use case type serialize and the last writer
// wins.
type SafeRef[T any] struct {
	mu  sync.RWMutex
	val T
}

// NewRef creates a SafeRef initialized with the given value.
func NewRef[T any](val T) *SafeRef[T] {
	return &SafeRef[T]{val: val}
}

// Get returns a copy of the current value under a read lock.
func (r *SafeRef[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.val
}

// Set replaces the current value under a write lock.
func (r *SafeRef[T]) Set(val T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.val = val
}

// Swap replaces the current value and returns the previous one atomically.
func (r *SafeRef[T]) Swap(val T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.val
	r.val = val
	return prev
}
