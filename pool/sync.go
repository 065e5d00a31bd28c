package pool

import (
	"sync"

	"github.com/pavanmanishd/allockit"
)

// SyncPool is a Pool protected by a mutex. The critical section covers the
// whole free-list operation including any parent call, so growth is
// serialized too. No fairness among waiters is promised.
type SyncPool[T any] struct {
	mu sync.Mutex
	p  *Pool[T]
}

// NewSync creates a thread-safe pool drawing nodes from parent.
func NewSync[T any](parent allockit.Allocator) *SyncPool[T] {
	return &SyncPool[T]{p: New[T](parent)}
}

// NewSyncWithInit is the thread-safe counterpart of NewWithInit.
func NewSyncWithInit[T any](parent allockit.Allocator, init func(*T)) *SyncPool[T] {
	return &SyncPool[T]{p: NewWithInit(parent, init)}
}

// Acquire thread-safely checks out a node.
func (s *SyncPool[T]) Acquire() (Ref[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Acquire()
}

// Release thread-safely returns a node to the free list.
func (s *SyncPool[T]) Release(r Ref[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Release(r)
}

// Preheat thread-safely creates n free nodes.
func (s *SyncPool[T]) Preheat(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Preheat(n)
}

// Capacity thread-safely returns the number of nodes created so far.
func (s *SyncPool[T]) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Capacity()
}

// Used thread-safely returns the number of nodes checked out.
func (s *SyncPool[T]) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Used()
}

// Deinit thread-safely tears the pool down.
func (s *SyncPool[T]) Deinit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Deinit()
}
