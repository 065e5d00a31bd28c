package allockit

import (
	"sync"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
// Resets still require that no caller keeps using memory allocated before them.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena drawing blocks from parent.
// The parent must itself tolerate the arena's growth calls; every allocator
// in this package does.
func NewSafeArena(parent Allocator, blockSize int) *SafeArena {
	return &SafeArena{a: NewArena(parent, blockSize)}
}

// Alloc thread-safely allocates size bytes aligned to align.
func (s *SafeArena) Alloc(size int, align Alignment) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size, align)
}

// Resize thread-safely attempts an in-place resize.
func (s *SafeArena) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Resize(buf, align, newSize)
}

// Free thread-safely rolls back buf if it is the latest allocation.
func (s *SafeArena) Free(buf []byte, align Alignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(buf, align)
}

// EnsureCapacity thread-safely ensures the current block has at least n free bytes.
func (s *SafeArena) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// ResetRetainCapacity thread-safely resets allocation offsets for reuse.
func (s *SafeArena) ResetRetainCapacity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.ResetRetainCapacity()
}

// ResetFreeAll thread-safely returns every block to the parent.
func (s *SafeArena) ResetFreeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.ResetFreeAll()
}

// Release thread-safely returns every block to the parent.
func (s *SafeArena) Release() {
	s.ResetFreeAll()
}

// Synchronized wraps an Allocator with sync.Mutex protection, so that a
// single-threaded strategy can be shared as a parent by concurrent children.
func Synchronized(a Allocator) Allocator {
	return &synchronized{a: a}
}

type synchronized struct {
	mu sync.Mutex
	a  Allocator
}

func (s *synchronized) Alloc(size int, align Alignment) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(size, align)
}

func (s *synchronized) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Resize(buf, align, newSize)
}

func (s *synchronized) Free(buf []byte, align Alignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(buf, align)
}

var (
	_ Allocator = (*SafeArena)(nil)
	_ Allocator = (*synchronized)(nil)
)
