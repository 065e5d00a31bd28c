package pool

import (
	"fmt"
	"unsafe"
)

// FixedPool hands out pointers into a fixed array of slots. A parallel
// availability array tracks which slots are free; once all are taken Acquire
// reports false. Not goroutine-safe.
type FixedPool[T any] struct {
	slots     []T
	available []bool
	hint      int // where the next scan starts
	used      int
}

// NewFixed creates a pool of n slots. T must not be zero-sized, since slot
// indexes are derived from addresses.
func NewFixed[T any](n int) *FixedPool[T] {
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		panic("pool: zero-size element type")
	}
	if n < 0 {
		n = 0
	}
	p := &FixedPool[T]{
		slots:     make([]T, n),
		available: make([]bool, n),
	}
	for i := range p.available {
		p.available[i] = true
	}
	return p
}

// Acquire returns a free slot, or false when every slot is in use.
func (p *FixedPool[T]) Acquire() (*T, bool) {
	n := len(p.slots)
	for k := 0; k < n; k++ {
		i := (p.hint + k) % n
		if p.available[i] {
			p.available[i] = false
			p.hint = (i + 1) % n
			p.used++
			return &p.slots[i], true
		}
	}
	return nil, false
}

// Release frees the slot ptr points to. ptr must be exactly the address of
// one of the pool's slots; anything else, or releasing a free slot, panics.
func (p *FixedPool[T]) Release(ptr *T) {
	i := p.index(ptr)
	if p.available[i] {
		panic(fmt.Sprintf("pool: double release of slot %d", i))
	}
	p.available[i] = true
	p.used--
}

// Owns reports whether ptr is the address of one of the pool's slots.
func (p *FixedPool[T]) Owns(ptr *T) bool {
	_, ok := p.slotIndex(ptr)
	return ok
}

func (p *FixedPool[T]) index(ptr *T) int {
	i, ok := p.slotIndex(ptr)
	if !ok {
		panic("pool: pointer not owned by pool")
	}
	return i
}

// slotIndex derives the slot index from the pointer difference to slot 0.
func (p *FixedPool[T]) slotIndex(ptr *T) (int, bool) {
	if ptr == nil || len(p.slots) == 0 {
		return 0, false
	}
	var zero T
	size := unsafe.Sizeof(zero)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(p.slots)))
	addr := uintptr(unsafe.Pointer(ptr))
	if addr < base {
		return 0, false
	}
	diff := addr - base
	if diff%size != 0 || diff/size >= uintptr(len(p.slots)) {
		return 0, false
	}
	return int(diff / size), true
}

// Len returns the number of slots.
func (p *FixedPool[T]) Len() int { return len(p.slots) }

// Used returns the number of slots in use.
func (p *FixedPool[T]) Used() int { return p.used }

// Available returns the number of free slots.
func (p *FixedPool[T]) Available() int { return len(p.slots) - p.used }
