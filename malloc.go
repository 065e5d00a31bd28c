package allockit

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"modernc.org/memory"
)

// mallocAlign is the alignment modernc.org/memory guarantees.
const mallocAlign = Alignment(2 * unsafe.Sizeof(uintptr(0)))

// Malloc is a general-purpose backing allocator over modernc.org/memory, a
// mmap-based malloc/free outside the Go heap. Unlike Heap it really frees,
// which makes leaks visible. Safe for concurrent use. Call Close to return
// all memory to the operating system.
type Malloc struct {
	mu   sync.Mutex
	heap memory.Allocator
	over map[uintptr][]byte // over-aligned regions, keyed by user address
}

// NewMalloc creates a Malloc allocator.
func NewMalloc() *Malloc {
	return &Malloc{over: make(map[uintptr][]byte)}
}

func (m *Malloc) Alloc(size int, align Alignment) ([]byte, error) {
	checkRequest(size, align)
	if size == 0 {
		return zeroRegion(align), nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if align <= mallocAlign {
		b, err := m.heap.Malloc(size)
		if err != nil {
			return nil, errors.Wrap(ErrOutOfMemory, err.Error())
		}
		return b[:size:size], nil
	}

	raw, err := m.heap.Malloc(size + int(align) - 1)
	if err != nil {
		return nil, errors.Wrap(ErrOutOfMemory, err.Error())
	}
	off := alignedOffset(raw, 0, align)
	buf := region(raw, off, size, align)
	m.over[addrOf(buf)] = raw
	return buf, nil
}

// Resize succeeds when newSize fits in the block malloc already reserved.
func (m *Malloc) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return nil, false
	}
	if newSize <= len(buf) {
		return buf[:newSize:newSize], true
	}
	if isZeroRegion(buf, align) {
		return nil, false
	}
	p := unsafe.SliceData(buf)

	m.mu.Lock()
	defer m.mu.Unlock()
	var usable int
	if raw, ok := m.over[addrOf(buf)]; ok {
		usable = memory.UsableSize(unsafe.SliceData(raw)) - int(addrOf(buf)-addrOf(raw))
	} else {
		usable = memory.UsableSize(p)
	}
	if newSize > usable {
		return nil, false
	}
	return unsafe.Slice(p, newSize), true
}

func (m *Malloc) Free(buf []byte, align Alignment) {
	p := unsafe.SliceData(buf)
	if p == nil || isZeroRegion(buf, align) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if raw, ok := m.over[addrOf(buf)]; ok {
		delete(m.over, addrOf(buf))
		p = unsafe.SliceData(raw)
	}
	// memory.Free only looks at the first byte.
	_ = m.heap.Free(unsafe.Slice(p, 1))
}

// Close releases all memory held by the allocator, including live
// allocations.
func (m *Malloc) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.over)
	return m.heap.Close()
}

var _ Allocator = (*Malloc)(nil)
