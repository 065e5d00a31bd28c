package allockit

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/allockit/internal/mmap"
)

// Pages is a backing allocator that maps whole pages outside the Go heap for
// every request. It suits arenas with large blocks. Safe for concurrent use.
type Pages struct {
	mu       sync.Mutex
	mappings map[uintptr]mapping // keyed by user address
}

type mapping struct {
	mem []byte // full mapping as returned by mmap.Map
	off int    // user region offset within mem
}

// NewPages creates a page allocator.
func NewPages() *Pages {
	return &Pages{mappings: make(map[uintptr]mapping)}
}

// PageSize returns the system page size.
func (p *Pages) PageSize() int { return mmap.PageSize }

// Alloc maps enough pages for size bytes. Alignments up to the page size are
// free; larger ones over-map.
func (p *Pages) Alloc(size int, align Alignment) ([]byte, error) {
	checkRequest(size, align)
	if size == 0 {
		return zeroRegion(align), nil
	}
	n := size
	if int(align) > mmap.PageSize {
		n += int(align) - 1
	}
	mem, err := mmap.Map(n)
	if err != nil {
		return nil, errors.Wrap(ErrOutOfMemory, err.Error())
	}
	mem = mem[:cap(mem)]
	off := alignedOffset(mem, 0, align)
	buf := region(mem, off, size, align)

	p.mu.Lock()
	p.mappings[addrOf(buf)] = mapping{mem: mem, off: off}
	p.mu.Unlock()
	return buf, nil
}

// Resize succeeds whenever newSize fits in the pages already mapped for buf.
func (p *Pages) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return nil, false
	}
	if newSize <= len(buf) {
		return buf[:newSize:newSize], true
	}
	p.mu.Lock()
	m, ok := p.mappings[addrOf(buf)]
	p.mu.Unlock()
	if !ok || newSize > len(m.mem)-m.off {
		return nil, false
	}
	return region(m.mem, m.off, newSize, align), true
}

// Free unmaps the pages backing buf. Slices not returned by Alloc are ignored.
func (p *Pages) Free(buf []byte, align Alignment) {
	key := addrOf(buf)
	p.mu.Lock()
	m, ok := p.mappings[key]
	delete(p.mappings, key)
	p.mu.Unlock()
	if ok {
		// EINVAL is already filtered; other errors leave the pages mapped.
		_ = mmap.Unmap(m.mem)
	}
}

// Mapped returns the number of live mappings.
func (p *Pages) Mapped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mappings)
}

var _ Allocator = (*Pages)(nil)
