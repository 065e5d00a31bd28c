package allockit

import (
	"github.com/pkg/errors"
)

// DefaultBlockSize is the default block size for new arenas (64 KiB).
const DefaultBlockSize = 1 << 16

// blockAlign is the alignment arenas request for their blocks.
const blockAlign = AlignMax

// block is a single bump region within an arena.
type block struct {
	buf    []byte // memory obtained from the parent
	offset int    // allocation offset within buf
	last   int    // start of the most recent allocation, -1 if none
}

func (b *block) alloc(size int, align Alignment) ([]byte, bool) {
	off := alignedOffset(b.buf, b.offset, align)
	if off > len(b.buf) || size > len(b.buf)-off {
		return nil, false
	}
	b.last = off
	b.offset = off + size
	return region(b.buf, off, size, align), true
}

// isLast reports whether buf is the most recent allocation of b.
func (b *block) isLast(buf []byte) bool {
	return b.last >= 0 &&
		addrOf(buf) == addrOf(b.buf)+uintptr(b.last) &&
		b.last+len(buf) == b.offset
}

func (b *block) reset() {
	b.offset = 0
	b.last = -1
}

// Arena groups many bump allocations into one bulk lifetime. Blocks are
// obtained lazily from a parent allocator and returned to it on ResetFreeAll
// or Release. An Arena is itself an Allocator, so arenas nest: a
// request-scoped arena can grow out of a server-scoped one.
//
// Not goroutine-safe. Use SafeArena for concurrent access.
type Arena struct {
	parent    Allocator
	blocks    []block
	cur       int
	blockSize int
}

// NewArena creates an empty arena drawing blocks from parent.
// If parent is nil, Heap is used. If blockSize <= 0, DefaultBlockSize is used.
func NewArena(parent Allocator, blockSize int) *Arena {
	if parent == nil {
		parent = Heap
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{parent: parent, blockSize: blockSize}
}

// Alloc returns size bytes aligned to align, appending a new block when the
// request fits in no retained block. It fails only if the parent fails.
func (a *Arena) Alloc(size int, align Alignment) ([]byte, error) {
	checkRequest(size, align)

	// Fast path: current block
	if a.cur < len(a.blocks) {
		if buf, ok := a.blocks[a.cur].alloc(size, align); ok {
			return buf, nil
		}
		// Blocks past cur are only non-empty before a reset, never after.
		for i := a.cur + 1; i < len(a.blocks); i++ {
			if buf, ok := a.blocks[i].alloc(size, align); ok {
				a.cur = i
				return buf, nil
			}
		}
	}

	return a.allocSlow(size, align)
}

// allocSlow appends a block large enough for the request.
func (a *Arena) allocSlow(size int, align Alignment) ([]byte, error) {
	if err := a.grow(blockNeed(size, align)); err != nil {
		return nil, err
	}
	buf, _ := a.blocks[a.cur].alloc(size, align)
	return buf, nil
}

// blockNeed returns the block size that always fits size bytes at align.
func blockNeed(size int, align Alignment) int {
	if align > blockAlign {
		return size + int(align) - 1
	}
	return size
}

// grow appends a new block of at least min bytes. Existing blocks are left
// untouched when the parent fails.
func (a *Arena) grow(min int) error {
	size := a.blockSize
	if min > size {
		size = min
	}
	buf, err := a.parent.Alloc(size, blockAlign)
	if err != nil {
		return errors.Wrapf(err, "arena: grow block of %d bytes", size)
	}
	a.blocks = append(a.blocks, block{buf: buf, last: -1})
	a.cur = len(a.blocks) - 1
	return nil
}

// EnsureCapacity ensures the current block has at least n free bytes.
// If not, it grows the arena with a new block.
func (a *Arena) EnsureCapacity(n int) error {
	if a.cur < len(a.blocks) {
		b := &a.blocks[a.cur]
		if len(b.buf)-b.offset >= n {
			return nil
		}
	}
	return a.grow(n)
}

// Resize shrinks any allocation in place. Growing in place succeeds only for
// the most recent allocation of the current block when the block has room.
func (a *Arena) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return nil, false
	}
	var b *block
	if a.cur < len(a.blocks) && a.blocks[a.cur].isLast(buf) {
		b = &a.blocks[a.cur]
	}
	if newSize <= len(buf) {
		if b != nil {
			b.offset = b.last + newSize
		}
		return buf[:newSize:newSize], true
	}
	if b == nil || newSize > len(b.buf)-b.last {
		return nil, false
	}
	b.offset = b.last + newSize
	return region(b.buf, b.last, newSize, align), true
}

// Free rolls back the most recent allocation of the current block. Any other
// buf is reclaimed only by a reset.
func (a *Arena) Free(buf []byte, align Alignment) {
	if a.cur >= len(a.blocks) {
		return
	}
	b := &a.blocks[a.cur]
	if b.isLast(buf) {
		b.offset = b.last
		b.last = -1
	}
}

// ResetRetainCapacity resets allocation offsets to zero but keeps every block
// for reuse, avoiding parent round trips across batches.
func (a *Arena) ResetRetainCapacity() {
	for i := range a.blocks {
		a.blocks[i].reset()
	}
	a.cur = 0
}

// ResetRetainLimit keeps the leading blocks whose total size fits in limit
// bytes, returns the rest to the parent and resets the offsets of the kept
// blocks.
func (a *Arena) ResetRetainLimit(limit int) {
	keep, total := 0, 0
	for keep < len(a.blocks) && total+len(a.blocks[keep].buf) <= limit {
		total += len(a.blocks[keep].buf)
		keep++
	}
	a.freeFrom(keep)
	a.ResetRetainCapacity()
}

// ResetFreeAll returns every block to the parent. The arena stays usable and
// grows again on the next allocation.
func (a *Arena) ResetFreeAll() {
	a.freeFrom(0)
	a.blocks = nil
	a.cur = 0
}

// Release returns every block to the parent. It is equivalent to
// ResetFreeAll and is meant to be deferred right after NewArena.
func (a *Arena) Release() {
	a.ResetFreeAll()
}

// freeFrom returns blocks[i:] to the parent, newest first.
func (a *Arena) freeFrom(i int) {
	for j := len(a.blocks) - 1; j >= i; j-- {
		a.parent.Free(a.blocks[j].buf, blockAlign)
		a.blocks[j] = block{}
	}
	a.blocks = a.blocks[:i]
	if a.cur >= len(a.blocks) {
		a.cur = 0
	}
}

var _ Allocator = (*Arena)(nil)
