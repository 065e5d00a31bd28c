package allockit

// Bump allocates by advancing an offset through a single contiguous buffer.
// Individual frees are no-ops; memory is reclaimed in bulk with Reset.
// Not goroutine-safe.
type Bump struct {
	buf []byte
	off int
}

// NewBump creates a Bump allocator over a freshly allocated buffer of size bytes.
func NewBump(size int) *Bump {
	if size < 0 {
		size = 0
	}
	return &Bump{buf: make([]byte, size)}
}

// FixedBuffer creates a Bump allocator over caller-owned storage, such as a
// stack array. The caller keeps ownership of buf and must keep it alive while
// allocations are in use.
func FixedBuffer(buf []byte) *Bump {
	if buf == nil {
		buf = []byte{}
	}
	return &Bump{buf: buf}
}

// Alloc returns size bytes aligned to align. The offset is left unchanged when
// the request does not fit.
func (b *Bump) Alloc(size int, align Alignment) ([]byte, error) {
	checkRequest(size, align)
	off := alignedOffset(b.buf, b.off, align)
	if off > len(b.buf) || size > len(b.buf)-off {
		return nil, ErrOutOfMemory
	}
	b.off = off + size
	return region(b.buf, off, size, align), nil
}

// Resize only shrinks in place. Growing would overlap space that later
// allocations may already own.
func (b *Bump) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 || newSize > len(buf) {
		return nil, false
	}
	return buf[:newSize:newSize], true
}

// Free is a no-op.
func (b *Bump) Free(buf []byte, align Alignment) {}

// Reset makes the whole buffer available again. Memory is not cleared and
// every previously returned slice must be considered invalid.
func (b *Bump) Reset() {
	b.off = 0
}

// Offset returns the number of bytes consumed, including alignment padding.
func (b *Bump) Offset() int { return b.off }

// Cap returns the size of the backing buffer.
func (b *Bump) Cap() int { return len(b.buf) }

// Remaining returns the number of unconsumed bytes.
func (b *Bump) Remaining() int { return len(b.buf) - b.off }

// Owns reports whether buf lies inside the backing buffer.
func (b *Bump) Owns(buf []byte) bool {
	return owns(b.buf, buf)
}

func owns(backing, buf []byte) bool {
	if len(backing) == 0 {
		return false
	}
	start := addrOf(backing)
	p := addrOf(buf)
	return p >= start && p+uintptr(len(buf)) <= start+uintptr(len(backing))
}

var _ Allocator = (*Bump)(nil)
