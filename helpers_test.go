package allockit

// countingParent records the calls a strategy makes to its parent.
type countingParent struct {
	inner  Allocator
	allocs int
	frees  int
	live   int // bytes
}

func newCountingParent() *countingParent {
	return &countingParent{inner: Heap}
}

func (c *countingParent) Alloc(size int, align Alignment) ([]byte, error) {
	buf, err := c.inner.Alloc(size, align)
	if err == nil {
		c.allocs++
		c.live += len(buf)
	}
	return buf, err
}

func (c *countingParent) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	out, ok := c.inner.Resize(buf, align, newSize)
	if ok {
		c.live += newSize - len(buf)
	}
	return out, ok
}

func (c *countingParent) Free(buf []byte, align Alignment) {
	c.frees++
	c.live -= len(buf)
	c.inner.Free(buf, align)
}

// exhaustedParent fails every request.
type exhaustedParent struct{}

func (exhaustedParent) Alloc(int, Alignment) ([]byte, error) { return nil, ErrOutOfMemory }
func (exhaustedParent) Resize([]byte, Alignment, int) ([]byte, bool) { return nil, false }
func (exhaustedParent) Free([]byte, Alignment) {}

// within reports whether inner lies entirely inside outer.
func within(outer, inner []byte) bool {
	return owns(outer, inner)
}
