package allockit

// heapAllocator hands out memory from the Go heap. Free is left to the
// garbage collector.
type heapAllocator struct{}

// Heap is the default backing allocator. It is safe for concurrent use.
var Heap Allocator = heapAllocator{}

func (heapAllocator) Alloc(size int, align Alignment) ([]byte, error) {
	checkRequest(size, align)
	if size == 0 {
		return zeroRegion(align), nil
	}
	if align <= AlignWord {
		return make([]byte, size), nil
	}
	// padding for alignments above what the runtime guarantees
	buf := make([]byte, size+int(align)-1)
	off := alignedOffset(buf, 0, align)
	return region(buf, off, size, align), nil
}

func (heapAllocator) Resize(buf []byte, align Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 || newSize > len(buf) {
		return nil, false
	}
	return buf[:newSize:newSize], true
}

func (heapAllocator) Free(buf []byte, align Alignment) {}
