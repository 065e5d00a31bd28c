package allockit

import (
	"fmt"
	"sync"
	"unsafe"
)

// Alignment is a byte alignment. Valid alignments are powers of two.
type Alignment uintptr

// Common alignments.
const (
	Align1    Alignment = 1
	AlignWord Alignment = Alignment(unsafe.Sizeof(uintptr(0)))
	// AlignMax covers every Go scalar type and SSE vectors.
	AlignMax Alignment = 16
)

// Valid reports whether a is a non-zero power of two.
func (a Alignment) Valid() bool {
	return a != 0 && a&(a-1) == 0
}

// Layout describes the size and alignment of a region.
type Layout struct {
	Size  int
	Align Alignment
}

// LayoutOf returns the layout of a single T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: int(unsafe.Sizeof(zero)), Align: Alignment(unsafe.Alignof(zero))}
}

// Allocator is the contract every allocation strategy in this module
// satisfies. Containers should depend on Allocator rather than on a concrete
// strategy.
//
// Alloc returns a region of exactly size bytes (len == cap == size) whose
// first byte is aligned to align, or an error matching ErrOutOfMemory.
// Zero-length requests return a non-nil, empty slice.
//
// Resize attempts to change the length of buf without moving it. On success
// the returned slice shares buf's base address and has len == cap == newSize.
// A false result means the caller must allocate, copy and free; Realloc does
// exactly that.
//
// Free releases buf. Strategies that only reclaim memory in bulk (bump,
// arena) may treat it as a no-op.
//
// buf passed to Resize and Free must be a slice returned by the same
// allocator's Alloc or Resize, with the same align.
type Allocator interface {
	Alloc(size int, align Alignment) ([]byte, error)
	Resize(buf []byte, align Alignment, newSize int) ([]byte, bool)
	Free(buf []byte, align Alignment)
}

// Realloc changes the size of buf, moving it if it cannot be resized in place.
// On failure buf is left untouched and still owned by the caller.
func Realloc(a Allocator, buf []byte, align Alignment, newSize int) ([]byte, error) {
	if out, ok := a.Resize(buf, align, newSize); ok {
		return out, nil
	}
	out, err := a.Alloc(newSize, align)
	if err != nil {
		return nil, err
	}
	copy(out, buf)
	a.Free(buf, align)
	return out, nil
}

// AlignUp rounds n up to the next multiple of align.
func AlignUp(n uintptr, align Alignment) uintptr {
	mask := uintptr(align) - 1
	return (n + mask) &^ mask
}

// addrOf returns the address of the first byte of b's backing array.
func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// alignedOffset returns the smallest offset >= off within buf at which an
// allocation aligned to align can start.
func alignedOffset(buf []byte, off int, align Alignment) int {
	base := addrOf(buf)
	return int(AlignUp(base+uintptr(off), align) - base)
}

func checkRequest(size int, align Alignment) {
	if size < 0 {
		panic(fmt.Sprintf("allockit: negative size %d", size))
	}
	if !align.Valid() {
		panic(fmt.Sprintf("allockit: alignment %d is not a power of two", align))
	}
}

// region returns buf[off:off+n] with its capacity clipped to n. A plain
// three-index slice with zero capacity keeps the base pointer, so zero-length
// regions are built from the offset address instead; at the end of buf they
// fall back to zeroRegion.
func region(buf []byte, off, n int, align Alignment) []byte {
	if n > 0 {
		return buf[off : off+n : off+n]
	}
	if off < len(buf) {
		return unsafe.Slice(&buf[off], 0)
	}
	return zeroRegion(align)
}

// zeroRegions maps an Alignment to a zero-length slice whose address is a
// multiple of it.
var zeroRegions sync.Map

// zeroRegion returns the shared zero-length result for align. Its address
// lies inside a Go allocation, is stable and is aligned to align.
func zeroRegion(align Alignment) []byte {
	if v, ok := zeroRegions.Load(align); ok {
		return v.([]byte)
	}
	buf := make([]byte, align)
	z := unsafe.Slice(&buf[alignedOffset(buf, 0, align)], 0)
	v, _ := zeroRegions.LoadOrStore(align, z)
	return v.([]byte)
}

// isZeroRegion reports whether buf is the shared zero-length result for align.
func isZeroRegion(buf []byte, align Alignment) bool {
	if len(buf) != 0 || buf == nil {
		return false
	}
	v, ok := zeroRegions.Load(align)
	return ok && unsafe.SliceData(v.([]byte)) == unsafe.SliceData(buf)
}
