package allockit

import (
	"unsafe"
)

// The typed helpers below place values inside allocator memory. That memory
// is not scanned by the garbage collector, so T must not contain Go pointers
// (pointers, slices, strings, maps, interfaces, channels or funcs) that are
// the only reference to heap objects.

// New returns a pointer to a zeroed T stored inside memory from a.
func New[T any](a Allocator) (*T, error) {
	p, err := NewUninitialized[T](a)
	if err != nil {
		return nil, err
	}
	var zero T
	*p = zero
	return p, nil
}

// NewUninitialized returns a *T located in memory from a without zeroing it.
// Memory reused after a reset holds whatever was written there before.
func NewUninitialized[T any](a Allocator) (*T, error) {
	l := LayoutOf[T]()
	if l.Size == 0 {
		return new(T), nil
	}
	b, err := a.Alloc(l.Size, l.Align)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// Destroy releases a value created by New.
func Destroy[T any](a Allocator, p *T) {
	l := LayoutOf[T]()
	if p == nil || l.Size == 0 {
		return
	}
	a.Free(unsafe.Slice((*byte)(unsafe.Pointer(p)), l.Size), l.Align)
}

// MakeSlice allocates a zeroed slice of n elements of type T.
// Returns nil if n <= 0.
func MakeSlice[T any](a Allocator, n int) ([]T, error) {
	s, err := MakeSliceUninitialized[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// MakeSliceUninitialized allocates a slice of n elements of type T without
// initializing it. Returns nil if n <= 0.
func MakeSliceUninitialized[T any](a Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	l := LayoutOf[T]()
	if l.Size == 0 {
		return make([]T, n), nil
	}
	b, err := a.Alloc(l.Size*n, l.Align)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// FreeSlice releases a slice created by MakeSlice.
func FreeSlice[T any](a Allocator, s []T) {
	l := LayoutOf[T]()
	if len(s) == 0 || l.Size == 0 {
		return
	}
	a.Free(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), l.Size*len(s)), l.Align)
}

// Dup copies b into memory from a.
func Dup(a Allocator, b []byte) ([]byte, error) {
	out, err := a.Alloc(len(b), Align1)
	if err != nil {
		return nil, err
	}
	copy(out, b)
	return out, nil
}

// DupString copies s into memory from a and returns it as a string that
// lives as long as the allocation.
func DupString(a Allocator, s string) (string, error) {
	b, err := a.Alloc(len(s), Align1)
	if err != nil {
		return "", err
	}
	copy(b, s)
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}
