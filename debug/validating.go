package debug

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/pavanmanishd/allockit"
)

const (
	canary     uint64 = 0xDEADBEEFCAFEBABE
	canarySize        = 8
)

// CorruptionError reports an overwritten canary. Validating panics with it.
type CorruptionError struct {
	Addr  uintptr // user address
	Size  int
	Front bool // the canary before the region was hit, otherwise the one after
	Found uint64
}

func (e *CorruptionError) Error() string {
	side := "after"
	if e.Front {
		side = "before"
	}
	return fmt.Sprintf("debug: memory corruption %s allocation %#x (%d bytes): canary %#016x",
		side, e.Addr, e.Size, e.Found)
}

// Validating surrounds every allocation with canaries and verifies them on
// Resize and Free. The front canary sits directly before the user region,
// padded so the region keeps the requested alignment; the back canary
// follows the last user byte.
type Validating struct {
	inner allockit.Allocator
}

// NewValidating wraps inner.
func NewValidating(inner allockit.Allocator) *Validating {
	return &Validating{inner: inner}
}

// prefix is the distance from the raw start to the user region.
func prefix(align allockit.Alignment) int {
	return int(allockit.AlignUp(canarySize, align))
}

func (v *Validating) Alloc(size int, align allockit.Alignment) ([]byte, error) {
	if size < 0 || !align.Valid() {
		panic(fmt.Sprintf("debug: invalid request size=%d align=%d", size, align))
	}
	pre := prefix(align)
	raw, err := v.inner.Alloc(pre+size+canarySize, align)
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint64(raw[pre-canarySize:pre], canary)
	binary.LittleEndian.PutUint64(raw[pre+size:], canary)
	return unsafe.Slice(&raw[pre], size), nil
}

func (v *Validating) Resize(buf []byte, align allockit.Alignment, newSize int) ([]byte, bool) {
	if newSize < 0 {
		return nil, false
	}
	pre := prefix(align)
	raw := v.check(buf, pre)
	grown, ok := v.inner.Resize(raw, align, pre+newSize+canarySize)
	if !ok {
		return nil, false
	}
	binary.LittleEndian.PutUint64(grown[pre+newSize:], canary)
	return unsafe.Slice(&grown[pre], newSize), true
}

func (v *Validating) Free(buf []byte, align allockit.Alignment) {
	if buf == nil {
		return
	}
	raw := v.check(buf, prefix(align))
	v.inner.Free(raw, align)
}

// check rebuilds the raw region around buf and panics if a canary changed.
func (v *Validating) check(buf []byte, pre int) []byte {
	user := unsafe.Pointer(unsafe.SliceData(buf))
	raw := unsafe.Slice((*byte)(unsafe.Add(user, -pre)), pre+len(buf)+canarySize)

	if got := binary.LittleEndian.Uint64(raw[pre-canarySize : pre]); got != canary {
		panic(&CorruptionError{Addr: uintptr(user), Size: len(buf), Front: true, Found: got})
	}
	if got := binary.LittleEndian.Uint64(raw[pre+len(buf):]); got != canary {
		panic(&CorruptionError{Addr: uintptr(user), Size: len(buf), Found: got})
	}
	return raw
}

var _ allockit.Allocator = (*Validating)(nil)
