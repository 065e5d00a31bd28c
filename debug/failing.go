package debug

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/allockit"
)

// Failing injects allocation failures. The first k Alloc calls are delegated;
// call k+1 and every call after it fail with allockit.ErrOutOfMemory
// regardless of the requested size. The call counter never resets. Resize
// and Free always delegate.
type Failing struct {
	inner   allockit.Allocator
	limit   int64
	calls   atomic.Int64
	induced atomic.Bool
}

// FailAfter wraps inner so that it fails after k successful allocations.
// k <= 0 fails every allocation.
func FailAfter(inner allockit.Allocator, k int) *Failing {
	return &Failing{inner: inner, limit: int64(max(k, 0))}
}

func (f *Failing) Alloc(size int, align allockit.Alignment) ([]byte, error) {
	n := f.calls.Add(1)
	if n > f.limit {
		f.induced.Store(true)
		return nil, errors.Wrapf(allockit.ErrOutOfMemory, "debug: induced failure at alloc %d", n)
	}
	return f.inner.Alloc(size, align)
}

func (f *Failing) Resize(buf []byte, align allockit.Alignment, newSize int) ([]byte, bool) {
	return f.inner.Resize(buf, align, newSize)
}

func (f *Failing) Free(buf []byte, align allockit.Alignment) {
	f.inner.Free(buf, align)
}

// Calls returns the number of Alloc calls seen so far.
func (f *Failing) Calls() int { return int(f.calls.Load()) }

// Induced reports whether at least one failure was injected.
func (f *Failing) Induced() bool { return f.induced.Load() }

var _ allockit.Allocator = (*Failing)(nil)
