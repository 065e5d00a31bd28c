package debug

import (
	"cmp"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/allockit"
)

// Record describes one live allocation.
type Record struct {
	Addr uintptr
	Size int
	Site string // file:line of the Alloc caller
}

func (r Record) String() string {
	return fmt.Sprintf("%#x %d bytes at %s", r.Addr, r.Size, r.Site)
}

// regions are identified by address and size; zero-length allocations may
// share an address, so each key holds a stack of sites.
type regionKey struct {
	addr uintptr
	size int
}

// Tracking records every live allocation. Freeing a slice that is not live
// panics, which catches double frees and foreign frees. Safe for concurrent
// use if the wrapped allocator is.
type Tracking struct {
	inner allockit.Allocator

	mu    sync.Mutex
	live  map[regionKey][]string
	bytes int
	peak  int
}

// NewTracking wraps inner.
func NewTracking(inner allockit.Allocator) *Tracking {
	return &Tracking{inner: inner, live: make(map[regionKey][]string)}
}

func (t *Tracking) Alloc(size int, align allockit.Alignment) ([]byte, error) {
	b, err := t.inner.Alloc(size, align)
	if err != nil {
		return nil, err
	}
	site := callSite(2)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(keyOf(b), site)
	return b, nil
}

func (t *Tracking) Resize(buf []byte, align allockit.Alignment, newSize int) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := keyOf(buf)
	sites, ok := t.live[old]
	if !ok {
		panic(fmt.Sprintf("debug: resize of untracked allocation %#x (%d bytes)", old.addr, old.size))
	}
	out, ok := t.inner.Resize(buf, align, newSize)
	if !ok {
		return nil, false
	}
	site := sites[len(sites)-1]
	t.remove(old)
	t.add(keyOf(out), site)
	return out, true
}

func (t *Tracking) Free(buf []byte, align allockit.Alignment) {
	if buf == nil {
		return
	}
	k := keyOf(buf)

	t.mu.Lock()
	if _, ok := t.live[k]; !ok {
		t.mu.Unlock()
		panic(fmt.Sprintf("debug: free of untracked allocation %#x (%d bytes)", k.addr, k.size))
	}
	t.remove(k)
	t.mu.Unlock()

	t.inner.Free(buf, align)
}

func (t *Tracking) add(k regionKey, site string) {
	t.live[k] = append(t.live[k], site)
	t.bytes += k.size
	t.peak = max(t.peak, t.bytes)
}

func (t *Tracking) remove(k regionKey) {
	sites := t.live[k]
	if len(sites) == 1 {
		delete(t.live, k)
	} else {
		t.live[k] = sites[:len(sites)-1]
	}
	t.bytes -= k.size
}

// Live returns the number of bytes currently allocated.
func (t *Tracking) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bytes
}

// Peak returns the highest value Live has reached.
func (t *Tracking) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// Leaks returns the live allocations ordered by address.
func (t *Tracking) Leaks() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Record
	for k, sites := range t.live {
		for _, s := range sites {
			out = append(out, Record{Addr: k.addr, Size: k.size, Site: s})
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		return cmp.Or(cmp.Compare(a.Addr, b.Addr), cmp.Compare(a.Size, b.Size))
	})
	return out
}

// Check returns ErrLeaked if any allocation is still live.
func (t *Tracking) Check() error {
	leaks := t.Leaks()
	if len(leaks) == 0 {
		return nil
	}
	total := 0
	for _, r := range leaks {
		total += r.Size
	}
	return errors.Wrapf(ErrLeaked, "%d allocations, %d bytes, first %s", len(leaks), total, leaks[0])
}

func keyOf(b []byte) regionKey {
	return regionKey{addr: uintptr(unsafe.Pointer(unsafe.SliceData(b))), size: len(b)}
}

func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

var _ allockit.Allocator = (*Tracking)(nil)
