package debug

import (
	"sync/atomic"

	"github.com/pavanmanishd/allockit"
)

// CountingStats is a snapshot of a Counting allocator.
type CountingStats struct {
	Allocs     int64 `json:"allocs"`
	Frees      int64 `json:"frees"`
	Resizes    int64 `json:"resizes"`
	Failures   int64 `json:"failures"`
	LiveBytes  int64 `json:"live_bytes"`
	PeakBytes  int64 `json:"peak_bytes"`
	TotalBytes int64 `json:"total_bytes"`
}

// Live returns the number of allocations not yet freed.
func (s CountingStats) Live() int64 { return s.Allocs - s.Frees }

// Counting counts every call that reaches the wrapped allocator.
type Counting struct {
	inner allockit.Allocator

	allocs   atomic.Int64
	frees    atomic.Int64
	resizes  atomic.Int64
	failures atomic.Int64
	live     atomic.Int64
	peak     atomic.Int64
	total    atomic.Int64
}

// NewCounting wraps inner.
func NewCounting(inner allockit.Allocator) *Counting {
	return &Counting{inner: inner}
}

func (c *Counting) Alloc(size int, align allockit.Alignment) ([]byte, error) {
	b, err := c.inner.Alloc(size, align)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	c.allocs.Add(1)
	c.total.Add(int64(size))
	c.addLive(int64(size))
	return b, nil
}

func (c *Counting) Resize(buf []byte, align allockit.Alignment, newSize int) ([]byte, bool) {
	out, ok := c.inner.Resize(buf, align, newSize)
	if ok {
		c.resizes.Add(1)
		c.addLive(int64(len(out) - len(buf)))
	}
	return out, ok
}

func (c *Counting) Free(buf []byte, align allockit.Alignment) {
	c.inner.Free(buf, align)
	if buf == nil {
		return
	}
	c.frees.Add(1)
	c.live.Add(-int64(len(buf)))
}

func (c *Counting) addLive(n int64) {
	live := c.live.Add(n)
	for {
		peak := c.peak.Load()
		if live <= peak || c.peak.CompareAndSwap(peak, live) {
			return
		}
	}
}

// Stats returns the current counters.
func (c *Counting) Stats() CountingStats {
	return CountingStats{
		Allocs:     c.allocs.Load(),
		Frees:      c.frees.Load(),
		Resizes:    c.resizes.Load(),
		Failures:   c.failures.Load(),
		LiveBytes:  c.live.Load(),
		PeakBytes:  c.peak.Load(),
		TotalBytes: c.total.Load(),
	}
}

var _ allockit.Allocator = (*Counting)(nil)
