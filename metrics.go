package allockit

// ArenaMetrics is a point-in-time view of an arena.
type ArenaMetrics struct {
	SizeInUse   int     `json:"size_in_use"`
	Capacity    int     `json:"capacity"`
	NumBlocks   int     `json:"num_blocks"`
	BlockSize   int     `json:"block_size"`
	Utilization float64 `json:"utilization"` // SizeInUse / Capacity, 0 when empty
}

// SizeInUse sums the block offsets, so alignment padding counts as used.
func (a *Arena) SizeInUse() int {
	n := 0
	for i := range a.blocks {
		n += a.blocks[i].offset
	}
	return n
}

func (a *Arena) NumBlocks() int { return len(a.blocks) }

// Capacity is the number of bytes obtained from the parent and not yet
// returned.
func (a *Arena) Capacity() int {
	n := 0
	for i := range a.blocks {
		n += len(a.blocks[i].buf)
	}
	return n
}

func (a *Arena) Utilization() float64 {
	c := a.Capacity()
	if c == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(c)
}

// BlockSize is the size requested for ordinary blocks. Oversized allocations
// get blocks of their own size.
func (a *Arena) BlockSize() int { return a.blockSize }

func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumBlocks:   a.NumBlocks(),
		BlockSize:   a.BlockSize(),
		Utilization: a.Utilization(),
	}
}

// The SafeArena accessors each take the lock once. Use Metrics when several
// values must agree with each other.

func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

func (s *SafeArena) NumBlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.NumBlocks()
}

func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// BlockSize never changes after construction and needs no lock.
func (s *SafeArena) BlockSize() int { return s.a.BlockSize() }

func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
