// Package pool recycles fixed-type values to avoid repeated round trips to a
// parent allocator in hot acquire/release cycles.
//
// # Pools
//
//   - Pool: grows one node at a time from a parent allockit.Allocator and
//     recycles released nodes through a free list
//   - SyncPool: a Pool behind a mutex, safe for concurrent callers
//   - FixedPool: N slots allocated up front, no parent, no growth
//
// # Usage
//
//	p := pool.New[Particle](allockit.Heap)
//	defer p.Deinit()
//
//	ref, err := p.Acquire()
//	if err != nil {
//	    return err
//	}
//	ref.Value().X = 1
//	p.Release(ref)
//
// Recycled values are not reset: a value handed out again holds whatever the
// previous user left in it. NewWithInit runs an initializer once, when a node
// is first created.
//
// # Node States
//
// Every node is either in use (held by a caller) or free (on the free list).
// Acquire moves a node from free to in use, or creates a new in-use node when
// the free list is empty. Release moves it back. Deinit returns free nodes to
// the parent and reports nodes still in use as ErrLeaked.
//
// Pool node memory comes from the parent allocator, which the garbage
// collector does not scan for arena-style parents; T should be pointer-free.
// FixedPool stores its slots in ordinary Go memory and has no such limit.
package pool
