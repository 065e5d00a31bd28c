// Package allockit implements memory allocation strategies behind a single
// Allocator interface: a bump allocator, a fixed-buffer allocator over
// caller-owned storage, and a growable arena.
//
// # Overview
//
// Every strategy satisfies Allocator:
//
//	Alloc(size, align)          -> []byte or ErrOutOfMemory
//	Resize(buf, align, newSize) -> in-place resize, false means allocate+copy
//	Free(buf, align)
//
// Containers written against Allocator work with any strategy, or with a
// decorated one from the debug subpackage. Object pools live in the pool
// subpackage.
//
// # Basic Usage
//
//	a := allockit.NewArena(nil, 0) // Heap parent, default block size
//	defer a.Release()              // Return blocks to the parent
//
//	// Allocate raw bytes
//	buf, err := a.Alloc(1024, allockit.AlignWord)
//
//	// Allocate typed values
//	p, err := allockit.New[MyStruct](a)
//	s, err := allockit.MakeSlice[int64](a, 100)
//
//	// Reset for the next batch, keeping blocks
//	a.ResetRetainCapacity()
//
// # Strategies
//
//   - Bump / FixedBuffer: one buffer, O(1) allocation, bulk Reset only
//   - Arena: blocks from a parent allocator, retain-capacity or free-all resets,
//     nestable (an Arena can parent another Arena)
//   - Heap, Malloc, Pages: backing allocators for arenas and pools
//
// # Alignment
//
// Alignment padding is computed from the real address of the backing memory,
// so requests aligned above the buffer's natural alignment are honored at the
// cost of at most align-1 bytes.
//
// # Thread Safety
//
// Bump and Arena are not thread-safe. For concurrent access, use SafeArena or
// wrap any allocator with Synchronized. Heap, Malloc and Pages are safe for
// concurrent use.
//
// # Important Notes
//
//   - Allocated memory is only valid until the owning arena is reset or released
//   - Memory handed out after a reset is not zeroed, except through New and MakeSlice
//   - Arena and fixed-buffer memory is not scanned by the garbage collector;
//     do not store the only reference to a heap object in it
//   - ErrOutOfMemory is returned as a value and never retried
//
// # Metrics and Monitoring
//
// The arena provides metrics for monitoring memory usage:
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	fmt.Printf("Memory in use: %d bytes\n", m.SizeInUse)
//	fmt.Printf("Total capacity: %d bytes\n", m.Capacity)
package allockit
