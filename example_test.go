package allockit

import (
	"errors"
	"fmt"
	"sync"
)

// Example demonstrates basic arena usage
func Example() {
	// Create an arena over the Go heap with the default block size
	a := NewArena(nil, 0)
	defer a.Release() // Always return blocks to the parent

	// Allocate raw bytes
	buf, _ := a.Alloc(1024, AlignWord)
	fmt.Printf("Allocated buffer of size: %d\n", len(buf))

	// Allocate a typed value (zeroed)
	ptr, _ := New[int64](a)
	*ptr = 42
	fmt.Printf("Allocated int64 with value: %d\n", *ptr)

	// Allocate a slice
	slice, _ := MakeSlice[int64](a, 5)
	for i := range slice {
		slice[i] = int64(i * 2)
	}
	fmt.Printf("Allocated slice: %v\n", slice)

	// Check memory usage
	fmt.Printf("Memory in use: %d bytes\n", a.SizeInUse())
	fmt.Printf("Utilization: %.2f%%\n", a.Utilization()*100)

	// Reset for reuse, keeping the block
	a.ResetRetainCapacity()
	fmt.Printf("After reset, memory in use: %d bytes\n", a.SizeInUse())

	// Output:
	// Allocated buffer of size: 1024
	// Allocated int64 with value: 42
	// Allocated slice: [0 2 4 6 8]
	// Memory in use: 1072 bytes
	// Utilization: 1.64%
	// After reset, memory in use: 0 bytes
}

// ExampleFixedBuffer bump-allocates from caller-owned storage.
func ExampleFixedBuffer() {
	var storage [100]byte
	b := FixedBuffer(storage[:])

	_, _ = b.Alloc(50, Align1)
	_, _ = b.Alloc(40, Align1)
	fmt.Println("offset:", b.Offset())

	_, err := b.Alloc(20, Align1)
	fmt.Println("out of memory:", errors.Is(err, ErrOutOfMemory), "offset:", b.Offset())

	b.Reset()
	_, _ = b.Alloc(80, Align1)
	fmt.Println("after reset:", b.Offset())

	// Output:
	// offset: 90
	// out of memory: true offset: 90
	// after reset: 80
}

// ExampleArena_nested shows a request-scoped arena growing out of a
// server-scoped one.
func ExampleArena_nested() {
	server := NewArena(nil, 1<<16)
	defer server.Release()

	for req := range 3 {
		request := NewArena(server, 4096)
		msg, _ := DupString(request, fmt.Sprintf("request %d", req))
		fmt.Println(msg, "blocks:", request.NumBlocks())
		request.Release()
	}
	fmt.Println("server in use:", server.SizeInUse())

	// Output:
	// request 0 blocks: 1
	// request 1 blocks: 1
	// request 2 blocks: 1
	// server in use: 0
}

// ExampleSafeArena demonstrates thread-safe arena usage
func ExampleSafeArena() {
	s := NewSafeArena(nil, 1024)
	defer s.Release()

	var wg sync.WaitGroup
	const numWorkers = 3

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				buf, _ := s.Alloc(16, AlignWord)
				buf[0] = byte(id)
			}
		}(i)
	}
	wg.Wait()

	fmt.Printf("Total memory used: %d bytes\n", s.SizeInUse())

	// Output:
	// Total memory used: 192 bytes
}
