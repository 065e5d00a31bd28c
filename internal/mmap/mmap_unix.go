//go:build unix

// Package mmap maps anonymous, private memory outside the Go heap.
package mmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the system page size.
var PageSize = unix.Getpagesize()

// Map returns n bytes of zeroed, readable and writable memory. n is rounded
// up to a whole number of pages; the returned slice has len == n and cap
// equal to the mapped length.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mmap: invalid length %d", n)
	}
	length := roundPages(n)
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %d bytes: %w", length, err)
	}
	return data[:n], nil
}

// Unmap releases a mapping returned by Map. The slice must start at the
// mapping's first byte; its full capacity is unmapped.
func Unmap(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	err := unix.Munmap(b[:cap(b)])
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

func roundPages(n int) int {
	return (n + PageSize - 1) &^ (PageSize - 1)
}
