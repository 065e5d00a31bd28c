//go:build !unix

package mmap

import (
	"fmt"
	"os"
)

// PageSize is the system page size.
var PageSize = os.Getpagesize()

// Map allocates n zeroed bytes from the Go heap when anonymous mappings are
// not available.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mmap: invalid length %d", n)
	}
	length := (n + PageSize - 1) &^ (PageSize - 1)
	return make([]byte, n, length), nil
}

// Unmap is a no-op; the garbage collector reclaims the memory.
func Unmap(b []byte) error { return nil }
