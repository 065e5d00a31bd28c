package allockit

import "errors"

var (
	// ErrOutOfMemory indicates the backing buffer or parent allocator could
	// not satisfy a request. It is the only recoverable allocation error.
	ErrOutOfMemory = errors.New("allockit: out of memory")
)
