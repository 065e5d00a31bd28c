package pool

import "errors"

var (
	// ErrLeaked indicates nodes were still in use when the pool was torn down.
	ErrLeaked = errors.New("pool: nodes still in use at teardown")
)
