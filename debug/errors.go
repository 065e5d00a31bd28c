package debug

import "errors"

var (
	// ErrLeaked is returned by Tracking.Check when allocations are still live.
	ErrLeaked = errors.New("debug: allocations still live")
)
