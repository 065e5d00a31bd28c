// Package debug provides allocator decorators for tests and diagnostics.
// Every wrapper satisfies allockit.Allocator and forwards to the allocator it
// wraps, so it can sit anywhere in a composition: around a parent to watch an
// arena's block traffic, or around an arena to watch individual allocations.
//
// # Wrappers
//
//   - Counting: call and byte counters, safe for concurrent use
//   - Failing: delegates the first k Alloc calls, fails every later one
//   - Tracking: records each live allocation with its call site and reports
//     leaks at teardown
//   - Validating: surrounds each allocation with canaries and panics with a
//     *CorruptionError when one was overwritten
//   - Logging: emits a log/slog record per call
//
// # Example
//
//	counter := debug.NewCounting(allockit.Heap)
//	a := allockit.NewArena(counter, 4096)
//	// ... use a ...
//	a.Release()
//	fmt.Println(counter.Stats().Allocs)
package debug
