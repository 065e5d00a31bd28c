package allockit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSafeArena(t *testing.T) {
	s := NewSafeArena(nil, 1024)
	require.NotNil(t, s)
	require.NotNil(t, s.a)
	assert.Equal(t, 1024, s.a.BlockSize())
}

func TestSafeArenaOperations(t *testing.T) {
	s := NewSafeArena(nil, 1024)

	b, err := s.Alloc(100, Align1)
	require.NoError(t, err)
	assert.Len(t, b, 100)
	assert.Equal(t, 100, s.SizeInUse())

	grown, ok := s.Resize(b, Align1, 200)
	require.True(t, ok)
	assert.Len(t, grown, 200)

	s.Free(grown, Align1)
	assert.Zero(t, s.SizeInUse())

	require.NoError(t, s.EnsureCapacity(4096))
	assert.Equal(t, 2, s.NumBlocks())

	s.ResetRetainCapacity()
	assert.Zero(t, s.SizeInUse())
	assert.Equal(t, 2, s.NumBlocks())

	s.Release()
	assert.Zero(t, s.NumBlocks())

	// Usable again after release
	_, err = s.Alloc(10, Align1)
	assert.NoError(t, err)
}

func TestSafeArenaConcurrentAccess(t *testing.T) {
	s := NewSafeArena(nil, 4096)
	defer s.Release()

	const numGoroutines = 10
	const allocsPerGoroutine = 100

	var wg sync.WaitGroup
	results := make([][][]byte, numGoroutines)

	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range allocsPerGoroutine {
				b, err := s.Alloc(16, AlignWord)
				if !assert.NoError(t, err) {
					return
				}
				b[0] = byte(id)
				b[15] = byte(j)
				results[id] = append(results[id], b)
			}
		}(i)
	}
	wg.Wait()

	// No allocation was handed out twice.
	for id, bufs := range results {
		require.Len(t, bufs, allocsPerGoroutine)
		for j, b := range bufs {
			assert.Equal(t, byte(id), b[0])
			assert.Equal(t, byte(j), b[15])
		}
	}
	assert.Equal(t, numGoroutines*allocsPerGoroutine*16, s.SizeInUse())
}

// TestSynchronized shares one bump allocator between goroutines.
func TestSynchronized(t *testing.T) {
	shared := Synchronized(NewBump(64 * 100))

	var wg sync.WaitGroup
	seen := sync.Map{}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				b, err := shared.Alloc(64, Align1)
				if !assert.NoError(t, err) {
					return
				}
				_, dup := seen.LoadOrStore(addrOf(b), true)
				assert.False(t, dup, "address handed out twice")
			}
		}()
	}
	wg.Wait()

	_, err := shared.Alloc(64*21, Align1)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	b, err := shared.Alloc(8, Align1)
	require.NoError(t, err)
	out, ok := shared.Resize(b, Align1, 4)
	assert.True(t, ok)
	shared.Free(out, Align1)
}

// TestSynchronizedParent lets concurrent arenas grow out of one parent arena.
func TestSynchronizedParent(t *testing.T) {
	root := NewArena(nil, 1<<16)
	parent := Synchronized(root)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := NewArena(parent, 512)
			defer child.Release()
			for range 50 {
				_, err := child.Alloc(32, AlignWord)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.NotZero(t, root.NumBlocks())
}
