package debug

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/allockit"
)

func TestFailAfter(t *testing.T) {
	for _, k := range []int{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			f := FailAfter(allockit.Heap, k)
			for i := range k {
				_, err := f.Alloc(8<<i, allockit.Align1)
				require.NoError(t, err, "call %d", i+1)
			}
			assert.False(t, f.Induced())

			// Smaller sizes do not help once the limit is reached.
			for _, size := range []int{1024, 16, 1, 0} {
				_, err := f.Alloc(size, allockit.Align1)
				assert.ErrorIs(t, err, allockit.ErrOutOfMemory)
			}
			assert.True(t, f.Induced())
			assert.Equal(t, k+4, f.Calls())
		})
	}
}

func TestFailAfter_ErrorContext(t *testing.T) {
	f := FailAfter(allockit.Heap, 2)
	_, _ = f.Alloc(1, allockit.Align1)
	_, _ = f.Alloc(1, allockit.Align1)
	_, err := f.Alloc(1, allockit.Align1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "induced failure at alloc 3")
	assert.Contains(t, fmt.Sprintf("%+v", err), "TestFailAfter_ErrorContext", "error carries a stack")
}

func TestFailAfter_ArenaGrowth(t *testing.T) {
	f := FailAfter(allockit.Heap, 1)
	a := allockit.NewArena(f, 64)

	_, err := a.Alloc(60, allockit.Align1)
	require.NoError(t, err)

	// Second block is refused; the first remains usable.
	_, err = a.Alloc(60, allockit.Align1)
	assert.ErrorIs(t, err, allockit.ErrOutOfMemory)
	assert.Equal(t, 1, a.NumBlocks())

	a.ResetRetainCapacity()
	_, err = a.Alloc(60, allockit.Align1)
	assert.NoError(t, err)
}

func TestFailAfter_ResizeAndFreeDelegate(t *testing.T) {
	b := allockit.NewBump(64)
	f := FailAfter(b, 1)
	buf, err := f.Alloc(32, allockit.Align1)
	require.NoError(t, err)

	out, ok := f.Resize(buf, allockit.Align1, 16)
	assert.True(t, ok)
	assert.Len(t, out, 16)
	f.Free(out, allockit.Align1)
	assert.Equal(t, 32, b.Offset())
}
