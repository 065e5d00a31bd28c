package allockit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backingCases lists every backing allocator with its teardown.
func backingCases(t *testing.T) map[string]Allocator {
	t.Helper()
	m := NewMalloc()
	t.Cleanup(func() { assert.NoError(t, m.Close()) })
	return map[string]Allocator{
		"heap":   Heap,
		"malloc": m,
		"pages":  NewPages(),
	}
}

func TestBacking_AllocAlignment(t *testing.T) {
	for name, a := range backingCases(t) {
		t.Run(name, func(t *testing.T) {
			for _, align := range []Alignment{1, 8, 16, 64, 256, 8192} {
				buf, err := a.Alloc(100, align)
				require.NoError(t, err, "align %d", align)
				assert.Len(t, buf, 100)
				assert.Equal(t, 100, cap(buf))
				assert.Zero(t, addrOf(buf)%uintptr(align), "align %d", align)

				buf[0], buf[99] = 1, 2
				a.Free(buf, align)
			}
		})
	}
}

func TestBacking_ZeroLength(t *testing.T) {
	for name, a := range backingCases(t) {
		t.Run(name, func(t *testing.T) {
			buf, err := a.Alloc(0, AlignWord)
			require.NoError(t, err)
			assert.NotNil(t, buf)
			assert.Empty(t, buf)
			a.Free(buf, AlignWord)
		})
	}
}

func TestBacking_Shrink(t *testing.T) {
	for name, a := range backingCases(t) {
		t.Run(name, func(t *testing.T) {
			buf, err := a.Alloc(64, AlignWord)
			require.NoError(t, err)
			out, ok := a.Resize(buf, AlignWord, 16)
			require.True(t, ok)
			assert.Len(t, out, 16)
			assert.Equal(t, addrOf(buf), addrOf(out))
			a.Free(out, AlignWord)
		})
	}
}

func TestBacking_ArenaParent(t *testing.T) {
	for name, parent := range backingCases(t) {
		t.Run(name, func(t *testing.T) {
			a := NewArena(parent, 4096)
			for i := range 100 {
				buf, err := a.Alloc(100, AlignWord)
				require.NoError(t, err)
				buf[0] = byte(i)
			}
			assert.GreaterOrEqual(t, a.NumBlocks(), 3)
			a.Release()
			assert.Zero(t, a.NumBlocks())
		})
	}
}

func TestPages(t *testing.T) {
	p := NewPages()
	buf, err := p.Alloc(10, AlignWord)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Mapped())

	// The rest of the page is available in place.
	grown, ok := p.Resize(buf, AlignWord, p.PageSize())
	require.True(t, ok)
	assert.Len(t, grown, p.PageSize())
	grown[len(grown)-1] = 0xff

	_, ok = p.Resize(grown, AlignWord, p.PageSize()+1)
	assert.False(t, ok)

	p.Free(grown, AlignWord)
	assert.Zero(t, p.Mapped())

	// Unknown slices are ignored.
	p.Free(make([]byte, 8), AlignWord)
}

func TestMalloc(t *testing.T) {
	m := NewMalloc()
	defer func() { require.NoError(t, m.Close()) }()

	buf, err := m.Alloc(10, AlignWord)
	require.NoError(t, err)
	copy(buf, "0123456789")

	// malloc rounds small requests up, so a little growth stays in place.
	grown, ok := m.Resize(buf, AlignWord, 12)
	require.True(t, ok)
	assert.Equal(t, "0123456789", string(grown[:10]))

	moved, err := Realloc(m, grown, AlignWord, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(moved[:10]))
	m.Free(moved, AlignWord)

	over, err := m.Alloc(100, 4096)
	require.NoError(t, err)
	assert.Zero(t, addrOf(over)%4096)
	in, ok := m.Resize(over, 4096, 50)
	require.True(t, ok)
	m.Free(in, 4096)
	assert.Empty(t, m.over)
}

func TestHeap(t *testing.T) {
	buf, err := Heap.Alloc(32, 64)
	require.NoError(t, err)
	assert.Zero(t, addrOf(buf)%64)

	_, ok := Heap.Resize(buf, 64, 64)
	assert.False(t, ok, "heap memory never grows in place")
}

func TestBacking_ZeroLengthAligned(t *testing.T) {
	for name, a := range backingCases(t) {
		t.Run(name, func(t *testing.T) {
			for _, align := range []Alignment{1, 8, 64, 4096} {
				buf, err := a.Alloc(0, align)
				require.NoError(t, err)
				assert.NotNil(t, buf)
				assert.Zero(t, addrOf(buf)%uintptr(align), "align %d", align)

				_, ok := a.Resize(buf, align, 8)
				assert.False(t, ok, "zero-length results cannot grow")
				a.Free(buf, align)
			}
		})
	}
}

func TestBacking_ShrinkToZeroFrees(t *testing.T) {
	p := NewPages()
	buf, err := p.Alloc(64, AlignWord)
	require.NoError(t, err)
	z, ok := p.Resize(buf, AlignWord, 0)
	require.True(t, ok)
	assert.Equal(t, addrOf(buf), addrOf(z))
	p.Free(z, AlignWord)
	assert.Zero(t, p.Mapped())
}

func TestZeroRegion(t *testing.T) {
	z := zeroRegion(128)
	assert.Equal(t, addrOf(z), addrOf(zeroRegion(128)), "one shared result per alignment")
	assert.Zero(t, addrOf(z)%128)
	assert.True(t, isZeroRegion(z, 128))
	assert.False(t, isZeroRegion(z, 64))
	assert.False(t, isZeroRegion(nil, 128))
	assert.False(t, isZeroRegion(make([]byte, 0, 1), 128))
}
