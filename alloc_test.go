package mallocator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a := New(WithBreakArenaSize(4 << 20))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAllocZeroSizeReturnsNil(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(0)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestAllocOverflowReturnsError(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(^uint(0))
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

// TestAllocResourceExhaustionReturnsError covers the other half of
// spec.md §7's "return null" contract for Alloc: a size that survives
// alignedRequest's overflow checks but is still too large for the
// mmap service to satisfy must fail with ErrOutOfMemory, not
// ErrInvalidSize.
func TestAllocResourceExhaustionReturnsError(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(^uint(0) / 2)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestZallocZeroArgumentReturnsNil(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Zalloc(0, 8)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = a.Zalloc(8, 0)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestZallocOverflowReturnsError(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Zalloc(^uint(0), 4)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrOverflow)

	stats := a.Stats()
	assert.Zero(t, stats.Blocks)
}

func TestZallocZeroesPayload(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Zalloc(1024, 4)
	require.NoError(t, err)
	require.Len(t, b, 4096)
	assert.True(t, bytes.Equal(b, make([]byte, 4096)))
}

func TestFreeNilIsNoop(t *testing.T) {
	a := newTestAllocator(t)
	assert.NoError(t, a.Free(nil))
}

func TestDoubleFreeIsNoop(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(b))
	assert.NoError(t, a.Free(b))
}

func TestFreeForeignPointerIsNoop(t *testing.T) {
	a := newTestAllocator(t)
	foreign := make([]byte, 64)
	assert.NoError(t, a.Free(foreign))
}

func TestReallocNilActsAsAlloc(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Realloc(nil, 32)
	require.NoError(t, err)
	require.Len(t, b, 32)
}

func TestReallocZeroActsAsFree(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(32)
	require.NoError(t, err)

	r, err := a.Realloc(b, 0)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, a.Free(b)) // already freed: must stay a no-op
}

func TestReallocPreservesContentsOnGrowth(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(100)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xAB
	}

	grown, err := a.Realloc(b, 4096)
	require.NoError(t, err)
	require.Len(t, grown, 4096)
	for i := 0; i < 100; i++ {
		assert.Equalf(t, byte(0xAB), grown[i], "byte %d", i)
	}
}

func TestReallocPreservesContentsOnShrink(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(100)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xAB
	}

	q, err := a.Realloc(b, 50)
	require.NoError(t, err)
	require.Len(t, q, 50)
	for i, v := range q {
		assert.Equalf(t, byte(0xAB), v, "byte %d", i)
	}
}

func TestReallocOverflowLeavesOriginalValid(t *testing.T) {
	a := newTestAllocator(t)
	b, err := a.Alloc(100)
	require.NoError(t, err)
	copy(b, []byte("still here"))

	r, err := a.Realloc(b, ^uint(0))
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.Equal(t, "still here", string(b[:10]))
}

func TestRoundTripReuse(t *testing.T) {
	a := newTestAllocator(t)
	p1, err := a.Alloc(128)
	require.NoError(t, err)
	require.NoError(t, a.Free(p1))

	p2, err := a.Alloc(128)
	require.NoError(t, err)
	require.NotNil(t, p2)
}

func TestMmapThresholdRouting(t *testing.T) {
	a := newTestAllocator(t)
	small, err := a.Alloc(100)
	require.NoError(t, err)
	large, err := a.Alloc(mmapThreshold + 1)
	require.NoError(t, err)

	stats := a.Stats()
	assert.Equal(t, 2, stats.Blocks)
	assert.Equal(t, 1, stats.MmapBlocks)

	require.NoError(t, a.Free(small))
	require.NoError(t, a.Free(large))
}
