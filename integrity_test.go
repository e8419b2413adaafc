package mallocator

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassesOnEmptyAndHealthyHeap(t *testing.T) {
	a := newTestAllocator(t)
	assert.NotPanics(t, a.check)

	p, err := a.Alloc(64)
	require.NoError(t, err)
	assert.NotPanics(t, a.check)
	require.NoError(t, a.Free(p))
	assert.NotPanics(t, a.check)
}

func TestCheckPanicsOnBadMagic(t *testing.T) {
	a := newTestAllocator(t)
	p, err := a.Alloc(64)
	require.NoError(t, err)

	b := blockFromPayload(unsafe.Pointer(&p[0]))
	b.magic = 0

	assert.Panics(t, a.check)
}

func TestCheckPanicValueWrapsCorruptionError(t *testing.T) {
	a := newTestAllocator(t)
	p, err := a.Alloc(64)
	require.NoError(t, err)
	blockFromPayload(unsafe.Pointer(&p[0])).magic = 0

	defer func() {
		r := recover()
		require.NotNil(t, r)
		panicErr, ok := r.(error)
		require.True(t, ok, "integrity panic value must be an error")
		assert.True(t, errors.Is(panicErr, errCorrupt))
	}()
	a.check()
}

func TestCheckPanicsOnBrokenBackLink(t *testing.T) {
	a := newTestAllocator(t)
	_, err := a.Alloc(64)
	require.NoError(t, err)
	_, err = a.Alloc(64)
	require.NoError(t, err)

	a.tail.prev = nil // corrupt the back-link deliberately

	assert.Panics(t, a.check)
}

func TestCheckPanicsOnCycle(t *testing.T) {
	a := newTestAllocator(t)
	_, err := a.Alloc(64)
	require.NoError(t, err)
	_, err = a.Alloc(64)
	require.NoError(t, err)

	a.tail.next = a.head
	a.head.prev = a.tail

	assert.Panics(t, a.check)
}
