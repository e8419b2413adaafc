package mallocator

import (
	"math"
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
	"github.com/stretchr/testify/require"
)

// quota bounds how many bytes of payload a stress run asks for before
// it starts freeing, sized to comfortably fit the small test arena.
const quota = 512 << 10

var (
	smallMax = 2 * pageSize
	bigMax   = 2 * mmapThreshold
)

// fillAndVerify mirrors the teacher's test1: allocate a pile of
// randomly-sized blocks, stamp each with bytes drawn from the same
// seeded stream, rewind the stream and confirm every block still
// holds what was written, then free everything and confirm no payload
// bytes are still counted as used.
func fillAndVerify(t *testing.T, max int) {
	t.Helper()
	a := New(WithBreakArenaSize(8 << 20))
	defer a.Close()

	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	require.NoError(t, err)
	rng.Seed(42)
	pos := rng.Pos()

	var blocks [][]byte
	rem := quota
	for rem > 0 {
		size := uint(rng.Next()%max + 1)
		rem -= int(size)

		b, err := a.Alloc(size)
		require.NoError(t, err)
		require.NotNil(t, b)
		require.True(t, isAligned(b))

		for i := range b {
			b[i] = byte(rng.Next())
		}
		blocks = append(blocks, b)
	}

	rng.Seek(pos)
	for _, b := range blocks {
		wantLen := rng.Next()%max + 1
		require.Equal(t, wantLen, len(b))
		for i, got := range b {
			want := byte(rng.Next())
			require.Equalf(t, want, got, "byte %d mismatch", i)
		}
	}

	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	for _, b := range blocks {
		require.NoError(t, a.Free(b))
	}

	stats := a.Stats()
	require.Zero(t, stats.UsedBytes)
}

func TestFillAndVerifySmall(t *testing.T) { fillAndVerify(t, smallMax) }
func TestFillAndVerifyBig(t *testing.T)   { fillAndVerify(t, bigMax) }

// isAligned reports whether b's backing payload starts on the
// machine alignment boundary, spec.md property 2.
func isAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	return blockFromPayload(unsafe.Pointer(&b[0])).addr()%alignment == 0
}
