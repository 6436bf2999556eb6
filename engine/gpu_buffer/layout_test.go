package gpu_buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	for _, align := range []uint64{1, 4, 16, 256} {
		assert.Equal(t, uint64(0), AlignUp(0, align))
		assert.Equal(t, align, AlignUp(1, align))
		assert.Equal(t, align, AlignUp(align, align))
		assert.Equal(t, 2*align, AlignUp(align+1, align))
	}

	// Aligned results are multiples of the alignment and never below the input.
	for _, v := range []uint64{0, 1, 7, 255, 256, 257, 4096, 100000} {
		for _, align := range []uint64{1, 2, 64, 256} {
			got := AlignUp(v, align)
			assert.Zero(t, got%align)
			assert.GreaterOrEqual(t, got, v)
			assert.Less(t, got-v, align)
		}
	}
}

func TestLayoutSizeFor(t *testing.T) {
	l := Layout{FixedSize: 16, TailStride: 8}

	size, err := l.SizeFor(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), size)

	size, err = l.SizeFor(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(48), size)

	fixed := Layout{FixedSize: 64}
	size, err = fixed.SizeFor(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), size)
}

func TestLayoutSizeForOverflow(t *testing.T) {
	l := Layout{FixedSize: 16, TailStride: math.MaxUint64 / 2}

	_, err := l.SizeFor(3)
	assert.ErrorIs(t, err, ErrCapacityOverflow)

	_, err = l.SizeFor(-1)
	assert.ErrorIs(t, err, ErrCapacityOverflow)
}

func TestWriteResultString(t *testing.T) {
	assert.Equal(t, "unchanged", WriteUnchanged.String())
	assert.Equal(t, "reallocated", WriteReallocated.String())
}

func TestWriteResultMerge(t *testing.T) {
	assert.Equal(t, WriteUnchanged, WriteUnchanged.merge(WriteUnchanged))
	assert.Equal(t, WriteReallocated, WriteUnchanged.merge(WriteReallocated))
	assert.Equal(t, WriteReallocated, WriteReallocated.merge(WriteUnchanged))
}
