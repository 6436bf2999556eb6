package gpu_buffer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raygrid/raygrid/common"
)

func vecs(n int) []common.Vector2 {
	out := make([]common.Vector2, n)
	for i := range out {
		out[i] = common.Vec2(float32(i), float32(-i))
	}
	return out
}

func TestDynamicBufferExactFitGrowth(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewDynamicBuffer(backend, "array", BindingReadOnlyStorage.Usage(), testArray{items: vecs(2)})
	require.NoError(t, err)
	assert.Equal(t, uint64(32), buf.Capacity())
	assert.Len(t, backend.created, 1)

	res, err := buf.Write(testArray{items: vecs(4)})
	require.NoError(t, err)
	assert.Equal(t, WriteReallocated, res)

	// Exact fit: capacity equals the new serialized size, the old handle is
	// released, the new one holds the fresh contents.
	assert.Equal(t, uint64(48), buf.Capacity())
	require.Len(t, backend.created, 2)
	assert.True(t, backend.created[0].released)
	assert.False(t, backend.created[1].released)
	assert.Equal(t, uint32(4), u32At(backend.created[1].data, 0))
	assert.Equal(t, float32(3), f32At(backend.created[1].data, 40))
}

func TestDynamicBufferNoGrowthReusesAllocation(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewDynamicBuffer(backend, "array", BindingReadOnlyStorage.Usage(), testArray{items: vecs(3)})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		res, err := buf.Write(testArray{items: vecs(3)})
		require.NoError(t, err)
		assert.Equal(t, WriteUnchanged, res)
	}

	// Equal-size writes are idempotent on the allocation.
	assert.Len(t, backend.created, 1)
}

func TestDynamicBufferCapacityMonotonic(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewDynamicBuffer(backend, "array", BindingReadOnlyStorage.Usage(), testArray{items: vecs(8)})
	require.NoError(t, err)
	grown := buf.Capacity()

	res, err := buf.Write(testArray{items: vecs(1)})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)

	// Shrinking writes keep the allocation; only the live prefix is uploaded.
	assert.Equal(t, grown, buf.Capacity())
	assert.Len(t, backend.created, 1)
	assert.Equal(t, uint32(1), u32At(backend.created[0].data, 0))
}

func TestDynamicBufferOverflowLeavesBufferIntact(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewDynamicBuffer(backend, "array", BindingReadOnlyStorage.Usage(), testArray{items: vecs(2)})
	require.NoError(t, err)
	writes := backend.created[0].writes

	_, err = buf.Write(testArray{lenOverride: math.MaxInt})
	assert.ErrorIs(t, err, ErrCapacityOverflow)

	assert.Equal(t, uint64(32), buf.Capacity())
	assert.Len(t, backend.created, 1)
	assert.Equal(t, writes, backend.created[0].writes)
}

func TestDynamicBufferAllocationFailureKeepsOldHandle(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewDynamicBuffer(backend, "array", BindingReadOnlyStorage.Usage(), testArray{items: vecs(2)})
	require.NoError(t, err)

	backend.createErr = assert.AnError
	_, err = buf.Write(testArray{items: vecs(100)})
	assert.ErrorIs(t, err, ErrDeviceResourceExhausted)

	assert.False(t, backend.created[0].released)
	assert.Equal(t, uint64(32), buf.Capacity())
}
