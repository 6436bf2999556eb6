package gpu_buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raygrid/raygrid/common"
)

func TestFixedSizeBufferRejectsTailedLayout(t *testing.T) {
	backend := newFakeBackend()

	_, err := NewFixedSizeBuffer(backend, "tailed", BindingUniform.Usage(), testArray{})
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Empty(t, backend.created)
}

func TestFixedSizeBufferWrite(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewFixedSizeBuffer(backend, "uniform", BindingUniform.Usage(), testUniform{pos: common.Vec2(1, 2), a: 3, b: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(16), buf.Size())
	require.Len(t, backend.created, 1)

	handle := backend.created[0]
	assert.Equal(t, float32(1), f32At(handle.data, 0))
	assert.Equal(t, float32(4), f32At(handle.data, 12))

	res, err := buf.Write(testUniform{pos: common.Vec2(5, 6), a: 7, b: 8})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)

	// In-place overwrite: still the single original allocation.
	assert.Len(t, backend.created, 1)
	assert.Equal(t, float32(5), f32At(handle.data, 0))
	assert.Equal(t, float32(8), f32At(handle.data, 12))
}

func TestFixedSizeBufferWriteSections(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewFixedSizeBuffer(backend, "uniform", BindingUniform.Usage(), testUniform{})
	require.NoError(t, err)
	assert.Equal(t, 1, buf.SectionCount())

	res, err := buf.WriteSections([]Value{testUniform{a: 9}})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)
	assert.Equal(t, float32(9), f32At(backend.created[0].data, 8))

	// Nil skips the write entirely.
	writes := backend.created[0].writes
	res, err = buf.WriteSections([]Value{nil})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)
	assert.Equal(t, writes, backend.created[0].writes)

	// A mismatched value type cannot satisfy the size contract.
	_, err = buf.WriteSections([]Value{testArray{}})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestFixedSizeBufferEncodeOverflowLeavesBufferUntouched(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewFixedSizeBuffer(backend, "uniform", BindingUniform.Usage(), testUniform{a: 1})
	require.NoError(t, err)
	writes := backend.created[0].writes

	_, err = buf.Write(testUniform{a: 2, overrun: true})
	assert.ErrorIs(t, err, ErrLayoutOverflow)

	// No upload happened and the previous contents are still live.
	assert.Equal(t, writes, backend.created[0].writes)
	assert.Equal(t, float32(1), f32At(backend.created[0].data, 8))
}

func TestFixedSizeBufferRelease(t *testing.T) {
	backend := newFakeBackend()

	buf, err := NewFixedSizeBuffer(backend, "uniform", BindingUniform.Usage(), testUniform{})
	require.NoError(t, err)

	buf.Release()
	assert.True(t, backend.created[0].released)
}
