package gpu_buffer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raygrid/raygrid/common"
)

func newTestGroup(t *testing.T, backend *fakeBackend) (BufferGroup, FixedSizeBuffer[testUniform], DynamicBuffer[testArray]) {
	t.Helper()

	uniform, err := NewFixedSizeBuffer(backend, "camera", BindingUniform.Usage(), testUniform{})
	require.NoError(t, err)
	array, err := NewDynamicBuffer(backend, "chunks", BindingReadOnlyStorage.Usage(), testArray{items: vecs(2)})
	require.NoError(t, err)

	group, err := NewBufferGroup(backend, "Scene Bind Group", []Member{
		{Buffer: uniform, BindingType: BindingUniform, Visibility: wgpu.ShaderStageFragment},
		{Buffer: array, BindingType: BindingReadOnlyStorage, Visibility: wgpu.ShaderStageFragment},
	})
	require.NoError(t, err)
	return group, uniform, array
}

func TestBufferGroupConstruction(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)

	assert.NotNil(t, group.BindGroup())
	assert.NotNil(t, group.BindGroupLayout())
	assert.Equal(t, 1, backend.layouts)
	assert.Equal(t, 1, backend.bindGroups)
	assert.Equal(t, 0, group.RebuildCount())

	// Binding indices follow member declaration order.
	require.Len(t, backend.lastGroupEntries, 2)
	assert.Equal(t, uint32(0), backend.lastGroupEntries[0].Binding)
	assert.Equal(t, uint32(1), backend.lastGroupEntries[1].Binding)
}

func TestBufferGroupUnchangedWriteSkipsRebuild(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)
	bg := group.BindGroup()

	res, err := group.Write(testUniform{a: 1}, testArray{items: vecs(2)})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)

	// Same object, no churn.
	assert.Same(t, bg, group.BindGroup())
	assert.Equal(t, 0, group.RebuildCount())
	assert.Equal(t, 1, backend.bindGroups)
}

func TestBufferGroupGrowthRebuildsBindGroup(t *testing.T) {
	backend := newFakeBackend()
	group, _, array := newTestGroup(t, backend)
	bg := group.BindGroup()

	res, err := group.Write(testUniform{}, testArray{items: vecs(4)})
	require.NoError(t, err)
	assert.Equal(t, WriteReallocated, res)

	assert.NotSame(t, bg, group.BindGroup())
	assert.Equal(t, 1, group.RebuildCount())
	assert.Equal(t, 1, backend.releasedGroups)
	assert.Equal(t, uint64(48), array.Capacity())

	// The rebuilt group references the replacement handle, not the released one.
	live := backend.liveHandles()
	require.Len(t, live, 2)
	assert.Same(t, live[1].raw, backend.lastGroupEntries[1].Buffer)
}

func TestBufferGroupNilSkipsMember(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)

	uniformWrites := backend.created[0].writes
	res, err := group.Write(nil, testArray{items: vecs(2)})
	require.NoError(t, err)
	assert.Equal(t, WriteUnchanged, res)
	assert.Equal(t, uniformWrites, backend.created[0].writes)
}

func TestBufferGroupArityMismatch(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)

	_, err := group.Write(testUniform{})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestBufferGroupWithPackedMember(t *testing.T) {
	backend := newFakeBackend()

	packed, err := NewPackedBuffer(backend, "scene", BindingReadOnlyStorage.Usage(),
		testArray{items: vecs(2)},
		testArray{items: vecs(1)},
	)
	require.NoError(t, err)

	group, err := NewBufferGroup(backend, "Scene Bind Group", []Member{
		{Buffer: packed, BindingType: BindingReadOnlyStorage, Visibility: wgpu.ShaderStageFragment},
	})
	require.NoError(t, err)

	// One member, two consecutive bindings.
	require.Len(t, backend.lastGroupEntries, 2)
	assert.Equal(t, uint32(0), backend.lastGroupEntries[0].Binding)
	assert.Equal(t, uint32(1), backend.lastGroupEntries[1].Binding)

	// Growing one section consumes one value per section and rebuilds.
	res, err := group.Write(testArray{items: vecs(40)}, nil)
	require.NoError(t, err)
	assert.Equal(t, WriteReallocated, res)
	assert.Equal(t, 1, group.RebuildCount())
}

func TestBufferGroupRelease(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)

	group.Release()
	assert.Equal(t, 1, backend.releasedGroups)
	assert.Equal(t, 1, backend.releasedLayouts)
	assert.Empty(t, backend.liveHandles())
}

func TestBufferGroupRoundTripDecode(t *testing.T) {
	backend := newFakeBackend()
	group, _, _ := newTestGroup(t, backend)

	_, err := group.Write(
		testUniform{pos: common.Vec2(3, 4), a: 0.5, b: 2},
		testArray{items: []common.Vector2{common.Vec2(7, 8)}},
	)
	require.NoError(t, err)

	uniform := backend.created[0].data
	assert.Equal(t, float32(3), f32At(uniform, 0))
	assert.Equal(t, float32(4), f32At(uniform, 4))
	assert.Equal(t, float32(0.5), f32At(uniform, 8))
	assert.Equal(t, float32(2), f32At(uniform, 12))

	array := backend.created[1].data
	assert.Equal(t, uint32(1), u32At(array, 0))
	assert.Equal(t, float32(7), f32At(array, 16))
	assert.Equal(t, float32(8), f32At(array, 20))
}
