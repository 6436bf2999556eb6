package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/raygrid/raygrid/common"
)

// fakeHandle records writes in memory so tests can decode what a buffer
// uploaded without a device.
type fakeHandle struct {
	label    string
	size     uint64
	raw      *wgpu.Buffer
	data     []byte
	released bool
	writes   int
}

var _ BufferHandle = &fakeHandle{}

func (h *fakeHandle) Raw() *wgpu.Buffer {
	return h.raw
}

func (h *fakeHandle) Size() uint64 {
	return h.size
}

func (h *fakeHandle) Release() {
	h.released = true
}

// fakeBackend implements Backend in memory, counting allocations and bind
// group churn.
type fakeBackend struct {
	limits wgpu.Limits

	created   []*fakeHandle
	createErr error

	layouts          int
	bindGroups       int
	releasedGroups   int
	releasedLayouts  int
	lastGroupEntries []wgpu.BindGroupEntry
}

var _ Backend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		limits: wgpu.Limits{MinStorageBufferOffsetAlignment: 256},
	}
}

func (b *fakeBackend) Limits() wgpu.Limits {
	return b.limits
}

func (b *fakeBackend) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (BufferHandle, error) {
	if b.createErr != nil {
		return nil, fmt.Errorf("%q: %d bytes: %w: %v", label, size, ErrDeviceResourceExhausted, b.createErr)
	}
	h := &fakeHandle{
		label: label,
		size:  size,
		raw:   &wgpu.Buffer{},
		data:  make([]byte, size),
	}
	b.created = append(b.created, h)
	return h, nil
}

func (b *fakeBackend) WriteBuffer(handle BufferHandle, offset uint64, data []byte) error {
	h := handle.(*fakeHandle)
	if h.released {
		return fmt.Errorf("write to released buffer %q", h.label)
	}
	copy(h.data[offset:], data)
	h.writes++
	return nil
}

func (b *fakeBackend) CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	b.layouts++
	return &wgpu.BindGroupLayout{}, nil
}

func (b *fakeBackend) CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	b.bindGroups++
	b.lastGroupEntries = append([]wgpu.BindGroupEntry(nil), descriptor.Entries...)
	return &wgpu.BindGroup{}, nil
}

func (b *fakeBackend) ReleaseBindGroup(bg *wgpu.BindGroup) {
	b.releasedGroups++
}

func (b *fakeBackend) ReleaseBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	b.releasedLayouts++
}

// liveHandles returns the created handles that have not been released.
func (b *fakeBackend) liveHandles() []*fakeHandle {
	var live []*fakeHandle
	for _, h := range b.created {
		if !h.released {
			live = append(live, h)
		}
	}
	return live
}

// testUniform is a 16-byte fixed layout: vec2 position then two floats.
// overrun makes Encode write one float past the declared size.
type testUniform struct {
	pos     common.Vector2
	a, b    float32
	overrun bool
}

func (testUniform) Layout() Layout {
	return Layout{FixedSize: 16}
}

func (testUniform) TailLen() int {
	return 0
}

func (u testUniform) Encode(e *Encoder) error {
	e.PutVector2(u.pos)
	e.PutFloat32(u.a)
	e.PutFloat32(u.b)
	if u.overrun {
		e.PutFloat32(0)
	}
	return e.Err()
}

// testArray is a tailed layout: a 16-byte prefix holding the element count,
// then 8-byte vec2 elements. lenOverride, when set, is reported as the tail
// length without backing elements, for size-computation failure cases.
type testArray struct {
	items       []common.Vector2
	lenOverride int
}

func (testArray) Layout() Layout {
	return Layout{FixedSize: 16, TailStride: 8}
}

func (a testArray) TailLen() int {
	if a.lenOverride != 0 {
		return a.lenOverride
	}
	return len(a.items)
}

func (a testArray) Encode(e *Encoder) error {
	e.PutUint32(uint32(len(a.items)))
	e.Skip(12)
	for _, it := range a.items {
		e.PutVector2(it)
	}
	return e.Err()
}

// Compile-time checks that the buffer kinds satisfy GroupBuffer
var (
	_ GroupBuffer = &fixedSizeBuffer[testUniform]{}
	_ GroupBuffer = &dynamicBuffer[testArray]{}
	_ GroupBuffer = &packedBuffer{}
)
