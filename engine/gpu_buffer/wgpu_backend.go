package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBufferHandle is the production BufferHandle over a device buffer.
type wgpuBufferHandle struct {
	buffer *wgpu.Buffer
	size   uint64
}

var _ BufferHandle = &wgpuBufferHandle{}

func (h *wgpuBufferHandle) Raw() *wgpu.Buffer {
	return h.buffer
}

func (h *wgpuBufferHandle) Size() uint64 {
	return h.size
}

func (h *wgpuBufferHandle) Release() {
	if h.buffer != nil {
		h.buffer.Release()
		h.buffer = nil
	}
}

// wgpuBackend is the production Backend over a wgpu device and queue.
type wgpuBackend struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	limits wgpu.Limits
}

var _ Backend = &wgpuBackend{}

// NewWGPUBackend wraps a device and queue as a Backend. limits must be the
// limits the device was requested with; buffer packing reads its storage
// offset alignment.
//
// Parameters:
//   - device: the wgpu device buffers are allocated on
//   - queue: the queue uploads go through
//   - limits: the limits in effect for device
//
// Returns:
//   - Backend: the production backend
func NewWGPUBackend(device *wgpu.Device, queue *wgpu.Queue, limits wgpu.Limits) Backend {
	return &wgpuBackend{
		device: device,
		queue:  queue,
		limits: limits,
	}
}

func (b *wgpuBackend) Limits() wgpu.Limits {
	return b.limits
}

func (b *wgpuBackend) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (BufferHandle, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("%q: %d bytes: %w: %v", label, size, ErrDeviceResourceExhausted, err)
	}
	return &wgpuBufferHandle{buffer: buf, size: size}, nil
}

func (b *wgpuBackend) WriteBuffer(handle BufferHandle, offset uint64, data []byte) error {
	if err := b.queue.WriteBuffer(handle.Raw(), offset, data); err != nil {
		return fmt.Errorf("queue write of %d bytes at offset %d: %w", len(data), offset, err)
	}
	return nil
}

func (b *wgpuBackend) CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return b.device.CreateBindGroupLayout(descriptor)
}

func (b *wgpuBackend) CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return b.device.CreateBindGroup(descriptor)
}

func (b *wgpuBackend) ReleaseBindGroup(bg *wgpu.BindGroup) {
	if bg != nil {
		bg.Release()
	}
}

func (b *wgpuBackend) ReleaseBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	if bgl != nil {
		bgl.Release()
	}
}
