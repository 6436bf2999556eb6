package gpu_buffer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferHandle is an opaque handle to one device buffer allocation. A handle
// has exactly one owner; growth replaces the handle rather than resizing it,
// and the old handle is released once nothing references it.
type BufferHandle interface {
	// Raw returns the underlying device buffer for bind-group entries and
	// command recording.
	Raw() *wgpu.Buffer

	// Size returns the allocation size in bytes.
	Size() uint64

	// Release frees the device allocation. The handle must not be used after.
	Release()
}

// Backend abstracts the device operations the buffer layer needs. The
// production implementation wraps a wgpu device and queue; tests substitute
// an in-memory fake to observe allocation and rebuild behavior without a GPU.
type Backend interface {
	// Limits returns the device limits in effect. Buffer packing reads
	// MinStorageBufferOffsetAlignment from here rather than assuming a
	// constant.
	Limits() wgpu.Limits

	// CreateBuffer allocates a device buffer of exactly size bytes.
	//
	// Parameters:
	//   - label: debug label for the allocation
	//   - size: allocation size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - BufferHandle: the new allocation
	//   - error: wraps ErrDeviceResourceExhausted when the device refuses
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (BufferHandle, error)

	// WriteBuffer uploads data into handle at the given byte offset via the
	// device queue.
	WriteBuffer(handle BufferHandle, offset uint64, data []byte) error

	// CreateBindGroupLayout creates a bind group layout. Layouts depend only
	// on binding types and visibility, never on buffer sizes, so one layout
	// outlives any number of reallocations.
	CreateBindGroupLayout(descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup creates a bind group from current buffer handles.
	CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// ReleaseBindGroup frees a bind group created by this backend.
	ReleaseBindGroup(bg *wgpu.BindGroup)

	// ReleaseBindGroupLayout frees a bind group layout created by this backend.
	ReleaseBindGroupLayout(bgl *wgpu.BindGroupLayout)
}
