package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// dynamicBuffer is the unexported implementation of DynamicBuffer.
type dynamicBuffer[T Value] struct {
	backend Backend
	// label is a debug label added for convenience.
	label string
	// usage is captured at construction; replacement allocations reuse it so
	// growth changes nothing but the size.
	usage wgpu.BufferUsage
	// handle is the current allocation, replaced on growth.
	handle BufferHandle
	// scratch is the reused staging slice; it grows with the buffer.
	scratch []byte
}

// DynamicBuffer holds one tailed value whose serialized size varies per
// write. Capacity grows exact-fit and never shrinks; shrinking writes reuse
// the allocation and upload only the live prefix. Growth replaces the handle,
// so callers must treat a WriteReallocated result as invalidating every bind
// group that referenced the buffer.
//
// Exact-fit growth mirrors the write path of the upstream buffer design:
// chunk counts in this engine change rarely and by small steps, so reserve
// headroom would sit unused. The policy is confined to Write and can be
// swapped without touching callers.
type DynamicBuffer[T Value] interface {
	GroupBuffer

	// Write serializes value and uploads it, growing the allocation when the
	// serialized size exceeds the current capacity.
	//
	// Returns:
	//   - WriteResult: WriteReallocated when the handle was replaced
	//   - error: on size overflow or allocation failure the previous
	//     allocation and contents remain fully intact
	Write(value T) (WriteResult, error)

	// Capacity returns the current allocation size in bytes. It is
	// monotonically non-decreasing over the buffer's lifetime.
	Capacity() uint64
}

// NewDynamicBuffer allocates a buffer exactly sized for initial and uploads
// it.
//
// Parameters:
//   - backend: the device backend to allocate on
//   - label: debug label for the allocation
//   - usage: buffer usage flags, typically BindingType.Usage()
//   - initial: the first contents; its serialized size is the initial capacity
//
// Returns:
//   - DynamicBuffer[T]: the created buffer
//   - error: size overflow, allocation or upload failure
func NewDynamicBuffer[T Value](backend Backend, label string, usage wgpu.BufferUsage, initial T) (DynamicBuffer[T], error) {
	size, err := initial.Layout().SizeFor(initial.TailLen())
	if err != nil {
		return nil, fmt.Errorf("%q: %w", label, err)
	}

	b := &dynamicBuffer[T]{
		backend: backend,
		label:   label,
		usage:   usage,
		scratch: make([]byte, size),
	}
	if err := EncodeValue(initial, b.scratch); err != nil {
		return nil, fmt.Errorf("%q: encoding initial value: %w", label, err)
	}

	handle, err := backend.CreateBuffer(label, size, usage)
	if err != nil {
		return nil, err
	}
	b.handle = handle

	if err := backend.WriteBuffer(handle, 0, b.scratch); err != nil {
		handle.Release()
		return nil, fmt.Errorf("%q: uploading initial value: %w", label, err)
	}
	return b, nil
}

func (b *dynamicBuffer[T]) Label() string {
	return b.label
}

func (b *dynamicBuffer[T]) Capacity() uint64 {
	return b.handle.Size()
}

func (b *dynamicBuffer[T]) Write(value T) (WriteResult, error) {
	// Size first: an overflowing count fails here with nothing observable.
	size, err := value.Layout().SizeFor(value.TailLen())
	if err != nil {
		return WriteUnchanged, fmt.Errorf("%q: %w", b.label, err)
	}

	if uint64(cap(b.scratch)) < size {
		b.scratch = make([]byte, size)
	}
	b.scratch = b.scratch[:size]
	if err := EncodeValue(value, b.scratch); err != nil {
		return WriteUnchanged, fmt.Errorf("%q: %w", b.label, err)
	}

	result := WriteUnchanged
	if size > b.handle.Size() {
		// Exact fit, same usage. The old handle is released only after the
		// replacement exists, so a refused allocation leaves it valid.
		handle, err := b.backend.CreateBuffer(b.label, size, b.usage)
		if err != nil {
			return WriteUnchanged, err
		}
		b.handle.Release()
		b.handle = handle
		result = WriteReallocated
	}

	if err := b.backend.WriteBuffer(b.handle, 0, b.scratch); err != nil {
		return result, fmt.Errorf("%q: %w", b.label, err)
	}
	return result, nil
}

func (b *dynamicBuffer[T]) SectionCount() int {
	return 1
}

func (b *dynamicBuffer[T]) WriteSections(values []Value) (WriteResult, error) {
	if len(values) != 1 {
		return WriteUnchanged, fmt.Errorf("%q: got %d values for 1 section: %w", b.label, len(values), ErrSizeMismatch)
	}
	if values[0] == nil {
		return WriteUnchanged, nil
	}
	value, ok := values[0].(T)
	if !ok {
		return WriteUnchanged, fmt.Errorf("%q: value type %T does not match buffer element type: %w", b.label, values[0], ErrSizeMismatch)
	}
	return b.Write(value)
}

func (b *dynamicBuffer[T]) LayoutEntries(firstBinding uint32, bindingType BindingType, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{{
		Binding:    firstBinding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: bindingType.bufferBindingType(),
		},
	}}
}

func (b *dynamicBuffer[T]) BindGroupEntries(firstBinding uint32) []wgpu.BindGroupEntry {
	return []wgpu.BindGroupEntry{{
		Binding: firstBinding,
		Buffer:  b.handle.Raw(),
		Offset:  0,
		Size:    wgpu.WholeSize,
	}}
}

func (b *dynamicBuffer[T]) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}
