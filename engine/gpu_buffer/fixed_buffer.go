package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// fixedSizeBuffer is the unexported implementation of FixedSizeBuffer.
type fixedSizeBuffer[T Value] struct {
	backend Backend
	// label is a debug label added for convenience.
	label string
	// handle is the single allocation; it is created once and never replaced.
	handle BufferHandle
	// scratch is the reused staging slice, exactly the buffer size.
	scratch []byte
}

// FixedSizeBuffer holds one value whose serialized size is fixed at creation.
// The size contract is checked once, against the initial value's layout; the
// type parameter then guarantees every later write serializes to the same
// size, so writes can never invalidate bindings and always report
// WriteUnchanged.
type FixedSizeBuffer[T Value] interface {
	GroupBuffer

	// Write overwrites the buffer contents in place.
	//
	// Parameters:
	//   - value: the value to serialize and upload
	//
	// Returns:
	//   - WriteResult: always WriteUnchanged on success
	//   - error: serialization or upload failure; contents are unspecified
	//     only after an upload failure, never after a serialization one
	Write(value T) (WriteResult, error)

	// Size returns the fixed allocation size in bytes.
	Size() uint64
}

// NewFixedSizeBuffer allocates a buffer sized for initial's layout and uploads
// initial. A layout with a tail is rejected here, at construction, rather than
// checked on every write.
//
// Parameters:
//   - backend: the device backend to allocate on
//   - label: debug label for the allocation
//   - usage: buffer usage flags, typically BindingType.Usage()
//   - initial: the first contents; its layout fixes the size
//
// Returns:
//   - FixedSizeBuffer[T]: the created buffer
//   - error: ErrSizeMismatch for tailed layouts, or allocation/upload failure
func NewFixedSizeBuffer[T Value](backend Backend, label string, usage wgpu.BufferUsage, initial T) (FixedSizeBuffer[T], error) {
	layout := initial.Layout()
	if layout.TailStride != 0 {
		return nil, fmt.Errorf("%q: layout with tail stride %d cannot back a fixed size buffer: %w", label, layout.TailStride, ErrSizeMismatch)
	}

	b := &fixedSizeBuffer[T]{
		backend: backend,
		label:   label,
		scratch: make([]byte, layout.FixedSize),
	}
	if err := EncodeValue(initial, b.scratch); err != nil {
		return nil, fmt.Errorf("%q: encoding initial value: %w", label, err)
	}

	handle, err := backend.CreateBuffer(label, layout.FixedSize, usage)
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

func (b *fixedSizeBuffer[T]) Label() string {
	return b.label
}

func (b *fixedSizeBuffer[T]) Size() uint64 {
	return b.handle.Size()
}

func (b *fixedSizeBuffer[T]) Write(value T) (WriteResult, error) {
	if err := EncodeValue(value, b.scratch); err != nil {
		return WriteUnchanged, fmt.Errorf("%q: %w", b.label, err)
	}
	if err := b.backend.WriteBuffer(b.handle, 0, b.scratch); err != nil {
		return WriteUnchanged, fmt.Errorf("%q: %w", b.label, err)
	}
	return WriteUnchanged, nil
}

func (b *fixedSizeBuffer[T]) SectionCount() int {
	return 1
}

func (b *fixedSizeBuffer[T]) WriteSections(values []Value) (WriteResult, error) {
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

func (b *fixedSizeBuffer[T]) LayoutEntries(firstBinding uint32, bindingType BindingType, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{{
		Binding:    firstBinding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: bindingType.bufferBindingType(),
		},
	}}
}

func (b *fixedSizeBuffer[T]) BindGroupEntries(firstBinding uint32) []wgpu.BindGroupEntry {
	return []wgpu.BindGroupEntry{{
		Binding: firstBinding,
		Buffer:  b.handle.Raw(),
		Offset:  0,
		Size:    wgpu.WholeSize,
	}}
}

func (b *fixedSizeBuffer[T]) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}
