package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// packedSection is one logical buffer inside a packed allocation.
type packedSection struct {
	// encoded is the cached serialization, reused when a write skips the
	// section.
	encoded []byte
	// offset is the section's byte offset in the allocation, aligned to the
	// device's storage offset alignment.
	offset uint64
}

// packedBuffer is the unexported implementation of PackedBuffer.
type packedBuffer struct {
	backend Backend
	// label is a debug label added for convenience.
	label string
	usage wgpu.BufferUsage
	// align is the device's minimum storage buffer offset alignment, read
	// from the backend limits at construction.
	align    uint64
	handle   BufferHandle
	sections []packedSection
	// scratch assembles all sections for a single queue write.
	scratch []byte
}

// PackedBuffer packs several logical buffers into one allocation. Each
// section after the first starts at the previous section's end rounded up to
// the device's storage offset alignment, and each section is exposed as its
// own binding with an explicit offset and size. Because binding entries embed
// those offsets and sizes, a write reports WriteReallocated whenever the
// handle was replaced or any section's offset or size changed; either way
// every bind group referencing the buffer is stale.
//
// Capacity is monotonic and growth is exact-fit, as for DynamicBuffer.
type PackedBuffer interface {
	GroupBuffer

	// Capacity returns the current allocation size in bytes.
	Capacity() uint64

	// SectionOffset returns the byte offset of section i in the allocation.
	SectionOffset(i int) uint64

	// SectionSize returns the serialized size of section i's current
	// contents.
	SectionSize(i int) uint64
}

// NewPackedBuffer allocates one buffer holding every initial value as a
// section, in argument order.
//
// Parameters:
//   - backend: the device backend to allocate on
//   - label: debug label for the allocation
//   - usage: buffer usage flags, typically BindingReadOnlyStorage.Usage()
//   - initial: one non-nil value per section
//
// Returns:
//   - PackedBuffer: the created buffer
//   - error: size overflow, allocation or upload failure
func NewPackedBuffer(backend Backend, label string, usage wgpu.BufferUsage, initial ...Value) (PackedBuffer, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("%q: packed buffer needs at least one section: %w", label, ErrSizeMismatch)
	}

	align := uint64(backend.Limits().MinStorageBufferOffsetAlignment)
	if align == 0 {
		align = 1
	}

	b := &packedBuffer{
		backend:  backend,
		label:    label,
		usage:    usage,
		align:    align,
		sections: make([]packedSection, len(initial)),
	}

	for i, v := range initial {
		if v == nil {
			return nil, fmt.Errorf("%q section %d: initial value is nil: %w", label, i, ErrSizeMismatch)
		}
		size, err := v.Layout().SizeFor(v.TailLen())
		if err != nil {
			return nil, fmt.Errorf("%q section %d: %w", label, i, err)
		}
		b.sections[i].encoded = make([]byte, size)
		if err := EncodeValue(v, b.sections[i].encoded); err != nil {
			return nil, fmt.Errorf("%q section %d: %w", label, i, err)
		}
	}

	total := b.layoutSections()
	handle, err := backend.CreateBuffer(label, total, usage)
	if err != nil {
		return nil, err
	}
	b.handle = handle

	if err := b.upload(total); err != nil {
		handle.Release()
		return nil, fmt.Errorf("%q: uploading initial sections: %w", label, err)
	}
	return b, nil
}

// packOffsets computes aligned section offsets for the given sizes and the
// resulting total packed size.
func packOffsets(sizes []uint64, align uint64) ([]uint64, uint64) {
	offsets := make([]uint64, len(sizes))
	var off uint64
	for i, size := range sizes {
		if i > 0 {
			off = AlignUp(off, align)
		}
		offsets[i] = off
		off += size
	}
	return offsets, off
}

// layoutSections assigns aligned offsets from the current encodings and
// returns the total packed size.
func (b *packedBuffer) layoutSections() uint64 {
	sizes := make([]uint64, len(b.sections))
	for i := range b.sections {
		sizes[i] = uint64(len(b.sections[i].encoded))
	}
	offsets, total := packOffsets(sizes, b.align)
	for i := range b.sections {
		b.sections[i].offset = offsets[i]
	}
	return total
}

// upload assembles every section into scratch and issues one queue write.
// Alignment gaps between sections are zero-filled.
func (b *packedBuffer) upload(total uint64) error {
	if uint64(cap(b.scratch)) < total {
		b.scratch = make([]byte, total)
	}
	b.scratch = b.scratch[:total]
	for i := range b.scratch {
		b.scratch[i] = 0
	}
	for i := range b.sections {
		copy(b.scratch[b.sections[i].offset:], b.sections[i].encoded)
	}
	return b.backend.WriteBuffer(b.handle, 0, b.scratch)
}

func (b *packedBuffer) Label() string {
	return b.label
}

func (b *packedBuffer) Capacity() uint64 {
	return b.handle.Size()
}

func (b *packedBuffer) SectionOffset(i int) uint64 {
	return b.sections[i].offset
}

func (b *packedBuffer) SectionSize(i int) uint64 {
	return uint64(len(b.sections[i].encoded))
}

func (b *packedBuffer) SectionCount() int {
	return len(b.sections)
}

func (b *packedBuffer) WriteSections(values []Value) (WriteResult, error) {
	if len(values) != len(b.sections) {
		return WriteUnchanged, fmt.Errorf("%q: got %d values for %d sections: %w", b.label, len(values), len(b.sections), ErrSizeMismatch)
	}

	// Serialize into fresh slices and lay out offsets before touching any
	// cached state, so a failing section or refused allocation leaves the
	// buffer exactly as it was.
	staged := make([][]byte, len(values))
	sizes := make([]uint64, len(values))
	changed := false
	for i, v := range values {
		if v == nil {
			sizes[i] = uint64(len(b.sections[i].encoded))
			continue
		}
		size, err := v.Layout().SizeFor(v.TailLen())
		if err != nil {
			return WriteUnchanged, fmt.Errorf("%q section %d: %w", b.label, i, err)
		}
		staged[i] = make([]byte, size)
		if err := EncodeValue(v, staged[i]); err != nil {
			return WriteUnchanged, fmt.Errorf("%q section %d: %w", b.label, i, err)
		}
		sizes[i] = size
		if size != uint64(len(b.sections[i].encoded)) {
			changed = true
		}
	}

	offsets, total := packOffsets(sizes, b.align)
	for i := range b.sections {
		if offsets[i] != b.sections[i].offset {
			changed = true
		}
	}

	result := WriteUnchanged
	if total > b.handle.Size() {
		handle, err := b.backend.CreateBuffer(b.label, total, b.usage)
		if err != nil {
			return WriteUnchanged, err
		}
		b.handle.Release()
		b.handle = handle
		result = WriteReallocated
	}
	if changed {
		result = WriteReallocated
	}

	for i := range b.sections {
		if staged[i] != nil {
			b.sections[i].encoded = staged[i]
		}
		b.sections[i].offset = offsets[i]
	}

	if err := b.upload(total); err != nil {
		return result, fmt.Errorf("%q: %w", b.label, err)
	}
	return result, nil
}

func (b *packedBuffer) LayoutEntries(firstBinding uint32, bindingType BindingType, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutEntry {
	entries := make([]wgpu.BindGroupLayoutEntry, len(b.sections))
	for i := range b.sections {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    firstBinding + uint32(i),
			Visibility: visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type: bindingType.bufferBindingType(),
			},
		}
	}
	return entries
}

func (b *packedBuffer) BindGroupEntries(firstBinding uint32) []wgpu.BindGroupEntry {
	entries := make([]wgpu.BindGroupEntry, len(b.sections))
	for i := range b.sections {
		entries[i] = wgpu.BindGroupEntry{
			Binding: firstBinding + uint32(i),
			Buffer:  b.handle.Raw(),
			Offset:  b.sections[i].offset,
			Size:    uint64(len(b.sections[i].encoded)),
		}
	}
	return entries
}

func (b *packedBuffer) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}
