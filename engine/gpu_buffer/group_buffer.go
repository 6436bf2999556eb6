package gpu_buffer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BindingType classifies how a shader reads a buffer. It determines both the
// bind group layout entry and the usage flags the allocation is created with.
type BindingType int

const (
	// BindingUniform is a uniform buffer, fixed-size, read by every invocation.
	BindingUniform BindingType = iota
	// BindingReadOnlyStorage is a read-only storage buffer, typically holding
	// a runtime-sized array.
	BindingReadOnlyStorage
	// BindingStorage is a read-write storage buffer for compute passes.
	BindingStorage
)

// bufferBindingType maps to the wgpu layout entry type.
func (t BindingType) bufferBindingType() wgpu.BufferBindingType {
	switch t {
	case BindingUniform:
		return wgpu.BufferBindingTypeUniform
	case BindingReadOnlyStorage:
		return wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return wgpu.BufferBindingTypeStorage
	}
}

// Usage returns the buffer usage flags for allocations bound as t. Growth
// reuses these flags so a reallocated buffer is indistinguishable from the
// original apart from its size.
func (t BindingType) Usage() wgpu.BufferUsage {
	switch t {
	case BindingUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}
}

// GroupBuffer is the surface a BufferGroup needs from its member buffers.
// A member occupies SectionCount consecutive binding indices; fixed-size and
// dynamic buffers occupy one, a packed buffer one per section.
type GroupBuffer interface {
	// Label returns the debug label for this buffer.
	Label() string

	// SectionCount returns how many binding indices this buffer occupies in
	// a group, and how many values one group write consumes for it.
	SectionCount() int

	// WriteSections uploads one value per section. A nil value skips that
	// section, keeping its previous contents. len(values) must equal
	// SectionCount.
	//
	// Returns:
	//   - WriteResult: WriteReallocated when any binding entry went stale
	//   - error: serialization or allocation failure; the buffer keeps its
	//     previous contents
	WriteSections(values []Value) (WriteResult, error)

	// LayoutEntries returns the bind group layout entries for this buffer's
	// sections, starting at firstBinding. Layout entries are size-independent.
	LayoutEntries(firstBinding uint32, bindingType BindingType, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutEntry

	// BindGroupEntries returns bind group entries referencing the current
	// handle, starting at firstBinding. Called again after every rebuild.
	BindGroupEntries(firstBinding uint32) []wgpu.BindGroupEntry

	// Release frees the device allocation.
	Release()
}
