package gpu_buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Member declares one buffer's place in a group: the buffer itself, how the
// shader binds it, and which stages see it. Binding indices are assigned by
// declaration order starting at zero; a multi-section buffer consumes one
// index per section.
type Member struct {
	Buffer      GroupBuffer
	BindingType BindingType
	Visibility  wgpu.ShaderStage
}

// bufferGroup is the unexported implementation of BufferGroup.
type bufferGroup struct {
	backend Backend
	// label is a debug label added for convenience.
	label   string
	members []Member
	// sectionTotal is the number of values one Write consumes, summed over
	// member section counts.
	sectionTotal int

	// The following fields are GPU allocated resources and must be released when no longer needed.

	// bindGroupLayout is created once at construction; layouts are
	// size-independent so reallocations never touch it.
	bindGroupLayout *wgpu.BindGroupLayout
	// bindGroup references the members' current buffer handles. Rebuilt only
	// when a member write reports WriteReallocated.
	bindGroup *wgpu.BindGroup

	// rebuildCount counts bind group rebuilds since construction, for
	// profiling and tests.
	rebuildCount int
}

// BufferGroup owns a set of member buffers and the bind group that exposes
// them to shaders. Writes go through the group so it can observe which
// members reallocated and rebuild the bind group lazily; when every member
// reports WriteUnchanged the existing bind group object is reused as is.
//
// Invariant: after Write returns without error, the bind group references
// only live buffer handles.
type BufferGroup interface {
	// Label returns the debug label for this group.
	Label() string

	// BindGroup returns the current bind group for pass recording.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group, never nil after construction
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the group's layout for pipeline creation.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, never nil after construction
	BindGroupLayout() *wgpu.BindGroupLayout

	// Write serializes and uploads one value per member section, in member
	// declaration order. A nil value skips that section. The bind group is
	// rebuilt only if a member reallocated.
	//
	// Parameters:
	//   - values: one Value (or nil) per member section
	//
	// Returns:
	//   - WriteResult: WriteReallocated when the bind group was rebuilt
	//   - error: the first member failure; earlier members' uploads stand,
	//     and the bind group still references only live handles
	Write(values ...Value) (WriteResult, error)

	// RebuildCount returns how many times the bind group has been rebuilt.
	RebuildCount() int

	// Release frees the bind group, the layout and every member buffer.
	Release()
}

// Compile-time check that bufferGroup implements BufferGroup
var _ BufferGroup = &bufferGroup{}

// NewBufferGroup creates the bind group layout and the initial bind group for
// the given members. Member buffers must already hold their initial contents.
//
// Parameters:
//   - backend: the device backend
//   - label: debug label for the group
//   - members: the member buffers in binding order
//
// Returns:
//   - BufferGroup: the created group
//   - error: layout or bind group creation failure
func NewBufferGroup(backend Backend, label string, members []Member) (BufferGroup, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%q: buffer group needs at least one member: %w", label, ErrSizeMismatch)
	}

	g := &bufferGroup{
		backend: backend,
		label:   label,
		members: members,
	}

	var layoutEntries []wgpu.BindGroupLayoutEntry
	binding := uint32(0)
	for _, m := range members {
		layoutEntries = append(layoutEntries, m.Buffer.LayoutEntries(binding, m.BindingType, m.Visibility)...)
		binding += uint32(m.Buffer.SectionCount())
		g.sectionTotal += m.Buffer.SectionCount()
	}

	layout, err := backend.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Layout",
		Entries: layoutEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("%q: creating bind group layout: %w", label, err)
	}
	g.bindGroupLayout = layout

	if err := g.rebuild(); err != nil {
		backend.ReleaseBindGroupLayout(layout)
		return nil, err
	}
	g.rebuildCount = 0
	return g, nil
}

// rebuild creates a bind group from the members' current handles and swaps
// it in, releasing the previous one.
func (g *bufferGroup) rebuild() error {
	var entries []wgpu.BindGroupEntry
	binding := uint32(0)
	for _, m := range g.members {
		entries = append(entries, m.Buffer.BindGroupEntries(binding)...)
		binding += uint32(m.Buffer.SectionCount())
	}
	for _, e := range entries {
		if e.Buffer == nil {
			return fmt.Errorf("%q binding %d: %w", g.label, e.Binding, ErrStaleBinding)
		}
	}

	bg, err := g.backend.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   g.label,
		Layout:  g.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%q: creating bind group: %w", g.label, err)
	}

	if g.bindGroup != nil {
		g.backend.ReleaseBindGroup(g.bindGroup)
	}
	g.bindGroup = bg
	g.rebuildCount++
	return nil
}

func (g *bufferGroup) Label() string {
	return g.label
}

func (g *bufferGroup) BindGroup() *wgpu.BindGroup {
	return g.bindGroup
}

func (g *bufferGroup) BindGroupLayout() *wgpu.BindGroupLayout {
	return g.bindGroupLayout
}

func (g *bufferGroup) Write(values ...Value) (WriteResult, error) {
	if len(values) != g.sectionTotal {
		return WriteUnchanged, fmt.Errorf("%q: got %d values for %d sections: %w", g.label, len(values), g.sectionTotal, ErrSizeMismatch)
	}

	result := WriteUnchanged
	next := 0
	for _, m := range g.members {
		n := m.Buffer.SectionCount()
		r, err := m.Buffer.WriteSections(values[next : next+n])
		result = result.merge(r)
		if err != nil {
			// A member may have reallocated before failing; refresh the bind
			// group so it never points at a released handle.
			if result == WriteReallocated {
				if rerr := g.rebuild(); rerr != nil {
					return result, fmt.Errorf("%q: %w (rebuild after failed write: %v)", g.label, err, rerr)
				}
			}
			return result, fmt.Errorf("%q: %w", g.label, err)
		}
		next += n
	}

	if result == WriteReallocated {
		if err := g.rebuild(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (g *bufferGroup) RebuildCount() int {
	return g.rebuildCount
}

func (g *bufferGroup) Release() {
	if g.bindGroup != nil {
		g.backend.ReleaseBindGroup(g.bindGroup)
		g.bindGroup = nil
	}
	if g.bindGroupLayout != nil {
		g.backend.ReleaseBindGroupLayout(g.bindGroupLayout)
		g.bindGroupLayout = nil
	}
	for _, m := range g.members {
		if m.Buffer != nil {
			m.Buffer.Release()
		}
	}
}
