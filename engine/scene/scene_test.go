package scene

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raygrid/raygrid/common"
	"github.com/raygrid/raygrid/engine/camera"
	"github.com/raygrid/raygrid/engine/gpu_buffer"
	"github.com/raygrid/raygrid/engine/renderer"
	"github.com/raygrid/raygrid/engine/renderer/pipeline"
)

// fakeHandle is an in-memory buffer allocation.
type fakeHandle struct {
	raw      *wgpu.Buffer
	data     []byte
	released bool
}

func (h *fakeHandle) Raw() *wgpu.Buffer { return h.raw }
func (h *fakeHandle) Size() uint64      { return uint64(len(h.data)) }
func (h *fakeHandle) Release()          { h.released = true }

// fakeBackend satisfies gpu_buffer.Backend without a device. Events are
// appended to a log shared with fakeRenderer so tests can assert that buffer
// writes happen before the frame begins.
type fakeBackend struct {
	log        *[]string
	bindGroups int
}

func (b *fakeBackend) Limits() wgpu.Limits {
	return wgpu.Limits{MinStorageBufferOffsetAlignment: 256}
}

func (b *fakeBackend) CreateBuffer(label string, size uint64, _ wgpu.BufferUsage) (gpu_buffer.BufferHandle, error) {
	*b.log = append(*b.log, "create "+label)
	return &fakeHandle{raw: &wgpu.Buffer{}, data: make([]byte, size)}, nil
}

func (b *fakeBackend) WriteBuffer(handle gpu_buffer.BufferHandle, offset uint64, data []byte) error {
	*b.log = append(*b.log, "write")
	h := handle.(*fakeHandle)
	copy(h.data[offset:], data)
	return nil
}

func (b *fakeBackend) CreateBindGroupLayout(_ *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return &wgpu.BindGroupLayout{}, nil
}

func (b *fakeBackend) CreateBindGroup(_ *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	b.bindGroups++
	return &wgpu.BindGroup{}, nil
}

func (b *fakeBackend) ReleaseBindGroup(_ *wgpu.BindGroup)             {}
func (b *fakeBackend) ReleaseBindGroupLayout(_ *wgpu.BindGroupLayout) {}

// fakeRenderer records frame calls without touching a surface.
type fakeRenderer struct {
	backend *fakeBackend
	log     *[]string

	pipelines map[string]pipeline.Pipeline

	skipFrame bool
	beginErr  error

	drawKey       string
	drawGroups    []*wgpu.BindGroup
	drawVertices  uint32
	drawInstances uint32
	drawCalls     int

	resizedWidth  int
	resizedHeight int
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	log := make([]string, 0, 16)
	return &fakeRenderer{
		backend:   &fakeBackend{log: &log},
		log:       &log,
		pipelines: make(map[string]pipeline.Pipeline),
	}
}

func (r *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return r.pipelines[key] }

func (r *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *fakeRenderer) Resize(width, height int) {
	r.resizedWidth = width
	r.resizedHeight = height
}

func (r *fakeRenderer) SetPresentMode(_ renderer.PresentMode) {}

func (r *fakeRenderer) BufferBackend() gpu_buffer.Backend { return r.backend }

func (r *fakeRenderer) BeginFrame() (bool, error) {
	*r.log = append(*r.log, "begin")
	if r.beginErr != nil {
		return false, r.beginErr
	}
	return !r.skipFrame, nil
}

func (r *fakeRenderer) DrawCall(pipelineKey string, bindGroups []*wgpu.BindGroup, vertexCount, instanceCount uint32) error {
	if _, ok := r.pipelines[pipelineKey]; !ok {
		return fmt.Errorf("pipeline %q not found in cache", pipelineKey)
	}
	*r.log = append(*r.log, "draw")
	r.drawKey = pipelineKey
	r.drawGroups = bindGroups
	r.drawVertices = vertexCount
	r.drawInstances = instanceCount
	r.drawCalls++
	return nil
}

func (r *fakeRenderer) EndFrame() { *r.log = append(*r.log, "end") }
func (r *fakeRenderer) Present()  { *r.log = append(*r.log, "present") }

func (r *fakeRenderer) BeginComputeFrame() error { return nil }
func (r *fakeRenderer) DispatchCompute(_ string, _ *wgpu.BindGroup, _ [3]uint32) error {
	return nil
}
func (r *fakeRenderer) EndComputeFrame() {}

func testMaterials() []Material {
	return []Material{
		{},
		{Color: common.Vec3(1, 0, 0)},
		{Color: common.Vec3(0, 1, 0)},
	}
}

func TestNewSceneRegistersPipeline(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r, WithMaterials(testMaterials()))
	defer s.Release()

	p := r.Pipeline(rayTracingPipelineKey)
	require.NotNil(t, p)
	assert.Equal(t, pipeline.PipelineTypeRender, p.Type())
	assert.Len(t, p.BindGroupLayouts(), 2)
}

func TestRenderOrderWritesBeforeFrame(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r,
		WithMaterials(testMaterials()),
		WithChunks([]Chunk{{Cells: [4]uint32{1, 0, 0, 2}}}),
	)
	defer s.Release()

	*r.log = (*r.log)[:0]
	require.NoError(t, s.Render())

	// Every queue write precedes the pass; the draw is recorded between
	// begin and end, and the frame presents last.
	var sawBegin bool
	for _, ev := range *r.log {
		if ev == "begin" {
			sawBegin = true
			continue
		}
		if ev == "write" || strings.HasPrefix(ev, "create") {
			assert.False(t, sawBegin, "buffer work after BeginFrame")
		}
	}
	require.GreaterOrEqual(t, len(*r.log), 4)
	last := (*r.log)[len(*r.log)-3:]
	assert.Equal(t, []string{"draw", "end", "present"}, last)
}

func TestRenderDrawArguments(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r, WithMaterials(testMaterials()))
	defer s.Release()

	require.NoError(t, s.Render())

	assert.Equal(t, rayTracingPipelineKey, r.drawKey)
	assert.Len(t, r.drawGroups, 2)
	assert.Equal(t, uint32(4), r.drawVertices)
	assert.Equal(t, uint32(1), r.drawInstances)
}

func TestRenderSkipsUnavailableSurface(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r, WithMaterials(testMaterials()))
	defer s.Release()

	r.skipFrame = true
	require.NoError(t, s.Render())
	assert.Zero(t, r.drawCalls)
}

func TestRenderRebuildsSceneGroupOnGrowth(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r, WithMaterials(testMaterials()))
	defer s.Release()

	require.NoError(t, s.Render())
	before := r.backend.bindGroups

	// Same content again: no reallocation, no rebuild.
	require.NoError(t, s.Render())
	assert.Equal(t, before, r.backend.bindGroups)

	// A grown chunk list forces the packed buffer to reallocate and the
	// scene group to rebuild its bind group.
	chunks := make([]Chunk, 64)
	for i := range chunks {
		chunks[i] = generateChunk(chunkKey{X: int32(i)}, 1, len(testMaterials()))
	}
	s.SetChunks(chunks)
	require.NoError(t, s.Render())
	assert.Equal(t, before+1, r.backend.bindGroups)
}

func TestResizeUpdatesCameraAspect(t *testing.T) {
	r := newFakeRenderer()
	cam := camera.NewCamera()
	s := NewScene("test", cam, r, WithMaterials(testMaterials()))
	defer s.Release()

	s.Resize(1600, 800)
	assert.Equal(t, 1600, r.resizedWidth)
	assert.Equal(t, 800, r.resizedHeight)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)

	// Minimized windows keep the previous configuration.
	s.Resize(0, 0)
	assert.Equal(t, 1600, r.resizedWidth)
	assert.InDelta(t, 2.0, cam.Aspect(), 1e-6)
}

func TestFocusLossClearsHeldKeys(t *testing.T) {
	r := newFakeRenderer()
	cam := camera.NewCamera()
	s := NewScene("test", cam, r, WithMaterials(testMaterials()))
	defer s.Release()

	s.HandleKeyDown(common.KeyW)
	s.HandleFocusChange(false)
	s.Update(1.0)

	assert.Equal(t, common.Vector2{}, cam.Position())
}

func TestUpdateMergesGeneratedChunks(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("test", camera.NewCamera(), r,
		WithMaterials(testMaterials()),
		WithChunkGeneration(1, 7),
		WithGenerationWorkers(2),
	)
	defer s.Release()

	// First Update schedules the 3x3 neighborhood; later Updates merge
	// whatever the workers have finished.
	for i := 0; i < 400 && len(s.Chunks()) < 9; i++ {
		s.Update(0.016)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Len(t, s.Chunks(), 9)
}
