package scene

import (
	_ "embed"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/raygrid/raygrid/common"
	"github.com/raygrid/raygrid/engine/camera"
	"github.com/raygrid/raygrid/engine/gpu_buffer"
	"github.com/raygrid/raygrid/engine/renderer"
	"github.com/raygrid/raygrid/engine/renderer/pipeline"
	"github.com/raygrid/raygrid/engine/renderer/shader"
)

// rayTracingShaderSource is the embedded WGSL source for the cell-grid
// ray tracer. Entry points are "vertex" and "fragment"; the camera uniform
// binds at group 0 and the chunk/material storage buffers at group 1.
//
//go:embed assets/ray_tracing.wgsl
var rayTracingShaderSource string

// Scene owns the world state (chunks, material table, camera) and the GPU
// resources that mirror it: a camera buffer group, a packed scene buffer
// group, and the ray-tracing render pipeline. It is the frame driver: the
// engine loop forwards input events and calls Update and Render once per
// frame on the same thread.
type Scene interface {
	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Chunks returns a copy of the scene's chunk list.
	//
	// Returns:
	//   - []Chunk: the current chunks
	Chunks() []Chunk

	// SetChunks replaces the scene's chunk list. The GPU buffer is updated
	// on the next Render.
	//
	// Parameters:
	//   - chunks: the new chunk list
	SetChunks(chunks []Chunk)

	// Materials returns a copy of the scene's material table.
	// Index zero is the empty material.
	//
	// Returns:
	//   - []Material: the current material table
	Materials() []Material

	// SetMaterials replaces the scene's material table. Index zero is
	// treated as empty by the shader.
	//
	// Parameters:
	//   - materials: the new material table
	SetMaterials(materials []Material)

	// Update advances the scene by one frame: moves the camera from held
	// input, schedules procedural chunk generation around the camera, and
	// merges finished chunks produced by the generation workers.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame in seconds
	Update(dt float32)

	// Render draws one frame. Buffer group writes complete before the pass
	// is recorded: camera group first, then the scene group, then
	// BeginFrame, pipeline and bind groups, a 4-vertex strip draw, submit
	// and present. A frame skipped because the surface was unavailable is
	// not an error.
	//
	// Returns:
	//   - error: a buffer write or draw failure; the frame is abandoned
	Render() error

	// Resize reconfigures the surface and updates the camera aspect ratio.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// HandleKeyDown forwards a key press to the camera.
	HandleKeyDown(keyCode uint32)

	// HandleKeyUp forwards a key release to the camera.
	HandleKeyUp(keyCode uint32)

	// HandleMouseScroll applies a zoom step to the camera.
	HandleMouseScroll(delta float32)

	// HandleRightMouseDown starts a camera pan from the given cursor position.
	HandleRightMouseDown(x, y int32)

	// HandleRightMouseUp ends an active camera pan.
	HandleRightMouseUp(x, y int32)

	// HandleMouseMove continues an active camera pan.
	HandleMouseMove(x, y int32)

	// HandleFocusChange clears held input on focus loss so keys do not
	// stick while the window is in the background.
	//
	// Parameters:
	//   - focused: true on focus gain, false on loss
	HandleFocusChange(focused bool)

	// Release frees the scene's GPU resources.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name string
	cam  camera.Camera
	r    renderer.Renderer

	chunks    []Chunk
	materials []Material

	cameraBuffer gpu_buffer.FixedSizeBuffer[camera.GPUCamera]
	sceneBuffer  gpu_buffer.PackedBuffer
	cameraGroup  gpu_buffer.BufferGroup
	sceneGroup   gpu_buffer.BufferGroup

	windowHeight int

	genWorkers int
	genRadius  int32
	genSeed    uint64
	gen        *chunkGenerator
}

var _ Scene = &scene{}

// rayTracingPipelineKey is the cache key for the scene's render pipeline.
const rayTracingPipelineKey = "ray_tracing"

// NewScene creates a Scene, allocates its GPU buffer groups, and registers
// the ray-tracing render pipeline on the renderer. Camera and renderer are
// required and NewScene panics if either is nil or GPU resource creation
// fails, matching startup error handling elsewhere in the engine.
//
// Parameters:
//   - name: debug label prefix for the scene's GPU resources
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:   &sync.Mutex{},
		name: name,
		cam:  cam,
		r:    r,
		materials: []Material{
			{}, // index 0 is empty
		},
	}
	for _, option := range options {
		option(s)
	}

	// Create the generation pool after options so WithGenerationWorkers and
	// WithChunkGeneration can override the defaults.
	if s.genRadius > 0 {
		workers := common.Coalesce(s.genWorkers, max(runtime.NumCPU()-1, 1))
		s.gen = newChunkGenerator(workers, s.genRadius, s.genSeed)
	}

	backend := r.BufferBackend()

	cameraBuffer, err := gpu_buffer.NewFixedSizeBuffer(
		backend, name+"_camera",
		gpu_buffer.BindingUniform.Usage(),
		cam.GPU(),
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create camera buffer: %v", err))
	}
	s.cameraBuffer = cameraBuffer

	cameraGroup, err := gpu_buffer.NewBufferGroup(backend, name+"_camera_group", []gpu_buffer.Member{
		{Buffer: cameraBuffer, BindingType: gpu_buffer.BindingUniform, Visibility: wgpu.ShaderStageFragment},
	})
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create camera buffer group: %v", err))
	}
	s.cameraGroup = cameraGroup

	sceneBuffer, err := gpu_buffer.NewPackedBuffer(
		backend, name+"_scene",
		gpu_buffer.BindingReadOnlyStorage.Usage(),
		GPUChunkList{Chunks: s.chunks},
		GPUMaterialList{Materials: s.materials},
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create scene buffer: %v", err))
	}
	s.sceneBuffer = sceneBuffer

	sceneGroup, err := gpu_buffer.NewBufferGroup(backend, name+"_scene_group", []gpu_buffer.Member{
		{Buffer: sceneBuffer, BindingType: gpu_buffer.BindingReadOnlyStorage, Visibility: wgpu.ShaderStageFragment},
	})
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create scene buffer group: %v", err))
	}
	s.sceneGroup = sceneGroup

	rayShader := shader.NewShader(rayTracingPipelineKey, rayTracingShaderSource)
	rayPipeline := pipeline.NewPipeline(rayTracingPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithShader(rayShader),
		pipeline.WithBindGroupLayouts(cameraGroup.BindGroupLayout(), sceneGroup.BindGroupLayout()),
	)
	if err := r.RegisterPipelines(rayPipeline); err != nil {
		panic(fmt.Sprintf("scene: failed to register ray tracing pipeline: %v", err))
	}

	return s
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *scene) Chunks() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *scene) SetChunks(chunks []Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
}

func (s *scene) Materials() []Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Material, len(s.materials))
	copy(out, s.materials)
	return out
}

func (s *scene) SetMaterials(materials []Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = materials
}

func (s *scene) Update(dt float32) {
	s.cam.Update(dt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == nil {
		return
	}

	// Request chunks around the camera, then merge whatever the workers
	// finished since the previous frame. Merging happens here, on the frame
	// thread, so Render only ever sees a consistent chunk list.
	s.gen.request(s.cam.Position(), len(s.materials))
	s.chunks = append(s.chunks, s.gen.collect()...)
}

func (s *scene) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// All buffer group writes complete before BeginFrame records the pass.
	if _, err := s.cameraGroup.Write(s.cam.GPU()); err != nil {
		return fmt.Errorf("scene %q: camera group write: %w", s.name, err)
	}
	if _, err := s.sceneGroup.Write(
		GPUChunkList{Chunks: s.chunks},
		GPUMaterialList{Materials: s.materials},
	); err != nil {
		return fmt.Errorf("scene %q: scene group write: %w", s.name, err)
	}

	ok, err := s.r.BeginFrame()
	if err != nil {
		return fmt.Errorf("scene %q: begin frame: %w", s.name, err)
	}
	if !ok {
		// Surface unavailable this frame; the renderer reconfigured and the
		// next frame retries.
		return nil
	}

	if err := s.r.DrawCall(rayTracingPipelineKey,
		[]*wgpu.BindGroup{s.cameraGroup.BindGroup(), s.sceneGroup.BindGroup()},
		4, 1,
	); err != nil {
		s.r.EndFrame()
		return fmt.Errorf("scene %q: draw: %w", s.name, err)
	}

	s.r.EndFrame()
	s.r.Present()
	return nil
}

func (s *scene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		// Minimized; keep the previous configuration.
		return
	}
	s.windowHeight = height
	s.r.Resize(width, height)
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *scene) HandleKeyDown(keyCode uint32) {
	s.cam.HandleKeyDown(keyCode)
}

func (s *scene) HandleKeyUp(keyCode uint32) {
	s.cam.HandleKeyUp(keyCode)
}

func (s *scene) HandleMouseScroll(delta float32) {
	s.cam.Zoom(delta)
}

func (s *scene) HandleRightMouseDown(x, y int32) {
	s.cam.BeginPan(x, y)
}

func (s *scene) HandleRightMouseUp(_, _ int32) {
	s.cam.EndPan()
}

func (s *scene) HandleMouseMove(x, y int32) {
	s.mu.Lock()
	h := s.windowHeight
	s.mu.Unlock()
	s.cam.Pan(x, y, h)
}

func (s *scene) HandleFocusChange(focused bool) {
	if !focused {
		s.cam.ClearInput()
	}
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != nil {
		s.gen.stop()
		s.gen = nil
	}
	if s.cameraGroup != nil {
		s.cameraGroup.Release()
		s.cameraGroup = nil
		s.cameraBuffer = nil
	}
	if s.sceneGroup != nil {
		s.sceneGroup.Release()
		s.sceneGroup = nil
		s.sceneBuffer = nil
	}
}
