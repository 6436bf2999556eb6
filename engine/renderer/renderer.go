package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/raygrid/raygrid/engine/gpu_buffer"
	"github.com/raygrid/raygrid/engine/renderer/pipeline"
	"github.com/raygrid/raygrid/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingClearColor    *wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines keyed by pipeline key, and owns the device, queue and
// surface through a backend, which allows for multiple backend API implementations to exist.
//
// Frame ordering contract: all buffer group writes for a frame must complete
// before BeginFrame, because the render pass records bind group references.
// A typical frame is: write groups, BeginFrame, DrawCall, EndFrame, Present.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails, including shader and
	//     bind group layout mismatches
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BufferBackend returns the gpu_buffer backend bound to the renderer's
	// device and queue, for creating buffers and buffer groups.
	//
	// Returns:
	//   - gpu_buffer.Backend: the buffer backend
	BufferBackend() gpu_buffer.Backend

	// BeginFrame acquires the next surface texture and begins the render pass.
	//
	// Returns:
	//   - bool: false when the frame should be skipped; the surface was
	//     reconfigured and the next frame will retry
	//   - error: a fatal surface condition
	BeginFrame() (bool, error)

	// DrawCall encodes a single draw within the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline
	//   - bindGroups: bind groups set at indices 0..n in order
	//   - vertexCount: the number of vertices to draw
	//   - instanceCount: the number of instances to draw
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DrawCall(pipelineKey string, bindGroups []*wgpu.BindGroup, vertexCount, instanceCount uint32) error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// BeginComputeFrame creates a command encoder for batching
	// DispatchCompute calls for the frame.
	BeginComputeFrame() error

	// DispatchCompute encodes a compute pass within the current batched compute frame.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline
	//   - bindGroup: the bind group at index 0
	//   - workGroupCount: the workgroup counts in x, y, z
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DispatchCompute(pipelineKey string, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32) error

	// EndComputeFrame finishes the compute command encoder and submits to the GPU queue.
	EndComputeFrame()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and window.
// The window provides the platform-specific surface descriptor for surface creation.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BufferBackend() gpu_buffer.Backend {
	return r.backend.BufferBackend()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) BeginFrame() (bool, error) {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, bindGroups []*wgpu.BindGroup, vertexCount, instanceCount uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, bindGroups, vertexCount, instanceCount)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) BeginComputeFrame() error {
	return r.backend.BeginComputeFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("compute pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DispatchCompute(p, bindGroup, workGroupCount)
	return nil
}

func (r *renderer) EndComputeFrame() {
	r.backend.EndComputeFrame()
}
