package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/raygrid/raygrid/engine/gpu_buffer"
	"github.com/raygrid/raygrid/engine/logger"
	"github.com/raygrid/raygrid/engine/renderer/pipeline"
	"github.com/raygrid/raygrid/engine/renderer/shader"
)

// wgpuRendererBackendImpl is the WebGPU implementation of the renderer backend.
type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	limits   wgpu.Limits

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)
	clearColor    wgpu.Color

	// width and height are the last configured surface size, reused when an
	// acquisition failure forces a reconfigure.
	width, height int

	// bufferBackend is the gpu_buffer backend bound to this device and queue.
	bufferBackend gpu_buffer.Backend

	// renderPassDescriptor is cached across frames; only the color attachment
	// view changes per frame.
	renderPassDescriptor *wgpu.RenderPassDescriptor

	// Per-frame state between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	computeFrameEncoder *wgpu.CommandEncoder
}

// wgpuRendererBackend defines the WebGPU specific backend interface.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the render surface for the given pixel size.
	// Must be called before the first frame and on every window resize.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// Takes effect on the next ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the render pass clears to each frame.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color wgpu.Color)

	// BufferBackend returns the gpu_buffer backend bound to this device and
	// queue, for creating buffers and buffer groups.
	//
	// Returns:
	//   - gpu_buffer.Backend: the buffer backend
	BufferBackend() gpu_buffer.Backend

	// RegisterRenderPipeline creates the GPU render pipeline object for p
	// from its shader, bind group layouts and fixed-function state.
	//
	// Returns:
	//   - error: an error if module or pipeline creation fails, including
	//     shader/bind-group layout mismatches
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the GPU compute pipeline object for p.
	//
	// Returns:
	//   - error: an error if module or pipeline creation fails
	RegisterComputePipeline(p pipeline.Pipeline) error

	// BeginFrame acquires the next surface texture, creates a command encoder
	// and begins the render pass. All buffer group writes for the frame must
	// happen before this call; the pass records references to bind groups.
	//
	// Returns:
	//   - bool: false when the frame should be skipped (surface timeout,
	//     outdated or lost; the surface has been reconfigured)
	//   - error: a fatal surface condition such as device memory exhaustion
	BeginFrame() (bool, error)

	// DrawCall encodes a single draw within the current render pass.
	//
	// Parameters:
	//   - p: the registered render pipeline to bind
	//   - bindGroups: bind groups set at indices 0..n in order
	//   - vertexCount: the number of vertices to draw
	//   - instanceCount: the number of instances to draw
	DrawCall(p pipeline.Pipeline, bindGroups []*wgpu.BindGroup, vertexCount, instanceCount uint32)

	// EndFrame ends the render pass and submits the command buffer to the GPU queue.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// BeginComputeFrame creates a command encoder for batching
	// DispatchCompute calls outside the render pass.
	BeginComputeFrame() error

	// DispatchCompute encodes a compute pass within the current batched compute frame.
	// BeginComputeFrame must be called before any DispatchCompute calls.
	//
	// Parameters:
	//   - p: the registered compute pipeline to bind
	//   - bindGroup: the bind group at index 0
	//   - workGroupCount: the workgroup counts in x, y, z
	DispatchCompute(p pipeline.Pipeline, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32)

	// EndComputeFrame finishes the compute command encoder and submits to the GPU queue.
	EndComputeFrame()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 1, G: 0, B: 1, A: 1},
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	w.limits = wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: w.limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()
	w.bufferBackend = gpu_buffer.NewWGPUBackend(w.device, w.queue, w.limits)

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configureSurfaceLocked(width, height)
}

func (b *wgpuRendererBackendImpl) configureSurfaceLocked(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.width = width
	b.height = height

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // set per-frame to the swapchain view
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(color wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = color
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = color
	}
}

func (b *wgpuRendererBackendImpl) BufferBackend() gpu_buffer.Backend {
	return b.bufferBackend
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	sh := p.Shader()
	if sh == nil || sh.EntryPoint(shader.ShaderTypeVertex) == "" || sh.EntryPoint(shader.ShaderTypeFragment) == "" {
		return errors.New("a shader with vertex and fragment entry points must be set to create a render pipeline")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module %q: %w", sh.Key(), err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: p.BindGroupLayouts(),
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout for %q: %w", p.PipelineKey(), err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: sh.EntryPoint(shader.ShaderTypeVertex),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: sh.EntryPoint(shader.ShaderTypeFragment),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline %q: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	sh := p.Shader()
	if sh == nil || sh.EntryPoint(shader.ShaderTypeCompute) == "" {
		return errors.New("a shader with a compute entry point must be set to create a compute pipeline")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create shader module %q: %w", sh.Key(), err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: p.BindGroupLayouts(),
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout for %q: %w", p.PipelineKey(), err)
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: sh.EntryPoint(shader.ShaderTypeCompute),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create compute pipeline %q: %w", p.PipelineKey(), err)
	}

	p.SetComputePipeline(created)
	return nil
}

// fatalSurfaceError reports whether a surface acquisition failure cannot be
// recovered by reconfiguring, such as device memory exhaustion.
func fatalSurfaceError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory")
}

func (b *wgpuRendererBackendImpl) BeginFrame() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return false, fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		if fatalSurfaceError(err) {
			return false, fmt.Errorf("surface acquisition: %w", err)
		}
		// Timeout, outdated or lost. Reconfigure and let the caller retry
		// next frame.
		logger.Debug("skipping frame, surface unavailable", "error", err)
		b.configureSurfaceLocked(b.width, b.height)
		return false, nil
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return false, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return false, err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return true, nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, bindGroups []*wgpu.BindGroup, vertexCount, instanceCount uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	renderPipeline := p.Pipeline().(*wgpu.RenderPipeline)
	b.framePass.SetPipeline(renderPipeline)

	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg, nil)
	}

	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) BeginComputeFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.computeFrameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) DispatchCompute(p pipeline.Pipeline, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return
	}

	computePipeline := p.Pipeline().(*wgpu.ComputePipeline)

	pass := b.computeFrameEncoder.BeginComputePass(nil)
	pass.SetPipeline(computePipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
}

func (b *wgpuRendererBackendImpl) EndComputeFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.computeFrameEncoder == nil {
		return
	}

	commandBuffer, err := b.computeFrameEncoder.Finish(nil)
	if err != nil {
		b.computeFrameEncoder.Release()
		b.computeFrameEncoder = nil
		return
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.computeFrameEncoder.Release()
	b.computeFrameEncoder = nil
}
