package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raygrid/raygrid/engine/logger"
	"github.com/raygrid/raygrid/engine/profiler"
	"github.com/raygrid/raygrid/engine/scene"
	"github.com/raygrid/raygrid/engine/window"
)

// engine implements the Engine interface.
// Runs the whole frame lifecycle on the window's message loop thread: events
// are polled, the scene updates, and the frame renders in strict sequence.
type engine struct {
	window window.Window
	scene  scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	baseTitle  string
	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time

	// quitting may be set from any goroutine; the frame loop polls it.
	quitting atomic.Bool
	quitOnce sync.Once // Ensures quit is only signaled once
}

// Engine is the main entry point. It wires window input events to the scene
// and drives one Update/Render cycle per message loop iteration, all on a
// single thread; GPU work within a frame is synchronous.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the attached scene.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// EnableProfiler enables the FPS readout in the window title.
	EnableProfiler()

	// DisableProfiler disables the FPS readout.
	DisableProfiler()

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run starts the main loop and blocks until the window closes or Quit is
	// called. Releases the scene's GPU resources before returning.
	Run()

	// Quit asks the loop to stop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine and wires the window's input callbacks to
// the scene's frame-driver handlers. Window and scene are both required and
// NewEngine panics if either is missing after options are applied.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: NewEngine requires a window (use WithWindow)")
	}
	if e.scene == nil {
		panic("engine: NewEngine requires a scene (use WithScene)")
	}

	e.window.SetResizeCallback(e.scene.Resize)
	e.window.SetKeyDownCallback(e.scene.HandleKeyDown)
	e.window.SetKeyUpCallback(e.scene.HandleKeyUp)
	e.window.SetScrollCallback(e.scene.HandleMouseScroll)
	e.window.SetRightMouseDownCallback(e.scene.HandleRightMouseDown)
	e.window.SetRightMouseUpCallback(e.scene.HandleRightMouseUp)
	e.window.SetMouseMoveCallback(e.scene.HandleMouseMove)
	e.window.SetFocusCallback(e.scene.HandleFocusChange)
	e.window.SetUpdateCallback(e.frame)

	// The window reports its initial size through the resize path so the
	// surface and camera aspect start consistent.
	e.scene.Resize(e.window.Width(), e.window.Height())

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.window.SetTitle(e.baseTitle)
}

func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() {
	logger.Info("engine starting", "profiling", e.profilingEnabled, "frame_limit", e.frameLimit)
	e.lastFrame = time.Now()
	e.window.ProcessMessages()
	e.scene.Release()
	logger.Info("engine stopped")
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.quitting.Store(true)
	})
}

// frame runs once per message loop iteration, after events are polled.
func (e *engine) frame() {
	if e.quitting.Load() {
		if err := e.window.Close(); err != nil {
			logger.Error("failed to close window", "error", err)
		}
		return
	}

	now := time.Now()
	dt := now.Sub(e.lastFrame)
	e.lastFrame = now

	e.scene.Update(float32(dt.Seconds()))

	if err := e.scene.Render(); err != nil {
		logger.Error("render failed", "error", err)
		e.Quit()
		return
	}

	e.profiler.Sample(dt)
	if e.profilingEnabled && e.profiler.SampleCount() > 0 {
		e.window.SetTitle(fmt.Sprintf("%s | %.0f FPS", e.baseTitle, e.profiler.FPS()))
	}

	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}
