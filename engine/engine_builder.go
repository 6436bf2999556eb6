package engine

import (
	"time"

	"github.com/raygrid/raygrid/engine/scene"
	"github.com/raygrid/raygrid/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window the engine drives its loop on. Required.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene the engine updates and renders. Required.
//
// Parameters:
//   - s: the Scene to attach
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithProfiling enables or disables the FPS readout in the window title.
//
// Parameters:
//   - enabled: if true, enables the readout
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithBaseTitle sets the title text the FPS readout is appended to.
// Defaults to empty, which leaves the window title bare.
//
// Parameters:
//   - title: the base window title
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBaseTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.baseTitle = title
	}
}

// WithFrameLimit caps the loop at the given frame rate.
// Values <= 0 leave the loop uncapped (the default).
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.frameLimit = time.Duration(float64(time.Second) / fps)
		}
	}
}
