package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds GLFW-specific window data for cross-platform support.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// newPlatformWindow creates a GLFW window and registers the event callbacks.
// The window is created without an OpenGL context since the surface is driven
// through WebGPU.
func newPlatformWindow(w *engineWindow) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			if key == glfw.KeyEscape {
				win.SetShouldClose(true)
				return
			}
			if w.onKeyDown != nil {
				w.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(uint32(key))
			}
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonRight {
			return
		}
		x, y := win.GetCursorPos()
		switch action {
		case glfw.Press:
			if w.onRightMouseDown != nil {
				w.onRightMouseDown(int32(x), int32(y))
			}
		case glfw.Release:
			if w.onRightMouseUp != nil {
				w.onRightMouseUp(int32(x), int32(y))
			}
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(int32(x), int32(y))
		}
	})

	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if w.onFocus != nil {
			w.onFocus(focused)
		}
	})

	return nil
}

// platformGetSurfaceDescriptor returns the wgpu surface descriptor for the
// underlying GLFW window via the wgpuglfw bridge.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.window == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformProcessMessages pumps pending GLFW events.
// Returns false when the window has been asked to close.
func platformProcessMessages(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || !gw.running {
		return false
	}

	glfw.PollEvents()

	if gw.window.ShouldClose() {
		gw.running = false
		return false
	}

	return true
}

// platformIsRunningCheck reports whether the GLFW window is still active.
func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

// platformSetTitle updates the native window title.
func platformSetTitle(w *engineWindow, title string) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.window == nil {
		return
	}
	gw.window.SetTitle(title)
}

// platformCloseWindow destroys the GLFW window and terminates GLFW.
func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return fmt.Errorf("window not initialized")
	}

	gw.running = false
	if gw.window != nil {
		gw.window.Destroy()
		gw.window = nil
	}
	glfw.Terminate()

	return nil
}
