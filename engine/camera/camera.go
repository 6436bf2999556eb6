package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/raygrid/raygrid/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position   common.Vector2
	viewHeight float32
	aspect     float32

	moveSpeed  float32
	zoomFactor float32

	minViewHeight float32
	maxViewHeight float32

	// Held movement keys, cleared on focus loss.
	movingUp    bool
	movingDown  bool
	movingLeft  bool
	movingRight bool

	// Right-drag pan state.
	panning    bool
	panAnchorX int32
	panAnchorY int32
}

// Camera defines the interface for the 2D world camera.
// The camera holds a world-space position and a vertical view extent (how many
// world units are visible top to bottom). Zoom shrinks or grows the view extent,
// movement keys translate the position each Update, and right-drag pans directly.
type Camera interface {
	// Position returns the camera's world-space center position.
	//
	// Returns:
	//   - common.Vector2: the camera position
	Position() common.Vector2

	// ViewHeight returns the vertical view extent in world units.
	//
	// Returns:
	//   - float32: the view height
	ViewHeight() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetPosition sets the camera's world-space center position.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position common.Vector2)

	// SetAspect sets the aspect ratio (width / height).
	// Called from the window resize handler.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// HandleKeyDown marks a movement key as held.
	// Unrecognized key codes are ignored.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	HandleKeyDown(keyCode uint32)

	// HandleKeyUp marks a movement key as released.
	// Unrecognized key codes are ignored.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	HandleKeyUp(keyCode uint32)

	// ClearInput releases all held movement keys and stops any active pan.
	// Called when the window loses focus so keys do not stick.
	ClearInput()

	// Zoom applies a scroll step. Positive steps zoom in (shrink the view),
	// negative steps zoom out. The view height is clamped to the configured range.
	//
	// Parameters:
	//   - steps: scroll wheel delta in notches
	Zoom(steps float32)

	// BeginPan starts a right-drag pan from the given cursor position.
	//
	// Parameters:
	//   - x, y: cursor position in pixels
	BeginPan(x, y int32)

	// Pan continues an active pan to the given cursor position, translating
	// the camera by the world-space equivalent of the cursor delta.
	// Does nothing when no pan is active.
	//
	// Parameters:
	//   - x, y: cursor position in pixels
	//   - windowHeight: window client area height in pixels, used to convert pixels to world units
	Pan(x, y int32, windowHeight int)

	// EndPan stops an active right-drag pan.
	EndPan()

	// Update advances the camera by one frame. Held movement keys translate
	// the position at the configured speed, with diagonal movement normalized
	// so it is no faster than axis-aligned movement. Movement scales with the
	// view height so the camera covers screen space at a constant rate.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame in seconds
	Update(dt float32)

	// GPU returns the camera's GPU uniform representation for the current state.
	//
	// Returns:
	//   - GPUCamera: the uniform value
	GPU() GPUCamera
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:            &sync.Mutex{},
		viewHeight:    10.0,
		aspect:        1.0,
		moveSpeed:     2.0,
		zoomFactor:    0.9,
		minViewHeight: 0.5,
		maxViewHeight: 500.0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() common.Vector2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) ViewHeight() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewHeight
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetPosition(position common.Vector2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
}

func (c *cameraImpl) HandleKeyDown(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setKey(keyCode, true)
}

func (c *cameraImpl) HandleKeyUp(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setKey(keyCode, false)
}

func (c *cameraImpl) ClearInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movingUp = false
	c.movingDown = false
	c.movingLeft = false
	c.movingRight = false
	c.panning = false
}

func (c *cameraImpl) Zoom(steps float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if steps == 0 {
		return
	}
	c.viewHeight *= math32.Pow(c.zoomFactor, steps)
	c.viewHeight = common.Clamp(c.viewHeight, c.minViewHeight, c.maxViewHeight)
}

func (c *cameraImpl) BeginPan(x, y int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panning = true
	c.panAnchorX = x
	c.panAnchorY = y
}

func (c *cameraImpl) Pan(x, y int32, windowHeight int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.panning || windowHeight <= 0 {
		return
	}

	// World units per pixel at the current zoom level.
	unitsPerPixel := c.viewHeight / float32(windowHeight)

	dx := float32(x-c.panAnchorX) * unitsPerPixel
	dy := float32(y-c.panAnchorY) * unitsPerPixel

	// Dragging right moves the world right, so the camera moves left.
	// Screen Y grows downward, world Y grows upward.
	c.position.X -= dx
	c.position.Y += dy

	c.panAnchorX = x
	c.panAnchorY = y
}

func (c *cameraImpl) EndPan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panning = false
}

func (c *cameraImpl) Update(dt float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dir common.Vector2
	if c.movingUp {
		dir.Y += 1
	}
	if c.movingDown {
		dir.Y -= 1
	}
	if c.movingLeft {
		dir.X -= 1
	}
	if c.movingRight {
		dir.X += 1
	}
	if dir.X == 0 && dir.Y == 0 {
		return
	}

	// Speed scales with the view height so panning feels the same at every zoom.
	step := dir.Normalized().Scale(c.moveSpeed * c.viewHeight * dt)
	c.position = c.position.Add(step)
}

func (c *cameraImpl) GPU() GPUCamera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCamera{
		Position:   c.position,
		HalfHeight: c.viewHeight * 0.5,
		Aspect:     c.aspect,
	}
}

// setKey updates a movement flag for the given key code.
// Caller must hold the mutex.
func (c *cameraImpl) setKey(keyCode uint32, down bool) {
	switch keyCode {
	case common.KeyW:
		c.movingUp = down
	case common.KeyS:
		c.movingDown = down
	case common.KeyA:
		c.movingLeft = down
	case common.KeyD:
		c.movingRight = down
	}
}
