package camera

import (
	"github.com/raygrid/raygrid/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's initial world-space position.
//
// Parameters:
//   - position: the initial position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position common.Vector2) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithViewHeight sets the initial vertical view extent in world units.
//
// Parameters:
//   - viewHeight: the view height (must be positive)
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's view height
func WithViewHeight(viewHeight float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if viewHeight > 0 {
			c.viewHeight = viewHeight
		}
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithMoveSpeed sets the movement speed in view heights per second.
//
// Parameters:
//   - speed: the movement speed (must be positive)
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's movement speed
func WithMoveSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if speed > 0 {
			c.moveSpeed = speed
		}
	}
}

// WithZoomFactor sets the per-notch zoom factor. Each scroll notch toward the
// user multiplies the view height by this factor.
//
// Parameters:
//   - factor: the zoom factor (must be in (0, 1))
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zoom factor
func WithZoomFactor(factor float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if factor > 0 && factor < 1 {
			c.zoomFactor = factor
		}
	}
}

// WithViewHeightRange sets the minimum and maximum view heights the zoom is
// clamped to.
//
// Parameters:
//   - minHeight: the minimum view height (must be positive)
//   - maxHeight: the maximum view height (must be greater than minHeight)
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zoom range
func WithViewHeightRange(minHeight, maxHeight float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minHeight > 0 && maxHeight > minHeight {
			c.minViewHeight = minHeight
			c.maxViewHeight = maxHeight
		}
	}
}
