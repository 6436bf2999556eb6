package camera

import (
	"github.com/raygrid/raygrid/common"
	"github.com/raygrid/raygrid/engine/gpu_buffer"
)

// gpuCameraSize is the encoded size of GPUCamera in bytes (std140 aligned).
const gpuCameraSize = 16

// GPUCamera is the GPU representation of the camera uniform.
// Matches the WGSL Camera struct layout exactly:
//
//	struct Camera {
//	    position: vec2<f32>,    // offset  0
//	    half_height: f32,       // offset  8
//	    aspect: f32,            // offset 12
//	}
//
// Size: 16 bytes.
type GPUCamera struct {
	Position   common.Vector2 // world-space camera center
	HalfHeight float32        // half the vertical view extent in world units
	Aspect     float32        // width / height
}

var _ gpu_buffer.Value = GPUCamera{}

// Layout returns the buffer layout of the camera uniform.
//
// Returns:
//   - gpu_buffer.Layout: fixed 16 bytes, no tail
func (g GPUCamera) Layout() gpu_buffer.Layout {
	return gpu_buffer.Layout{FixedSize: gpuCameraSize}
}

// TailLen returns the tail element count, which is always zero for a uniform.
//
// Returns:
//   - int: always 0
func (g GPUCamera) TailLen() int {
	return 0
}

// Encode writes the camera uniform into the encoder in WGSL field order.
//
// Parameters:
//   - e: the destination encoder
//
// Returns:
//   - error: encoding error if the destination is too small
func (g GPUCamera) Encode(e *gpu_buffer.Encoder) error {
	e.PutVector2(g.Position)
	e.PutFloat32(g.HalfHeight)
	e.PutFloat32(g.Aspect)
	return e.Err()
}
