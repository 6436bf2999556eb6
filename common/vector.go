package common

import (
	"github.com/chewxy/math32"
)

// Vector2 is a plain 2D float32 vector with component-wise arithmetic.
// It is the element type serialized into GPU buffers for positions and
// UV-space coordinates; it carries no invariants beyond vector algebra.
type Vector2 struct {
	X, Y float32
}

// Vec2 constructs a Vector2 from its components.
//
// Parameters:
//   - x, y: the vector components
//
// Returns:
//   - Vector2: the constructed vector
func Vec2(x, y float32) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns the component-wise sum v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul returns the component-wise product v * o.
func (v Vector2) Mul(o Vector2) Vector2 {
	return Vector2{X: v.X * o.X, Y: v.Y * o.Y}
}

// Scale returns v with both components multiplied by s.
func (v Vector2) Scale(s float32) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Magnitude2 returns the squared length of v. Cheaper than Magnitude
// when only comparing against a threshold.
func (v Vector2) Magnitude2() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Magnitude returns the length of v.
func (v Vector2) Magnitude() float32 {
	return math32.Sqrt(v.Magnitude2())
}

// Normalized returns v scaled to unit length. The zero vector is
// returned unchanged.
func (v Vector2) Normalized() Vector2 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Scale(1 / m)
}

// Vector3 is a plain 3D float32 vector with component-wise arithmetic,
// used as the element type for colors serialized into GPU buffers.
type Vector3 struct {
	X, Y, Z float32
}

// Vec3 constructs a Vector3 from its components.
//
// Parameters:
//   - x, y, z: the vector components
//
// Returns:
//   - Vector3: the constructed vector
func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Mul returns the component-wise product v * o.
func (v Vector3) Mul(o Vector3) Vector3 {
	return Vector3{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z}
}

// Scale returns v with all components multiplied by s.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Lerp returns the linear interpolation between v and o at parameter t.
//
// Parameters:
//   - o: the target vector
//   - t: interpolation parameter (0 = v, 1 = o)
//
// Returns:
//   - Vector3: the interpolated vector
func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	return v.Add(o.Sub(v).Scale(t))
}
