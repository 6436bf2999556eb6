package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2Arithmetic(t *testing.T) {
	a := Vec2(1, 2)
	b := Vec2(3, -1)

	assert.Equal(t, Vec2(4, 1), a.Add(b))
	assert.Equal(t, Vec2(-2, 3), a.Sub(b))
	assert.Equal(t, Vec2(3, -2), a.Mul(b))
	assert.Equal(t, Vec2(2, 4), a.Scale(2))
}

func TestVector2Normalized(t *testing.T) {
	v := Vec2(3, 4).Normalized()
	assert.InDelta(t, 0.6, v.X, 1e-6)
	assert.InDelta(t, 0.8, v.Y, 1e-6)
	assert.InDelta(t, 1.0, v.Magnitude(), 1e-6)
}

func TestVector2NormalizedZero(t *testing.T) {
	assert.Equal(t, Vector2{}, Vector2{}.Normalized())
}

func TestVector3Lerp(t *testing.T) {
	a := Vec3(0, 0, 0)
	b := Vec3(2, 4, 8)

	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, Vec3(1, 2, 4), a.Lerp(b, 0.5))
}
