package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 5))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 7, Coalesce(7))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1.0), Clamp(float32(0.5), 1.0, 2.0))
	assert.Equal(t, float32(2.0), Clamp(float32(3.5), 1.0, 2.0))
	assert.Equal(t, float32(1.5), Clamp(float32(1.5), 1.0, 2.0))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}
