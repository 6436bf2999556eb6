package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerEmpty(t *testing.T) {
	p := NewProfiler()

	assert.Zero(t, p.SampleCount())
	assert.Zero(t, p.AverageFrameTime())
	assert.Zero(t, p.FPS())
}

func TestProfilerAverage(t *testing.T) {
	p := NewProfiler()

	p.Sample(10 * time.Millisecond)
	p.Sample(20 * time.Millisecond)

	assert.Equal(t, 2, p.SampleCount())
	assert.Equal(t, 15*time.Millisecond, p.AverageFrameTime())
}

func TestProfilerRollingWindowEvictsOldest(t *testing.T) {
	p := NewProfilerWithWindow(4)

	// Fill with slow frames, then overwrite the window with fast ones.
	for i := 0; i < 4; i++ {
		p.Sample(100 * time.Millisecond)
	}
	for i := 0; i < 4; i++ {
		p.Sample(10 * time.Millisecond)
	}

	assert.Equal(t, 4, p.SampleCount())
	assert.Equal(t, 10*time.Millisecond, p.AverageFrameTime())
}

func TestProfilerFPS(t *testing.T) {
	p := NewProfiler()

	for i := 0; i < 20; i++ {
		p.Sample(time.Second / 60)
	}

	assert.InDelta(t, 60.0, p.FPS(), 0.1)
}

func TestProfilerWindowSizeFallback(t *testing.T) {
	p := NewProfilerWithWindow(0)

	for i := 0; i < 25; i++ {
		p.Sample(time.Millisecond)
	}
	assert.Equal(t, 20, p.SampleCount())
}
