package profiler

import (
	"time"
)

// defaultWindowSize is the number of frame samples in the rolling window.
const defaultWindowSize = 20

// Profiler tracks frame timing over a rolling window of recent frames.
// Averaging over the window smooths out single-frame spikes so FPS readouts
// stay legible. Not safe for concurrent use; the frame loop owns it.
type Profiler struct {
	samples []time.Duration
	next    int
	filled  bool
}

// NewProfiler creates a Profiler with the default 20-sample window.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return NewProfilerWithWindow(defaultWindowSize)
}

// NewProfilerWithWindow creates a Profiler with a custom window size.
// Sizes below one fall back to the default.
//
// Parameters:
//   - size: the number of samples in the rolling window
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfilerWithWindow(size int) *Profiler {
	if size < 1 {
		size = defaultWindowSize
	}
	return &Profiler{
		samples: make([]time.Duration, size),
	}
}

// Sample records one frame duration, evicting the oldest sample once the
// window is full. Call once per frame.
//
// Parameters:
//   - frameTime: the duration of the frame just completed
func (p *Profiler) Sample(frameTime time.Duration) {
	p.samples[p.next] = frameTime
	p.next++
	if p.next == len(p.samples) {
		p.next = 0
		p.filled = true
	}
}

// SampleCount returns how many samples the window currently holds.
//
// Returns:
//   - int: the sample count, at most the window size
func (p *Profiler) SampleCount() int {
	if p.filled {
		return len(p.samples)
	}
	return p.next
}

// AverageFrameTime returns the mean frame duration over the window.
// Returns zero before any samples are recorded.
//
// Returns:
//   - time.Duration: the average frame time
func (p *Profiler) AverageFrameTime() time.Duration {
	n := p.SampleCount()
	if n == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < n; i++ {
		total += p.samples[i]
	}
	return total / time.Duration(n)
}

// FPS returns the frame rate implied by the average frame time.
// Returns zero before any samples are recorded.
//
// Returns:
//   - float64: frames per second
func (p *Profiler) FPS() float64 {
	avg := p.AverageFrameTime()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}
