package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetFrameLimit(t *testing.T) {
	e := &engine{}

	e.SetFrameLimit(60)
	assert.Equal(t, time.Second/60, e.frameLimit)

	e.SetFrameLimit(0)
	assert.Equal(t, time.Duration(0), e.frameLimit)
}

func TestSetFrameLimitFractionalRate(t *testing.T) {
	e := &engine{}

	// Sub-1 rates are valid config input and must not divide by zero.
	e.SetFrameLimit(0.5)
	assert.Equal(t, 2*time.Second, e.frameLimit)
}

func TestWithFrameLimit(t *testing.T) {
	e := &engine{}
	WithFrameLimit(0.5)(e)
	assert.Equal(t, 2*time.Second, e.frameLimit)

	e = &engine{}
	WithFrameLimit(144)(e)
	assert.Equal(t, time.Second/144, e.frameLimit)

	e = &engine{}
	WithFrameLimit(-1)(e)
	assert.Equal(t, time.Duration(0), e.frameLimit)
}

func TestQuitFromAnotherGoroutine(t *testing.T) {
	e := &engine{}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Quit()
		}()
	}
	wg.Wait()

	assert.True(t, e.quitting.Load())
}
