package scene

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"

	"github.com/raygrid/raygrid/common"
)

// chunkKey identifies a chunk by its coordinates in chunk units.
type chunkKey struct {
	X, Y int32
}

// chunkGenerator produces procedural chunks around the camera on a bounded
// worker pool. Generation is deterministic per (seed, key) so revisiting an
// area yields the same terrain. Finished chunks are handed back through a
// buffered channel and merged on the frame thread by Scene.Update.
type chunkGenerator struct {
	mu *sync.Mutex

	pool   worker.DynamicWorkerPool
	seed   uint64
	radius int32

	requested map[chunkKey]struct{}
	results   chan Chunk
	nextTask  int
	stopped   bool
}

// newChunkGenerator creates a generator covering a square of
// (2*radius+1)^2 chunks around the camera.
func newChunkGenerator(workers int, radius int32, seed uint64) *chunkGenerator {
	span := int(2*radius+1) * int(2*radius+1)
	return &chunkGenerator{
		mu:        &sync.Mutex{},
		pool:      worker.NewDynamicWorkerPool(workers, span, 1*time.Second),
		seed:      seed,
		radius:    radius,
		requested: make(map[chunkKey]struct{}),
		results:   make(chan Chunk, span),
	}
}

// request schedules generation for every not-yet-requested chunk within the
// radius of the world position. Called once per frame on the frame thread.
func (g *chunkGenerator) request(center common.Vector2, materialCount int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}

	cx := int32(math32.Floor(center.X / ChunkSize))
	cy := int32(math32.Floor(center.Y / ChunkSize))

	for dy := -g.radius; dy <= g.radius; dy++ {
		for dx := -g.radius; dx <= g.radius; dx++ {
			key := chunkKey{X: cx + dx, Y: cy + dy}
			if _, done := g.requested[key]; done {
				continue
			}
			g.requested[key] = struct{}{}

			id := g.nextTask
			g.nextTask++
			g.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					ch := generateChunk(key, g.seed, materialCount)
					select {
					case g.results <- ch:
					default:
						// Results backlog is full; forget the key so a later
						// frame regenerates this chunk.
						g.forget(key)
					}
					return nil, nil
				},
			})
		}
	}
}

// collect drains every finished chunk without blocking.
// Called once per frame on the frame thread.
func (g *chunkGenerator) collect() []Chunk {
	var out []Chunk
	for {
		select {
		case ch := <-g.results:
			out = append(out, ch)
		default:
			return out
		}
	}
}

// forget drops a key from the requested set so it can be scheduled again.
func (g *chunkGenerator) forget(key chunkKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.requested, key)
}

// stop prevents further scheduling. In-flight tasks finish and the pool's
// workers idle-exit on their own timeout.
func (g *chunkGenerator) stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
}

// generateChunk builds a deterministic chunk for the key. Roughly 40% of
// cells are solid, each picking a non-empty material from the table;
// with fewer than two materials every cell stays empty.
func generateChunk(key chunkKey, seed uint64, materialCount int) Chunk {
	ch := Chunk{
		Position: common.Vec2(float32(key.X)*ChunkSize, float32(key.Y)*ChunkSize),
	}
	if materialCount < 2 {
		return ch
	}

	base := seed ^ (uint64(uint32(key.X))<<32 | uint64(uint32(key.Y)))
	for i := range ch.Cells {
		h := splitmix64(base + uint64(i)*0x9E3779B97F4A7C15)
		if h%100 < 40 {
			ch.Cells[i] = 1 + uint32(h>>32)%uint32(materialCount-1)
		}
	}
	return ch
}

// splitmix64 is a fast, well-distributed 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
