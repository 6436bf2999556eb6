package scene

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*scene)

// WithChunks sets the scene's initial chunk list.
//
// Parameters:
//   - chunks: the initial chunks
//
// Returns:
//   - SceneBuilderOption: a function that sets the scene's chunks
func WithChunks(chunks []Chunk) SceneBuilderOption {
	return func(s *scene) {
		s.chunks = chunks
	}
}

// WithMaterials sets the scene's material table. Index zero is the empty
// material; its color is never sampled.
//
// Parameters:
//   - materials: the material table (must not be empty)
//
// Returns:
//   - SceneBuilderOption: a function that sets the scene's materials
func WithMaterials(materials []Material) SceneBuilderOption {
	return func(s *scene) {
		if len(materials) > 0 {
			s.materials = materials
		}
	}
}

// WithChunkGeneration enables procedural chunk generation around the camera.
// Chunks within radius (in chunk units) of the camera are generated on the
// worker pool and merged into the scene each Update.
//
// Parameters:
//   - radius: generation radius in chunk units (must be positive)
//   - seed: generation seed; the same seed always yields the same terrain
//
// Returns:
//   - SceneBuilderOption: a function that enables chunk generation
func WithChunkGeneration(radius int32, seed uint64) SceneBuilderOption {
	return func(s *scene) {
		if radius > 0 {
			s.genRadius = radius
			s.genSeed = seed
		}
	}
}

// WithGenerationWorkers overrides the worker count used for chunk generation.
// Defaults to NumCPU-1 with a floor of one.
//
// Parameters:
//   - workers: the number of generation workers (must be positive)
//
// Returns:
//   - SceneBuilderOption: a function that sets the worker count
func WithGenerationWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers > 0 {
			s.genWorkers = workers
		}
	}
}
