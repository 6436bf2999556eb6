package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shaderArtifact)

// WithVertexEntryPoint sets the vertex stage entry point name.
//
// Parameters:
//   - name: the vertex entry point function name in the WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the vertex entry point
func WithVertexEntryPoint(name string) ShaderBuilderOption {
	return func(s *shaderArtifact) {
		s.vertexEntry = name
	}
}

// WithFragmentEntryPoint sets the fragment stage entry point name.
//
// Parameters:
//   - name: the fragment entry point function name in the WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the fragment entry point
func WithFragmentEntryPoint(name string) ShaderBuilderOption {
	return func(s *shaderArtifact) {
		s.fragmentEntry = name
	}
}

// WithComputeEntryPoint sets the compute stage entry point name and clears
// the render stage defaults, making this a compute-only artifact.
//
// Parameters:
//   - name: the compute entry point function name in the WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the compute entry point
func WithComputeEntryPoint(name string) ShaderBuilderOption {
	return func(s *shaderArtifact) {
		s.computeEntry = name
		s.vertexEntry = ""
		s.fragmentEntry = ""
	}
}
