package shader

// ShaderType identifies which pipeline stage an entry point belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex stage entry point.
	ShaderTypeVertex ShaderType = iota
	// ShaderTypeFragment is a fragment stage entry point.
	ShaderTypeFragment
	// ShaderTypeCompute is a compute stage entry point.
	ShaderTypeCompute
)

// shaderArtifact is the unexported implementation of Shader.
type shaderArtifact struct {
	// key is the unique identifier for this shader, used for caching and labels.
	key string
	// source is the WGSL module source. It is treated as an opaque artifact;
	// bind group layouts come from the buffer groups the caller registers a
	// pipeline with, and a mismatch surfaces as a pipeline creation error.
	source string

	vertexEntry, fragmentEntry, computeEntry string
}

// Shader wraps one WGSL module and the entry point names a pipeline needs
// from it. The source is never parsed; entry points are declared by the
// caller and validated by the device at pipeline creation.
type Shader interface {
	// Key returns the unique key for this shader.
	Key() string

	// Source returns the WGSL module source.
	Source() string

	// EntryPoint returns the entry point name for the given stage, or the
	// empty string when the stage is not declared.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - string: the entry point function name, or ""
	EntryPoint(shaderType ShaderType) string
}

// Compile-time check that shaderArtifact implements Shader
var _ Shader = &shaderArtifact{}

// NewShader creates a Shader over WGSL source with the provided options.
// Without options the shader declares the conventional "vertex" and
// "fragment" entry points.
//
// Parameters:
//   - key: the unique key for this shader
//   - source: the WGSL module source
//   - opts: a variadic list of ShaderBuilderOption functions to configure entry points
//
// Returns:
//   - Shader: a new Shader instance
func NewShader(key, source string, opts ...ShaderBuilderOption) Shader {
	s := &shaderArtifact{
		key:           key,
		source:        source,
		vertexEntry:   "vertex",
		fragmentEntry: "fragment",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shaderArtifact) Key() string {
	return s.key
}

func (s *shaderArtifact) Source() string {
	return s.source
}

func (s *shaderArtifact) EntryPoint(shaderType ShaderType) string {
	switch shaderType {
	case ShaderTypeVertex:
		return s.vertexEntry
	case ShaderTypeFragment:
		return s.fragmentEntry
	case ShaderTypeCompute:
		return s.computeEntry
	default:
		return ""
	}
}
