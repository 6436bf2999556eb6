package scene

import (
	"github.com/raygrid/raygrid/common"
	"github.com/raygrid/raygrid/engine/gpu_buffer"
)

// ChunkSize is the edge length of a chunk in cells. Each chunk covers a
// ChunkSize x ChunkSize square of world-space cells.
const ChunkSize = 2

// CellsPerChunk is the number of cells stored per chunk.
const CellsPerChunk = ChunkSize * ChunkSize

// Chunk is a square block of cells anchored at a world-space position.
// Cells are material table indices in row-major order starting at the
// bottom-left cell; index zero is the empty material.
type Chunk struct {
	Cells    [CellsPerChunk]uint32
	Position common.Vector2
}

// Material is one entry of the scene's material table.
type Material struct {
	Color common.Vector3
}

const (
	// chunkStride is the encoded size of one chunk element.
	// WGSL Chunk: vec4<u32> cells (offset 0), vec2<f32> position (offset 16),
	// struct size 24 rounded up to the 16-byte struct alignment.
	chunkStride = 32

	// materialStride is the encoded size of one material element.
	// WGSL Material: vec3<f32> color, size 12 rounded up to alignment 16.
	materialStride = 16

	// listHeaderSize is the fixed prefix of both list encodings: a u32 element
	// count padded out to the runtime array's 16-byte alignment. The shader
	// reads the count instead of deriving it from the binding size, so a
	// grown allocation with a shorter payload never exposes stale tail
	// elements.
	listHeaderSize = 16
)

// GPUChunkList is the GPU encoding of the scene's chunk array.
// Matches the WGSL ChunkList struct layout exactly:
//
//	struct Chunk {
//	    cells: vec4<u32>,       // offset  0
//	    position: vec2<f32>,    // offset 16, stride 32
//	}
//	struct ChunkList {
//	    count: u32,             // offset  0
//	    chunks: array<Chunk>,   // offset 16
//	}
type GPUChunkList struct {
	Chunks []Chunk
}

var _ gpu_buffer.Value = GPUChunkList{}

func (GPUChunkList) Layout() gpu_buffer.Layout {
	return gpu_buffer.Layout{FixedSize: listHeaderSize, TailStride: chunkStride}
}

func (l GPUChunkList) TailLen() int {
	return len(l.Chunks)
}

func (l GPUChunkList) Encode(e *gpu_buffer.Encoder) error {
	e.PutUint32(uint32(len(l.Chunks)))
	e.Skip(12)
	for i := range l.Chunks {
		c := &l.Chunks[i]
		for _, cell := range c.Cells {
			e.PutUint32(cell)
		}
		e.PutVector2(c.Position)
		e.Skip(8)
	}
	return e.Err()
}

// GPUMaterialList is the GPU encoding of the scene's material table.
// Matches the WGSL MaterialList struct layout exactly:
//
//	struct Material {
//	    color: vec3<f32>,           // offset 0, stride 16
//	}
//	struct MaterialList {
//	    count: u32,                 // offset  0
//	    materials: array<Material>, // offset 16
//	}
type GPUMaterialList struct {
	Materials []Material
}

var _ gpu_buffer.Value = GPUMaterialList{}

func (GPUMaterialList) Layout() gpu_buffer.Layout {
	return gpu_buffer.Layout{FixedSize: listHeaderSize, TailStride: materialStride}
}

func (l GPUMaterialList) TailLen() int {
	return len(l.Materials)
}

func (l GPUMaterialList) Encode(e *gpu_buffer.Encoder) error {
	e.PutUint32(uint32(len(l.Materials)))
	e.Skip(12)
	for i := range l.Materials {
		e.PutVector3(l.Materials[i].Color)
		e.Skip(4)
	}
	return e.Err()
}
