package gpu_buffer

import (
	"fmt"
	"math"
)

// Layout describes the GPU wire format of a serializable value: a fixed-size
// prefix followed by an optional tail of fixed-stride elements whose count is
// only known at write time. Sizes are in bytes and match the WGSL struct the
// shader declares, not Go's in-memory layout.
type Layout struct {
	// FixedSize is the byte size of the fixed prefix, including any trailing
	// padding the WGSL struct rules require.
	FixedSize uint64
	// TailStride is the byte stride of one tail element, or zero when the
	// layout has no tail.
	TailStride uint64
}

// AlignUp rounds v up to the next multiple of align. align must be a power of
// two; zero stays zero and aligned values are returned unchanged.
//
// Parameters:
//   - v: the value to round up
//   - align: the power-of-two alignment
//
// Returns:
//   - uint64: the smallest multiple of align that is >= v
func AlignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// SizeFor returns the total serialized size of a value with the given tail
// length. The computation never silently truncates: a count that would
// overflow uint64 fails with ErrCapacityOverflow before anything is allocated.
//
// Parameters:
//   - tailLen: the number of tail elements the value carries
//
// Returns:
//   - uint64: FixedSize + tailLen*TailStride
//   - error: ErrCapacityOverflow when the computation overflows or tailLen is negative
func (l Layout) SizeFor(tailLen int) (uint64, error) {
	if tailLen < 0 {
		return 0, fmt.Errorf("tail length %d: %w", tailLen, ErrCapacityOverflow)
	}
	n := uint64(tailLen)
	if l.TailStride != 0 && n > (math.MaxUint64-l.FixedSize)/l.TailStride {
		return 0, fmt.Errorf("%d elements of stride %d past %d fixed bytes: %w", tailLen, l.TailStride, l.FixedSize, ErrCapacityOverflow)
	}
	return l.FixedSize + n*l.TailStride, nil
}

// Value is implemented by types that serialize themselves into GPU buffers.
// Encode writes every field at the explicit offset the layout documents; the
// encoder enforces the declared size so a drifted schema fails loudly instead
// of rendering garbage.
type Value interface {
	// Layout returns the wire-format descriptor for this type. It must be
	// constant for a given type.
	Layout() Layout

	// TailLen returns the number of tail elements this value carries. Types
	// without a tail return zero.
	TailLen() int

	// Encode serializes the value into e. Implementations write the fixed
	// prefix then TailLen tail elements, using Skip for WGSL padding.
	Encode(e *Encoder) error
}

// WriteResult reports what a buffer write did to the underlying allocation.
// Callers use it to decide whether dependent bind groups must be rebuilt.
type WriteResult int

const (
	// WriteUnchanged means the write reused the existing allocation; bindings
	// that reference the buffer remain valid.
	WriteUnchanged WriteResult = iota
	// WriteReallocated means the buffer handle was replaced or a section
	// offset moved; any bind group referencing it is stale.
	WriteReallocated
)

// String returns a human-readable name for logging.
func (r WriteResult) String() string {
	switch r {
	case WriteUnchanged:
		return "unchanged"
	case WriteReallocated:
		return "reallocated"
	default:
		return fmt.Sprintf("WriteResult(%d)", int(r))
	}
}

// merge combines two results; a reallocation on either side wins.
func (r WriteResult) merge(o WriteResult) WriteResult {
	if r == WriteReallocated || o == WriteReallocated {
		return WriteReallocated
	}
	return WriteUnchanged
}
