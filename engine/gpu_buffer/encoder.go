package gpu_buffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/raygrid/raygrid/common"
)

// Encoder writes a Value's fields into a staging byte slice at sequential
// offsets, little-endian, matching the WGSL struct the shader declares. A
// write past the declared size sets a sticky ErrLayoutOverflow and turns all
// further writes into no-ops, so a drifted schema is caught at the write
// site instead of corrupting GPU memory.
type Encoder struct {
	buf []byte
	off int
	err error
}

// newEncoder wraps buf for encoding. The slice length is the declared size.
func newEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// reserve checks that n more bytes fit and returns the write position.
func (e *Encoder) reserve(n int) (int, bool) {
	if e.err != nil {
		return 0, false
	}
	if e.off+n > len(e.buf) {
		e.err = fmt.Errorf("write of %d bytes at offset %d in %d-byte layout: %w", n, e.off, len(e.buf), ErrLayoutOverflow)
		return 0, false
	}
	p := e.off
	e.off += n
	return p, true
}

// PutUint32 writes a 32-bit unsigned integer at the current offset.
func (e *Encoder) PutUint32(v uint32) {
	if p, ok := e.reserve(4); ok {
		binary.LittleEndian.PutUint32(e.buf[p:], v)
	}
}

// PutFloat32 writes a 32-bit float at the current offset.
func (e *Encoder) PutFloat32(v float32) {
	e.PutUint32(math.Float32bits(v))
}

// PutVector2 writes two consecutive floats (8 bytes, WGSL vec2<f32>).
func (e *Encoder) PutVector2(v common.Vector2) {
	e.PutFloat32(v.X)
	e.PutFloat32(v.Y)
}

// PutVector3 writes three consecutive floats (12 bytes). WGSL aligns
// vec3<f32> to 16; callers add the trailing pad with Skip(4) where the
// struct layout requires it.
func (e *Encoder) PutVector3(v common.Vector3) {
	e.PutFloat32(v.X)
	e.PutFloat32(v.Y)
	e.PutFloat32(v.Z)
}

// Skip zero-fills n padding bytes at the current offset.
func (e *Encoder) Skip(n int) {
	if p, ok := e.reserve(n); ok {
		for i := p; i < p+n; i++ {
			e.buf[i] = 0
		}
	}
}

// Offset returns the current write offset in bytes.
func (e *Encoder) Offset() int {
	return e.off
}

// Err returns the first overflow encountered, or nil.
func (e *Encoder) Err() error {
	return e.err
}

// EncodeValue serializes v into dst, which must be exactly the size the
// value's layout reports for its tail length.
//
// Parameters:
//   - v: the value to encode
//   - dst: the destination slice, sized with Layout().SizeFor(v.TailLen())
//
// Returns:
//   - error: ErrLayoutOverflow if the value writes past len(dst)
func EncodeValue(v Value, dst []byte) error {
	e := newEncoder(dst)
	if err := v.Encode(e); err != nil {
		return err
	}
	return e.Err()
}
