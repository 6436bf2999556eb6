package gpu_buffer

import "errors"

// Sentinel errors for the buffer layer. Callers match them with errors.Is;
// every return site wraps them with component and size context.
var (
	// ErrLayoutOverflow is returned when an encode writes past the size the
	// value's layout declared. The destination buffer is left untouched.
	ErrLayoutOverflow = errors.New("encode exceeds declared layout size")

	// ErrSizeMismatch is returned when a value cannot satisfy a fixed-size
	// contract, such as constructing a fixed-size buffer from a tailed layout.
	ErrSizeMismatch = errors.New("value layout violates fixed size contract")

	// ErrCapacityOverflow is returned when an element-count to byte-size
	// computation overflows uint64. Nothing is allocated or written.
	ErrCapacityOverflow = errors.New("buffer size computation overflows")

	// ErrDeviceResourceExhausted is returned when the device refuses a buffer
	// allocation during growth. The previous buffer remains valid.
	ErrDeviceResourceExhausted = errors.New("device refused buffer allocation")

	// ErrStaleBinding is returned when a bind group rebuild would reference a
	// released buffer. This indicates a programming error, not a runtime
	// condition; callers treat it as fatal.
	ErrStaleBinding = errors.New("bind group references a released buffer")
)
