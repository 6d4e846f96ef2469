package grid

import "github.com/cockroachdb/errors"

// Error kinds surfaced by the package. Callers classify failures with
// errors.Is; every returned error wraps exactly one of these sentinels
// with call-site context.
var (
	// ErrInvalidGeometry flags non-positive spacing, a singular direction
	// matrix, or attribute vectors whose length does not match the image
	// dimension.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrIndexOutOfBounds flags a sample or component index outside the
	// declared extent.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrInvalidSlice flags a zero step or a slice specification that
	// selects nothing.
	ErrInvalidSlice = errors.New("invalid slice")

	// ErrGeometryMismatch flags a binary operation between two images whose
	// size, origin, spacing or direction differ beyond tolerance.
	ErrGeometryMismatch = errors.New("geometry mismatch")

	// ErrUnsupportedSampleKind flags an operation the operand's sample kind
	// cannot carry out, such as bitwise operators on floating-point samples.
	ErrUnsupportedSampleKind = errors.New("unsupported sample kind")
)
