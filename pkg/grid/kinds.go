package grid

import "math"

// SampleKind identifies the scalar element type stored at each grid
// position. The kind is fixed when an image is constructed and drives the
// wrap/rounding policy applied to every stored value.
//
// Samples are held in float64 storage, so the 64-bit integer kinds are
// exact only for magnitudes up to 2^53; beyond that, values round to the
// nearest representable float64 before the wrap policy applies. The
// narrower kinds and Float32/Float64 are always exact.
type SampleKind int

const (
	Uint8 SampleKind = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
	Complex64
	Complex128
)

// allKinds is kept in promotion-rank order: binary operations between two
// images produce the higher-ranked of the two operand kinds.
var allKinds = []SampleKind{
	Uint8, Int8, Uint16, Int16, Uint32, Int32,
	Uint64, Int64, Float32, Float64, Complex64, Complex128,
}

// Kinds returns every sample kind the package defines, in promotion order.
func Kinds() []SampleKind {
	return append([]SampleKind(nil), allKinds...)
}

// Supported reports whether the kind is usable on this build. All kinds are
// available on every platform Go targets, but callers should branch on this
// predicate rather than assume, since wide integer kinds have historically
// been build-dependent in comparable toolkits. Note that Uint64 and Int64
// carry the 2^53 exactness bound documented on SampleKind.
func Supported(k SampleKind) bool {
	return k >= Uint8 && k <= Complex128
}

// String returns the kind's canonical lower-case name.
func (k SampleKind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	case Uint64:
		return "uint64"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// Bits returns the storage width of one scalar of the kind, in bits.
func (k SampleKind) Bits() int {
	switch k {
	case Uint8, Int8:
		return 8
	case Uint16, Int16:
		return 16
	case Uint32, Int32, Float32:
		return 32
	case Uint64, Int64, Float64, Complex64:
		return 64
	case Complex128:
		return 128
	default:
		return 0
	}
}

// IsInteger reports whether the kind stores integer samples.
func (k SampleKind) IsInteger() bool {
	return k >= Uint8 && k <= Int64
}

// IsSigned reports whether the kind can represent negative values.
func (k SampleKind) IsSigned() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Float32, Float64, Complex64, Complex128:
		return true
	}
	return false
}

// IsComplex reports whether the kind stores complex samples.
func (k SampleKind) IsComplex() bool {
	return k == Complex64 || k == Complex128
}

// scalarSlots is the number of float64 storage slots one component of the
// kind occupies. Complex kinds store real and imaginary parts separately.
func (k SampleKind) scalarSlots() int {
	if k.IsComplex() {
		return 2
	}
	return 1
}

// Promote returns the result kind of a binary arithmetic operation between
// two kinds: the one further along the promotion order.
func Promote(a, b SampleKind) SampleKind {
	if a >= b {
		return a
	}
	return b
}

// quantize rounds v onto the kind's representable grid. Integer kinds
// truncate toward zero and then wrap: unsigned kinds modulo 2^bits, signed
// kinds two's-complement. Float32 rounds through single precision. The
// policy is wrap, never saturate, and is relied on by the arithmetic
// operators.
func (k SampleKind) quantize(v float64) float64 {
	switch k {
	case Uint8:
		return float64(uint8(wrapInt(v)))
	case Int8:
		return float64(int8(wrapInt(v)))
	case Uint16:
		return float64(uint16(wrapInt(v)))
	case Int16:
		return float64(int16(wrapInt(v)))
	case Uint32:
		return float64(uint32(wrapInt(v)))
	case Int32:
		return float64(int32(wrapInt(v)))
	case Uint64:
		return float64(wrapUint(v))
	case Int64:
		return float64(wrapInt(v))
	case Float32, Complex64:
		return float64(float32(v))
	default:
		return v
	}
}

const (
	two63 = 9223372036854775808.0  // 2^63
	two64 = 18446744073709551616.0 // 2^64
)

// wrapInt truncates toward zero and wraps modulo 2^64 into the signed
// range. Values beyond the int64 range reduce through math.Mod; the
// subtraction of 2^64 after reduction is exact (operands within a factor
// of two), so the wrap stays faithful to the float64 the caller handed in.
func wrapInt(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	if t >= -two63 && t < two63 {
		return int64(t)
	}
	t = math.Mod(t, two64)
	if t >= two63 {
		t -= two64
	} else if t < -two63 {
		t += two64
	}
	return int64(t)
}

// wrapUint truncates toward zero and wraps modulo 2^64 into the unsigned
// range, so Uint64 values above the int64 range store without saturating.
func wrapUint(v float64) uint64 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	if t >= 0 && t < two64 {
		return uint64(t)
	}
	t = math.Mod(t, two64)
	if t < 0 {
		t += two64
	}
	if t >= two64 {
		// Adding 2^64 to a tiny negative remainder rounds up to 2^64
		// itself; take the largest representable value below it.
		t = math.Nextafter(two64, 0)
	}
	return uint64(t)
}
