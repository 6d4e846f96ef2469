package grid

import (
	"github.com/cockroachdb/errors"

	"voxelgrid/internal/models"
)

// GeometryTolerance bounds how far two images' origins, spacings and
// direction matrices may differ while still being combinable by the
// elementwise operators. Size must match exactly. Overridable; the default
// follows models.DefaultTolerance.
var GeometryTolerance = models.DefaultTolerance

// checkCombinable enforces the precondition of every two-image operator:
// identical size and component count, geometry equal within
// GeometryTolerance.
func (img *Image) checkCombinable(other *Image) error {
	if img.Dimension() != other.Dimension() {
		return errors.Wrapf(ErrGeometryMismatch, "dimensions %d and %d", img.Dimension(), other.Dimension())
	}
	for d := range img.size {
		if img.size[d] != other.size[d] {
			return errors.Wrapf(ErrGeometryMismatch, "size differs on axis %d: %d vs %d", d, img.size[d], other.size[d])
		}
	}
	if img.components != other.components {
		return errors.Wrapf(ErrGeometryMismatch, "components per sample differ: %d vs %d", img.components, other.components)
	}
	if !img.geom.EqualWithin(other.geom, GeometryTolerance) {
		return errors.Wrap(ErrGeometryMismatch, "origin, spacing or direction differ beyond tolerance")
	}
	return nil
}

// complexAt reads one component slot in component-flattened order,
// promoting real samples to complex.
func (img *Image) complexAt(pos int) complex128 {
	if img.kind.IsComplex() {
		return complex(img.data[2*pos], img.data[2*pos+1])
	}
	return complex(img.data[pos], 0)
}

func (out *Image) storeComplex(pos int, v complex128) {
	out.data[2*pos] = out.kind.quantize(real(v))
	out.data[2*pos+1] = out.kind.quantize(imag(v))
}

// binaryArith applies f (or fc when either operand is complex) across all
// sample components of two geometry-matched images. The result kind is the
// promoted kind of the operands.
func (img *Image) binaryArith(other *Image, f func(x, y float64) float64, fc func(x, y complex128) complex128) (*Image, error) {
	if err := img.checkCombinable(other); err != nil {
		return nil, err
	}
	kind := Promote(img.kind, other.kind)
	out := img.sibling(kind, img.components)
	n := img.NumSamples() * img.components
	if kind.IsComplex() {
		for i := 0; i < n; i++ {
			out.storeComplex(i, fc(img.complexAt(i), other.complexAt(i)))
		}
	} else {
		for i := 0; i < n; i++ {
			out.data[i] = kind.quantize(f(img.data[i], other.data[i]))
		}
	}
	return out, nil
}

// scalarArith broadcasts f (or fc) against a constant; no geometry check.
func (img *Image) scalarArith(s complex128, f func(x, y float64) float64, fc func(x, y complex128) complex128) *Image {
	out := img.sibling(img.kind, img.components)
	n := img.NumSamples() * img.components
	if img.kind.IsComplex() {
		for i := 0; i < n; i++ {
			out.storeComplex(i, fc(img.complexAt(i), s))
		}
	} else {
		sr := real(s)
		for i := 0; i < n; i++ {
			out.data[i] = img.kind.quantize(f(img.data[i], sr))
		}
	}
	return out
}

// Add returns the elementwise sum of two geometry-matched images. Integer
// result kinds wrap on overflow (modulo 2^bits), they never saturate.
func (img *Image) Add(other *Image) (*Image, error) {
	return img.binaryArith(other,
		func(x, y float64) float64 { return x + y },
		func(x, y complex128) complex128 { return x + y })
}

// Sub returns the elementwise difference of two geometry-matched images.
func (img *Image) Sub(other *Image) (*Image, error) {
	return img.binaryArith(other,
		func(x, y float64) float64 { return x - y },
		func(x, y complex128) complex128 { return x - y })
}

// Mul returns the elementwise product of two geometry-matched images.
func (img *Image) Mul(other *Image) (*Image, error) {
	return img.binaryArith(other,
		func(x, y float64) float64 { return x * y },
		func(x, y complex128) complex128 { return x * y })
}

// Div returns the elementwise quotient of two geometry-matched images.
// The quotient is computed in floating point and then quantized, so
// integer kinds truncate toward zero; division by zero follows IEEE and
// integer quantization maps the resulting non-finite values through the
// wrap policy.
func (img *Image) Div(other *Image) (*Image, error) {
	return img.binaryArith(other,
		func(x, y float64) float64 { return x / y },
		func(x, y complex128) complex128 { return x / y })
}

// AddScalar broadcasts value across all samples; the geometry precondition
// does not apply to scalar operands.
func (img *Image) AddScalar(value float64) *Image {
	return img.scalarArith(complex(value, 0),
		func(x, y float64) float64 { return x + y },
		func(x, y complex128) complex128 { return x + y })
}

// SubScalar broadcasts subtraction of value across all samples.
func (img *Image) SubScalar(value float64) *Image {
	return img.scalarArith(complex(value, 0),
		func(x, y float64) float64 { return x - y },
		func(x, y complex128) complex128 { return x - y })
}

// MulScalar broadcasts multiplication by value across all samples.
func (img *Image) MulScalar(value float64) *Image {
	return img.scalarArith(complex(value, 0),
		func(x, y float64) float64 { return x * y },
		func(x, y complex128) complex128 { return x * y })
}

// DivScalar broadcasts division by value across all samples.
func (img *Image) DivScalar(value float64) *Image {
	return img.scalarArith(complex(value, 0),
		func(x, y float64) float64 { return x / y },
		func(x, y complex128) complex128 { return x / y })
}

// compare builds a Uint8 mask image from a predicate over sample pairs.
// Ordered comparisons are undefined for complex samples; only Equal and
// NotEqual accept them.
func (img *Image) compare(other *Image, ordered bool, f func(x, y float64) bool, fc func(x, y complex128) bool) (*Image, error) {
	if ordered && (img.kind.IsComplex() || other.kind.IsComplex()) {
		return nil, errors.Wrap(ErrUnsupportedSampleKind, "ordered comparison of complex samples")
	}
	if img.components != 1 {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "comparison of %d-component samples", img.components)
	}
	if err := img.checkCombinable(other); err != nil {
		return nil, err
	}
	out := img.sibling(Uint8, 1)
	n := img.NumSamples()
	if img.kind.IsComplex() || other.kind.IsComplex() {
		for i := 0; i < n; i++ {
			if fc(img.complexAt(i), other.complexAt(i)) {
				out.data[i] = 1
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if f(img.data[i], other.data[i]) {
				out.data[i] = 1
			}
		}
	}
	return out, nil
}

func (img *Image) compareScalar(s float64, ordered bool, f func(x, y float64) bool, fc func(x, y complex128) bool) (*Image, error) {
	if ordered && img.kind.IsComplex() {
		return nil, errors.Wrap(ErrUnsupportedSampleKind, "ordered comparison of complex samples")
	}
	if img.components != 1 {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "comparison of %d-component samples", img.components)
	}
	out := img.sibling(Uint8, 1)
	n := img.NumSamples()
	if img.kind.IsComplex() {
		for i := 0; i < n; i++ {
			if fc(img.complexAt(i), complex(s, 0)) {
				out.data[i] = 1
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if f(img.data[i], s) {
				out.data[i] = 1
			}
		}
	}
	return out, nil
}

// Equal returns a Uint8 mask with 1 where samples are equal.
func (img *Image) Equal(other *Image) (*Image, error) {
	return img.compare(other, false,
		func(x, y float64) bool { return x == y },
		func(x, y complex128) bool { return x == y })
}

// NotEqual returns a Uint8 mask with 1 where samples differ.
func (img *Image) NotEqual(other *Image) (*Image, error) {
	return img.compare(other, false,
		func(x, y float64) bool { return x != y },
		func(x, y complex128) bool { return x != y })
}

// Less returns a Uint8 mask with 1 where the receiver's sample is smaller.
func (img *Image) Less(other *Image) (*Image, error) {
	return img.compare(other, true, func(x, y float64) bool { return x < y }, nil)
}

// LessEqual returns a Uint8 mask with 1 where the receiver's sample is
// smaller or equal.
func (img *Image) LessEqual(other *Image) (*Image, error) {
	return img.compare(other, true, func(x, y float64) bool { return x <= y }, nil)
}

// Greater returns a Uint8 mask with 1 where the receiver's sample is
// larger.
func (img *Image) Greater(other *Image) (*Image, error) {
	return img.compare(other, true, func(x, y float64) bool { return x > y }, nil)
}

// GreaterEqual returns a Uint8 mask with 1 where the receiver's sample is
// larger or equal.
func (img *Image) GreaterEqual(other *Image) (*Image, error) {
	return img.compare(other, true, func(x, y float64) bool { return x >= y }, nil)
}

// EqualScalar returns a Uint8 mask with 1 where the sample equals value.
func (img *Image) EqualScalar(value float64) (*Image, error) {
	return img.compareScalar(value, false,
		func(x, y float64) bool { return x == y },
		func(x, y complex128) bool { return x == y })
}

// LessScalar returns a Uint8 mask with 1 where the sample is below value.
func (img *Image) LessScalar(value float64) (*Image, error) {
	return img.compareScalar(value, true, func(x, y float64) bool { return x < y }, nil)
}

// GreaterScalar returns a Uint8 mask with 1 where the sample exceeds value.
func (img *Image) GreaterScalar(value float64) (*Image, error) {
	return img.compareScalar(value, true, func(x, y float64) bool { return x > y }, nil)
}

// bitwise applies f over the integer values of two geometry-matched
// integer images. Floating-point and complex kinds are rejected.
func (img *Image) bitwise(other *Image, f func(x, y int64) int64) (*Image, error) {
	if !img.kind.IsInteger() || !other.kind.IsInteger() {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "bitwise operation on %s and %s samples", img.kind, other.kind)
	}
	if err := img.checkCombinable(other); err != nil {
		return nil, err
	}
	kind := Promote(img.kind, other.kind)
	out := img.sibling(kind, img.components)
	n := img.NumSamples() * img.components
	for i := 0; i < n; i++ {
		out.data[i] = kind.quantize(float64(f(wrapInt(img.data[i]), wrapInt(other.data[i]))))
	}
	return out, nil
}

// And returns the elementwise bitwise conjunction of two integer images.
func (img *Image) And(other *Image) (*Image, error) {
	return img.bitwise(other, func(x, y int64) int64 { return x & y })
}

// Or returns the elementwise bitwise disjunction of two integer images.
func (img *Image) Or(other *Image) (*Image, error) {
	return img.bitwise(other, func(x, y int64) int64 { return x | y })
}

// Xor returns the elementwise bitwise exclusive-or of two integer images.
func (img *Image) Xor(other *Image) (*Image, error) {
	return img.bitwise(other, func(x, y int64) int64 { return x ^ y })
}

// logical builds a Uint8 mask from the truthiness (non-zero) of sample
// pairs. Defined for all real kinds.
func (img *Image) logical(other *Image, f func(x, y bool) bool) (*Image, error) {
	if img.kind.IsComplex() || other.kind.IsComplex() {
		return nil, errors.Wrap(ErrUnsupportedSampleKind, "logical operation on complex samples")
	}
	if img.components != 1 {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "logical operation on %d-component samples", img.components)
	}
	if err := img.checkCombinable(other); err != nil {
		return nil, err
	}
	out := img.sibling(Uint8, 1)
	n := img.NumSamples()
	for i := 0; i < n; i++ {
		if f(img.data[i] != 0, other.data[i] != 0) {
			out.data[i] = 1
		}
	}
	return out, nil
}

// LogicalAnd returns a Uint8 mask with 1 where both samples are non-zero.
func (img *Image) LogicalAnd(other *Image) (*Image, error) {
	return img.logical(other, func(x, y bool) bool { return x && y })
}

// LogicalOr returns a Uint8 mask with 1 where either sample is non-zero.
func (img *Image) LogicalOr(other *Image) (*Image, error) {
	return img.logical(other, func(x, y bool) bool { return x || y })
}

// LogicalXor returns a Uint8 mask with 1 where exactly one sample is
// non-zero.
func (img *Image) LogicalXor(other *Image) (*Image, error) {
	return img.logical(other, func(x, y bool) bool { return x != y })
}

// LogicalNot returns a Uint8 mask with 1 where the sample is zero.
func (img *Image) LogicalNot() (*Image, error) {
	if img.kind.IsComplex() {
		return nil, errors.Wrap(ErrUnsupportedSampleKind, "logical operation on complex samples")
	}
	if img.components != 1 {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "logical operation on %d-component samples", img.components)
	}
	out := img.sibling(Uint8, 1)
	for i, v := range img.data {
		if v == 0 {
			out.data[i] = 1
		}
	}
	return out, nil
}
