// Package models holds the shared value types that describe how a sample
// grid is embedded in physical space: origin, spacing and the direction
// cosine matrix, together with tolerance-aware comparison of two such
// embeddings.
package models

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// Geometry describes the mapping from discrete grid indices to continuous
// physical coordinates:
//
//	physical(i) = Origin + Direction * diag(Spacing) * i
type Geometry struct {
	// Origin is the physical coordinate of index (0, 0, ..., 0), one entry
	// per dimension.
	Origin []float64

	// Spacing is the physical distance between adjacent indices along each
	// axis. All entries must be strictly positive.
	Spacing []float64

	// Direction maps index-axis unit vectors to physical-axis unit vectors.
	// It is a square dim x dim matrix and must be invertible.
	Direction *mat.Dense
}

// Tolerance bounds how far two geometries may drift apart and still count
// as equal. Origin and spacing entries are compared with a relative epsilon
// plus an absolute floor; direction entries with a plain absolute epsilon.
type Tolerance struct {
	Relative  float64
	Absolute  float64
	Direction float64
}

// DefaultTolerance is the comparison tolerance used when the caller does
// not supply one. The values are deliberately loose enough to absorb the
// rounding introduced by resampling geometry through float64 arithmetic.
var DefaultTolerance = Tolerance{
	Relative:  1e-5,
	Absolute:  1e-9,
	Direction: 1e-5,
}

// singularEps is the determinant magnitude below which a direction matrix
// is treated as non-invertible.
const singularEps = 1e-12

// Default returns the geometry every new grid starts with: zero origin,
// unit spacing and an identity direction matrix.
func Default(dim int) Geometry {
	g := Geometry{
		Origin:    make([]float64, dim),
		Spacing:   make([]float64, dim),
		Direction: identity(dim),
	}
	for d := range g.Spacing {
		g.Spacing[d] = 1.0
	}
	return g
}

func identity(dim int) *mat.Dense {
	m := mat.NewDense(dim, dim, nil)
	for d := 0; d < dim; d++ {
		m.Set(d, d, 1.0)
	}
	return m
}

// Dim returns the dimensionality the geometry describes.
func (g Geometry) Dim() int {
	return len(g.Origin)
}

// Validate checks the structural invariants: attribute vectors of equal
// length, strictly positive spacing and an invertible direction matrix.
func (g Geometry) Validate() error {
	dim := len(g.Origin)
	if len(g.Spacing) != dim {
		return errors.Newf("spacing has %d entries, want %d", len(g.Spacing), dim)
	}
	for d, s := range g.Spacing {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.Newf("spacing[%d] = %g, must be a positive finite number", d, s)
		}
	}
	r, c := g.Direction.Dims()
	if r != dim || c != dim {
		return errors.Newf("direction matrix is %dx%d, want %dx%d", r, c, dim, dim)
	}
	if det := mat.Det(g.Direction); math.Abs(det) < singularEps {
		return errors.Newf("direction matrix is singular (det = %g)", det)
	}
	return nil
}

// Clone returns a deep copy so that mutating the copy never changes the
// original.
func (g Geometry) Clone() Geometry {
	out := Geometry{
		Origin:    append([]float64(nil), g.Origin...),
		Spacing:   append([]float64(nil), g.Spacing...),
		Direction: mat.DenseCopyOf(g.Direction),
	}
	return out
}

// Physical maps a grid index to its physical coordinate.
func (g Geometry) Physical(index []int) []float64 {
	dim := g.Dim()
	point := make([]float64, dim)
	for r := 0; r < dim; r++ {
		p := g.Origin[r]
		for c := 0; c < dim; c++ {
			p += g.Direction.At(r, c) * g.Spacing[c] * float64(index[c])
		}
		point[r] = p
	}
	return point
}

// EqualWithin reports whether two geometries agree within tol. Dimension
// must match exactly; origin and spacing entries are compared with
// |a-b| <= max(Absolute, Relative*max(|a|, |b|)), direction entries with
// |a-b| <= Direction.
func (g Geometry) EqualWithin(h Geometry, tol Tolerance) bool {
	dim := g.Dim()
	if h.Dim() != dim {
		return false
	}
	for d := 0; d < dim; d++ {
		if !closeWithin(g.Origin[d], h.Origin[d], tol) {
			return false
		}
		if !closeWithin(g.Spacing[d], h.Spacing[d], tol) {
			return false
		}
	}
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			if math.Abs(g.Direction.At(r, c)-h.Direction.At(r, c)) > tol.Direction {
				return false
			}
		}
	}
	return true
}

func closeWithin(a, b float64, tol Tolerance) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= math.Max(tol.Absolute, tol.Relative*scale)
}
