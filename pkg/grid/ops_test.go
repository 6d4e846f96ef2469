package grid

import (
	"testing"

	"github.com/cockroachdb/errors"
)

// TestAddImages verifies elementwise addition between geometry-matched
// images, including the documented mod-256 wrap policy for uint8.
func TestAddImages(t *testing.T) {
	a, _ := New(Uint8, []int{24, 24})
	b, _ := New(Uint8, []int{24, 24})

	// 0 + 255 = 255, no overflow involved.
	b.Set(255, 0, 0)
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v, _ := sum.At(0, 0); v != 255 {
		t.Errorf("Expected 0+255=255, got %v", v)
	}
	if sum.Kind() != Uint8 {
		t.Errorf("Expected uint8 result, got %s", sum.Kind())
	}

	// 200 + 100 wraps modulo 256.
	a.Set(200, 1, 1)
	b.Set(100, 1, 1)
	sum, _ = a.Add(b)
	if v, _ := sum.At(1, 1); v != 44 {
		t.Errorf("Expected 200+100 to wrap to 44, got %v", v)
	}

	// Operands are untouched.
	if v, _ := a.At(1, 1); v != 200 {
		t.Errorf("Add mutated its operand: got %v", v)
	}
}

// TestArithmeticPromotion verifies that mixed-kind operands promote to the
// wider kind.
func TestArithmeticPromotion(t *testing.T) {
	a, _ := New(Uint8, []int{4, 4})
	b, _ := New(Float64, []int{4, 4})
	a.Set(10, 0, 0)
	b.Set(0.5, 0, 0)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.Kind() != Float64 {
		t.Errorf("Expected float64 result, got %s", sum.Kind())
	}
	if v, _ := sum.At(0, 0); v != 10.5 {
		t.Errorf("Expected 10.5, got %v", v)
	}
}

// TestSubMulDiv verifies the remaining arithmetic operators including
// integer truncation on division.
func TestSubMulDiv(t *testing.T) {
	a, _ := New(Int32, []int{3, 3})
	b, _ := New(Int32, []int{3, 3})
	a.Set(7, 0, 0)
	b.Set(2, 0, 0)

	if diff, err := a.Sub(b); err != nil {
		t.Fatalf("Sub failed: %v", err)
	} else if v, _ := diff.At(0, 0); v != 5 {
		t.Errorf("Expected 5, got %v", v)
	}

	if prod, err := a.Mul(b); err != nil {
		t.Fatalf("Mul failed: %v", err)
	} else if v, _ := prod.At(0, 0); v != 14 {
		t.Errorf("Expected 14, got %v", v)
	}

	if quot, err := a.Div(b); err != nil {
		t.Fatalf("Div failed: %v", err)
	} else if v, _ := quot.At(0, 0); v != 3 {
		t.Errorf("Expected integer division 7/2 to truncate to 3, got %v", v)
	}
}

// TestScalarBroadcast verifies image-scalar arithmetic, which skips the
// geometry precondition by definition.
func TestScalarBroadcast(t *testing.T) {
	a, _ := New(Float64, []int{3, 3}, WithOrigin(5, 5))
	a.Fill(2.0)

	out := a.MulScalar(3.0)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if v, _ := out.At(x, y); v != 6.0 {
				t.Errorf("Expected 6 at (%d,%d), got %v", x, y, v)
			}
		}
	}
	if out.Origin()[0] != 5 {
		t.Errorf("Expected geometry to carry over, got origin %v", out.Origin())
	}

	half := a.DivScalar(4.0)
	if v, _ := half.At(0, 0); v != 0.5 {
		t.Errorf("Expected 0.5, got %v", v)
	}
	shifted := a.AddScalar(-1.5)
	if v, _ := shifted.At(0, 0); v != 0.5 {
		t.Errorf("Expected 0.5, got %v", v)
	}
}

// TestGeometryMismatch verifies that every two-image operator rejects
// operands whose geometry differs beyond tolerance.
func TestGeometryMismatch(t *testing.T) {
	a, _ := New(Uint8, []int{4, 4})

	wrongSize, _ := New(Uint8, []int{4, 5})
	if _, err := a.Add(wrongSize); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected ErrGeometryMismatch for size, got %v", err)
	}

	wrongSpacing, _ := New(Uint8, []int{4, 4}, WithSpacing(1.0, 1.5))
	if _, err := a.Add(wrongSpacing); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected ErrGeometryMismatch for spacing, got %v", err)
	}
	if _, err := a.Less(wrongSpacing); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected ErrGeometryMismatch for spacing, got %v", err)
	}

	wrongOrigin, _ := New(Uint8, []int{4, 4}, WithOrigin(0, 0.001))
	if _, err := a.Mul(wrongOrigin); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected ErrGeometryMismatch for origin, got %v", err)
	}
}

// TestGeometryTolerance verifies that sub-tolerance drift is accepted. The
// comparison epsilon is a package variable so callers can tighten it.
func TestGeometryTolerance(t *testing.T) {
	a, _ := New(Float64, []int{4, 4}, WithSpacing(1.0, 1.0))
	b, _ := New(Float64, []int{4, 4}, WithSpacing(1.0, 1.0+1e-9))

	if _, err := a.Add(b); err != nil {
		t.Errorf("Expected sub-tolerance spacing drift to be accepted, got %v", err)
	}

	old := GeometryTolerance
	defer func() { GeometryTolerance = old }()
	GeometryTolerance.Relative = 1e-12
	GeometryTolerance.Absolute = 1e-15
	if _, err := a.Add(b); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected tightened tolerance to reject the drift, got %v", err)
	}
}

// TestComparisons verifies the mask-producing operators: results are Uint8
// images holding 0 or 1 per sample.
func TestComparisons(t *testing.T) {
	a, _ := New(Int16, []int{3, 3})
	b, _ := New(Int16, []int{3, 3})
	a.Set(5, 0, 0)
	b.Set(5, 0, 0)
	a.Set(-3, 1, 0)
	b.Set(4, 1, 0)

	eq, err := a.Equal(b)
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if eq.Kind() != Uint8 {
		t.Errorf("Expected uint8 mask, got %s", eq.Kind())
	}
	if v, _ := eq.At(0, 0); v != 1 {
		t.Errorf("Expected equal samples to compare as 1, got %v", v)
	}
	if v, _ := eq.At(1, 0); v != 0 {
		t.Errorf("Expected unequal samples to compare as 0, got %v", v)
	}

	lt, _ := a.Less(b)
	if v, _ := lt.At(1, 0); v != 1 {
		t.Errorf("Expected -3 < 4, got %v", v)
	}
	if v, _ := lt.At(0, 0); v != 0 {
		t.Errorf("Expected 5 < 5 to be 0, got %v", v)
	}

	ge, _ := a.GreaterEqual(b)
	if v, _ := ge.At(0, 0); v != 1 {
		t.Errorf("Expected 5 >= 5, got %v", v)
	}

	mask, err := a.LessScalar(0)
	if err != nil {
		t.Fatalf("LessScalar failed: %v", err)
	}
	if v, _ := mask.At(1, 0); v != 1 {
		t.Errorf("Expected -3 < 0, got %v", v)
	}
	if v, _ := mask.At(0, 0); v != 0 {
		t.Errorf("Expected 5 < 0 to be 0, got %v", v)
	}
}

// TestBitwise verifies bitwise conjunction on integer kinds and rejection
// of floating-point operands.
func TestBitwise(t *testing.T) {
	a, _ := New(Uint8, []int{2, 2})
	b, _ := New(Uint8, []int{2, 2})
	a.Set(0b1100, 0, 0)
	b.Set(0b1010, 0, 0)

	and, err := a.And(b)
	if err != nil {
		t.Fatalf("And failed: %v", err)
	}
	if v, _ := and.At(0, 0); v != 0b1000 {
		t.Errorf("Expected 0b1000, got %v", v)
	}
	or, _ := a.Or(b)
	if v, _ := or.At(0, 0); v != 0b1110 {
		t.Errorf("Expected 0b1110, got %v", v)
	}
	xor, _ := a.Xor(b)
	if v, _ := xor.At(0, 0); v != 0b0110 {
		t.Errorf("Expected 0b0110, got %v", v)
	}

	f, _ := New(Float32, []int{2, 2})
	if _, err := a.And(f); !errors.Is(err, ErrUnsupportedSampleKind) {
		t.Errorf("Expected ErrUnsupportedSampleKind for float operand, got %v", err)
	}
}

// TestLogical verifies the truthiness-based operators.
func TestLogical(t *testing.T) {
	a, _ := New(Uint8, []int{2, 2})
	b, _ := New(Uint8, []int{2, 2})
	a.Set(3, 0, 0)
	b.Set(1, 0, 0)
	a.Set(2, 1, 0)

	and, err := a.LogicalAnd(b)
	if err != nil {
		t.Fatalf("LogicalAnd failed: %v", err)
	}
	if v, _ := and.At(0, 0); v != 1 {
		t.Errorf("Expected non-zero AND non-zero = 1, got %v", v)
	}
	if v, _ := and.At(1, 0); v != 0 {
		t.Errorf("Expected non-zero AND zero = 0, got %v", v)
	}

	or, _ := a.LogicalOr(b)
	if v, _ := or.At(1, 0); v != 1 {
		t.Errorf("Expected non-zero OR zero = 1, got %v", v)
	}

	not, _ := a.LogicalNot()
	if v, _ := not.At(1, 1); v != 1 {
		t.Errorf("Expected NOT zero = 1, got %v", v)
	}
	if v, _ := not.At(0, 0); v != 0 {
		t.Errorf("Expected NOT non-zero = 0, got %v", v)
	}
}

// TestComplexArithmetic verifies arithmetic over complex samples and the
// rejection of ordered comparisons on them.
func TestComplexArithmetic(t *testing.T) {
	a, _ := New(Complex128, []int{2, 2})
	b, _ := New(Complex128, []int{2, 2})
	a.SetComplex(complex(1, 2), 0, 0)
	b.SetComplex(complex(3, -1), 0, 0)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if v, _ := sum.AtComplex(0, 0); v != complex(4, 1) {
		t.Errorf("Expected (4+1i), got %v", v)
	}

	prod, _ := a.Mul(b)
	if v, _ := prod.AtComplex(0, 0); v != complex(5, 5) {
		t.Errorf("Expected (5+5i), got %v", v)
	}

	if _, err := a.Less(b); !errors.Is(err, ErrUnsupportedSampleKind) {
		t.Errorf("Expected ordered comparison of complex samples to fail, got %v", err)
	}
	eq, err := a.Equal(b)
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if v, _ := eq.At(0, 0); v != 0 {
		t.Errorf("Expected unequal complex samples to compare as 0, got %v", v)
	}

	// Promotion: a real operand mixes into a complex result.
	r, _ := New(Float64, []int{2, 2})
	r.Set(1, 0, 0)
	mixed, err := a.Add(r)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if mixed.Kind() != Complex128 {
		t.Errorf("Expected complex128 result, got %s", mixed.Kind())
	}
	if v, _ := mixed.AtComplex(0, 0); v != complex(2, 2) {
		t.Errorf("Expected (2+2i), got %v", v)
	}
}

// TestVectorArithmetic verifies that operators apply per component on
// vector images.
func TestVectorArithmetic(t *testing.T) {
	a, _ := New(Float64, []int{2, 2}, WithComponents(2))
	b, _ := New(Float64, []int{2, 2}, WithComponents(2))
	a.SetVector([]float64{1, 2}, 0, 0)
	b.SetVector([]float64{10, 20}, 0, 0)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	v, _ := sum.AtVector(0, 0)
	if v[0] != 11 || v[1] != 22 {
		t.Errorf("Expected [11 22], got %v", v)
	}

	scalar, _ := New(Float64, []int{2, 2})
	if _, err := a.Add(scalar); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Expected component-count mismatch to fail, got %v", err)
	}
}
