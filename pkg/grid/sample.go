package grid

import "github.com/cockroachdb/errors"

// At returns the scalar sample at the given index. The image must hold a
// single real component per sample; use AtVector or AtComplex otherwise.
func (img *Image) At(index ...int) (float64, error) {
	if img.components != 1 {
		return 0, errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on a %d-component image", img.components)
	}
	if img.kind.IsComplex() {
		return 0, errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on %s samples", img.kind)
	}
	if err := img.checkIndex(index); err != nil {
		return 0, err
	}
	return img.data[img.offset(index)], nil
}

// Set stores a scalar sample at the given index. The value is quantized
// onto the kind's representable grid: integer kinds truncate toward zero
// and wrap, Float32 rounds through single precision.
func (img *Image) Set(value float64, index ...int) error {
	if img.components != 1 {
		return errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on a %d-component image", img.components)
	}
	if img.kind.IsComplex() {
		return errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on %s samples", img.kind)
	}
	if err := img.checkIndex(index); err != nil {
		return err
	}
	img.data[img.offset(index)] = img.kind.quantize(value)
	return nil
}

// AtVector returns all components of the sample at the given index as a
// freshly allocated tuple of length Components.
func (img *Image) AtVector(index ...int) ([]float64, error) {
	if img.kind.IsComplex() {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "real access on %s samples", img.kind)
	}
	if err := img.checkIndex(index); err != nil {
		return nil, err
	}
	base := img.offset(index) * img.components
	out := make([]float64, img.components)
	copy(out, img.data[base:base+img.components])
	return out, nil
}

// SetVector stores all components of the sample at the given index. The
// tuple length must equal Components exactly.
func (img *Image) SetVector(value []float64, index ...int) error {
	if img.kind.IsComplex() {
		return errors.Wrapf(ErrUnsupportedSampleKind, "real access on %s samples", img.kind)
	}
	if len(value) != img.components {
		return errors.Wrapf(ErrIndexOutOfBounds, "value has %d components, want %d", len(value), img.components)
	}
	if err := img.checkIndex(index); err != nil {
		return err
	}
	base := img.offset(index) * img.components
	for c, v := range value {
		img.data[base+c] = img.kind.quantize(v)
	}
	return nil
}

// AtComplex returns the complex sample at the given index. The image must
// hold a single complex component per sample.
func (img *Image) AtComplex(index ...int) (complex128, error) {
	if !img.kind.IsComplex() {
		return 0, errors.Wrapf(ErrUnsupportedSampleKind, "complex access on %s samples", img.kind)
	}
	if img.components != 1 {
		return 0, errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on a %d-component image", img.components)
	}
	if err := img.checkIndex(index); err != nil {
		return 0, err
	}
	base := img.offset(index) * 2
	return complex(img.data[base], img.data[base+1]), nil
}

// SetComplex stores a complex sample at the given index. Complex64 images
// round both parts through single precision.
func (img *Image) SetComplex(value complex128, index ...int) error {
	if !img.kind.IsComplex() {
		return errors.Wrapf(ErrUnsupportedSampleKind, "complex access on %s samples", img.kind)
	}
	if img.components != 1 {
		return errors.Wrapf(ErrUnsupportedSampleKind, "scalar access on a %d-component image", img.components)
	}
	if err := img.checkIndex(index); err != nil {
		return err
	}
	base := img.offset(index) * 2
	img.data[base] = img.kind.quantize(real(value))
	img.data[base+1] = img.kind.quantize(imag(value))
	return nil
}

// Fill overwrites every sample component with the quantized value. For
// complex kinds the value becomes the real part and the imaginary part is
// zeroed.
func (img *Image) Fill(value float64) {
	q := img.kind.quantize(value)
	if img.kind.IsComplex() {
		for i := 0; i < len(img.data); i += 2 {
			img.data[i] = q
			img.data[i+1] = 0
		}
		return
	}
	for i := range img.data {
		img.data[i] = q
	}
}
