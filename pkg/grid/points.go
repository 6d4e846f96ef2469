package grid

import "github.com/cockroachdb/errors"

// NewPointSource builds an image whose sample at each index holds that
// index's physical coordinates: component d of the sample at index i is
// lower[d] + i[d]*spacing[d]. The result has one component per axis and is
// fully determined by its four arguments, so repeated calls with the same
// arguments produce identical images. It is the building block for
// rasterizing implicit functions: arithmetic over the coordinate
// components followed by a threshold yields a mask of the level set.
func NewPointSource(kind SampleKind, size []int, lower, spacing []float64) (*Image, error) {
	if kind.IsComplex() {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "%s samples cannot hold physical coordinates", kind)
	}
	dim := len(size)
	if len(lower) != dim || len(spacing) != dim {
		return nil, errors.Wrapf(ErrInvalidGeometry, "lower has %d and spacing has %d entries, want %d each", len(lower), len(spacing), dim)
	}
	img, err := New(kind, size,
		WithComponents(dim),
		WithOrigin(lower...),
		WithSpacing(spacing...))
	if err != nil {
		return nil, err
	}

	idx := make([]int, dim)
	point := make([]float64, dim)
	for {
		for d := 0; d < dim; d++ {
			point[d] = lower[d] + float64(idx[d])*spacing[d]
		}
		base := img.offset(idx) * dim
		for d := 0; d < dim; d++ {
			img.data[base+d] = kind.quantize(point[d])
		}

		d := 0
		for d < dim {
			idx[d]++
			if idx[d] < size[d] {
				break
			}
			idx[d] = 0
			d++
		}
		if d == dim {
			break
		}
	}
	return img, nil
}

// Component extracts a single component of a vector image into a new
// scalar image with identical size, kind and geometry. The component index
// must lie in [0, Components).
func (img *Image) Component(c int) (*Image, error) {
	if c < 0 || c >= img.components {
		return nil, errors.Wrapf(ErrIndexOutOfBounds, "component %d, image has %d", c, img.components)
	}
	out := img.sibling(img.kind, 1)
	slots := img.kind.scalarSlots()
	n := img.NumSamples()
	for i := 0; i < n; i++ {
		src := (i*img.components + c) * slots
		dst := i * slots
		copy(out.data[dst:dst+slots], img.data[src:src+slots])
	}
	return out, nil
}
