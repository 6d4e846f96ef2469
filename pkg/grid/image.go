// Package grid implements a spatially calibrated N-dimensional image: a
// typed sample buffer together with the origin, spacing and direction
// cosines that map discrete indices to physical coordinates. Images are
// single-owner value objects: slicing and elementwise operators always
// allocate fresh buffers, never views, so results can be mutated freely
// without aliasing the operands.
package grid

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"voxelgrid/internal/models"
)

// Image is an N-dimensional grid of typed samples embedded in physical
// space. The sample kind, size and components-per-sample are fixed at
// construction; the geometry may be rewritten afterwards.
type Image struct {
	kind       SampleKind
	size       []int
	components int
	geom       models.Geometry

	// data holds samples in flat row-major order with the first axis
	// varying fastest: slot = (component-major within a sample) at
	// offset(index) * components * scalarSlots. Complex kinds occupy two
	// adjacent slots per component (real, imaginary).
	data []float64
}

// Option adjusts optional construction parameters of New.
type Option func(*imageOptions)

type imageOptions struct {
	components int
	origin     []float64
	spacing    []float64
	direction  *mat.Dense
}

// WithComponents sets the number of components stored per sample, for
// vector-valued images. The default is 1.
func WithComponents(n int) Option {
	return func(o *imageOptions) { o.components = n }
}

// WithOrigin sets the physical coordinate of index (0, 0, ..., 0).
func WithOrigin(origin ...float64) Option {
	return func(o *imageOptions) { o.origin = origin }
}

// WithSpacing sets the physical distance between adjacent indices per axis.
func WithSpacing(spacing ...float64) Option {
	return func(o *imageOptions) { o.spacing = spacing }
}

// WithDirection sets the direction cosine matrix.
func WithDirection(direction *mat.Dense) Option {
	return func(o *imageOptions) { o.direction = direction }
}

// New constructs a zero-filled image of the given kind and size. The size
// vector fixes the dimension; it must have at least two axes, each with a
// positive extent. Geometry defaults to zero origin, unit spacing and an
// identity direction matrix unless overridden by options.
func New(kind SampleKind, size []int, opts ...Option) (*Image, error) {
	if !Supported(kind) {
		return nil, errors.Wrapf(ErrUnsupportedSampleKind, "kind %d is not a defined sample kind", int(kind))
	}
	if len(size) < 2 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "size has %d axes, need at least 2", len(size))
	}
	n := 1
	for d, s := range size {
		if s <= 0 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "size[%d] = %d, must be positive", d, s)
		}
		n *= s
	}

	o := imageOptions{components: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.components < 1 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "components per sample = %d, must be >= 1", o.components)
	}

	dim := len(size)
	geom := models.Default(dim)
	if o.origin != nil {
		if len(o.origin) != dim {
			return nil, errors.Wrapf(ErrInvalidGeometry, "origin has %d entries, want %d", len(o.origin), dim)
		}
		copy(geom.Origin, o.origin)
	}
	if o.spacing != nil {
		if len(o.spacing) != dim {
			return nil, errors.Wrapf(ErrInvalidGeometry, "spacing has %d entries, want %d", len(o.spacing), dim)
		}
		copy(geom.Spacing, o.spacing)
	}
	if o.direction != nil {
		geom.Direction = mat.DenseCopyOf(o.direction)
	}
	if err := geom.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidGeometry, err.Error())
	}

	img := &Image{
		kind:       kind,
		size:       append([]int(nil), size...),
		components: o.components,
		geom:       geom,
		data:       make([]float64, n*o.components*kind.scalarSlots()),
	}
	return img, nil
}

// Dimension returns the number of axes.
func (img *Image) Dimension() int { return len(img.size) }

// Kind returns the sample kind fixed at construction.
func (img *Image) Kind() SampleKind { return img.kind }

// Components returns the number of components per sample.
func (img *Image) Components() int { return img.components }

// Size returns a copy of the per-axis extents.
func (img *Image) Size() []int {
	return append([]int(nil), img.size...)
}

// NumSamples returns the total number of grid positions.
func (img *Image) NumSamples() int {
	n := 1
	for _, s := range img.size {
		n *= s
	}
	return n
}

// Origin returns a copy of the physical coordinate of index zero.
func (img *Image) Origin() []float64 {
	return append([]float64(nil), img.geom.Origin...)
}

// SetOrigin rewrites the origin. Changing geometry after samples are
// populated changes the spatial interpretation of the existing data; that
// is the caller's concern, not an error.
func (img *Image) SetOrigin(origin ...float64) error {
	if len(origin) != img.Dimension() {
		return errors.Wrapf(ErrInvalidGeometry, "origin has %d entries, want %d", len(origin), img.Dimension())
	}
	copy(img.geom.Origin, origin)
	return nil
}

// Spacing returns a copy of the per-axis physical sample distances.
func (img *Image) Spacing() []float64 {
	return append([]float64(nil), img.geom.Spacing...)
}

// SetSpacing rewrites the spacing. Every entry must be strictly positive.
func (img *Image) SetSpacing(spacing ...float64) error {
	if len(spacing) != img.Dimension() {
		return errors.Wrapf(ErrInvalidGeometry, "spacing has %d entries, want %d", len(spacing), img.Dimension())
	}
	trial := img.geom.Clone()
	copy(trial.Spacing, spacing)
	if err := trial.Validate(); err != nil {
		return errors.Wrap(ErrInvalidGeometry, err.Error())
	}
	img.geom = trial
	return nil
}

// Direction returns a copy of the direction cosine matrix.
func (img *Image) Direction() *mat.Dense {
	return mat.DenseCopyOf(img.geom.Direction)
}

// SetDirection rewrites the direction matrix. It must be square with the
// image's dimension and invertible.
func (img *Image) SetDirection(direction *mat.Dense) error {
	trial := img.geom.Clone()
	trial.Direction = mat.DenseCopyOf(direction)
	if err := trial.Validate(); err != nil {
		return errors.Wrap(ErrInvalidGeometry, err.Error())
	}
	img.geom = trial
	return nil
}

// Geometry returns a deep copy of the image's spatial embedding.
func (img *Image) Geometry() models.Geometry {
	return img.geom.Clone()
}

// PhysicalPoint maps a grid index to its physical coordinate:
// origin + direction * diag(spacing) * index. The index is range-checked.
func (img *Image) PhysicalPoint(index ...int) ([]float64, error) {
	if err := img.checkIndex(index); err != nil {
		return nil, err
	}
	return img.geom.Physical(index), nil
}

// Clone returns a deep copy sharing nothing with the receiver.
func (img *Image) Clone() *Image {
	return &Image{
		kind:       img.kind,
		size:       append([]int(nil), img.size...),
		components: img.components,
		geom:       img.geom.Clone(),
		data:       append([]float64(nil), img.data...),
	}
}

// sibling allocates a zero image with the receiver's size and geometry but
// a possibly different kind and component count.
func (img *Image) sibling(kind SampleKind, components int) *Image {
	return &Image{
		kind:       kind,
		size:       append([]int(nil), img.size...),
		components: components,
		geom:       img.geom.Clone(),
		data:       make([]float64, img.NumSamples()*components*kind.scalarSlots()),
	}
}

// offset converts a multi-axis index into a flat sample position. The
// first axis varies fastest.
func (img *Image) offset(index []int) int {
	off := 0
	stride := 1
	for d := 0; d < len(img.size); d++ {
		off += index[d] * stride
		stride *= img.size[d]
	}
	return off
}

func (img *Image) checkIndex(index []int) error {
	if len(index) != len(img.size) {
		return errors.Wrapf(ErrIndexOutOfBounds, "index has %d axes, want %d", len(index), len(img.size))
	}
	for d, i := range index {
		if i < 0 || i >= img.size[d] {
			return errors.Wrapf(ErrIndexOutOfBounds, "index[%d] = %d, extent is [0, %d)", d, i, img.size[d])
		}
	}
	return nil
}
