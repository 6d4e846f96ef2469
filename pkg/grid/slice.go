package grid

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// Range selects samples along one axis with start:stop:step semantics:
// stop is exclusive, negative bounds count from the end of the axis, and a
// nil bound defaults to the full extent in the step's direction. Step must
// be non-zero; a negative step walks the axis in reverse.
type Range struct {
	Start *int
	Stop  *int
	Step  int
}

// All selects the full extent of an axis in forward order.
func All() Range {
	return Range{Step: 1}
}

// Span selects [start, stop) with step 1.
func Span(start, stop int) Range {
	return Range{Start: &start, Stop: &stop, Step: 1}
}

// SpanStep selects [start, stop) with an explicit step.
func SpanStep(start, stop, step int) Range {
	return Range{Start: &start, Stop: &stop, Step: step}
}

// StepBy selects the full extent of an axis walked with the given step;
// a negative step reverses the axis.
func StepBy(step int) Range {
	return Range{Step: step}
}

// Pick selects the single position i, keeping the axis with extent 1.
func Pick(i int) Range {
	stop := i + 1
	if i == -1 {
		// i+1 would wrap to position 0; an open bound selects to the end.
		return Range{Start: &i, Step: 1}
	}
	return Range{Start: &i, Stop: &stop, Step: 1}
}

// resolve normalizes the range against an axis of extent n, returning the
// first selected position, the number of selected positions and the step.
func (r Range) resolve(n int) (start, count, step int, err error) {
	step = r.Step
	if step == 0 {
		return 0, 0, 0, errors.Wrap(ErrInvalidSlice, "step must be non-zero")
	}

	if r.Start != nil {
		start = *r.Start
		if start < 0 {
			start += n
		}
		if step > 0 {
			start = clamp(start, 0, n)
		} else {
			start = clamp(start, -1, n-1)
		}
	} else if step > 0 {
		start = 0
	} else {
		start = n - 1
	}

	var stop int
	if r.Stop != nil {
		stop = *r.Stop
		if stop < 0 {
			stop += n
		}
		if step > 0 {
			stop = clamp(stop, 0, n)
		} else {
			stop = clamp(stop, -1, n-1)
		}
	} else if step > 0 {
		stop = n
	} else {
		stop = -1
	}

	span := stop - start
	if step > 0 {
		count = ceilDiv(span, step)
	} else {
		count = ceilDiv(-span, -step)
	}
	if count <= 0 {
		return 0, 0, 0, errors.Wrapf(ErrInvalidSlice, "range selects nothing on an axis of extent %d", n)
	}
	return start, count, step, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Slice extracts a sub-grid as an independent copy, never a view: mutating
// the result cannot change the source and vice versa. One Range applies
// per axis; trailing axes not covered by a Range keep their full extent.
//
// The result's geometry is recomputed so that every selected sample keeps
// its physical position: the new origin is the physical coordinate of the
// first selected source index, spacing is scaled by |step| per axis, and
// the direction column of an axis walked backwards is negated.
func (img *Image) Slice(ranges ...Range) (*Image, error) {
	dim := img.Dimension()
	if len(ranges) > dim {
		return nil, errors.Wrapf(ErrInvalidSlice, "%d ranges given for a %d-dimensional image", len(ranges), dim)
	}

	starts := make([]int, dim)
	steps := make([]int, dim)
	outSize := make([]int, dim)
	for d := 0; d < dim; d++ {
		r := All()
		if d < len(ranges) {
			r = ranges[d]
		}
		start, count, step, err := r.resolve(img.size[d])
		if err != nil {
			return nil, errors.Wrapf(err, "axis %d", d)
		}
		starts[d] = start
		steps[d] = step
		outSize[d] = count
	}

	out := &Image{
		kind:       img.kind,
		size:       outSize,
		components: img.components,
		geom:       img.geom.Clone(),
		data:       make([]float64, prod(outSize)*img.components*img.kind.scalarSlots()),
	}

	out.geom.Origin = img.geom.Physical(starts)
	dir := mat.DenseCopyOf(img.geom.Direction)
	for d := 0; d < dim; d++ {
		step := steps[d]
		out.geom.Spacing[d] = img.geom.Spacing[d] * float64(abs(step))
		if step < 0 {
			for r := 0; r < dim; r++ {
				dir.Set(r, d, -dir.At(r, d))
			}
		}
	}
	out.geom.Direction = dir

	slots := img.components * img.kind.scalarSlots()
	srcIdx := make([]int, dim)
	outIdx := make([]int, dim)
	for {
		for d := 0; d < dim; d++ {
			srcIdx[d] = starts[d] + outIdx[d]*steps[d]
		}
		srcBase := img.offset(srcIdx) * slots
		dstBase := out.offset(outIdx) * slots
		copy(out.data[dstBase:dstBase+slots], img.data[srcBase:srcBase+slots])

		d := 0
		for d < dim {
			outIdx[d]++
			if outIdx[d] < outSize[d] {
				break
			}
			outIdx[d] = 0
			d++
		}
		if d == dim {
			break
		}
	}
	return out, nil
}

func prod(vs []int) int {
	n := 1
	for _, v := range vs {
		n *= v
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
