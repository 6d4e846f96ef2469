// Package view renders spatially calibrated grids for visual inspection.
// It projects a 2-D image (or one axis-aligned plane of a 3-D one) onto a
// 16-bit grayscale raster, windowing the sample range onto the display
// range, and saves single planes or whole plane sequences to disk.
package view

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"

	"voxelgrid/pkg/grid"
)

// Viewer turns grid images into displayable rasters.
type Viewer struct {
	// quality is the JPEG encode quality used by Save.
	quality int
}

// NewViewer creates a viewer with the given JPEG quality (1-100).
func NewViewer(quality int) *Viewer {
	if quality < 1 || quality > 100 {
		quality = 90
	}
	return &Viewer{quality: quality}
}

// Show renders a 2-D scalar image to a 16-bit grayscale raster. The sample
// range [min, max] is windowed linearly onto [0, 65535]; a constant image
// renders black.
func (v *Viewer) Show(img *grid.Image) (image.Image, error) {
	if img.Dimension() != 2 {
		return nil, errors.Newf("can only show 2-dimensional images, got %d axes", img.Dimension())
	}
	if img.Components() != 1 || img.Kind().IsComplex() {
		return nil, errors.New("can only show single-component real images")
	}

	size := img.Size()
	w, h := size[0], size[1]

	samples := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s, err := img.At(x, y)
			if err != nil {
				return nil, err
			}
			samples = append(samples, s)
		}
	}
	lo := floats.Min(samples)
	hi := floats.Max(samples)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	out := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := samples[y*w+x]
			value := uint16((s - lo) / span * 65535)
			out.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return out, nil
}

// ShowPlane extracts one axis-aligned plane of a 3-D image and renders it.
// The axis names the grid axis held fixed: "x", "y" or "z".
func (v *Viewer) ShowPlane(img *grid.Image, axis string, position int) (image.Image, error) {
	plane, err := ExtractPlane(img, axis, position)
	if err != nil {
		return nil, err
	}
	return v.Show(plane)
}

// ExtractPlane slices one axis-aligned plane out of a 3-D image, returning
// a 2-D image that keeps the source's sample kind and in-plane geometry.
func ExtractPlane(img *grid.Image, axis string, position int) (*grid.Image, error) {
	if img.Dimension() != 3 {
		return nil, errors.Newf("plane extraction needs a 3-dimensional image, got %d axes", img.Dimension())
	}

	var fixed int
	switch strings.ToLower(axis) {
	case "x":
		fixed = 0
	case "y":
		fixed = 1
	case "z":
		fixed = 2
	default:
		return nil, errors.Newf("invalid axis: %s (must be x, y, or z)", axis)
	}

	size := img.Size()
	if position < 0 || position >= size[fixed] {
		return nil, errors.Newf("position %d exceeds extent %d on axis %s", position, size[fixed], axis)
	}

	ranges := []grid.Range{grid.All(), grid.All(), grid.All()}
	ranges[fixed] = grid.Pick(position)
	cube, err := img.Slice(ranges...)
	if err != nil {
		return nil, err
	}

	// Flatten the singleton axis by re-reading the slab into a 2-D image.
	var w, h, a0, a1 int
	switch fixed {
	case 0:
		w, h, a0, a1 = size[2], size[1], 2, 1
	case 1:
		w, h, a0, a1 = size[0], size[2], 0, 2
	case 2:
		w, h, a0, a1 = size[0], size[1], 0, 1
	}

	plane, err := grid.New(img.Kind(), []int{w, h})
	if err != nil {
		return nil, err
	}
	idx := []int{0, 0, 0}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx[fixed] = 0
			idx[a0] = x
			idx[a1] = y
			s, err := cube.At(idx...)
			if err != nil {
				return nil, err
			}
			if err := plane.Set(s, x, y); err != nil {
				return nil, err
			}
		}
	}

	spacing := img.Spacing()
	if err := plane.SetSpacing(spacing[a0], spacing[a1]); err != nil {
		return nil, err
	}
	origin, err := cube.PhysicalPoint(0, 0, 0)
	if err != nil {
		return nil, err
	}
	if err := plane.SetOrigin(origin[a0], origin[a1]); err != nil {
		return nil, err
	}
	return plane, nil
}

// Save encodes a rendered raster to disk, choosing the codec by extension
// (.png, .jpg or .jpeg).
func (v *Viewer) Save(m image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return png.Encode(file, m)
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, m, &jpeg.Options{Quality: v.quality})
	default:
		return errors.Newf("unsupported display format: %s", filepath.Ext(filename))
	}
}

// SavePlaneSequence renders and saves every plane of a 3-D image along the
// given axis into outputDir, one file per position. The format names the
// file extension ("jpg", "jpeg" or "png"); empty defaults to "jpg".
func (v *Viewer) SavePlaneSequence(img *grid.Image, axis, outputDir, format string) error {
	if img.Dimension() != 3 {
		return errors.Newf("plane sequences need a 3-dimensional image, got %d axes", img.Dimension())
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "jpg"
	}
	switch format {
	case "jpg", "jpeg", "png":
	default:
		return errors.Newf("unsupported plane format: %s", format)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	size := img.Size()
	switch strings.ToLower(axis) {
	case "x":
		maxPos = size[0]
	case "y":
		maxPos = size[1]
	case "z":
		maxPos = size[2]
	default:
		return errors.Newf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		m, err := v.ShowPlane(img, axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("plane_%s_%03d.%s", strings.ToLower(axis), pos, format))
		if err := v.Save(m, filename); err != nil {
			return err
		}
	}
	return nil
}
