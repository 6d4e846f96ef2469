// Package imgio reads and writes spatially calibrated grids. The codec is
// chosen by file extension: PNG and JPEG carry 2-D grayscale content,
// MetaImage (.mha) carries any dimension and real sample kind along with
// the full geometry.
package imgio

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"voxelgrid/pkg/grid"
)

// ErrUnsupportedFormat flags a file extension no codec handles, or content
// a codec cannot represent.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Read loads an image from disk, dispatching on the file extension.
func Read(path string) (*grid.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return readRaster(path)
	case ".mha":
		return readMeta(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", filepath.Ext(path))
	}
}

// Write stores an image to disk, dispatching on the file extension. PNG
// and JPEG accept 2-D single-component integer content up to 16 bits;
// MetaImage accepts any dimension and real kind.
func Write(img *grid.Image, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return writeRaster(img, path, "png")
	case ".jpg", ".jpeg":
		return writeRaster(img, path, "jpeg")
	case ".mha":
		return writeMeta(img, path)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "extension %q", filepath.Ext(path))
	}
}

// readRaster decodes a PNG or JPEG into a 2-D grid image: 16-bit sources
// become Uint16, everything else Uint8, color collapses to luma.
func readRaster(path string) (*grid.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	kind := grid.Uint8
	if _, ok := decoded.(*image.Gray16); ok {
		kind = grid.Uint16
	}
	img, err := grid.New(kind, []int{w, h})
	if err != nil {
		return nil, err
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.Gray16Model.Convert(decoded.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			v := float64(c.Y)
			if kind == grid.Uint8 {
				v = float64(c.Y >> 8)
			}
			if err := img.Set(v, x, y); err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

func writeRaster(img *grid.Image, path, format string) error {
	if img.Dimension() != 2 {
		return errors.Wrapf(ErrUnsupportedFormat, "%s can only carry 2-dimensional images, got %d axes", format, img.Dimension())
	}
	if img.Components() != 1 || img.Kind().IsComplex() {
		return errors.Wrapf(ErrUnsupportedFormat, "%s can only carry single-component real samples", format)
	}

	size := img.Size()
	w, h := size[0], size[1]

	var m image.Image
	switch img.Kind() {
	case grid.Uint8:
		g := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v, err := img.At(x, y)
				if err != nil {
					return err
				}
				g.SetGray(x, y, color.Gray{Y: uint8(v)})
			}
		}
		m = g
	case grid.Uint16:
		g := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v, err := img.At(x, y)
				if err != nil {
					return err
				}
				g.SetGray16(x, y, color.Gray16{Y: uint16(v)})
			}
		}
		m = g
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%s cannot carry %s samples, convert or use .mha", format, img.Kind())
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if format == "png" {
		return png.Encode(file, m)
	}
	return jpeg.Encode(file, m, &jpeg.Options{Quality: 95})
}
