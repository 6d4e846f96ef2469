package imgio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"voxelgrid/pkg/grid"
)

// MetaImage element type tags. Complex kinds have no MetaImage
// representation and are rejected by the writer.
var metaTypeOf = map[grid.SampleKind]string{
	grid.Uint8:   "MET_UCHAR",
	grid.Int8:    "MET_CHAR",
	grid.Uint16:  "MET_USHORT",
	grid.Int16:   "MET_SHORT",
	grid.Uint32:  "MET_UINT",
	grid.Int32:   "MET_INT",
	grid.Uint64:  "MET_ULONG_LONG",
	grid.Int64:   "MET_LONG_LONG",
	grid.Float32: "MET_FLOAT",
	grid.Float64: "MET_DOUBLE",
}

var kindOfMetaType = func() map[string]grid.SampleKind {
	m := make(map[string]grid.SampleKind, len(metaTypeOf))
	for k, v := range metaTypeOf {
		m[v] = k
	}
	return m
}()

// writeMeta stores an image as a single-file MetaImage: a line-oriented
// text header followed by the raw little-endian sample buffer, first axis
// fastest, components interleaved.
func writeMeta(img *grid.Image, path string) error {
	tag, ok := metaTypeOf[img.Kind()]
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "MetaImage cannot carry %s samples", img.Kind())
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	dim := img.Dimension()
	fmt.Fprintf(w, "ObjectType = Image\n")
	fmt.Fprintf(w, "NDims = %d\n", dim)
	fmt.Fprintf(w, "BinaryData = True\n")
	fmt.Fprintf(w, "BinaryDataByteOrderMSB = False\n")
	fmt.Fprintf(w, "CompressedData = False\n")

	dir := img.Direction()
	entries := make([]string, 0, dim*dim)
	for c := 0; c < dim; c++ {
		for r := 0; r < dim; r++ {
			entries = append(entries, formatFloat(dir.At(r, c)))
		}
	}
	fmt.Fprintf(w, "TransformMatrix = %s\n", strings.Join(entries, " "))
	fmt.Fprintf(w, "Offset = %s\n", joinFloats(img.Origin()))
	fmt.Fprintf(w, "ElementSpacing = %s\n", joinFloats(img.Spacing()))
	fmt.Fprintf(w, "DimSize = %s\n", joinInts(img.Size()))
	fmt.Fprintf(w, "ElementNumberOfChannels = %d\n", img.Components())
	fmt.Fprintf(w, "ElementType = %s\n", tag)
	fmt.Fprintf(w, "ElementDataFile = LOCAL\n")

	if err := writeSamples(w, img); err != nil {
		return err
	}
	return w.Flush()
}

func writeSamples(w io.Writer, img *grid.Image) error {
	kind := img.Kind()
	size := img.Size()
	dim := len(size)
	idx := make([]int, dim)
	for {
		tuple, err := img.AtVector(idx...)
		if err != nil {
			return err
		}
		for _, v := range tuple {
			if err := writeScalar(w, kind, v); err != nil {
				return err
			}
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
	return nil
}

func writeScalar(w io.Writer, kind grid.SampleKind, v float64) error {
	switch kind {
	case grid.Uint8:
		return binary.Write(w, binary.LittleEndian, uint8(v))
	case grid.Int8:
		return binary.Write(w, binary.LittleEndian, int8(v))
	case grid.Uint16:
		return binary.Write(w, binary.LittleEndian, uint16(v))
	case grid.Int16:
		return binary.Write(w, binary.LittleEndian, int16(v))
	case grid.Uint32:
		return binary.Write(w, binary.LittleEndian, uint32(v))
	case grid.Int32:
		return binary.Write(w, binary.LittleEndian, int32(v))
	case grid.Uint64:
		return binary.Write(w, binary.LittleEndian, uint64(v))
	case grid.Int64:
		return binary.Write(w, binary.LittleEndian, int64(v))
	case grid.Float32:
		return binary.Write(w, binary.LittleEndian, float32(v))
	case grid.Float64:
		return binary.Write(w, binary.LittleEndian, v)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "MetaImage cannot carry %s samples", kind)
	}
}

// readMeta loads a single-file MetaImage written by writeMeta or any other
// producer of uncompressed LOCAL little-endian content.
func readMeta(path string) (*grid.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := bufio.NewReader(file)

	header := map[string]string{}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "reading MetaImage header")
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, errors.Newf("malformed MetaImage header line: %q", strings.TrimSpace(line))
		}
		key = strings.TrimSpace(key)
		header[key] = strings.TrimSpace(value)
		if key == "ElementDataFile" {
			break
		}
	}

	if header["ElementDataFile"] != "LOCAL" {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "only LOCAL MetaImage data is supported, got %q", header["ElementDataFile"])
	}
	if strings.EqualFold(header["CompressedData"], "True") {
		return nil, errors.Wrap(ErrUnsupportedFormat, "compressed MetaImage data")
	}
	if strings.EqualFold(header["BinaryDataByteOrderMSB"], "True") {
		return nil, errors.Wrap(ErrUnsupportedFormat, "big-endian MetaImage data")
	}

	kind, ok := kindOfMetaType[header["ElementType"]]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "element type %q", header["ElementType"])
	}
	size, err := parseInts(header["DimSize"])
	if err != nil {
		return nil, errors.Wrap(err, "parsing DimSize")
	}
	dim := len(size)

	components := 1
	if s, ok := header["ElementNumberOfChannels"]; ok {
		components, err = strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrap(err, "parsing ElementNumberOfChannels")
		}
	}

	opts := []grid.Option{grid.WithComponents(components)}
	if s, ok := header["Offset"]; ok {
		origin, err := parseFloats(s)
		if err != nil {
			return nil, errors.Wrap(err, "parsing Offset")
		}
		opts = append(opts, grid.WithOrigin(origin...))
	}
	if s, ok := header["ElementSpacing"]; ok {
		spacing, err := parseFloats(s)
		if err != nil {
			return nil, errors.Wrap(err, "parsing ElementSpacing")
		}
		opts = append(opts, grid.WithSpacing(spacing...))
	}
	if s, ok := header["TransformMatrix"]; ok {
		entries, err := parseFloats(s)
		if err != nil {
			return nil, errors.Wrap(err, "parsing TransformMatrix")
		}
		if len(entries) != dim*dim {
			return nil, errors.Newf("TransformMatrix has %d entries, want %d", len(entries), dim*dim)
		}
		dir := mat.NewDense(dim, dim, nil)
		for c := 0; c < dim; c++ {
			for row := 0; row < dim; row++ {
				dir.Set(row, c, entries[c*dim+row])
			}
		}
		opts = append(opts, grid.WithDirection(dir))
	}

	img, err := grid.New(kind, size, opts...)
	if err != nil {
		return nil, err
	}

	idx := make([]int, dim)
	tuple := make([]float64, components)
	for {
		for c := 0; c < components; c++ {
			v, err := readScalar(r, kind)
			if err != nil {
				return nil, errors.Wrap(err, "reading MetaImage samples")
			}
			tuple[c] = v
		}
		if err := img.SetVector(tuple, idx...); err != nil {
			return nil, err
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

func readScalar(r io.Reader, kind grid.SampleKind) (float64, error) {
	switch kind {
	case grid.Uint8:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Int8:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Uint16:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Int16:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Uint32:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Int32:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Uint64:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Int64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Float32:
		var v float32
		err := binary.Read(r, binary.LittleEndian, &v)
		return float64(v), err
	case grid.Float64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "element kind %s", kind)
	}
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
