package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"voxelgrid/pkg/config"
	"voxelgrid/pkg/fetch"
	"voxelgrid/pkg/grid"
	"voxelgrid/pkg/imgio"
	"voxelgrid/pkg/view"
)

const usage = `Usage: voxelgrid [flags] <command> [arguments]

Commands:
  info <image>              Print size, kind and geometry of an image
  convert <in> <out>        Re-encode an image, format chosen by extension
  planes <image>            Save every plane of a 3-D image along an axis
  disc <out>                Rasterize x^2+y^2 < r^2 over [-1,1]^2
  fetch <asset>             Resolve a configured asset to a local file
`

func main() {
	configPath := flag.String("config", "voxelgrid.yaml", "Path to the YAML configuration file")
	axis := flag.String("axis", "z", "Axis for the planes command (x, y or z)")
	outDir := flag.String("out", "planes", "Output directory for the planes command")
	size := flag.Int("size", 256, "Grid extent per axis for the disc command")
	radius := flag.Float64("radius", math.Sqrt(0.5), "Disc radius for the disc command")
	timeout := flag.Duration("timeout", 5*time.Minute, "Download timeout for the fetch command")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalw("failed to load configuration", "path", *configPath, "error", err)
	}
	grid.GeometryTolerance = cfg.Tolerance()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		err = runInfo(args)
	case "convert":
		err = runConvert(args, log)
	case "planes":
		err = runPlanes(args, *axis, *outDir, cfg, log)
	case "disc":
		err = runDisc(args, *size, *radius, log)
	case "fetch":
		err = runFetch(args, cfg, *timeout, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalw("command failed", "command", command, "error", err)
	}
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info takes exactly one image path")
	}
	img, err := imgio.Read(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Path:       %s\n", args[0])
	fmt.Printf("Dimension:  %d\n", img.Dimension())
	fmt.Printf("Kind:       %s\n", img.Kind())
	fmt.Printf("Components: %d\n", img.Components())
	fmt.Printf("Size:       %v\n", img.Size())
	fmt.Printf("Origin:     %v\n", img.Origin())
	fmt.Printf("Spacing:    %v\n", img.Spacing())
	fmt.Printf("Direction:\n%v\n", mat.Formatted(img.Direction(), mat.Prefix("  "), mat.Squeeze()))
	return nil
}

func runConvert(args []string, log *zap.SugaredLogger) error {
	if len(args) != 2 {
		return fmt.Errorf("convert takes an input and an output path")
	}
	img, err := imgio.Read(args[0])
	if err != nil {
		return err
	}
	if err := imgio.Write(img, args[1]); err != nil {
		return err
	}
	log.Infow("converted image", "from", args[0], "to", args[1], "kind", img.Kind().String(), "size", img.Size())
	return nil
}

func runPlanes(args []string, axis, outDir string, cfg *config.Config, log *zap.SugaredLogger) error {
	if len(args) != 1 {
		return fmt.Errorf("planes takes exactly one image path")
	}
	img, err := imgio.Read(args[0])
	if err != nil {
		return err
	}
	viewer := view.NewViewer(cfg.Viewer.JpegQuality)
	if err := viewer.SavePlaneSequence(img, axis, outDir, cfg.Viewer.PlaneFormat); err != nil {
		return err
	}
	log.Infow("saved plane sequence", "axis", axis, "dir", outDir)
	return nil
}

// runDisc rasterizes the implicit function x^2 + y^2 < r^2 from a
// physical point source over [-1,1]^2 and writes the resulting mask,
// scaled to full contrast, as a 2-D image.
func runDisc(args []string, size int, radius float64, log *zap.SugaredLogger) error {
	if len(args) != 1 {
		return fmt.Errorf("disc takes exactly one output path")
	}
	spacing := 2.0 / float64(size-1)
	ps, err := grid.NewPointSource(grid.Float64, []int{size, size}, []float64{-1, -1}, []float64{spacing, spacing})
	if err != nil {
		return err
	}
	x, err := ps.Component(0)
	if err != nil {
		return err
	}
	y, err := ps.Component(1)
	if err != nil {
		return err
	}
	x2, err := x.Mul(x)
	if err != nil {
		return err
	}
	y2, err := y.Mul(y)
	if err != nil {
		return err
	}
	r2, err := x2.Add(y2)
	if err != nil {
		return err
	}
	mask, err := r2.LessScalar(radius * radius)
	if err != nil {
		return err
	}
	if err := imgio.Write(mask.MulScalar(255), args[0]); err != nil {
		return err
	}
	log.Infow("rasterized disc", "size", size, "radius", radius, "path", args[0])
	return nil
}

func runFetch(args []string, cfg *config.Config, timeout time.Duration, log *zap.SugaredLogger) error {
	if len(args) != 1 {
		return fmt.Errorf("fetch takes exactly one asset name")
	}
	cache := fetch.New(cfg.Cache.Dir, log.Desugar())
	for name, source := range cfg.Cache.Assets {
		cache.Register(name, source)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	path, err := cache.Fetch(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
