package view

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"voxelgrid/pkg/grid"
)

// buildVolume fills a 3-D image with the value x + 10*y + 100*z.
func buildVolume(t *testing.T, w, h, d int) *grid.Image {
	t.Helper()
	img, err := grid.New(grid.Float64, []int{w, h, d})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if err := img.Set(float64(x+10*y+100*z), x, y, z); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
		}
	}
	return img
}

// TestShowWindowsSampleRange verifies that Show maps the sample range
// linearly onto the 16-bit display range.
func TestShowWindowsSampleRange(t *testing.T) {
	img, _ := grid.New(grid.Float64, []int{3, 2})
	img.Set(-10, 0, 0)
	img.Set(0, 1, 0)
	img.Set(10, 2, 1)

	m, err := NewViewer(90).Show(img)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	gray, ok := m.(*image.Gray16)
	if !ok {
		t.Fatalf("Expected a Gray16 raster, got %T", m)
	}
	if gray.Bounds().Dx() != 3 || gray.Bounds().Dy() != 2 {
		t.Fatalf("Expected 3x2 raster, got %v", gray.Bounds())
	}

	if v := gray.Gray16At(0, 0).Y; v != 0 {
		t.Errorf("Expected minimum sample to render as 0, got %d", v)
	}
	if v := gray.Gray16At(2, 1).Y; v != 65535 {
		t.Errorf("Expected maximum sample to render as 65535, got %d", v)
	}
	if v := gray.Gray16At(1, 0).Y; v < 32000 || v > 33500 {
		t.Errorf("Expected midrange sample near 32767, got %d", v)
	}
}

// TestShowRejectsUnshowable verifies dimension and kind restrictions.
func TestShowRejectsUnshowable(t *testing.T) {
	v := NewViewer(90)

	vol := buildVolume(t, 2, 2, 2)
	if _, err := v.Show(vol); err == nil {
		t.Error("Expected 3-D input to fail Show")
	}

	vec, _ := grid.New(grid.Float64, []int{2, 2}, grid.WithComponents(2))
	if _, err := v.Show(vec); err == nil {
		t.Error("Expected vector input to fail Show")
	}
}

// TestExtractPlane verifies sample selection and in-plane geometry of an
// axis-aligned plane.
func TestExtractPlane(t *testing.T) {
	vol := buildVolume(t, 4, 3, 2)
	if err := vol.SetSpacing(1.0, 2.0, 3.0); err != nil {
		t.Fatalf("SetSpacing failed: %v", err)
	}

	plane, err := ExtractPlane(vol, "z", 1)
	if err != nil {
		t.Fatalf("ExtractPlane failed: %v", err)
	}
	size := plane.Size()
	if size[0] != 4 || size[1] != 3 {
		t.Fatalf("Expected 4x3 plane, got %v", size)
	}
	if v, _ := plane.At(2, 1); v != 112 {
		t.Errorf("Expected sample 112 at (2,1), got %v", v)
	}
	s := plane.Spacing()
	if s[0] != 1.0 || s[1] != 2.0 {
		t.Errorf("Expected in-plane spacing [1 2], got %v", s)
	}

	if _, err := ExtractPlane(vol, "z", 2); err == nil {
		t.Error("Expected out-of-extent position to fail")
	}
	if _, err := ExtractPlane(vol, "w", 0); err == nil {
		t.Error("Expected invalid axis to fail")
	}

	// x-plane is laid out depth-by-height like the saved sequences.
	xplane, err := ExtractPlane(vol, "x", 3)
	if err != nil {
		t.Fatalf("ExtractPlane failed: %v", err)
	}
	if xplane.Size()[0] != 2 || xplane.Size()[1] != 3 {
		t.Errorf("Expected 2x3 x-plane, got %v", xplane.Size())
	}
	if v, _ := xplane.At(1, 2); v != 123 {
		t.Errorf("Expected sample 123, got %v", v)
	}
}

// TestSaveAndSequence verifies encoded output lands on disk.
func TestSaveAndSequence(t *testing.T) {
	dir := t.TempDir()
	v := NewViewer(90)

	img, _ := grid.New(grid.Uint8, []int{4, 4})
	img.Set(255, 0, 0)
	m, err := v.Show(img)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	pngPath := filepath.Join(dir, "plane.png")
	if err := v.Save(m, pngPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if fi, err := os.Stat(pngPath); err != nil || fi.Size() == 0 {
		t.Errorf("Expected a non-empty PNG at %s", pngPath)
	}

	if err := v.Save(m, filepath.Join(dir, "plane.bmp")); err == nil {
		t.Error("Expected an unsupported extension to fail")
	}

	vol := buildVolume(t, 3, 3, 2)
	seqDir := filepath.Join(dir, "seq")
	if err := v.SavePlaneSequence(vol, "z", seqDir, ""); err != nil {
		t.Fatalf("SavePlaneSequence failed: %v", err)
	}
	entries, err := os.ReadDir(seqDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 saved planes, got %d", len(entries))
	}
}

// TestSavePlaneSequenceFormat verifies that the configured format picks the
// encoder and file extension of the saved planes.
func TestSavePlaneSequenceFormat(t *testing.T) {
	v := NewViewer(90)
	vol := buildVolume(t, 3, 3, 2)

	cases := []struct {
		format string
		ext    string
	}{
		{"png", ".png"},
		{".png", ".png"},
		{"jpeg", ".jpeg"},
		{"", ".jpg"},
	}
	for _, c := range cases {
		dir := t.TempDir()
		if err := v.SavePlaneSequence(vol, "z", dir, c.format); err != nil {
			t.Fatalf("SavePlaneSequence(%q) failed: %v", c.format, err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 saved planes for %q, got %d", c.format, len(entries))
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) != c.ext {
				t.Errorf("Expected extension %s for format %q, got %s", c.ext, c.format, e.Name())
			}
		}
	}

	if err := v.SavePlaneSequence(vol, "z", t.TempDir(), "bmp"); err == nil {
		t.Error("Expected an unsupported format to fail")
	}
}
