package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// sheet returns a 16x16 image whose four 8x8 quadrants have distinct colors.
func sheet() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	colors := []color.NRGBA{
		{255, 0, 0, 255}, {0, 255, 0, 255},
		{0, 0, 255, 255}, {255, 255, 0, 128},
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, colors[(y/8)*2+x/8])
		}
	}
	return img
}

func quadrants() *slice.Set {
	s := slice.New("sheet.png", 16, 16)
	s.Slices = []slice.Rect{
		{X: 0, Y: 0, Width: 8, Height: 8, Name: "a"},
		{X: 8, Y: 0, Width: 8, Height: 8, Name: "b"},
		{X: 0, Y: 8, Width: 8, Height: 8, Name: "c"},
		{X: 8, Y: 8, Width: 8, Height: 8, Name: "d"},
	}
	return s
}

func memDecoder(img image.Image) Decoder {
	return func(string) (image.Image, error) { return img, nil }
}

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.png")
	if err := imaging.Save(sheet(), path); err != nil {
		t.Fatalf("save sheet: %v", err)
	}
	return path
}

func TestExportWritesSlicesAndManifest(t *testing.T) {
	src := writeSheet(t)
	out := filepath.Join(t.TempDir(), "out")

	subset, err := quadrants().Subset([]int{3, 0})
	if err != nil {
		t.Fatal(err)
	}

	n, err := New().Export(context.Background(), src, subset, out)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Export() = %d, want 2", n)
	}

	d, err := imaging.Open(filepath.Join(out, "d.png"))
	if err != nil {
		t.Fatalf("open d.png: %v", err)
	}
	if d.Bounds().Dx() != 8 || d.Bounds().Dy() != 8 {
		t.Errorf("d.png is %v, want 8x8", d.Bounds())
	}
	got := color.NRGBAModel.Convert(d.At(3, 3)).(color.NRGBA)
	if got != (color.NRGBA{255, 255, 0, 128}) {
		t.Errorf("d.png pixel = %v, want the bottom-right quadrant color", got)
	}

	if _, err := os.Stat(filepath.Join(out, "b.png")); !os.IsNotExist(err) {
		t.Error("unselected slice b should not be written")
	}

	m, err := slice.ImportManifest(filepath.Join(out, slice.ManifestName))
	if err != nil {
		t.Fatalf("ImportManifest() error: %v", err)
	}
	if m.Len() != 2 || m.Slices[0].Name != "d" || m.Slices[1].Name != "a" {
		t.Errorf("manifest slices = %+v, want d then a", m.Slices)
	}
	if m.SourcePath != "sheet.png" || m.ImageWidth != 16 || m.ImageHeight != 16 {
		t.Errorf("manifest metadata = %q %dx%d", m.SourcePath, m.ImageWidth, m.ImageHeight)
	}
}

func TestExportStopsOnFirstFailure(t *testing.T) {
	out := t.TempDir()
	calls := 0
	failing := func(w io.Writer, img image.Image) error {
		calls++
		if calls == 2 {
			return errors.New("disk full")
		}
		return EncodePNG(w, img)
	}

	subset, err := quadrants().Subset([]int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	exp := New(WithDecoder(memDecoder(sheet())), WithEncoder(failing))

	n, err := exp.Export(context.Background(), "sheet.png", subset, out)
	if !errs.Is(err, errs.ErrCodeIO) {
		t.Fatalf("Export() error = %v, want IO_FAILED", err)
	}
	if n != 1 {
		t.Errorf("Export() = %d, want 1 written before the failure", n)
	}
	if calls != 2 {
		t.Errorf("encoder called %d times, want 2", calls)
	}
	if _, err := os.Stat(filepath.Join(out, "a.png")); err != nil {
		t.Errorf("a.png should remain after a later failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "c.png")); !os.IsNotExist(err) {
		t.Error("c.png should never be attempted")
	}
	if _, err := os.Stat(filepath.Join(out, slice.ManifestName)); !os.IsNotExist(err) {
		t.Error("manifest should not be written after a failure")
	}
}

func TestExportEmptySelection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "never")
	empty := slice.New("sheet.png", 16, 16)

	for _, subset := range []*slice.Set{nil, empty} {
		n, err := New(WithDecoder(memDecoder(sheet()))).Export(context.Background(), "sheet.png", subset, out)
		if !errs.Is(err, errs.ErrCodeEmptySelection) {
			t.Errorf("Export() error = %v, want EMPTY_SELECTION", err)
		}
		if n != 0 {
			t.Errorf("Export() = %d, want 0", n)
		}
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("empty selection should not create the output directory")
	}
}

func TestExportAtomicLeavesNoTempFiles(t *testing.T) {
	out := t.TempDir()
	exp := New(WithMode(ModeAtomic), WithDecoder(memDecoder(sheet())))

	n, err := exp.Export(context.Background(), "sheet.png", quadrants(), out)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if n != 4 {
		t.Errorf("Export() = %d, want 4", n)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
	if len(names) != 5 {
		t.Errorf("output = %v, want 4 PNGs and the manifest", names)
	}
}

func TestExportAtomicFailureCleansUp(t *testing.T) {
	out := t.TempDir()
	failing := func(io.Writer, image.Image) error { return errors.New("boom") }
	exp := New(WithMode(ModeAtomic), WithDecoder(memDecoder(sheet())), WithEncoder(failing))

	if _, err := exp.Export(context.Background(), "sheet.png", quadrants(), out); err == nil {
		t.Fatal("Export() should fail")
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed atomic write left %d entries", len(entries))
	}
}

func TestExportOverwritesExisting(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "a.png")
	if err := os.WriteFile(stale, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	subset, _ := quadrants().Subset([]int{0})
	for _, mode := range []Mode{ModeDirect, ModeAtomic} {
		t.Run(mode.String(), func(t *testing.T) {
			exp := New(WithMode(mode), WithDecoder(memDecoder(sheet())))
			if _, err := exp.Export(context.Background(), "sheet.png", subset, out); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			if _, err := imaging.Open(stale); err != nil {
				t.Errorf("a.png should be a valid PNG after overwrite: %v", err)
			}
		})
	}
}

func TestExportRejectsUnsafeNames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	s := slice.New("sheet.png", 16, 16)
	s.Slices = []slice.Rect{
		{X: 0, Y: 0, Width: 8, Height: 8, Name: "ok"},
		{X: 8, Y: 0, Width: 8, Height: 8, Name: "../escape"},
	}

	_, err := New(WithDecoder(memDecoder(sheet()))).Export(context.Background(), "sheet.png", s, out)
	if !errs.Is(err, errs.ErrCodeInvalidSlice) {
		t.Fatalf("Export() error = %v, want INVALID_SLICE", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("name validation should happen before anything is created")
	}
}

func TestExportEmptyName(t *testing.T) {
	out := t.TempDir()
	s := slice.New("sheet.png", 16, 16)
	s.Slices = []slice.Rect{{X: 0, Y: 0, Width: 8, Height: 8}}

	if _, err := New(WithDecoder(memDecoder(sheet()))).Export(context.Background(), "sheet.png", s, out); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, ".png")); err != nil {
		t.Errorf("empty name should export as .png: %v", err)
	}
}

func TestExportRectOutsideDecodedImage(t *testing.T) {
	out := t.TempDir()
	small := image.NewNRGBA(image.Rect(0, 0, 8, 8))

	subset, _ := quadrants().Subset([]int{0, 3})
	n, err := New(WithDecoder(memDecoder(small))).Export(context.Background(), "sheet.png", subset, out)
	if !errs.Is(err, errs.ErrCodeInvalidSlice) {
		t.Fatalf("Export() error = %v, want INVALID_SLICE", err)
	}
	if n != 1 {
		t.Errorf("Export() = %d, want 1", n)
	}
}

func TestExportDecodeFailure(t *testing.T) {
	out := t.TempDir()
	broken := func(string) (image.Image, error) { return nil, errors.New("not an image") }

	_, err := New(WithDecoder(broken)).Export(context.Background(), "sheet.png", quadrants(), out)
	if !errs.Is(err, errs.ErrCodeDecode) {
		t.Errorf("Export() error = %v, want DECODE_FAILED", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.png")
	_, err = New().Export(context.Background(), missing, quadrants(), out)
	if !errs.Is(err, errs.ErrCodeDecode) {
		t.Errorf("Export() of missing file error = %v, want DECODE_FAILED", err)
	}
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := t.TempDir()
	n, err := New(WithDecoder(memDecoder(sheet()))).Export(ctx, "sheet.png", quadrants(), out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Export() error = %v, want context.Canceled", err)
	}
	if n != 0 {
		t.Errorf("Export() = %d, want 0", n)
	}
	if _, err := os.Stat(filepath.Join(out, slice.ManifestName)); !os.IsNotExist(err) {
		t.Error("canceled export should not write a manifest")
	}
}

func TestModeString(t *testing.T) {
	if ModeDirect.String() != "direct" || ModeAtomic.String() != "atomic" {
		t.Errorf("Mode strings = %q, %q", ModeDirect.String(), ModeAtomic.String())
	}
}
