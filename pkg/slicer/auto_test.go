package slicer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/pixel"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// bufferFromArt builds a buffer from rows of '#' (alpha 255), '+' (alpha 8),
// '-' (alpha 7) and '.' (alpha 0).
func bufferFromArt(t *testing.T, rows ...string) *pixel.Buffer {
	t.Helper()
	h := len(rows)
	w := len(rows[0])
	pix := make([]byte, w*h*4)
	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d has width %d, want %d", y, len(row), w)
		}
		for x, c := range row {
			var a byte
			switch c {
			case '#':
				a = 255
			case '+':
				a = 8
			case '-':
				a = 7
			}
			pix[(y*w+x)*4+3] = a
		}
	}
	b, err := pixel.New("art.png", w, h, pix)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}
	return b
}

func solid(w, h int, alpha byte) []string {
	rows := make([]string, h)
	c := "."
	if alpha > 0 {
		c = "#"
	}
	for i := range rows {
		rows[i] = strings.Repeat(c, w)
	}
	return rows
}

func TestAutoSingleBlob(t *testing.T) {
	buf := bufferFromArt(t, solid(16, 16, 255)...)

	set, err := Auto(context.Background(), buf, DefaultAutoOptions())
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("Auto() found %d slices, want 1", set.Len())
	}
	want := slice.Rect{X: 0, Y: 0, Width: 16, Height: 16, Name: "slice_000"}
	if set.Slices[0] != want {
		t.Errorf("slice = %+v, want %+v", set.Slices[0], want)
	}
	if set.SourcePath != "art.png" || set.ImageWidth != 16 || set.ImageHeight != 16 {
		t.Errorf("metadata = %q %dx%d, want art.png 16x16", set.SourcePath, set.ImageWidth, set.ImageHeight)
	}
}

func TestAutoAllTransparent(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"alpha zero", solid(8, 5, 0)},
		{"below threshold", []string{"----", "----", "----"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, stats, err := AutoWithStats(context.Background(), bufferFromArt(t, tt.rows...), DefaultAutoOptions())
			if err != nil {
				t.Fatalf("AutoWithStats() error: %v", err)
			}
			if set.Slices == nil || set.Len() != 0 {
				t.Errorf("Slices = %v, want empty non-nil", set.Slices)
			}
			if stats.Components != 0 || stats.Dequeued != 0 {
				t.Errorf("stats = %+v, want no components", stats)
			}
		})
	}
}

func TestAutoThresholdInclusive(t *testing.T) {
	buf := bufferFromArt(t,
		"....",
		".++.",
		".++.",
		"....",
	)
	set, err := Auto(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2})
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("alpha == threshold should be opaque, got %d slices", set.Len())
	}
	want := slice.Rect{X: 1, Y: 1, Width: 2, Height: 2, Name: "slice_000"}
	if set.Slices[0] != want {
		t.Errorf("slice = %+v, want %+v", set.Slices[0], want)
	}
}

func TestAutoDiscoveryOrder(t *testing.T) {
	buf := bufferFromArt(t,
		"..........",
		".......##.",
		".......##.",
		"..........",
		"##........",
		"##...###..",
		".....###..",
	)
	set, err := Auto(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2})
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}

	want := []slice.Rect{
		{X: 7, Y: 1, Width: 2, Height: 2, Name: "slice_000"},
		{X: 0, Y: 4, Width: 2, Height: 2, Name: "slice_001"},
		{X: 5, Y: 5, Width: 3, Height: 2, Name: "slice_002"},
	}
	if len(set.Slices) != len(want) {
		t.Fatalf("got %d slices, want %d: %+v", len(set.Slices), len(want), set.Slices)
	}
	for i := range want {
		if set.Slices[i] != want[i] {
			t.Errorf("slice %d = %+v, want %+v", i, set.Slices[i], want[i])
		}
	}
}

func TestAutoFourConnectivity(t *testing.T) {
	buf := bufferFromArt(t,
		"##..",
		"##..",
		"..##",
		"..##",
	)
	set, err := Auto(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 1, MinHeight: 1})
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("diagonal neighbours must not connect, got %d slices: %+v", set.Len(), set.Slices)
	}
}

func TestAutoConcaveShape(t *testing.T) {
	buf := bufferFromArt(t,
		"......",
		".#..#.",
		".#..#.",
		".####.",
		"......",
	)
	set, err := Auto(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2})
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	want := slice.Rect{X: 1, Y: 1, Width: 4, Height: 3, Name: "slice_000"}
	if set.Len() != 1 || set.Slices[0] != want {
		t.Errorf("slices = %+v, want [%+v]", set.Slices, want)
	}
}

func TestAutoDiscardsSmallComponents(t *testing.T) {
	buf := bufferFromArt(t,
		"#.........",
		"......#...",
		"..###.#...",
		"..###.#...",
		"..###.....",
		"..........",
	)
	set, stats, err := AutoWithStats(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2})
	if err != nil {
		t.Fatalf("AutoWithStats() error: %v", err)
	}

	// The dot and the 1-wide line are dropped; the block keeps its own box and
	// is named slice_000 because naming counts emitted slices only.
	want := slice.Rect{X: 2, Y: 2, Width: 3, Height: 3, Name: "slice_000"}
	if set.Len() != 1 || set.Slices[0] != want {
		t.Fatalf("slices = %+v, want [%+v]", set.Slices, want)
	}
	if stats.Components != 3 || stats.Discarded != 2 {
		t.Errorf("stats = %+v, want 3 components with 2 discarded", stats)
	}
	if stats.Visited != stats.Pixels {
		t.Errorf("Visited = %d, want %d", stats.Visited, stats.Pixels)
	}
}

func TestAutoPaddingClampsAndOverlaps(t *testing.T) {
	buf := bufferFromArt(t,
		"##.##",
		"##.##",
		".....",
	)
	set, err := Auto(context.Background(), buf, AutoOptions{AlphaThreshold: 8, MinWidth: 2, MinHeight: 2, Pad: 1})
	if err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	want := []slice.Rect{
		{X: 0, Y: 0, Width: 3, Height: 3, Name: "slice_000"},
		{X: 2, Y: 0, Width: 3, Height: 3, Name: "slice_001"},
	}
	if len(set.Slices) != 2 || set.Slices[0] != want[0] || set.Slices[1] != want[1] {
		t.Fatalf("slices = %+v, want %+v", set.Slices, want)
	}
	if !set.Slices[0].Bounds().Overlaps(set.Slices[1].Bounds()) {
		t.Error("padded neighbours are expected to overlap")
	}
	if err := set.Validate(); err != nil {
		t.Errorf("clamped slices must stay in bounds: %v", err)
	}
}

func TestAutoWorkBound(t *testing.T) {
	// A checkerboard of 2x2 blocks maximizes component count.
	rows := make([]string, 32)
	for y := range rows {
		var b strings.Builder
		for x := 0; x < 32; x++ {
			if (x/2+y/2)%2 == 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[y] = b.String()
	}

	_, stats, err := AutoWithStats(context.Background(), bufferFromArt(t, rows...), AutoOptions{AlphaThreshold: 8, MinWidth: 1, MinHeight: 1})
	if err != nil {
		t.Fatalf("AutoWithStats() error: %v", err)
	}
	if stats.Visited != stats.Pixels {
		t.Errorf("Visited = %d, want exactly %d", stats.Visited, stats.Pixels)
	}
	if stats.Dequeued > stats.Pixels {
		t.Errorf("Dequeued = %d exceeds pixel count %d", stats.Dequeued, stats.Pixels)
	}
	if stats.Dequeued != 32*32/2 {
		t.Errorf("Dequeued = %d, want %d opaque pixels", stats.Dequeued, 32*32/2)
	}
}

func TestAutoDoesNotMutateInput(t *testing.T) {
	pix := make([]byte, 4*4*4)
	for i := 3; i < len(pix); i += 8 {
		pix[i] = 255
	}
	before := bytes.Clone(pix)

	buf, err := pixel.New("mem", 4, 4, pix)
	if err != nil {
		t.Fatalf("pixel.New: %v", err)
	}
	if _, err := Auto(context.Background(), buf, DefaultAutoOptions()); err != nil {
		t.Fatalf("Auto() error: %v", err)
	}
	if !bytes.Equal(pix, before) {
		t.Error("Auto() modified the input buffer")
	}
}

func TestAutoDeterministic(t *testing.T) {
	buf := bufferFromArt(t,
		"##..##",
		"##..##",
		"......",
		"###...",
		"###...",
	)
	a, err := Auto(context.Background(), buf, DefaultAutoOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Auto(context.Background(), buf, DefaultAutoOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Slices) != len(b.Slices) {
		t.Fatalf("runs differ: %d vs %d slices", len(a.Slices), len(b.Slices))
	}
	for i := range a.Slices {
		if a.Slices[i] != b.Slices[i] {
			t.Errorf("slice %d differs: %+v vs %+v", i, a.Slices[i], b.Slices[i])
		}
	}
}

func TestAutoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := Auto(ctx, bufferFromArt(t, solid(8, 8, 255)...), DefaultAutoOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Auto() error = %v, want context.Canceled", err)
	}
	if set != nil {
		t.Error("Auto() should not return a set when canceled")
	}
}

func TestAutoOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    AutoOptions
		wantErr bool
	}{
		{"defaults", DefaultAutoOptions(), false},
		{"zero", AutoOptions{}, false},
		{"negative pad", AutoOptions{Pad: -1}, true},
		{"negative min width", AutoOptions{MinWidth: -2}, true},
		{"negative min height", AutoOptions{MinHeight: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Validate() code = %v, want INVALID_INPUT", errs.GetCode(err))
			}
		})
	}

	if _, err := Auto(context.Background(), bufferFromArt(t, "##"), AutoOptions{Pad: -1}); err == nil {
		t.Error("Auto() should reject invalid options")
	}
}

func TestDefaultAutoOptions(t *testing.T) {
	o := DefaultAutoOptions()
	if o.AlphaThreshold != 8 || o.MinWidth != 2 || o.MinHeight != 2 || o.Pad != 1 {
		t.Errorf("DefaultAutoOptions() = %+v, want {8 2 2 1}", o)
	}
}
