package slicer

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

func TestGridExactFit(t *testing.T) {
	set, err := Grid("sheet.png", 16, 16, GridOptions{CellWidth: 8, CellHeight: 8})
	if err != nil {
		t.Fatalf("Grid() error: %v", err)
	}

	want := []slice.Rect{
		{X: 0, Y: 0, Width: 8, Height: 8},
		{X: 8, Y: 0, Width: 8, Height: 8},
		{X: 0, Y: 8, Width: 8, Height: 8},
		{X: 8, Y: 8, Width: 8, Height: 8},
	}
	if len(set.Slices) != len(want) {
		t.Fatalf("got %d slices, want %d", len(set.Slices), len(want))
	}
	for i := range want {
		if set.Slices[i] != want[i] {
			t.Errorf("slice %d = %+v, want %+v", i, set.Slices[i], want[i])
		}
	}
	if set.SourcePath != "sheet.png" || set.ImageWidth != 16 || set.ImageHeight != 16 {
		t.Errorf("metadata = %q %dx%d", set.SourcePath, set.ImageWidth, set.ImageHeight)
	}
}

func TestGridWithMargin(t *testing.T) {
	set, err := Grid("sheet.png", 10, 10, GridOptions{CellWidth: 8, CellHeight: 8, Margin: 1})
	if err != nil {
		t.Fatalf("Grid() error: %v", err)
	}
	want := slice.Rect{X: 1, Y: 1, Width: 8, Height: 8}
	if set.Len() != 1 || set.Slices[0] != want {
		t.Errorf("slices = %+v, want [%+v]", set.Slices, want)
	}
}

func TestGridMismatch(t *testing.T) {
	set, err := Grid("sheet.png", 10, 10, GridOptions{CellWidth: 3, CellHeight: 3})
	if set != nil {
		t.Errorf("Grid() returned %d slices on mismatch", set.Len())
	}
	if !errs.Is(err, errs.ErrCodeGridMismatch) {
		t.Fatalf("Grid() error = %v, want GRID_MISMATCH", err)
	}

	var gridErr *GridError
	if !errors.As(err, &gridErr) {
		t.Fatalf("error should be a *GridError, got %T", err)
	}
	if gridErr.UsableWidth != 10 || gridErr.UsableHeight != 10 || gridErr.CellWidth != 3 || gridErr.CellHeight != 3 {
		t.Errorf("GridError = %+v, want usable 10x10 and cell 3x3", gridErr)
	}
	for _, part := range []string{"10x10", "3x3", "margin 0"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("message %q should mention %q", err.Error(), part)
		}
	}
}

func TestGridMarginTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		margin int
	}{
		{"exactly half", 10, 10, 5},
		{"beyond", 10, 10, 7},
		{"height only", 20, 4, 2},
		{"odd size past half", 11, 11, 6},
		{"huge margin", 16, 16, 1<<62 + 16},
		{"max margin", 16, 16, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grid("sheet.png", tt.w, tt.h, GridOptions{CellWidth: 1, CellHeight: 1, Margin: tt.margin})
			if !errs.Is(err, errs.ErrCodeMarginTooLarge) {
				t.Fatalf("Grid() error = %v, want MARGIN_TOO_LARGE", err)
			}
			var gridErr *GridError
			if !errors.As(err, &gridErr) || gridErr.Margin != tt.margin {
				t.Errorf("GridError = %+v, want margin %d", gridErr, tt.margin)
			}
		})
	}
}

func TestGridHugeMarginAndCells(t *testing.T) {
	set, err := Grid("sheet.png", 16, 16, GridOptions{
		CellWidth:  math.MaxInt - 15,
		CellHeight: math.MaxInt - 15,
		Margin:     1<<62 + 16,
	})
	if !errs.Is(err, errs.ErrCodeMarginTooLarge) {
		t.Fatalf("Grid() = %v, %v; want MARGIN_TOO_LARGE", set, err)
	}
	var gridErr *GridError
	if errors.As(err, &gridErr) && (gridErr.UsableWidth != 0 || gridErr.UsableHeight != 0) {
		t.Errorf("usable = %dx%d, want 0x0", gridErr.UsableWidth, gridErr.UsableHeight)
	}
}

func TestGridOddSizeLargestMargin(t *testing.T) {
	set, err := Grid("sheet.png", 11, 11, GridOptions{CellWidth: 1, CellHeight: 1, Margin: 5})
	if err != nil {
		t.Fatalf("Grid() error = %v", err)
	}
	if set.Len() != 1 || set.Slices[0] != (slice.Rect{X: 5, Y: 5, Width: 1, Height: 1}) {
		t.Errorf("slices = %+v, want the single center pixel", set.Slices)
	}
}

func TestGridInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		opts GridOptions
	}{
		{"zero image width", 0, 10, GridOptions{CellWidth: 1, CellHeight: 1}},
		{"negative image height", 10, -1, GridOptions{CellWidth: 1, CellHeight: 1}},
		{"zero cell width", 10, 10, GridOptions{CellWidth: 0, CellHeight: 1}},
		{"negative cell height", 10, 10, GridOptions{CellWidth: 1, CellHeight: -2}},
		{"negative margin", 10, 10, GridOptions{CellWidth: 1, CellHeight: 1, Margin: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grid("sheet.png", tt.w, tt.h, tt.opts)
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Grid() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestGridNaming(t *testing.T) {
	set, err := Grid("sheet.png", 4, 2, GridOptions{CellWidth: 2, CellHeight: 2})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range set.Slices {
		if r.Name != "" {
			t.Errorf("default naming should leave names empty, got %q", r.Name)
		}
	}

	set, err = Grid("sheet.png", 4, 2, GridOptions{CellWidth: 2, CellHeight: 2, Naming: NamingIndex})
	if err != nil {
		t.Fatal(err)
	}
	if set.Slices[0].Name != "cell_000" || set.Slices[1].Name != "cell_001" {
		t.Errorf("names = %q, %q, want cell_000, cell_001", set.Slices[0].Name, set.Slices[1].Name)
	}
}

// TestGridTilesUsableArea checks that cells are pairwise disjoint and cover
// the usable area exactly, for every parameter combination that divides.
func TestGridTilesUsableArea(t *testing.T) {
	for w := 1; w <= 12; w++ {
		for h := 1; h <= 12; h++ {
			for cw := 1; cw <= 6; cw++ {
				for ch := 1; ch <= 6; ch++ {
					for m := 0; m <= 3; m++ {
						uw, uh := w-2*m, h-2*m
						if uw <= 0 || uh <= 0 || uw%cw != 0 || uh%ch != 0 {
							continue
						}
						set, err := Grid("s", w, h, GridOptions{CellWidth: cw, CellHeight: ch, Margin: m})
						if err != nil {
							t.Fatalf("Grid(%d,%d,%d,%d,%d) error: %v", w, h, cw, ch, m, err)
						}
						checkTiling(t, set, image.Rect(m, m, m+uw, m+uh))
					}
				}
			}
		}
	}
}

func checkTiling(t *testing.T, set *slice.Set, usable image.Rectangle) {
	t.Helper()
	covered := make(map[image.Point]int)
	area := 0
	for _, r := range set.Slices {
		b := r.Bounds()
		if !b.In(usable) {
			t.Fatalf("cell %v outside usable %v", b, usable)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				covered[image.Pt(x, y)]++
			}
		}
		area += r.Width * r.Height
	}
	if area != usable.Dx()*usable.Dy() || len(covered) != area {
		t.Fatalf("cells cover %d distinct pixels with area %d, want %d", len(covered), area, usable.Dx()*usable.Dy())
	}

	// Row-major order: y never decreases and x increases within a row.
	for i := 1; i < len(set.Slices); i++ {
		prev, cur := set.Slices[i-1], set.Slices[i]
		if cur.Y < prev.Y || (cur.Y == prev.Y && cur.X <= prev.X) {
			t.Fatalf("cells %d and %d out of row-major order: %+v then %+v", i-1, i, prev, cur)
		}
	}
}
