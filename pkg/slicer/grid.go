package slicer

import (
	"fmt"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// Naming selects how [Grid] names its cells.
type Naming int

const (
	// NamingNone leaves every cell name empty.
	NamingNone Naming = iota
	// NamingIndex names cells "cell_000", "cell_001", ... in row-major order.
	NamingIndex
)

// GridOptions configures [Grid].
type GridOptions struct {
	CellWidth  int
	CellHeight int
	Margin     int    // pixels removed from every edge before tiling
	Naming     Naming // defaults to NamingNone
}

// GridError reports grid parameters that do not fit the image.
// Code is ErrCodeMarginTooLarge or ErrCodeGridMismatch.
type GridError struct {
	Code         errs.Code
	ImageWidth   int
	ImageHeight  int
	CellWidth    int
	CellHeight   int
	Margin       int
	UsableWidth  int
	UsableHeight int
}

// Error implements the error interface.
func (e *GridError) Error() string {
	return e.Unwrap().Error()
}

// Unwrap exposes the condition as a *errors.Error so errors.Is(err, code)
// works on a GridError.
func (e *GridError) Unwrap() error {
	switch e.Code {
	case errs.ErrCodeMarginTooLarge:
		return errs.New(e.Code, "margin %d too large for %dx%d image (usable %dx%d)",
			e.Margin, e.ImageWidth, e.ImageHeight, e.UsableWidth, e.UsableHeight)
	default:
		return errs.New(e.Code, "grid doesn't fit: (%dx%d) with margin %d is not divisible by %dx%d",
			e.ImageWidth, e.ImageHeight, e.Margin, e.CellWidth, e.CellHeight)
	}
}

// Grid partitions an imageWidth x imageHeight image into cells of
// opts.CellWidth x opts.CellHeight, inside a border of opts.Margin pixels.
//
// Cells are emitted row by row, left to right. The usable area must tile
// exactly; partial trailing cells are never produced. Failures are
// INVALID_INPUT for non-positive sizes or a negative margin, and a
// [*GridError] for MARGIN_TOO_LARGE or GRID_MISMATCH.
func Grid(source string, imageWidth, imageHeight int, opts GridOptions) (*slice.Set, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "image size %dx%d unknown or empty", imageWidth, imageHeight)
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "cell size %dx%d must be positive", opts.CellWidth, opts.CellHeight)
	}
	if opts.Margin < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "margin %d cannot be negative", opts.Margin)
	}

	usableW := usableSpan(imageWidth, opts.Margin)
	usableH := usableSpan(imageHeight, opts.Margin)
	gridErr := func(code errs.Code) *GridError {
		return &GridError{
			Code:         code,
			ImageWidth:   imageWidth,
			ImageHeight:  imageHeight,
			CellWidth:    opts.CellWidth,
			CellHeight:   opts.CellHeight,
			Margin:       opts.Margin,
			UsableWidth:  usableW,
			UsableHeight: usableH,
		}
	}

	if usableW <= 0 || usableH <= 0 {
		return nil, gridErr(errs.ErrCodeMarginTooLarge)
	}
	if usableW%opts.CellWidth != 0 || usableH%opts.CellHeight != 0 {
		return nil, gridErr(errs.ErrCodeGridMismatch)
	}

	cols := usableW / opts.CellWidth
	rows := usableH / opts.CellHeight

	result := slice.New(source, imageWidth, imageHeight)
	result.Slices = make([]slice.Rect, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rect := slice.Rect{
				X:      opts.Margin + c*opts.CellWidth,
				Y:      opts.Margin + r*opts.CellHeight,
				Width:  opts.CellWidth,
				Height: opts.CellHeight,
			}
			if opts.Naming == NamingIndex {
				rect.Name = fmt.Sprintf("cell_%03d", len(result.Slices))
			}
			result.Slices = append(result.Slices, rect)
		}
	}
	return result, nil
}

// usableSpan returns size minus a margin on both ends, or 0 when the margins
// meet. The margin is compared before subtracting so huge values cannot wrap.
func usableSpan(size, margin int) int {
	if margin > (size-1)/2 {
		return 0
	}
	return size - 2*margin
}
