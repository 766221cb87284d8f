package slicer

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/pixel"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// Default auto-slicing parameters.
const (
	DefaultAlphaThreshold = 8
	DefaultMinWidth       = 2
	DefaultMinHeight      = 2
	DefaultPad            = 1
)

// checkEvery is how many dequeued pixels pass between context checks inside
// one flood fill.
const checkEvery = 4096

// AutoOptions configures [Auto].
type AutoOptions struct {
	AlphaThreshold uint8 // minimum alpha for a pixel to count as opaque
	MinWidth       int   // components narrower than this are dropped
	MinHeight      int   // components shorter than this are dropped
	Pad            int   // pixels added on every side of each rectangle
}

// DefaultAutoOptions returns threshold 8, minimum size 2x2 and padding 1.
func DefaultAutoOptions() AutoOptions {
	return AutoOptions{
		AlphaThreshold: DefaultAlphaThreshold,
		MinWidth:       DefaultMinWidth,
		MinHeight:      DefaultMinHeight,
		Pad:            DefaultPad,
	}
}

// Validate rejects negative sizes and padding.
func (o AutoOptions) Validate() error {
	if o.MinWidth < 0 || o.MinHeight < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "minimum size %dx%d cannot be negative", o.MinWidth, o.MinHeight)
	}
	if o.Pad < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "pad %d cannot be negative", o.Pad)
	}
	return nil
}

// AutoStats reports how much work an auto slice did.
// Visited always equals Pixels once a scan completes.
type AutoStats struct {
	Pixels     int // width*height
	Visited    int // pixels marked visited
	Dequeued   int // pixels processed by flood fills
	Components int // connected components found
	Discarded  int // components below the minimum size
}

// Auto detects opaque regions in buf and returns one rectangle per region.
// See [AutoWithStats].
func Auto(ctx context.Context, buf *pixel.Buffer, opts AutoOptions) (*slice.Set, error) {
	set, _, err := AutoWithStats(ctx, buf, opts)
	return set, err
}

// AutoWithStats is [Auto] plus work counters.
//
// Rectangles are named "slice_000", "slice_001", ... by emission order and
// appear in the order their first pixel is met by a row-major scan. If no
// pixel is opaque the returned Set has no slices.
//
// The context is checked once per scanned row and periodically inside large
// flood fills; on cancellation ctx.Err() is returned and no Set.
func AutoWithStats(ctx context.Context, buf *pixel.Buffer, opts AutoOptions) (*slice.Set, AutoStats, error) {
	if err := opts.Validate(); err != nil {
		return nil, AutoStats{}, err
	}

	w, h := buf.Width, buf.Height
	stats := AutoStats{Pixels: w * h}
	result := slice.New(buf.Path, w, h)

	visited := make([]bool, w*h)
	queue := make([]int, 0, 64)
	threshold := opts.AlphaThreshold

	// visit marks (x, y) and reports whether it is opaque.
	visit := func(x, y int) bool {
		i := y*w + x
		visited[i] = true
		stats.Visited++
		return buf.Alpha(x, y) >= threshold
	}

	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		for x := 0; x < w; x++ {
			if visited[y*w+x] {
				continue
			}
			if !visit(x, y) {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			queue = append(queue[:0], y*w+x)

			for head := 0; head < len(queue); head++ {
				stats.Dequeued++
				if stats.Dequeued%checkEvery == 0 {
					if err := ctx.Err(); err != nil {
						return nil, stats, err
					}
				}

				cx, cy := queue[head]%w, queue[head]/w
				minX, maxX = min(minX, cx), max(maxX, cx)
				minY, maxY = min(minY, cy), max(maxY, cy)

				for _, n := range [4][2]int{{cx - 1, cy}, {cx + 1, cy}, {cx, cy - 1}, {cx, cy + 1}} {
					nx, ny := n[0], n[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h || visited[ny*w+nx] {
						continue
					}
					if visit(nx, ny) {
						queue = append(queue, ny*w+nx)
					}
				}
			}

			stats.Components++
			if maxX-minX+1 < opts.MinWidth || maxY-minY+1 < opts.MinHeight {
				stats.Discarded++
				continue
			}

			sx, sy := max(0, minX-opts.Pad), max(0, minY-opts.Pad)
			ex, ey := min(w-1, maxX+opts.Pad), min(h-1, maxY+opts.Pad)
			result.Slices = append(result.Slices, slice.Rect{
				X:      sx,
				Y:      sy,
				Width:  ex - sx + 1,
				Height: ey - sy + 1,
				Name:   autoName(len(result.Slices)),
			})
		}
	}

	return result, stats, nil
}

func autoName(i int) string {
	return fmt.Sprintf("slice_%03d", i)
}
