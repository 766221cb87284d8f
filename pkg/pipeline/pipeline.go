// Package pipeline glues the spriteslicer stages together for the CLI and
// the HTTP server.
//
// # Architecture
//
// A run has two stages:
//
//  1. Slice: decode the sheet (or only its header, in grid mode) and compute
//     a slice set; auto results are cached by image content and parameters
//  2. Export: apply the selection and write PNGs plus the manifest
//
// Each stage can be run independently or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.OutDir = "out"
//	result, err := runner.Execute(ctx, "sheet.png", opts)
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spriteslicer/pkg/cache"
	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/export"
	"github.com/matzehuels/spriteslicer/pkg/slice"
	"github.com/matzehuels/spriteslicer/pkg/slicer"
)

// Slicing modes.
const (
	ModeAuto = "auto"
	ModeGrid = "grid"
)

// DefaultCacheTTL is how long auto results stay cached when Options.CacheTTL
// is zero.
const DefaultCacheTTL = 30 * 24 * time.Hour

// ValidModes is the set of supported slicing modes.
var ValidModes = map[string]bool{
	ModeAuto: true,
	ModeGrid: true,
}

// Exporter writes a subset of slices to a directory.
// *export.Exporter is the production implementation.
type Exporter interface {
	Export(ctx context.Context, sourcePath string, subset *slice.Set, outDir string) (int, error)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
//
// Auto parameters are taken as given: zero is a meaningful threshold, size
// and pad. Start from [DefaultOptions] to get the standard values.
type Options struct {
	Mode string `json:"mode"`

	// Auto options
	AlphaThreshold int `json:"alpha_threshold"`
	MinWidth       int `json:"min_width"`
	MinHeight      int `json:"min_height"`
	Pad            int `json:"pad"`

	// Grid options
	CellWidth  int  `json:"cell_width,omitempty"`
	CellHeight int  `json:"cell_height,omitempty"`
	Margin     int  `json:"margin,omitempty"`
	NameCells  bool `json:"name_cells,omitempty"`

	// Export options
	Selection string `json:"selection,omitempty"` // ParseSelection expression; empty means all
	Indices   []int  `json:"indices,omitempty"`   // explicit selection, overrides Selection when non-nil
	OutDir    string `json:"out_dir,omitempty"`
	Atomic    bool   `json:"atomic,omitempty"`

	// Cache options
	Refresh  bool          `json:"refresh,omitempty"` // recompute and overwrite the cached result
	CacheTTL time.Duration `json:"-"`

	// MaxPixels rejects auto-mode images with more pixels before decoding
	// them. Zero means unlimited.
	MaxPixels int `json:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger `json:"-"`
	Exporter Exporter    `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Set is the full slice set found in the image.
	Set *slice.Set

	// Exported is the number of PNGs written.
	Exported int

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ImageWidth  int
	ImageHeight int
	Slices      int
	Components  int // auto only, zero on a cache hit
	Discarded   int // auto only, zero on a cache hit
	CacheHit    bool
	SliceTime   time.Duration
	ExportTime  time.Duration
}

// DefaultOptions returns auto-mode options with the standard parameters.
func DefaultOptions() Options {
	d := slicer.DefaultAutoOptions()
	return Options{
		Mode:           ModeAuto,
		AlphaThreshold: int(d.AlphaThreshold),
		MinWidth:       d.MinWidth,
		MinHeight:      d.MinHeight,
		Pad:            d.Pad,
		Selection:      slice.SelectAll,
	}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateMode checks that a slicing mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid mode: %q (must be one of: auto, grid)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills the mode, selection and logger when unset.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.Selection == "" {
		o.Selection = slice.SelectAll
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSlice sets defaults and checks the parameters of the chosen mode.
func (o *Options) ValidateForSlice() error {
	o.SetDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Mode == ModeGrid {
		if o.CellWidth <= 0 || o.CellHeight <= 0 {
			return errs.New(errs.ErrCodeInvalidInput, "grid mode needs a positive cell size, got %dx%d", o.CellWidth, o.CellHeight)
		}
		return nil
	}
	if o.AlphaThreshold < 0 || o.AlphaThreshold > 255 {
		return errs.New(errs.ErrCodeInvalidInput, "alpha threshold must be between 0 and 255, got %d", o.AlphaThreshold)
	}
	return o.AutoOptions().Validate()
}

// ValidateForExport sets defaults and checks the output directory.
func (o *Options) ValidateForExport() error {
	o.SetDefaults()
	return errs.ValidateOutputDir(o.OutDir)
}

// AutoOptions returns the auto slicer parameters.
func (o *Options) AutoOptions() slicer.AutoOptions {
	return slicer.AutoOptions{
		AlphaThreshold: uint8(o.AlphaThreshold),
		MinWidth:       o.MinWidth,
		MinHeight:      o.MinHeight,
		Pad:            o.Pad,
	}
}

// GridOptions returns the grid slicer parameters.
func (o *Options) GridOptions() slicer.GridOptions {
	naming := slicer.NamingNone
	if o.NameCells {
		naming = slicer.NamingIndex
	}
	return slicer.GridOptions{
		CellWidth:  o.CellWidth,
		CellHeight: o.CellHeight,
		Margin:     o.Margin,
		Naming:     naming,
	}
}

// SliceKeyOpts returns cache key options for the slice stage.
func (o *Options) SliceKeyOpts() cache.SliceKeyOpts {
	k := cache.SliceKeyOpts{Mode: o.Mode}
	if o.Mode == ModeGrid {
		k.CellWidth, k.CellHeight, k.Margin, k.NameCells = o.CellWidth, o.CellHeight, o.Margin, o.NameCells
		return k
	}
	k.AlphaThreshold, k.MinWidth, k.MinHeight, k.Pad = o.AlphaThreshold, o.MinWidth, o.MinHeight, o.Pad
	return k
}

// ExportMode returns the exporter write mode.
func (o *Options) ExportMode() export.Mode {
	if o.Atomic {
		return export.ModeAtomic
	}
	return export.ModeDirect
}
