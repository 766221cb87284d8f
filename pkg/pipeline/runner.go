package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spriteslicer/pkg/cache"
	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/export"
	"github.com/matzehuels/spriteslicer/pkg/observability"
	"github.com/matzehuels/spriteslicer/pkg/pixel"
	"github.com/matzehuels/spriteslicer/pkg/slice"
	"github.com/matzehuels/spriteslicer/pkg/slicer"
)

// cacheKeyType labels slice cache events for observability hooks.
const cacheKeyType = "slices"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the HTTP server use it.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute slices the image at path and exports the selection.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	set, stats, err := r.Slice(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("slice: %w", err)
	}

	exportStart := time.Now()
	n, err := r.Export(ctx, set, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	stats.ExportTime = time.Since(exportStart)

	return &Result{Set: set, Exported: n, Stats: stats}, nil
}

// Slice reads the image at path and computes its slice set.
func (r *Runner) Slice(ctx context.Context, path string, opts Options) (*slice.Set, Stats, error) {
	if !pixel.IsSupported(path) {
		return nil, Stats{}, errs.New(errs.ErrCodeUnsupportedFormat, "unsupported image type %q (want one of %s)",
			filepath.Ext(path), strings.Join(pixel.SupportedExtensions, ", "))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, errs.Wrap(errs.ErrCodeDecode, err, "read %s", path)
	}
	return r.SliceBytes(ctx, path, data, opts)
}

// SliceBytes computes the slice set of encoded image data. path is recorded
// as the set's SourcePath and used in messages; nothing is read from it.
//
// Auto results are looked up in and stored to the cache under a key built
// from the content hash and the auto parameters, so a renamed copy of a
// sheet is still a hit. Grid mode only decodes the image header.
func (r *Runner) SliceBytes(ctx context.Context, path string, data []byte, opts Options) (set *slice.Set, stats Stats, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSlice(); err != nil {
		return nil, Stats{}, err
	}

	start := time.Now()
	hooks := observability.Slice()
	hooks.OnSliceStart(ctx, opts.Mode, path)
	defer func() {
		stats.SliceTime = time.Since(start)
		hooks.OnSliceComplete(ctx, opts.Mode, path, stats.Slices, stats.SliceTime, err)
	}()

	if opts.Mode == ModeGrid {
		set, err = r.sliceGrid(path, data, opts)
	} else {
		set, err = r.sliceAuto(ctx, path, data, opts, &stats)
	}
	if err != nil {
		return nil, stats, err
	}
	stats.ImageWidth, stats.ImageHeight = set.ImageWidth, set.ImageHeight
	stats.Slices = set.Len()
	return set, stats, nil
}

func (r *Runner) sliceGrid(path string, data []byte, opts Options) (*slice.Set, error) {
	w, h, err := pixel.DecodeConfig(path, data)
	if err != nil {
		return nil, err
	}
	set, err := slicer.Grid(path, w, h, opts.GridOptions())
	if err != nil {
		return nil, err
	}
	opts.Logger.Info(fmt.Sprintf("Grid: %d slices (%dx%d, margin %d)", set.Len(), opts.CellWidth, opts.CellHeight, opts.Margin))
	return set, nil
}

func (r *Runner) sliceAuto(ctx context.Context, path string, data []byte, opts Options, stats *Stats) (*slice.Set, error) {
	if err := checkPixelLimit(path, data, opts.MaxPixels); err != nil {
		return nil, err
	}

	key := r.Keyer.SliceKey(cache.Hash(data), opts.SliceKeyOpts())

	if !opts.Refresh {
		if set, ok := r.cachedSet(ctx, key, path, opts.Logger); ok {
			stats.CacheHit = true
			opts.Logger.Info(fmt.Sprintf("Auto: %d slices", set.Len()), "cached", true)
			return set, nil
		}
	}

	buf, err := pixel.DecodeBytes(path, data)
	if err != nil {
		return nil, err
	}
	set, auto, err := slicer.AutoWithStats(ctx, buf, opts.AutoOptions())
	if err != nil {
		return nil, err
	}
	stats.Components = auto.Components
	stats.Discarded = auto.Discarded
	opts.Logger.Debug("flood fill",
		"pixels", auto.Pixels,
		"dequeued", auto.Dequeued,
		"components", auto.Components,
		"discarded", auto.Discarded)

	if raw, err := slice.MarshalManifest(set); err == nil {
		if err := r.Cache.Set(ctx, key, raw, opts.CacheTTL); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(raw))
		}
	}

	opts.Logger.Info(fmt.Sprintf("Auto: %d slices", set.Len()))
	return set, nil
}

// checkPixelLimit reads the image header and rejects images larger than
// maxPixels. A zero limit disables the check.
func checkPixelLimit(path string, data []byte, maxPixels int) error {
	if maxPixels <= 0 {
		return nil
	}
	w, h, err := pixel.DecodeConfig(path, data)
	if err != nil {
		return err
	}
	if int64(w)*int64(h) > int64(maxPixels) {
		return errs.New(errs.ErrCodeInvalidInput, "image %dx%d exceeds the limit of %d pixels", w, h, maxPixels)
	}
	return nil
}

// cachedSet returns the cached set for key with SourcePath replaced by path.
// Backend failures and undecodable entries count as misses.
func (r *Runner) cachedSet(ctx context.Context, key, path string, logger *log.Logger) (*slice.Set, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}

	set, err := slice.ReadManifest(bytes.NewReader(data))
	if err != nil {
		logger.Debug("discarding unreadable cache entry", "error", err)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	set.SourcePath = path
	return set, true
}

// Export applies the selection in opts to set and writes the subset to
// opts.OutDir. An empty selection is an EMPTY_SELECTION error.
func (r *Runner) Export(ctx context.Context, set *slice.Set, opts Options) (int, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return 0, err
	}

	subset, err := Select(set, opts)
	if err != nil {
		return 0, err
	}
	if subset.Len() == 0 {
		return 0, errs.New(errs.ErrCodeEmptySelection, "No slices selected")
	}

	exp := opts.Exporter
	if exp == nil {
		exp = export.New(export.WithMode(opts.ExportMode()), export.WithLogger(opts.Logger))
	}

	n, err := exp.Export(ctx, set.SourcePath, subset, opts.OutDir)
	if err != nil {
		return n, err
	}
	opts.Logger.Info(fmt.Sprintf("Exported %d slice(s)", n), "dir", opts.OutDir)
	return n, nil
}

// Select returns the subset of set chosen by opts.Indices, or by
// opts.Selection when Indices is nil.
func Select(set *slice.Set, opts Options) (*slice.Set, error) {
	indices := opts.Indices
	if indices == nil {
		expr := opts.Selection
		if expr == "" {
			expr = slice.SelectAll
		}
		var err error
		if indices, err = slice.ParseSelection(expr, set.Len()); err != nil {
			return nil, err
		}
	}
	return set.Subset(indices)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
