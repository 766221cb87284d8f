// Package cli implements the spriteslicer command-line interface.
//
// # Commands
//
//   - auto: detect sprites by flood-filling opaque regions
//   - grid: cut the sheet into uniform cells
//   - export: write selected slices as PNGs plus atlas.json
//   - cache: inspect or clear the auto-slice cache
//   - serve: run the HTTP API
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/spriteslicer/config.toml (or the file
// named by --config). Flags given on the command line always win.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spriteslicer/pkg/buildinfo"
	"github.com/matzehuels/spriteslicer/pkg/cache"
	"github.com/matzehuels/spriteslicer/pkg/config"
	"github.com/matzehuels/spriteslicer/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "spriteslicer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Spriteslicer cuts spritesheets into individual sprites",
		Long: `Spriteslicer cuts a spritesheet into individual sprites, either by detecting
opaque regions (auto) or by tiling a uniform grid (grid), and exports the
chosen sprites as PNG files together with an atlas.json manifest.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/spriteslicer/config.toml)")

	root.AddCommand(c.autoCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache opens the cache backend named in the configuration. A file cache
// that cannot be created degrades to no caching; an unreachable Redis is an
// error because the user asked for it explicitly.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.Redis)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/spriteslicer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the configuration file.
func (c *CLI) baseOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.AlphaThreshold = c.Config.Auto.AlphaThreshold
	opts.MinWidth = c.Config.Auto.MinWidth
	opts.MinHeight = c.Config.Auto.MinHeight
	opts.Pad = c.Config.Auto.Pad
	opts.CellWidth = c.Config.Grid.CellWidth
	opts.CellHeight = c.Config.Grid.CellHeight
	opts.Margin = c.Config.Grid.Margin
	opts.NameCells = c.Config.Grid.NameCells
	opts.Atomic = c.Config.Export.Mode == config.ExportAtomic
	if ttl, err := c.Config.CacheTTL(); err == nil {
		opts.CacheTTL = ttl
	}
	opts.Logger = c.Logger
	return opts
}

// sliceFlags holds the slicing flags shared by auto, grid and export.
type sliceFlags struct {
	alphaThreshold int
	minWidth       int
	minHeight      int
	pad            int
	cellWidth      int
	cellHeight     int
	margin         int
	nameCells      bool
}

func (f *sliceFlags) registerAuto(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.alphaThreshold, "alpha-threshold", 8, "minimum alpha (0-255) for a pixel to count as opaque")
	cmd.Flags().IntVar(&f.minWidth, "min-width", 2, "drop regions narrower than this")
	cmd.Flags().IntVar(&f.minHeight, "min-height", 2, "drop regions shorter than this")
	cmd.Flags().IntVar(&f.pad, "pad", 1, "pixels of padding around each region")
}

func (f *sliceFlags) registerGrid(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.cellWidth, "cell-width", 0, "cell width in pixels")
	cmd.Flags().IntVar(&f.cellHeight, "cell-height", 0, "cell height in pixels")
	cmd.Flags().IntVar(&f.margin, "margin", 0, "border in pixels excluded from every edge")
	cmd.Flags().BoolVar(&f.nameCells, "name-cells", false, "name cells cell_000, cell_001, ...")
}

// apply copies every flag the user set explicitly onto opts.
func (f *sliceFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	set := func(name string, dst *int, v int) {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			*dst = v
		}
	}
	set("alpha-threshold", &opts.AlphaThreshold, f.alphaThreshold)
	set("min-width", &opts.MinWidth, f.minWidth)
	set("min-height", &opts.MinHeight, f.minHeight)
	set("pad", &opts.Pad, f.pad)
	set("cell-width", &opts.CellWidth, f.cellWidth)
	set("cell-height", &opts.CellHeight, f.cellHeight)
	set("margin", &opts.Margin, f.margin)
	if flag := cmd.Flags().Lookup("name-cells"); flag != nil && flag.Changed {
		opts.NameCells = f.nameCells
	}
}
