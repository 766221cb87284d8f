package cli

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/spriteslicer/pkg/errors"
	"github.com/matzehuels/spriteslicer/pkg/pipeline"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	flags       sliceFlags
	mode        string // slicing mode when no --slices file is given
	slicesFile  string // previously saved slice set
	outDir      string
	selection   string
	interactive bool
	atomic      bool
	open        bool
	noCache     bool
}

// exportCommand creates the export command that writes slices as PNG files.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{mode: pipeline.ModeAuto}

	cmd := &cobra.Command{
		Use:   "export <image>",
		Short: "Write selected slices as PNG files plus atlas.json",
		Long: `Write selected slices of the image as individual PNG files.

The slice set is either loaded from a file written by "auto -o" or "grid -o"
(--slices), or computed on the fly with --mode and the slicing flags.
Each selected slice is written to <dir>/<name>.png and the selection is
described in <dir>/atlas.json.

Selections are comma-separated indices and ranges: "0,2,5-7" or "all".`,
		Example: `  spriteslicer export sheet.png -d sprites
  spriteslicer export sheet.png --slices slices.json --select 0-3 -d sprites
  spriteslicer export sheet.png --mode grid --cell-width 32 --cell-height 32 -i -d sprites`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeImages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateMode(opts.mode); err != nil {
				return err
			}
			return c.runExport(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "dir", "d", "", "output directory (required)")
	cmd.Flags().StringVar(&opts.slicesFile, "slices", "", "load the slice set from this JSON file instead of slicing")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", opts.mode, "slicing mode: auto, grid")
	cmd.Flags().StringVarP(&opts.selection, "select", "s", slice.SelectAll, "slices to export, e.g. \"0,2,5-7\"")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick slices interactively")
	cmd.Flags().BoolVar(&opts.atomic, "atomic", false, "write each file to a temp name and rename it into place")
	cmd.Flags().BoolVar(&opts.open, "open", false, "open the output directory when done")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	opts.flags.registerAuto(cmd)
	opts.flags.registerGrid(cmd)
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagDirname("dir")
	_ = cmd.MarkFlagFilename("slices", "json")
	cmd.MarkFlagsMutuallyExclusive("interactive", "select")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input string, opts *exportOpts) error {
	ctx := cmd.Context()

	pOpts := c.baseOptions()
	pOpts.Mode = opts.mode
	opts.flags.apply(cmd, &pOpts)
	pOpts.OutDir = opts.outDir
	pOpts.Selection = opts.selection
	if cmd.Flags().Changed("atomic") {
		pOpts.Atomic = opts.atomic
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	set, err := c.loadSet(ctx, runner, input, opts.slicesFile, pOpts)
	if err != nil {
		return err
	}

	if opts.interactive {
		indices, ok, err := runSliceSelect(set)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Export cancelled")
			return nil
		}
		pOpts.Indices = indices
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Writing slices to %s...", opts.outDir))
	spinner.Start()

	n, err := runner.Export(ctx, set, pOpts)
	if err != nil {
		spinner.StopWithError("Export failed")
		if n > 0 {
			printWarning("%d slice(s) were written before the failure", n)
		}
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Exported %d slice(s)", n))

	printSuccess("Exported %s to %s", StyleNumber.Render(fmt.Sprintf("%d slices", n)), StyleValue.Render(opts.outDir))
	printFile(filepath.Join(opts.outDir, "atlas.json"))

	if opts.open {
		if err := openFolder(opts.outDir); err != nil {
			printWarning("Could not open %s: %v", opts.outDir, err)
		}
	}
	return nil
}

// loadSet returns the slice set for input, read from slicesFile when given
// and computed by the runner otherwise.
func (c *CLI) loadSet(ctx context.Context, runner *pipeline.Runner, input, slicesFile string, pOpts pipeline.Options) (*slice.Set, error) {
	if slicesFile == "" {
		set, _, err := runner.Slice(ctx, input, pOpts)
		return set, err
	}

	set, err := slice.ImportManifest(slicesFile)
	if err != nil {
		return nil, err
	}
	c.Logger.Infof("Loaded %d slices from %s", set.Len(), slicesFile)
	set.SourcePath = input
	return set, nil
}

// openFolder opens dir in the platform file manager.
func openFolder(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	name, args := openCommand(runtime.GOOS, abs)
	return exec.Command(name, args...).Start()
}

// openCommand returns the command that opens path on the given OS.
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "explorer", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
