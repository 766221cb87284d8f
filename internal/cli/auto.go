package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spriteslicer/pkg/pipeline"
	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// sliceOpts holds the flags shared by the auto and grid commands.
type sliceOpts struct {
	flags   sliceFlags
	output  string
	noCache bool
	refresh bool
	quiet   bool
}

// autoCommand creates the auto command for detecting sprites by opaque regions.
func (c *CLI) autoCommand() *cobra.Command {
	var opts sliceOpts

	cmd := &cobra.Command{
		Use:   "auto <image>",
		Short: "Detect sprites by flood-filling opaque regions",
		Long: `Detect sprites by flood-filling opaque regions of the image.

Pixels with alpha at or above --alpha-threshold are opaque. Each 4-connected
opaque region becomes one slice: its bounding box grown by --pad on every side
and clamped to the image. Regions smaller than --min-width x --min-height are
dropped. Results are cached by image content and parameters.`,
		Example: `  spriteslicer auto sheet.png
  spriteslicer auto sheet.png --alpha-threshold 1 --pad 0 -o slices.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeImages,
		RunE: func(cmd *cobra.Command, args []string) error {
			pOpts := c.baseOptions()
			pOpts.Mode = pipeline.ModeAuto
			opts.flags.apply(cmd, &pOpts)
			pOpts.Refresh = opts.refresh
			return c.runSlice(cmd.Context(), args[0], pOpts, &opts)
		},
	}

	opts.flags.registerAuto(cmd)
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite the cached result")

	return cmd
}

func (o *sliceOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the slice set to this JSON file")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "do not print the slice table")
	_ = cmd.MarkFlagFilename("output", "json")
}

// runSlice slices the image, prints the result and optionally saves the set.
func (c *CLI) runSlice(ctx context.Context, input string, pOpts pipeline.Options, opts *sliceOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Slicing %s...", filepath.Base(input)))
	spinner.Start()

	set, stats, err := runner.Slice(ctx, input, pOpts)
	if err != nil {
		spinner.StopWithError("Slicing failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Sliced %s", filepath.Base(input)))

	printSuccess("Found %s in %s", StyleNumber.Render(fmt.Sprintf("%d slices", set.Len())), StyleValue.Render(input))
	printStats(stats.ImageWidth, stats.ImageHeight, stats.Slices, stats.CacheHit)
	if !opts.quiet && set.Len() > 0 {
		fmt.Println(sliceTable(set))
	}

	if opts.output != "" {
		if err := slice.ExportManifest(set, opts.output); err != nil {
			return err
		}
		printFile(opts.output)
		fmt.Println()
		printNextStep("Export", fmt.Sprintf("%s export %s --slices %s -d out/", appName, input, opts.output))
		return nil
	}

	fmt.Println()
	printNextStep("Export", fmt.Sprintf("%s export %s --mode %s -d out/", appName, input, pOpts.Mode))
	return nil
}
