package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spriteslicer/pkg/pipeline"
)

// gridCommand creates the grid command for cutting the image into uniform cells.
func (c *CLI) gridCommand() *cobra.Command {
	var opts sliceOpts

	cmd := &cobra.Command{
		Use:   "grid <image>",
		Short: "Cut the image into uniform cells",
		Long: `Cut the image into uniform cells of --cell-width x --cell-height.

A border of --margin pixels is excluded from every edge and the remaining
area must divide exactly into cells. Cells are numbered in row-major order.`,
		Example: `  spriteslicer grid sheet.png --cell-width 32 --cell-height 32
  spriteslicer grid sheet.png --cell-width 16 --cell-height 16 --margin 2 --name-cells`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeImages,
		RunE: func(cmd *cobra.Command, args []string) error {
			pOpts := c.baseOptions()
			pOpts.Mode = pipeline.ModeGrid
			opts.flags.apply(cmd, &pOpts)
			return c.runSlice(cmd.Context(), args[0], pOpts, &opts)
		},
	}

	opts.flags.registerGrid(cmd)
	opts.register(cmd)

	return cmd
}
