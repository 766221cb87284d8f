package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spriteslicer/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the slicing API over HTTP",
		Long: `Serve the slicing API over HTTP until interrupted.

  GET  /healthz
  POST /v1/slice/auto   multipart field "image"
  POST /v1/slice/grid   multipart field "image", query cell_width & cell_height

Query parameters not given fall back to the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			store, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}

			defaults := c.baseOptions()
			defaults.Logger = nil
			srv := server.New(store,
				server.WithLogger(c.Logger),
				server.WithDefaults(defaults),
				server.WithMaxUploadBytes(c.Config.MaxUploadBytes()),
				server.WithMaxPixels(c.Config.Server.MaxPixels),
			)
			defer srv.Close()

			printInfo("Serving on %s", StyleValue.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")

	return cmd
}
