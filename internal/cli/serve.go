package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CiaranMcAleer/shelf/internal/sitegen"
)

var (
	serveOpts  buildFlags
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site and serve the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := serveOpts.options(cmd)
		if err != nil {
			return err
		}
		log := opts.Logger
		if _, err := sitegen.BuildSite(cmd.Context(), opts); err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return sitegen.ServeDir(ctx, opts.Output, servePort, log)
		})
		if serveWatch {
			g.Go(func() error {
				return sitegen.Watch(ctx, opts, sitegen.DefaultDebounce, func(res *sitegen.Result, err error) {
					if err != nil {
						log.Error("rebuild failed", "error", err)
						return
					}
					log.Info("rebuilt", "rendered", res.Rendered, "unchanged", res.Skipped)
				})
			})
		}
		return g.Wait()
	},
}

func init() {
	serveOpts.register(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "rebuild when the content tree changes")
	rootCmd.AddCommand(serveCmd)
}
