package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/CiaranMcAleer/shelf/internal/sitegen"
)

var buildOpts buildFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the content tree into the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := buildOpts.options(cmd)
		if err != nil {
			return err
		}
		res, err := sitegen.BuildSite(cmd.Context(), opts)
		if err != nil {
			return err
		}
		cmd.Printf("built %s: %d rendered, %d unchanged in %v\n",
			opts.Output, res.Rendered, res.Skipped, res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	buildOpts.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
