package cli

import (
	"github.com/spf13/cobra"
)

// Version is set during build with go build -ldflags "-X github.com/CiaranMcAleer/shelf/internal/cli.Version=1.2.3"
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("shelf version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
