// Package cli wires shelf's commands together with cobra.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/CiaranMcAleer/shelf/internal/config"
	"github.com/CiaranMcAleer/shelf/internal/logger"
	"github.com/CiaranMcAleer/shelf/internal/sitegen"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "shelf",
	Short:         "Incremental static archive builder",
	Long:          "shelf renders a content tree of pages, images and videos into a browsable static site, skipping inputs that have not changed since the last build.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log cache hits and other debug output")
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		newLogger(rootCmd).Error("shelf failed", "error", err)
		return 1
	}
	return 0
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), verbose)
}

// buildFlags are shared by build and serve.
type buildFlags struct {
	input      string
	output     string
	template   string
	stylesheet string
	cacheFile  string
	delimiter  string
	jobs       int
	ffmpeg     string
	baseURL    string
	force      bool
	clean      bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "source content directory")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.template, "template", "", "page template with {TITLE} {BODY} {BREADCRUMB} {FILES} {SUBDIRS} placeholders")
	fs.StringVar(&f.stylesheet, "stylesheet", "", "stylesheet copied to the output root")
	fs.StringVar(&f.cacheFile, "cache", "", "cache file (default <output>/.shelf-cache)")
	fs.StringVar(&f.delimiter, "tag-delimiter", "", "separator between a file name and its tags")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "maximum files rendered at once")
	fs.StringVar(&f.ffmpeg, "ffmpeg", "", "ffmpeg binary used for video transcoding")
	fs.StringVar(&f.baseURL, "base-url", "", "site URL; enables feed.xml generation")
	fs.BoolVarP(&f.force, "force", "f", false, "ignore the cache and render every file")
	fs.BoolVar(&f.clean, "clean", false, "remove outputs whose sources no longer exist")
}

// options merges the config file with the flags that were set explicitly.
func (f *buildFlags) options(cmd *cobra.Command) (sitegen.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return sitegen.Options{}, err
	}
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Input = f.input
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("template") {
		cfg.Template = f.template
	}
	if fs.Changed("stylesheet") {
		cfg.Stylesheet = f.stylesheet
	}
	if fs.Changed("cache") {
		cfg.CacheFile = f.cacheFile
	}
	if fs.Changed("tag-delimiter") {
		cfg.TagDelimiter = f.delimiter
	}
	if fs.Changed("jobs") {
		cfg.Concurrency = f.jobs
	}
	if fs.Changed("ffmpeg") {
		cfg.FFmpeg = f.ffmpeg
	}
	if fs.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if fs.Changed("clean") {
		cfg.Clean = f.clean
	}
	if err := cfg.Validate(); err != nil {
		return sitegen.Options{}, err
	}
	return sitegen.Options{
		Config: cfg,
		Force:  f.force,
		Logger: newLogger(cmd),
	}, nil
}
