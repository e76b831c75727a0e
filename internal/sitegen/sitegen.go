// core logic for building static archives from a content tree.
package sitegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/CiaranMcAleer/shelf/internal/cache"
	"github.com/CiaranMcAleer/shelf/internal/config"
	"github.com/CiaranMcAleer/shelf/internal/logger"
	"github.com/CiaranMcAleer/shelf/internal/markup"
	"github.com/CiaranMcAleer/shelf/internal/tags"
	"github.com/CiaranMcAleer/shelf/internal/video"
)

// Options configures one build.
type Options struct {
	config.Config

	// Force ignores the previous cache and transforms every file.
	Force bool

	Logger    *slog.Logger
	Converter Converter
	Encoder   Encoder
}

// Result summarises a successful build.
type Result struct {
	Root     *DirectoryMetadata
	Rendered int
	Skipped  int
	Removed  []string
	Duration time.Duration
}

// BuildSite renders opts.Input into opts.Output. The cache is persisted only
// when every step succeeds.
func BuildSite(ctx context.Context, opts Options) (*Result, error) {
	// Check if input directory exists
	info, err := os.Stat(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input directory does not exist: %s", opts.Input)
		}
		return nil, fmt.Errorf("error checking input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", opts.Input)
	}

	page, css, err := loadAssets(opts.Template, opts.Stylesheet)
	if err != nil {
		return nil, err
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("build", uuid.NewString()[:8])

	buildCache, err := cache.Load(opts.CachePath())
	if err != nil {
		return nil, err
	}
	if opts.Force {
		buildCache.Reset()
	}

	startTime := time.Now()
	log.Info("starting build", "input", opts.Input, "output", opts.Output, "cached", buildCache.Len(), "force", opts.Force)

	walker := newWalker(opts, page, buildCache, log)
	root, err := walker.Walk(ctx, "")
	if err != nil {
		return nil, err
	}

	if err := writeFile(filepath.Join(opts.Output, StylesheetName), css); err != nil {
		return nil, err
	}

	result := &Result{Root: root}
	result.Rendered, result.Skipped = walker.renderer.Stats()

	if opts.BaseURL != "" {
		rg := NewRSSGenerator(opts.BaseURL, opts.Input, opts.Output, log)
		if err := rg.Generate(root, opts.RSSMaxItems); err != nil {
			return nil, fmt.Errorf("failed to generate rss feed: %w", err)
		}
	}

	if opts.Clean {
		cleaner := NewOutputCleaner(opts.Output, root, log, StylesheetName, FeedName)
		removed, err := cleaner.CleanupOrphanedFiles()
		if err != nil {
			return nil, fmt.Errorf("failed to clean output: %w", err)
		}
		result.Removed = removed
	}

	if err := buildCache.Persist(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)
	log.Info("build complete",
		"rendered", result.Rendered,
		"skipped", result.Skipped,
		"removed", len(result.Removed),
		"duration", result.Duration)
	return result, nil
}

func newWalker(opts Options, page *Template, buildCache BuildCache, log *slog.Logger) *Walker {
	converter := opts.Converter
	if converter == nil {
		converter = markup.New()
	}
	encoder := opts.Encoder
	if encoder == nil {
		encoder = video.New(opts.FFmpeg)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	size := sizeChecker{threshold: opts.SizeThreshold, log: log}

	renderer := &Renderer{
		inputDir:  opts.Input,
		outputDir: opts.Output,
		page:      page,
		parser:    tags.NewParser(opts.TagDelimiter),
		ignore:    newIgnoreSet(opts.Ignore),
		cache:     buildCache,
		converter: converter,
		encoder:   encoder,
		copyFile:  copyFile,
		size:      size,
		log:       log,
	}
	return &Walker{
		inputDir:  opts.Input,
		outputDir: opts.Output,
		renderer:  renderer,
		converter: converter,
		page:      page,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		size:      size,
		log:       log,
	}
}
