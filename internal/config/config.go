// Package config loads shelf's build settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/CiaranMcAleer/shelf/internal/cache"
	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// DefaultFileName is looked up in the working directory when no config path is given.
const DefaultFileName = "shelf.toml"

// Config holds every build setting. Zero values are filled by Defaults.
type Config struct {
	Input         string   `toml:"input"`
	Output        string   `toml:"output"`
	Template      string   `toml:"template"`
	Stylesheet    string   `toml:"stylesheet"`
	CacheFile     string   `toml:"cache_file"`
	TagDelimiter  string   `toml:"tag_delimiter"`
	Concurrency   int      `toml:"concurrency"`
	FFmpeg        string   `toml:"ffmpeg"`
	SizeThreshold int      `toml:"size_threshold"`
	BaseURL       string   `toml:"base_url"`
	RSSMaxItems   int      `toml:"rss_max_items"`
	Clean         bool     `toml:"clean"`
	Ignore        []string `toml:"ignore"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Input:         "content",
		Output:        ".build",
		TagDelimiter:  tags.DefaultDelimiter,
		Concurrency:   runtime.NumCPU(),
		FFmpeg:        "ffmpeg",
		SizeThreshold: 14 * 1024,
		RSSMaxItems:   20,
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	cfg.fill()
	return cfg, cfg.Validate()
}

func (c *Config) fill() {
	d := Defaults()
	if c.TagDelimiter == "" {
		c.TagDelimiter = d.TagDelimiter
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.FFmpeg == "" {
		c.FFmpeg = d.FFmpeg
	}
}

// Validate rejects settings the builder cannot work with.
func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("config: input directory is required")
	}
	if c.Output == "" {
		return errors.New("config: output directory is required")
	}
	if filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		return fmt.Errorf("config: input and output must differ (%s)", c.Input)
	}
	if within(c.Output, c.Input) {
		return fmt.Errorf("config: output %s must not be inside input %s", c.Output, c.Input)
	}
	if within(c.Input, c.Output) {
		return fmt.Errorf("config: input %s must not be inside output %s", c.Input, c.Output)
	}
	if c.TagDelimiter == "=" {
		return errors.New("config: tag_delimiter cannot be '='")
	}
	return nil
}

// within reports whether path lies at or below dir.
func within(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CachePath returns the configured cache file or the default inside Output.
func (c Config) CachePath() string {
	if c.CacheFile != "" {
		return c.CacheFile
	}
	return filepath.Join(c.Output, cache.DefaultFileName)
}
