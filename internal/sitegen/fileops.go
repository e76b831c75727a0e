// fileops.go - File operation utilities and page templating
package sitegen

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed templates/default.html templates/style.css
var EmbeddedFiles embed.FS

const (
	defaultTemplate   = "templates/default.html"
	defaultStylesheet = "templates/style.css"

	// StylesheetName is the stylesheet's file name in the output root.
	StylesheetName = "style.css"
	// IndexName is the generated listing page of every output directory.
	IndexName = "index.html"
)

// Template is a page layout with literal placeholders.
type Template struct {
	raw string
}

// PageData fills the placeholders of a Template.
type PageData struct {
	Title      string
	Body       string
	Breadcrumb string
	Files      string
	Subdirs    string
}

// NewTemplate wraps raw layout text.
func NewTemplate(raw string) *Template {
	return &Template{raw: raw}
}

// Render substitutes every placeholder in a single pass, so text inserted for
// one placeholder is never expanded again.
func (t *Template) Render(d PageData) []byte {
	r := strings.NewReplacer(
		"{TITLE}", d.Title,
		"{BODY}", d.Body,
		"{BREADCRUMB}", d.Breadcrumb,
		"{FILES}", d.Files,
		"{SUBDIRS}", d.Subdirs,
	)
	return []byte(r.Replace(t.raw))
}

// loadAssets reads the page template and stylesheet. Empty paths fall back to
// the embedded defaults; configured paths must exist.
func loadAssets(templatePath, stylesheetPath string) (*Template, []byte, error) {
	tmpl, err := readAsset(templatePath, defaultTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMissingTemplate, err)
	}
	css, err := readAsset(stylesheetPath, defaultStylesheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMissingStylesheet, err)
	}
	return NewTemplate(string(tmpl)), css, nil
}

func readAsset(path, embedded string) ([]byte, error) {
	if path == "" {
		return EmbeddedFiles.ReadFile(embedded)
	}
	if !fileExists(path) {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return os.ReadFile(path)
}

// copyFile copies src to dst. The destination directory must already exist.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}

// writeFile writes data to path, reporting the path on failure.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}

// readOptional returns the file contents, or nil when it does not exist.
func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// fileExists checks if a file exists on disk
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
