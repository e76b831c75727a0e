// renderer.go - Per-file transforms and the cache fast path
package sitegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/opencontainers/go-digest"

	"github.com/CiaranMcAleer/shelf/internal/cache"
	"github.com/CiaranMcAleer/shelf/internal/markup"
	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// Converter turns markdown into an HTML fragment.
type Converter interface {
	Convert(src []byte) (*markup.Document, error)
}

// Encoder transcodes a video file from src to dst.
type Encoder interface {
	Encode(ctx context.Context, src, dst string) error
}

// BuildCache is the subset of the content-hash cache the renderer needs.
type BuildCache interface {
	Lookup(src string) (digest.Digest, bool)
	Record(hash digest.Digest, src string)
}

// FileMetadata is the public description of one rendered file.
type FileMetadata struct {
	// PublicName is the canonical output file name.
	PublicName string
	Tags       tags.Set
	Kind       tags.Kind
	// Source is the slash-separated path relative to the input root.
	Source string
}

// Dir returns the slash-separated directory of the file relative to the input root.
func (m *FileMetadata) Dir() string {
	return path.Dir(m.Source)
}

// Output returns the slash-separated output path relative to the output root.
func (m *FileMetadata) Output() string {
	return path.Join(m.Dir(), m.PublicName)
}

// Renderer transforms single source files into their published form.
type Renderer struct {
	inputDir  string
	outputDir string

	page      *Template
	parser    *tags.Parser
	ignore    ignoreSet
	cache     BuildCache
	converter Converter
	encoder   Encoder
	copyFile  func(src, dst string) error
	size      sizeChecker
	log       *slog.Logger

	rendered atomic.Int64
	skipped  atomic.Int64
}

// Render publishes the file at rel (slash-separated, relative to the input
// root) and returns its metadata. Ignored files return nil metadata.
func (r *Renderer) Render(ctx context.Context, rel string) (*FileMetadata, error) {
	base := path.Base(rel)
	if r.ignore.match(r.parser, base) {
		r.log.Debug("ignored", "path", rel)
		return nil, nil
	}

	name, set := r.parser.Parse(base)
	meta := &FileMetadata{
		PublicName: name,
		Tags:       set,
		Kind:       tags.Classify(base),
		Source:     rel,
	}
	src := filepath.Join(r.inputDir, filepath.FromSlash(rel))
	dst := filepath.Join(r.outputDir, filepath.FromSlash(meta.Output()))

	hash, err := cache.HashFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to hash '%s': %w", rel, err)
	}

	// A hit needs this path's own previous digest and its output still on disk.
	if prev, ok := r.cache.Lookup(rel); ok && prev == hash && fileExists(dst) {
		r.log.Debug("unchanged, skipping", "path", rel)
		r.cache.Record(hash, rel)
		r.skipped.Add(1)
		return meta, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.log.Info("rendering", "path", rel, "kind", meta.Kind, "output", meta.Output())

	switch meta.Kind {
	case tags.KindMarkup, tags.KindHTML:
		err = r.renderPage(src, dst, meta)
	case tags.KindVideo:
		err = r.encoder.Encode(ctx, src, dst)
	default:
		err = r.copyFile(src, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render '%s': %w", rel, err)
	}

	r.cache.Record(hash, rel)
	r.rendered.Add(1)
	return meta, nil
}

// renderPage converts (or passes through) a page source and wraps it in the
// page template with its breadcrumb trail.
func (r *Renderer) renderPage(src, dst string, meta *FileMetadata) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	body, title, err := r.pageBody(content, meta.Kind)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(meta.PublicName, path.Ext(meta.PublicName))
	if title == "" {
		title = humanize(stem)
	}

	out := r.page.Render(PageData{
		Title:      title,
		Body:       body,
		Breadcrumb: Breadcrumb(meta.Dir(), meta.PublicName),
	})
	if err := writeFile(dst, out); err != nil {
		return err
	}
	r.size.check(dst, out)
	return nil
}

// pageBody returns the HTML body of a page source and its front matter title.
func (r *Renderer) pageBody(content []byte, kind tags.Kind) (string, string, error) {
	if kind == tags.KindHTML {
		return string(content), "", nil
	}
	doc, err := r.converter.Convert(content)
	if err != nil {
		return "", "", err
	}
	return string(doc.HTML), doc.Title, nil
}

// Stats returns how many files were transformed and how many were cache hits.
func (r *Renderer) Stats() (rendered, skipped int) {
	return int(r.rendered.Load()), int(r.skipped.Load())
}
