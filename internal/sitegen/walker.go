// walker.go - Recursive directory traversal and index generation
package sitegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// DirectoryMetadata summarises a fully built directory for its parent.
type DirectoryMetadata struct {
	// Name is the last path segment; empty for the root.
	Name string
	// Path is the slash-separated path relative to the input root.
	Path string
	// Thumbnail is the public name of the first file tagged main, if any.
	Thumbnail string
	// Title comes from the index page's front matter.
	Title string
	// Hidden directories contain the IGNORE sentinel and are not listed.
	Hidden bool

	Files   []*FileMetadata
	Subdirs []*DirectoryMetadata
}

// DisplayName is the label used in listings.
func (d *DirectoryMetadata) DisplayName() string {
	if d.Title != "" {
		return d.Title
	}
	if d.Name == "" {
		return "Home"
	}
	return humanize(d.Name)
}

// Walker visits every directory in post order. Subdirectories are walked
// concurrently and joined before the parent's index is written.
type Walker struct {
	inputDir  string
	outputDir string

	renderer  *Renderer
	converter Converter
	page      *Template
	sem       *semaphore.Weighted
	size      sizeChecker
	log       *slog.Logger
}

// Walk builds the directory at rel (slash-separated, "" for the root) and
// everything below it.
func (w *Walker) Walk(ctx context.Context, rel string) (*DirectoryMetadata, error) {
	srcDir := filepath.Join(w.inputDir, filepath.FromSlash(rel))
	outDir := filepath.Join(w.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir for '%s': %w", rel, err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s': %w", srcDir, err)
	}
	set := partitionEntries(entries)
	if err := checkOutputOwners(w.renderer.parser, w.renderer.ignore, rel, set.files); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	subdirs := make([]*DirectoryMetadata, len(set.dirs))
	for i, name := range set.dirs {
		g.Go(func() error {
			meta, err := w.Walk(gctx, path.Join(rel, name))
			subdirs[i] = meta
			return err
		})
	}

	rendered := make([]*FileMetadata, len(set.files))
	for i, name := range set.files {
		if isIndexSource(name) {
			continue
		}
		g.Go(func() error {
			// Only leaf work holds a slot, so nested walks cannot starve each other.
			if err := w.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer w.sem.Release(1)
			meta, err := w.renderer.Render(gctx, path.Join(rel, name))
			rendered[i] = meta
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*FileMetadata, 0, len(rendered))
	for _, m := range rendered {
		if m != nil {
			files = append(files, m)
		}
	}

	dir := &DirectoryMetadata{
		Name:      path.Base("/" + rel),
		Path:      rel,
		Thumbnail: selectThumbnail(files),
		Hidden:    set.hidden,
		Files:     files,
		Subdirs:   subdirs,
	}
	if dir.Name == "/" {
		dir.Name = ""
	}

	title, err := w.writeIndex(srcDir, outDir, dir)
	if err != nil {
		return nil, err
	}
	dir.Title = title
	return dir, nil
}

// selectThumbnail returns the public name of the first file tagged main.
func selectThumbnail(files []*FileMetadata) string {
	for _, f := range files {
		if f.Tags.Has(tags.Main) {
			return f.PublicName
		}
	}
	return ""
}

// writeIndex assembles the directory's index page from its own index source
// and the already built listings. It returns the page title.
func (w *Walker) writeIndex(srcDir, outDir string, dir *DirectoryMetadata) (string, error) {
	body, title, err := w.indexBody(srcDir)
	if err != nil {
		return "", fmt.Errorf("failed to read index of '%s': %w", dir.Path, err)
	}

	pageTitle := title
	if pageTitle == "" {
		pageTitle = dir.DisplayName()
	}

	out := w.page.Render(PageData{
		Title:      pageTitle,
		Body:       body,
		Breadcrumb: Breadcrumb(dir.Path, ""),
		Files:      FileListing(dir.Files),
		Subdirs:    SubdirListing(dir.Subdirs),
	})
	dst := filepath.Join(outDir, IndexName)
	if err := writeFile(dst, out); err != nil {
		return "", err
	}
	w.size.check(dst, out)
	w.log.Debug("wrote index", "dir", dir.Path, "files", len(dir.Files), "subdirs", len(dir.Subdirs))
	return title, nil
}

// indexBody prefers index.md (converted), then index.html (verbatim), else empty.
func (w *Walker) indexBody(srcDir string) (string, string, error) {
	md, ok, err := readOptional(filepath.Join(srcDir, "index.md"))
	if err != nil {
		return "", "", err
	}
	if ok {
		doc, err := w.converter.Convert(md)
		if err != nil {
			return "", "", err
		}
		return string(doc.HTML), doc.Title, nil
	}
	raw, ok, err := readOptional(filepath.Join(srcDir, "index.html"))
	if err != nil || !ok {
		return "", "", err
	}
	return string(raw), "", nil
}
