// cleanup.go - Removal of outputs whose sources are gone
package sitegen

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// OutputCleaner removes files from the output tree that the last walk did not
// produce. Hidden files and directories, including the cache, are kept.
type OutputCleaner struct {
	outputDir string
	expected  map[string]bool
	log       *slog.Logger
}

// NewOutputCleaner expects every output of root plus the extra root-level names.
func NewOutputCleaner(outputDir string, root *DirectoryMetadata, log *slog.Logger, extra ...string) *OutputCleaner {
	expected := map[string]bool{}
	collectOutputs(root, expected)
	for _, name := range extra {
		expected[name] = true
	}
	return &OutputCleaner{
		outputDir: outputDir,
		expected:  expected,
		log:       log,
	}
}

func collectOutputs(dir *DirectoryMetadata, into map[string]bool) {
	if dir == nil {
		return
	}
	into[path.Join(dir.Path, IndexName)] = true
	for _, f := range dir.Files {
		into[f.Output()] = true
	}
	for _, sub := range dir.Subdirs {
		collectOutputs(sub, into)
	}
}

// CleanupOrphanedFiles deletes unexpected files and returns their relative paths.
func (oc *OutputCleaner) CleanupOrphanedFiles() ([]string, error) {
	var removed []string
	err := filepath.Walk(oc.outputDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(oc.outputDir, p)
		if err != nil || relPath == "." {
			return err
		}
		if isHiddenFile(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel := filepath.ToSlash(relPath)
		if oc.expected[rel] {
			return nil
		}
		oc.log.Info("removing orphaned output", "path", rel)
		if err := os.Remove(p); err != nil {
			return err
		}
		removed = append(removed, rel)
		return nil
	})
	return removed, err
}
