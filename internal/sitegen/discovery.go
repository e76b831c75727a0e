// discovery.go - Directory entry classification
package sitegen

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/CiaranMcAleer/shelf/internal/tags"
)

// IgnoreSentinel marks a directory that should be left out of its parent's listing.
const IgnoreSentinel = "IGNORE"

// defaultIgnore lists names (full base name or stem) that are never rendered.
var defaultIgnore = []string{".DS_Store", IgnoreSentinel, "Thumbs.db", "desktop.ini"}

// indexSources are reserved as a directory's own index content.
var indexSources = []string{"index.md", "index.html"}

type entrySet struct {
	dirs   []string
	files  []string
	hidden bool
}

// partitionEntries splits a listing into subdirectories and regular files,
// skipping hidden directories and irregular entries such as symlinks.
func partitionEntries(entries []os.DirEntry) entrySet {
	var set entrySet
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if isHiddenFile(name) {
				continue
			}
			set.dirs = append(set.dirs, name)
		case e.Type().IsRegular():
			if name == IgnoreSentinel || strings.HasPrefix(name, IgnoreSentinel+".") {
				set.hidden = true
			}
			set.files = append(set.files, name)
		}
	}
	return set
}

// isHiddenFile checks if a name should be skipped based on hidden file rules
func isHiddenFile(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isIndexSource(name string) bool {
	for _, n := range indexSources {
		if name == n {
			return true
		}
	}
	return false
}

// checkOutputOwners fails when two sources in dir publish under the same
// canonical name, or when a page would take the place of the directory index.
func checkOutputOwners(p *tags.Parser, ignore ignoreSet, dir string, files []string) error {
	owners := make(map[string]string, len(files))
	for _, name := range files {
		if isIndexSource(name) || ignore.match(p, name) {
			continue
		}
		public, _ := p.Parse(name)
		if public == IndexName {
			return fmt.Errorf("%w: '%s' would replace the index page of '%s'",
				ErrOutputCollision, path.Join(dir, name), path.Join("/", dir))
		}
		if other, ok := owners[public]; ok {
			return fmt.Errorf("%w: '%s' and '%s' both publish '%s'",
				ErrOutputCollision, path.Join(dir, other), path.Join(dir, name), path.Join(dir, public))
		}
		owners[public] = name
	}
	return nil
}

// ignoreSet matches names against the ignore list by base name or stem.
type ignoreSet map[string]bool

func newIgnoreSet(extra []string) ignoreSet {
	s := ignoreSet{}
	for _, n := range defaultIgnore {
		s[n] = true
	}
	for _, n := range extra {
		s[n] = true
	}
	return s
}

func (s ignoreSet) match(p *tags.Parser, base string) bool {
	if isHiddenFile(base) {
		return true
	}
	return s[base] || s[p.Stem(base)]
}
