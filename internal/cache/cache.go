// Package cache implements the content-addressed build cache.
//
// The cache maps each source path to the digest of the bytes it was last
// rendered from. Lookups only ever see the table loaded from the previous
// build; entries recorded during the current build go to a separate buffer
// that is persisted once, at the end of a successful build.
package cache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"
)

// DefaultFileName is the cache file name inside the output directory.
const DefaultFileName = ".shelf-cache"

// ErrMalformed is returned by Load when a persisted line cannot be parsed.
var ErrMalformed = errors.New("malformed cache file")

// Cache holds the previous build's table and the current build's buffer.
type Cache struct {
	path string

	prev map[string]digest.Digest

	mu   sync.Mutex
	next map[string]digest.Digest
}

// New returns an empty cache that persists to path.
func New(path string) *Cache {
	return &Cache{
		path: path,
		prev: make(map[string]digest.Digest),
		next: make(map[string]digest.Digest),
	}
}

// Load reads the cache file at path. A missing file yields an empty cache.
func Load(path string) (*Cache, error) {
	c := New(path)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to open cache '%s': %w", path, err)
	}
	defer f.Close()

	if err := c.parse(f); err != nil {
		return nil, fmt.Errorf("cache '%s': %w", path, err)
	}
	return c, nil
}

func (c *Cache) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		hash, src, ok := strings.Cut(line, " ")
		if !ok || strings.TrimSpace(src) == "" {
			return fmt.Errorf("%w: line %d: expected '<digest> <path>'", ErrMalformed, lineNo)
		}
		dgst, err := digest.Parse(hash)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
		}
		c.prev[src] = dgst
	}
	return sc.Err()
}

// Path returns the file the cache persists to.
func (c *Cache) Path() string {
	return c.path
}

// Len returns the number of entries loaded from the previous build.
func (c *Cache) Len() int {
	return len(c.prev)
}

// Lookup returns the digest the previous build recorded for src.
func (c *Cache) Lookup(src string) (digest.Digest, bool) {
	hash, ok := c.prev[src]
	return hash, ok
}

// Record buffers src -> hash for the next build. Safe for concurrent use.
func (c *Cache) Record(hash digest.Digest, src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next[src] = hash
}

// Reset drops the previous build's table so every lookup misses.
func (c *Cache) Reset() {
	c.prev = make(map[string]digest.Digest)
}

// Persist atomically replaces the cache file with the recorded entries.
func (c *Cache) Persist() error {
	c.mu.Lock()
	entries := make([]entry, 0, len(c.next))
	for src, h := range c.next {
		entries = append(entries, entry{hash: h, src: src})
	}
	c.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].src < entries[j].src
	})

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n", e.hash, e.src)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

type entry struct {
	hash digest.Digest
	src  string
}

// HashFile returns the canonical digest of the file at path.
func HashFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.Canonical.FromReader(f)
}
