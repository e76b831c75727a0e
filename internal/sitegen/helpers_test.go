package sitegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"

	"github.com/CiaranMcAleer/shelf/internal/config"
	"github.com/CiaranMcAleer/shelf/internal/logger"
	"github.com/CiaranMcAleer/shelf/internal/markup"
)

// countingConverter wraps the real converter and counts conversions.
type countingConverter struct {
	inner *markup.Converter
	calls atomic.Int64
}

func newCountingConverter() *countingConverter {
	return &countingConverter{inner: markup.New()}
}

func (c *countingConverter) Convert(src []byte) (*markup.Document, error) {
	c.calls.Add(1)
	return c.inner.Convert(src)
}

// fakeEncoder stands in for ffmpeg by writing a marker file.
type fakeEncoder struct {
	calls atomic.Int64
	err   error
}

func (e *fakeEncoder) Encode(_ context.Context, src, dst string) error {
	e.calls.Add(1)
	if e.err != nil {
		return e.err
	}
	return os.WriteFile(dst, []byte("mp4:"+filepath.Base(src)), 0644)
}

var errEncoderBroken = errors.New("encoder exploded")

// memCache is an in-memory BuildCache keyed by source path.
type memCache struct {
	mu   sync.Mutex
	prev map[string]digest.Digest
	next map[string]digest.Digest
}

func newMemCache() *memCache {
	return &memCache{prev: map[string]digest.Digest{}, next: map[string]digest.Digest{}}
}

func (m *memCache) Lookup(src string) (digest.Digest, bool) {
	h, ok := m.prev[src]
	return h, ok
}

func (m *memCache) Record(h digest.Digest, src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next[src] = h
}

// writeTree creates files (slash-separated path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// testOptions returns build options for a fresh input/output pair with
// counting collaborators.
func testOptions(t *testing.T) (Options, *countingConverter, *fakeEncoder) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Input = filepath.Join(dir, "content")
	cfg.Output = filepath.Join(dir, "build")
	cfg.Concurrency = 4
	require.NoError(t, os.MkdirAll(cfg.Input, 0755))

	conv := newCountingConverter()
	enc := &fakeEncoder{}
	return Options{
		Config:    cfg,
		Logger:    logger.Discard(),
		Converter: conv,
		Encoder:   enc,
	}, conv, enc
}
