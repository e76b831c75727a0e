package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoad_Malformed(t *testing.T) {
	tests := map[string]string{
		"single token": "sha256:abc\n",
		"bad digest":   "notadigest a.png\n",
		"short hex":    "sha256:abcd a.png\n",
		"empty path":   digest.FromString("x").String() + " \n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoad_UnreadableIsFatal(t *testing.T) {
	// a directory in place of the file is an I/O error, not "absent"
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestRecordIsInvisibleUntilNextLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	c, err := Load(path)
	require.NoError(t, err)

	h := digest.FromString("content")
	c.Record(h, "a.png")
	_, ok := c.Lookup("a.png")
	assert.False(t, ok, "recorded entries must not be visible in the same run")

	require.NoError(t, c.Persist())

	reloaded, err := Load(path)
	require.NoError(t, err)
	got, ok := reloaded.Lookup("a.png")
	assert.True(t, ok)
	assert.Equal(t, h, got)
}

func TestIdenticalContentKeepsOneEntryPerPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	c := New(path)
	h := digest.FromString("same")
	c.Record(h, "a.txt")
	c.Record(h, "b.txt")
	c.Record(digest.FromString("older"), "c.txt")
	c.Record(digest.FromString("newer"), "c.txt")
	require.NoError(t, c.Persist())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Len())
	for _, src := range []string{"a.txt", "b.txt"} {
		got, ok := reloaded.Lookup(src)
		assert.True(t, ok, src)
		assert.Equal(t, h, got, src)
	}
	got, _ := reloaded.Lookup("c.txt")
	assert.Equal(t, digest.FromString("newer"), got, "later records for a path win")
}

func TestPersist_FormatAndOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(digest.FromString("old").String()+" old.txt\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	h1 := digest.FromString("one")
	h2 := digest.FromString("two")
	c.Record(h2, "b/with space.jpg")
	c.Record(h1, "a.md")
	require.NoError(t, c.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, h1.String()+" a.md", lines[0])
	assert.Equal(t, h2.String()+" b/with space.jpg", lines[1])

	reloaded, err := Load(path)
	require.NoError(t, err)
	_, ok := reloaded.Lookup("old.txt")
	assert.False(t, ok, "persist replaces prior contents")
	got, ok := reloaded.Lookup("b/with space.jpg")
	assert.True(t, ok)
	assert.Equal(t, h2, got)
}

func TestRecord_ConcurrentWriters(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), DefaultFileName))
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(digest.FromString(strings.Repeat("x", i)), fmt.Sprintf("f%02d", i))
		}(i)
	}
	wg.Wait()
	require.NoError(t, c.Persist())

	reloaded, err := Load(c.Path())
	require.NoError(t, err)
	assert.Equal(t, 64, reloaded.Len())
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	h := digest.FromString("x")
	require.NoError(t, os.WriteFile(path, []byte(h.String()+" x.txt\n\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	_, ok := c.Lookup("x.txt")
	require.True(t, ok)
	c.Reset()
	_, ok = c.Lookup("x.txt")
	assert.False(t, ok)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0644))

	ha, err := HashFile(a)
	require.NoError(t, err)
	hb, err := HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Equal(t, digest.FromString("same bytes"), ha)

	_, err = HashFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
