package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags clears values left behind by earlier executions of the shared commands.
func resetFlags() {
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	original := Version
	Version = "test-version-1.0.0"
	defer func() { Version = original }()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shelf version test-version-1.0.0")
}

func TestBuildCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "content")
	output := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(input, "trip"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "index.md"), []byte("# Archive"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "trip", "beach+++main.png"), []byte("png"), 0644))

	out, err := run(t, "build",
		"--config", filepath.Join(dir, "missing.toml"),
		"--input", input,
		"--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rendered, 0 unchanged")

	index, err := os.ReadFile(filepath.Join(output, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<h1>Archive</h1>")
	assert.Contains(t, string(index), "trip/beach.png")
	assert.FileExists(t, filepath.Join(output, "trip", "beach.png"))
	assert.FileExists(t, filepath.Join(output, "style.css"))

	out, err = run(t, "build",
		"--config", filepath.Join(dir, "missing.toml"),
		"--input", input,
		"--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "0 rendered, 1 unchanged")
}

func TestBuildCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "src")
	output := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(input, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(input, "a@@main.txt"), []byte("a"), 0644))
	cfg := "input = '" + filepath.ToSlash(input) + "'\noutput = '" + filepath.ToSlash(output) + "'\ntag_delimiter = '@@'\n"
	cfgPath := filepath.Join(dir, "shelf.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	_, err := run(t, "build", "--config", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(output, "a.txt"))
}

func TestBuildCmd_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "build",
		"--config", filepath.Join(dir, "missing.toml"),
		"--input", filepath.Join(dir, "nope"),
		"--output", filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestBuildCmd_MissingTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "in"), 0755))
	_, err := run(t, "build",
		"--config", filepath.Join(dir, "missing.toml"),
		"--input", filepath.Join(dir, "in"),
		"--output", filepath.Join(dir, "out"),
		"--template", filepath.Join(dir, "no-template.html"))
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out", "index.html"))
}
