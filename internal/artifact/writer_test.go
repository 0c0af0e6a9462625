package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedWriter(unix int64) *Writer {
	return &Writer{now: func() time.Time { return time.Unix(unix, 0) }}
}

func TestSave_NamePattern(t *testing.T) {
	dir := t.TempDir()
	w := fixedWriter(1700000000)

	path, err := w.Save(dir, "", "", "png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1700000000.png"), path)

	path, err = w.Save(dir, "run", "", "png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1700000000.png"), path)

	path, err = w.Save(dir, "run", "final", "mp4", []byte("vid"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-1700000000-final.mp4"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("vid"), data)
}

func TestSave_CreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := fixedWriter(1700000000)

	path, err := w.Save(dir, "", "x", "png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1700000000-x.png"), path)
}

func TestSaveBeside(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "scene.png")
	require.NoError(t, os.WriteFile(source, []byte("orig"), 0o644))

	w := fixedWriter(1700000123)
	path, err := w.SaveBeside(source, []byte("bigger"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scene_upscaled_1700000123.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("bigger"), data)
}

func TestWriteSidecar(t *testing.T) {
	dir := t.TempDir()
	artifactPath := filepath.Join(dir, "1700000000.png")

	w := fixedWriter(1700000000)
	require.NoError(t, w.WriteSidecar(artifactPath, map[string]any{
		"prompt": "a castle",
		"seed":   int64(42),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "1700000000.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "a castle", doc["prompt"])
	assert.Equal(t, float64(42), doc["seed"])
}

func TestTimestamp(t *testing.T) {
	w := NewWriter()
	ts := w.Timestamp()
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}[+-]\d{2}:\d{2}( \(.+\))?$`, ts)
}
