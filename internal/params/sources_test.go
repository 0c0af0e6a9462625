package params_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genforge/internal/params"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestStringOrList_Unmarshal(t *testing.T) {
	var single params.StringOrList
	require.NoError(t, json.Unmarshal([]byte(`"one.png"`), &single))
	assert.Equal(t, params.StringOrList{"one.png"}, single)
	assert.Equal(t, "one.png", single.First())

	var list params.StringOrList
	require.NoError(t, json.Unmarshal([]byte(`["a.png", 7, "b.png", null]`), &list))
	assert.Equal(t, params.StringOrList{"a.png", "b.png"}, list)

	var nullFirst params.StringOrList
	require.NoError(t, json.Unmarshal([]byte(`[null, "x"]`), &nullFirst))
	assert.Equal(t, "x", nullFirst.First())

	var empty params.StringOrList
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
	assert.Equal(t, "", empty.First())
}

func TestResolveSources_Directory(t *testing.T) {
	dir := t.TempDir()
	b := touch(t, filepath.Join(dir, "b.png"))
	a := touch(t, filepath.Join(dir, "a.png"))
	upper := touch(t, filepath.Join(dir, "C.PNG"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	got := params.ResolveSources(params.StringOrList{dir})
	assert.Equal(t, []string{upper, a, b}, got)
}

func TestResolveSources_FilesAndMissing(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.png"))
	txt := touch(t, filepath.Join(dir, "a.txt"))

	got := params.ResolveSources(params.StringOrList{
		a,
		txt,
		filepath.Join(dir, "missing.png"),
		"",
	})
	assert.Equal(t, []string{a}, got)
}

func TestResolveSources_Empty(t *testing.T) {
	assert.Nil(t, params.ResolveSources(nil))
}
