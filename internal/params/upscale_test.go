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

func upscaleRequest(t *testing.T, doc string) params.UpscaleRequest {
	t.Helper()
	var req params.UpscaleRequest
	require.NoError(t, json.Unmarshal([]byte(doc), &req))
	return req
}

func TestResolveUpscale_Defaults(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	p, err := params.ResolveUpscale(upscaleRequest(t,
		`{"checkpoint_file_path": "/models/sdxl.safetensors", "upscale_path": "`+src+`"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{src}, p.Sources)
	assert.Equal(t, 1, p.NumImages)
	assert.Equal(t, 30, p.NumSteps)
	assert.Equal(t, 51, p.InitStrength)
	assert.Equal(t, 1.5, p.Scale)
	assert.False(t, p.ForceUpscale)
}

func TestResolveUpscale_RequiredFields(t *testing.T) {
	_, err := params.ResolveUpscale(upscaleRequest(t, `{"upscale_path": "/in.png"}`))
	require.Error(t, err)
	assert.Equal(t, "checkpoint_file_path is required", err.Error())

	_, err = params.ResolveUpscale(upscaleRequest(t, `{"checkpoint_file_path": "/m.safetensors"}`))
	require.Error(t, err)
	assert.Equal(t, "upscale_path is required", err.Error())
}

func TestResolveUpscale_StrengthRange(t *testing.T) {
	_, err := params.ResolveUpscale(upscaleRequest(t,
		`{"checkpoint_file_path": "/m", "upscale_path": "/in.png", "input_image_strength": 101}`))
	require.Error(t, err)
	assert.Equal(t, "input_image_strength must be between 1 and 100 inclusive", err.Error())

	p, err := params.ResolveUpscale(upscaleRequest(t,
		`{"checkpoint_file_path": "/m", "upscale_path": "/in.png", "input_image_strength": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, p.InitStrength)
}

func TestResolveUpscale_MissingSourcesIsNotAnError(t *testing.T) {
	// paths that resolve to nothing are a run-time skip, not a 400
	p, err := params.ResolveUpscale(upscaleRequest(t,
		`{"checkpoint_file_path": "/m", "upscale_path": "/nonexistent/in.png"}`))
	require.NoError(t, err)
	assert.Empty(t, p.Sources)
}
