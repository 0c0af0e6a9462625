package job_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genforge/internal/job"
	"genforge/internal/params"
	"genforge/internal/pipeline"
)

func upscaleParams(t *testing.T, req params.UpscaleRequest) *params.Upscale {
	t.Helper()
	if req.CheckpointFilePath == "" {
		req.CheckpointFilePath = "/models/base.safetensors"
	}
	p, err := params.ResolveUpscale(req)
	require.NoError(t, err)
	return p
}

func TestUpscaleRunner_EmptySources(t *testing.T) {
	builder, _ := newMockBuilder([]byte("png"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath: params.StringOrList{"/nonexistent/in.png"},
	})
	files, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, 0, builder.builds())
}

func TestUpscaleRunner_ExplicitPrompt(t *testing.T) {
	dir := t.TempDir()
	source := writePNG(t, filepath.Join(dir, "scene.png"), 100, 80)

	builder, handle := newMockBuilder([]byte("upscaled"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath: params.StringOrList{source},
		Prompt:      "a castle",
		Scale:       2,
	})
	files, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "scene_upscaled_")

	require.Len(t, handle.invokes, 1)
	req := handle.invokes[0]
	assert.Equal(t, "a castle", req.Prompt)
	assert.Equal(t, 100, req.OriginalWidth)
	assert.Equal(t, 80, req.OriginalHeight)
	assert.Equal(t, 200, req.Width)
	assert.Equal(t, 160, req.Height)
	assert.NotEmpty(t, req.InitImage)
}

func TestUpscaleRunner_SidecarFallbackWithAffixes(t *testing.T) {
	dir := t.TempDir()
	source := writePNG(t, filepath.Join(dir, "scene.png"), 32, 32)
	writeSidecar(t, source, `{"prompt": "a foggy valley", "negative_prompt": "noise"}`)

	builder, handle := newMockBuilder([]byte("upscaled"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath:          params.StringOrList{source},
		PromptPrefix:         "masterpiece, ",
		PromptSuffix:         ", 4k",
		NegativePromptPrefix: "bad, ",
	})
	_, err := runner.Run(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, handle.invokes, 1)
	assert.Equal(t, "masterpiece, a foggy valley, 4k", handle.invokes[0].Prompt)
	assert.Equal(t, "bad, noise", handle.invokes[0].NegativePrompt)
}

func TestUpscaleRunner_SkipsWithoutPrompt(t *testing.T) {
	dir := t.TempDir()
	source := writePNG(t, filepath.Join(dir, "scene.png"), 32, 32)

	builder, handle := newMockBuilder([]byte("upscaled"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath: params.StringOrList{source},
	})
	files, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, handle.invokes)
}

func TestUpscaleRunner_SkipsAlreadyUpscaled(t *testing.T) {
	dir := t.TempDir()
	source := writePNG(t, filepath.Join(dir, "scene_upscaled_1700000000.png"), 32, 32)

	builder, handle := newMockBuilder([]byte("upscaled"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath: params.StringOrList{source},
		Prompt:      "a castle",
	})
	files, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, handle.invokes)
}

func TestUpscaleRunner_ForceUpscale(t *testing.T) {
	dir := t.TempDir()
	source := writePNG(t, filepath.Join(dir, "scene_upscaled_1700000000.png"), 32, 32)

	builder, handle := newMockBuilder([]byte("upscaled"))
	runner := job.NewUpscaleRunner(builder, pipeline.NewCache(), newTestWriter())

	p := upscaleParams(t, params.UpscaleRequest{
		UpscalePath:  params.StringOrList{source},
		Prompt:       "a castle",
		ForceUpscale: true,
	})
	files, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Len(t, handle.invokes, 1)
}
