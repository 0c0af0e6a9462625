package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"genforge/internal/artifact"
	"genforge/internal/imaging"
	"genforge/internal/params"
	"genforge/internal/pipeline"
)

// UpscaleRunner re-renders source images at a larger size through the
// image-to-image pipeline.
type UpscaleRunner struct {
	builder pipeline.Builder
	cache   *pipeline.Cache
	writer  *artifact.Writer
}

// NewUpscaleRunner creates an UpscaleRunner.
func NewUpscaleRunner(builder pipeline.Builder, cache *pipeline.Cache, writer *artifact.Writer) *UpscaleRunner {
	return &UpscaleRunner{builder: builder, cache: cache, writer: writer}
}

// Run upscales every qualifying source image num_images times. Sources that
// are already upscaled (unless force_upscale is set) or have no resolvable
// prompt are skipped, not failed: the job continues and the skip is only
// visible in the logs. An empty source list yields an empty result without
// error.
func (r *UpscaleRunner) Run(ctx context.Context, p *params.Upscale) ([]string, error) {
	var saved []string
	if len(p.Sources) == 0 {
		return saved, nil
	}

	spec := pipeline.Spec{
		Kind:         pipeline.KindUpscale,
		ModelPath:    p.CheckpointPath,
		Loras:        p.Loras,
		ImageToImage: true,
	}
	handle, err := acquire(ctx, r.builder, r.cache, cachePrefixUpscale, spec)
	if err != nil {
		return nil, err
	}
	defer handle.ReleaseMemory()

	for _, target := range p.Sources {
		if !p.ForceUpscale && strings.Contains(strings.ToLower(target), "_upscale") {
			slog.Info("skipping already-upscaled image", "path", target)
			continue
		}

		prompt, negative, ok := r.resolvePrompts(p, target)
		if !ok {
			slog.Info("skipping image with no resolvable prompt", "path", target)
			continue
		}

		for i := 0; i < p.NumImages; i++ {
			path, err := r.upscaleOne(ctx, handle, p, target, prompt, negative)
			if err != nil {
				return saved, err
			}
			saved = append(saved, path)
		}
	}
	return saved, nil
}

// resolvePrompts applies the fallback order: explicit request value, then the
// source image's sidecar, then give up. Prefix and suffix strings concatenate
// onto whatever the fallback produced.
func (r *UpscaleRunner) resolvePrompts(p *params.Upscale, target string) (string, string, bool) {
	prompt := p.Prompt
	if prompt == "" {
		prompt, _ = params.SidecarValue(target, "prompt")
	}
	if prompt == "" {
		return "", "", false
	}

	negative := p.NegativePrompt
	if negative == "" {
		negative, _ = params.SidecarValue(target, "negative_prompt")
	}

	prompt = p.PromptPrefix + prompt + p.PromptSuffix
	negative = p.NegativePromptPrefix + negative + p.NegativePromptSuffix
	return prompt, negative, true
}

func (r *UpscaleRunner) upscaleOne(ctx context.Context, handle pipeline.Handle, p *params.Upscale, target, prompt, negative string) (string, error) {
	init, origW, origH, newW, newH, err := imaging.ScalePNG(target, p.Scale)
	if err != nil {
		return "", fmt.Errorf("prepare upscale image %s: %w", target, err)
	}

	data, err := invokeOnce(ctx, handle, pipeline.InvokeRequest{
		Prompt:         prompt,
		NegativePrompt: negative,
		Width:          newW,
		Height:         newH,
		Steps:          p.NumSteps,
		InitImage:      init,
		Strength:       float64(p.InitStrength) / 100,
		OriginalWidth:  origW,
		OriginalHeight: origH,
	})
	if err != nil {
		return "", err
	}

	path, err := r.writer.SaveBeside(target, data)
	if err != nil {
		return "", err
	}

	snapshot := p.Snapshot()
	snapshot["prompt"] = prompt
	snapshot["negative_prompt"] = negative
	snapshot["upscale_path"] = target
	snapshot["saved_image"] = path
	snapshot["timestamp"] = r.writer.Timestamp()
	if err := r.writer.WriteSidecar(path, snapshot); err != nil {
		return "", err
	}

	slog.Info("image upscaled", "source", target, "path", path,
		"width", newW, "height", newH)
	return path, nil
}
