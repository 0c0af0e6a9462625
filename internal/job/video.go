package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"genforge/internal/artifact"
	"genforge/internal/imaging"
	"genforge/internal/params"
	"genforge/internal/pipeline"
)

// VideoRunner drives text-to-video and image-to-video generation jobs.
type VideoRunner struct {
	builder pipeline.Builder
	cache   *pipeline.Cache
	writer  *artifact.Writer
}

// NewVideoRunner creates a VideoRunner.
func NewVideoRunner(builder pipeline.Builder, cache *pipeline.Cache, writer *artifact.Writer) *VideoRunner {
	return &VideoRunner{builder: builder, cache: cache, writer: writer}
}

// Run produces num_videos artifacts for every generation target.
func (r *VideoRunner) Run(ctx context.Context, p *params.Video) ([]string, error) {
	saved, _, err := r.RunWithHandle(ctx, p, nil)
	return saved, err
}

// RunWithHandle is Run with an optionally pre-supplied pipeline handle, used
// by segment chaining to avoid reconstructing the pipeline per segment. When
// a handle is carried in, acquisition is skipped and only the adapter set is
// reloaded. The handle in use is returned for the caller to carry forward.
func (r *VideoRunner) RunWithHandle(ctx context.Context, p *params.Video, handle pipeline.Handle) ([]string, pipeline.Handle, error) {
	imageToVideo := len(p.SourceImages) > 0

	if handle != nil {
		if err := handle.ReloadAdapters(ctx, p.Loras); err != nil {
			return nil, handle, fmt.Errorf("%w: reload adapters: %v", pipeline.ErrUpstream, err)
		}
	} else {
		prefix := cachePrefixVideo
		if imageToVideo {
			// Image-to-video is a different pipeline architecture; keep its
			// cache identity apart from text-to-video on the same weights.
			prefix += " I2V"
		}
		spec := pipeline.Spec{
			Kind:         pipeline.KindVideo,
			ModelPath:    p.GGUFPath,
			Loras:        p.Loras,
			ImageToImage: imageToVideo,
		}
		var err error
		handle, err = acquire(ctx, r.builder, r.cache, prefix, spec)
		if err != nil {
			return nil, nil, err
		}
	}
	defer handle.ReleaseMemory()

	targets := p.SourceImages
	if len(targets) == 0 {
		targets = []string{""}
	}

	var saved []string
	for _, target := range targets {
		prompt := r.resolvePrompt(p, target)
		if prompt == "" {
			slog.Info("skipping target with no resolvable prompt", "path", target)
			continue
		}

		for i := 0; i < p.NumVideos; i++ {
			path, err := r.generateOne(ctx, handle, p, prompt, target)
			if err != nil {
				return saved, handle, err
			}
			saved = append(saved, path)
		}
	}
	return saved, handle, nil
}

// resolvePrompt applies the fallback order: explicit request value, then the
// target's sidecar, then give up.
func (r *VideoRunner) resolvePrompt(p *params.Video, target string) string {
	if p.Prompt != "" {
		return p.Prompt
	}
	if target == "" {
		return ""
	}
	prompt, _ := params.SidecarValue(target, "prompt")
	return prompt
}

// resolveDimensions fills unset axes from the target image, scaled so the
// larger side is at most 720 and floored to a multiple of 16. Explicit
// request values always win per axis.
func (r *VideoRunner) resolveDimensions(p *params.Video, target string) (int, int) {
	width, height := p.Width, p.Height
	if target != "" && (width == 0 || height == 0) {
		dw, dh, err := imaging.DeriveDimensions(target, params.DerivedMaxDim, 16)
		if err != nil {
			slog.Warn("dimension derivation failed", "path", target, "error", err)
		} else {
			if width == 0 {
				width = dw
			}
			if height == 0 {
				height = dh
			}
		}
	}
	return p.DefaultDimensions(width, height)
}

func (r *VideoRunner) generateOne(ctx context.Context, handle pipeline.Handle, p *params.Video, prompt, target string) (string, error) {
	seed := p.Seed.Resolve()
	width, height := r.resolveDimensions(p, target)

	req := pipeline.InvokeRequest{
		Prompt:         prompt,
		NegativePrompt: p.NegativePrompt,
		Width:          width,
		Height:         height,
		Steps:          p.NumSteps,
		Seed:           seed,
		Frames:         p.NumFrames,
		FPS:            p.FPS,
		GuidanceScale:  p.GuidanceScale,
	}
	if target != "" {
		init, err := os.ReadFile(target)
		if err != nil {
			return "", fmt.Errorf("read source image %s: %w", target, err)
		}
		req.InitImage = init
	}

	data, err := invokeOnce(ctx, handle, req)
	if err != nil {
		return "", err
	}

	path, err := r.writer.Save(p.OutputFolder, p.OutputPrefix, p.OutputSuffix, "mp4", data)
	if err != nil {
		return "", err
	}

	snapshot := p.Snapshot()
	snapshot["prompt"] = prompt
	snapshot["seed"] = seed
	snapshot["width"] = width
	snapshot["height"] = height
	if target != "" {
		snapshot["image"] = target
	}
	snapshot["saved_video"] = path
	snapshot["timestamp"] = r.writer.Timestamp()
	if err := r.writer.WriteSidecar(path, snapshot); err != nil {
		return "", err
	}

	slog.Info("video generated", "path", path, "seed", seed,
		"width", width, "height", height, "frames", p.NumFrames)
	return path, nil
}
