package job

import (
	"context"
	"fmt"
	"log/slog"

	"genforge/internal/artifact"
	"genforge/internal/imaging"
	"genforge/internal/params"
	"genforge/internal/pipeline"
)

// ImageRunner drives text-to-image and image-to-image generation jobs.
type ImageRunner struct {
	builder pipeline.Builder
	cache   *pipeline.Cache
	writer  *artifact.Writer
}

// NewImageRunner creates an ImageRunner.
func NewImageRunner(builder pipeline.Builder, cache *pipeline.Cache, writer *artifact.Writer) *ImageRunner {
	return &ImageRunner{builder: builder, cache: cache, writer: writer}
}

// Run produces num_images artifacts for every prompt x target combination and
// returns the saved paths in production order. Pipeline errors propagate;
// device memory is reclaimed after each artifact and again at job end.
func (r *ImageRunner) Run(ctx context.Context, p *params.Image) ([]string, error) {
	spec := pipeline.Spec{
		Kind:         pipeline.KindImage,
		ModelPath:    p.CheckpointPath,
		Loras:        p.Loras,
		ImageToImage: p.ImageToImage,
	}
	handle, err := acquire(ctx, r.builder, r.cache, cachePrefixImage, spec)
	if err != nil {
		return nil, err
	}
	defer handle.ReleaseMemory()

	targets := p.SourceImages
	if len(targets) == 0 {
		targets = []string{""}
	}

	var saved []string
	for _, prompt := range p.Prompts {
		for _, target := range targets {
			for i := 0; i < p.NumImages; i++ {
				path, err := r.generateOne(ctx, handle, p, prompt, target)
				if err != nil {
					return saved, err
				}
				saved = append(saved, path)
			}
		}
	}
	return saved, nil
}

func (r *ImageRunner) generateOne(ctx context.Context, handle pipeline.Handle, p *params.Image, prompt, target string) (string, error) {
	seed := p.Seed.Resolve()
	req := pipeline.InvokeRequest{
		Prompt:         prompt,
		NegativePrompt: p.NegativePrompt,
		Width:          p.Width,
		Height:         p.Height,
		Steps:          p.NumSteps,
		Seed:           seed,
	}

	if target != "" {
		init, err := imaging.ResizePNG(target, p.Width, p.Height)
		if err != nil {
			return "", fmt.Errorf("prepare init image %s: %w", target, err)
		}
		req.InitImage = init
		req.Strength = float64(p.InitStrength) / 100
	}

	data, err := invokeOnce(ctx, handle, req)
	if err != nil {
		return "", err
	}

	path, err := r.writer.Save(p.OutputFolder, p.OutputPrefix, p.OutputSuffix, "png", data)
	if err != nil {
		return "", err
	}

	snapshot := p.Snapshot()
	snapshot["prompt"] = prompt
	snapshot["seed"] = seed
	if target != "" {
		snapshot["reference_image_path"] = target
	}
	snapshot["saved_image"] = path
	snapshot["timestamp"] = r.writer.Timestamp()
	if err := r.writer.WriteSidecar(path, snapshot); err != nil {
		return "", err
	}

	slog.Info("image generated", "path", path, "seed", seed)
	return path, nil
}
