package params

import "encoding/json"

const (
	defaultUpscaleSteps    = 30
	defaultUpscaleStrength = 51
	defaultUpscaleScale    = 1.5
)

// UpscaleRequest is the raw /api/sdxl/upscale payload.
type UpscaleRequest struct {
	CheckpointFilePath   string            `json:"checkpoint_file_path"`
	Loras                []json.RawMessage `json:"loras"`
	UpscalePath          StringOrList      `json:"upscale_path"`
	Prompt               string            `json:"prompt"`
	NegativePrompt       string            `json:"negative_prompt"`
	PromptPrefix         string            `json:"prompt_prefix"`
	PromptSuffix         string            `json:"prompt_suffix"`
	NegativePromptPrefix string            `json:"negative_prompt_prefix"`
	NegativePromptSuffix string            `json:"negative_prompt_suffix"`
	NumImages            int               `json:"num_images"`
	NumSteps             int               `json:"num_steps"`
	InputImageStrength   int               `json:"input_image_strength"`
	Scale                float64           `json:"scale"`
	ForceUpscale         bool              `json:"force_upscale"`
}

// Upscale is the canonical, validated parameter set for one upscale job.
// Prompt and NegativePrompt may still be empty here: per-source sidecar
// fallback happens at run time, and sources without any resolvable prompt are
// skipped rather than failed.
type Upscale struct {
	CheckpointPath       string
	Loras                []Lora
	Sources              []string
	Prompt               string
	NegativePrompt       string
	PromptPrefix         string
	PromptSuffix         string
	NegativePromptPrefix string
	NegativePromptSuffix string
	NumImages            int
	NumSteps             int
	InitStrength         int
	Scale                float64
	ForceUpscale         bool
}

// ResolveUpscale validates and normalizes an upscale request.
func ResolveUpscale(req UpscaleRequest) (*Upscale, error) {
	if err := Required("checkpoint_file_path", req.CheckpointFilePath); err != nil {
		return nil, err
	}
	if err := Required("upscale_path", req.UpscalePath.First()); err != nil {
		return nil, err
	}

	loras, err := NormalizeLoras(req.Loras, defaultLoraStrength)
	if err != nil {
		return nil, err
	}

	p := &Upscale{
		CheckpointPath:       NormalizePath(req.CheckpointFilePath),
		Loras:                loras,
		Sources:              ResolveSources(req.UpscalePath),
		Prompt:               req.Prompt,
		NegativePrompt:       req.NegativePrompt,
		PromptPrefix:         req.PromptPrefix,
		PromptSuffix:         req.PromptSuffix,
		NegativePromptPrefix: req.NegativePromptPrefix,
		NegativePromptSuffix: req.NegativePromptSuffix,
		NumImages:            req.NumImages,
		NumSteps:             req.NumSteps,
		InitStrength:         req.InputImageStrength,
		Scale:                req.Scale,
		ForceUpscale:         req.ForceUpscale,
	}

	if p.NumImages == 0 {
		p.NumImages = 1
	}
	if p.NumSteps == 0 {
		p.NumSteps = defaultUpscaleSteps
	}
	if p.InitStrength == 0 {
		p.InitStrength = defaultUpscaleStrength
	}
	if p.Scale == 0 {
		p.Scale = defaultUpscaleScale
	}

	if err := WithinRange("input_image_strength", p.InitStrength, 1, 100); err != nil {
		return nil, err
	}

	return p, nil
}

// Snapshot is the sidecar view of the resolved parameters.
func (p *Upscale) Snapshot() map[string]any {
	return map[string]any{
		"checkpoint_file_path": p.CheckpointPath,
		"loras":                p.Loras,
		"num_images":           p.NumImages,
		"num_steps":            p.NumSteps,
		"input_image_strength": p.InitStrength,
		"scale":                p.Scale,
	}
}
