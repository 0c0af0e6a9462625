package params

import "encoding/json"

// Defaults for the image-generation job kind.
const (
	defaultLoraStrength       = 70
	defaultImageWidth         = 1024
	defaultImageHeight        = 1024
	defaultImageSteps         = 60
	defaultInitStrength       = 70
	defaultOutputFolder       = "output"
	imageDimensionGranularity = 8
)

// ImageRequest is the raw /api/sdxl payload.
type ImageRequest struct {
	CheckpointFilePath string              `json:"checkpoint_file_path"`
	Loras              []json.RawMessage   `json:"loras"`
	Prompt             StringOrList        `json:"prompt"`
	PromptVariations   map[string][]string `json:"prompt_variations"`
	NegativePrompt     string              `json:"negative_prompt"`
	Seed               Seed                `json:"seed"`
	Width              int                 `json:"width"`
	Height             int                 `json:"height"`
	NumImages          int                 `json:"num_images"`
	NumSteps           int                 `json:"num_steps"`
	OutputFolderPath   string              `json:"output_folder_path"`
	OutputImagePrefix  string              `json:"output_image_prefix"`
	OutputImageSuffix  string              `json:"output_image_suffix"`
	InputImagePath     StringOrList        `json:"input_image_path"`
	InputImageStrength int                 `json:"input_image_strength"`
}

// Image is the canonical, validated parameter set for one image-generation
// job. Every field the pipeline call needs is present and range-checked; no
// further fallback lookups happen downstream.
type Image struct {
	CheckpointPath string
	Loras          []Lora
	Prompts        []string
	NegativePrompt string
	Seed           Seed
	Width          int
	Height         int
	NumImages      int
	NumSteps       int
	OutputFolder   string
	OutputPrefix   string
	OutputSuffix   string
	SourceImages   []string
	ImageToImage   bool
	InitStrength   int
}

// ResolveImage validates and normalizes an image-generation request. Prompt
// entries are template-expanded against prompt_variations before the job fans
// out over them.
func ResolveImage(req ImageRequest) (*Image, error) {
	if err := Required("prompt", req.Prompt.First()); err != nil {
		return nil, err
	}
	if err := Required("negative_prompt", req.NegativePrompt); err != nil {
		return nil, err
	}

	loras, err := NormalizeLoras(req.Loras, defaultLoraStrength)
	if err != nil {
		return nil, err
	}

	p := &Image{
		CheckpointPath: NormalizePath(req.CheckpointFilePath),
		Loras:          loras,
		NegativePrompt: req.NegativePrompt,
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		NumImages:      req.NumImages,
		NumSteps:       req.NumSteps,
		OutputFolder:   NormalizePath(req.OutputFolderPath),
		OutputPrefix:   req.OutputImagePrefix,
		OutputSuffix:   req.OutputImageSuffix,
		SourceImages:   ResolveSources(req.InputImagePath),
		ImageToImage:   len(req.InputImagePath) > 0,
		InitStrength:   req.InputImageStrength,
	}

	if p.Width == 0 {
		p.Width = defaultImageWidth
	}
	if p.Height == 0 {
		p.Height = defaultImageHeight
	}
	if p.NumImages == 0 {
		p.NumImages = 1
	}
	if p.NumSteps == 0 {
		p.NumSteps = defaultImageSteps
	}
	if p.OutputFolder == "" {
		p.OutputFolder = defaultOutputFolder
	}
	if p.InitStrength == 0 {
		p.InitStrength = defaultInitStrength
	}

	if err := DivisibleBy("height", p.Height, imageDimensionGranularity); err != nil {
		return nil, err
	}
	if err := DivisibleBy("width", p.Width, imageDimensionGranularity); err != nil {
		return nil, err
	}
	if err := WithinRange("input_image_strength", p.InitStrength, 11, 100); err != nil {
		return nil, err
	}

	for _, prompt := range req.Prompt {
		p.Prompts = append(p.Prompts, ExpandTemplate(prompt, req.PromptVariations)...)
	}

	return p, nil
}

// Snapshot is the sidecar view of the resolved parameters, keyed the way the
// job payload spells them.
func (p *Image) Snapshot() map[string]any {
	return map[string]any{
		"checkpoint_file_path": p.CheckpointPath,
		"loras":                p.Loras,
		"negative_prompt":      p.NegativePrompt,
		"width":                p.Width,
		"height":               p.Height,
		"num_images":           p.NumImages,
		"num_steps":            p.NumSteps,
		"output_folder_path":   p.OutputFolder,
		"output_image_prefix":  p.OutputPrefix,
		"output_image_suffix":  p.OutputSuffix,
		"input_image_strength": p.InitStrength,
	}
}
