package params

import "encoding/json"

const (
	defaultVideoWidth  = 480
	defaultVideoHeight = 720
	defaultVideoSteps  = 4
	defaultVideoFrames = 81
	defaultVideoFPS    = 16

	videoDimensionGranularity = 16
	videoFrameGranularity     = 4

	// DerivedMaxDim caps the larger side when dimensions are derived from a
	// source image.
	DerivedMaxDim = 720
)

// VideoRequest is the raw /api/wan payload. It doubles as the merged shape of
// one chain segment.
type VideoRequest struct {
	GGUFPath          string            `json:"gguf_path"`
	Loras             []json.RawMessage `json:"loras"`
	Prompt            string            `json:"prompt"`
	NegativePrompt    string            `json:"negative_prompt"`
	Seed              Seed              `json:"seed"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	NumVideos         int               `json:"num_videos"`
	NumSteps          int               `json:"num_steps"`
	NumFrames         int               `json:"num_frames"`
	FPS               int               `json:"fps"`
	GuidanceScale     float64           `json:"guidance_scale"`
	OutputFolderPath  string            `json:"output_folder_path"`
	OutputVideoPrefix string            `json:"output_video_prefix"`
	OutputVideoSuffix string            `json:"output_video_suffix"`
	InputImagePath    StringOrList      `json:"input_image_path"`
}

// Video is the canonical, validated parameter set for one video-generation
// job. Width and Height stay zero when the caller left them unset; the runner
// derives them per source image, with explicit values winning per axis.
type Video struct {
	GGUFPath       string
	Loras          []Lora
	Prompt         string
	NegativePrompt string
	Seed           Seed
	Width          int
	Height         int
	NumVideos      int
	NumSteps       int
	NumFrames      int
	FPS            int
	GuidanceScale  float64
	OutputFolder   string
	OutputPrefix   string
	OutputSuffix   string
	SourceImages   []string
}

// ResolveVideo validates and normalizes a video-generation request.
func ResolveVideo(req VideoRequest) (*Video, error) {
	if err := Required("gguf_path", req.GGUFPath); err != nil {
		return nil, err
	}
	if err := Required("negative_prompt", req.NegativePrompt); err != nil {
		return nil, err
	}

	loras, err := NormalizeLoras(req.Loras, defaultLoraStrength)
	if err != nil {
		return nil, err
	}

	p := &Video{
		GGUFPath:       NormalizePath(req.GGUFPath),
		Loras:          loras,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		NumVideos:      req.NumVideos,
		NumSteps:       req.NumSteps,
		NumFrames:      req.NumFrames,
		FPS:            req.FPS,
		GuidanceScale:  req.GuidanceScale,
		OutputFolder:   NormalizePath(req.OutputFolderPath),
		OutputPrefix:   req.OutputVideoPrefix,
		OutputSuffix:   req.OutputVideoSuffix,
		SourceImages:   ResolveSources(req.InputImagePath),
	}

	if p.NumVideos == 0 {
		p.NumVideos = 1
	}
	if p.NumSteps == 0 {
		p.NumSteps = defaultVideoSteps
	}
	if p.NumFrames == 0 {
		p.NumFrames = defaultVideoFrames
	}
	if p.FPS == 0 {
		p.FPS = defaultVideoFPS
	}
	if p.GuidanceScale == 0 {
		p.GuidanceScale = 1
	}
	if p.OutputFolder == "" {
		p.OutputFolder = defaultOutputFolder
	}

	if err := FrameCount("num_frames", p.NumFrames, videoFrameGranularity); err != nil {
		return nil, err
	}
	if p.Width != 0 {
		if err := DivisibleBy("width", p.Width, videoDimensionGranularity); err != nil {
			return nil, err
		}
	}
	if p.Height != 0 {
		if err := DivisibleBy("height", p.Height, videoDimensionGranularity); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// DefaultDimensions fills whichever axes are still unset after per-target
// derivation.
func (p *Video) DefaultDimensions(width, height int) (int, int) {
	if width == 0 {
		width = defaultVideoWidth
	}
	if height == 0 {
		height = defaultVideoHeight
	}
	return width, height
}

// Snapshot is the sidecar view of the resolved parameters.
func (p *Video) Snapshot() map[string]any {
	return map[string]any{
		"gguf_path":           p.GGUFPath,
		"loras":               p.Loras,
		"negative_prompt":     p.NegativePrompt,
		"num_videos":          p.NumVideos,
		"num_steps":           p.NumSteps,
		"num_frames":          p.NumFrames,
		"fps":                 p.FPS,
		"guidance_scale":      p.GuidanceScale,
		"output_folder_path":  p.OutputFolder,
		"output_video_prefix": p.OutputPrefix,
		"output_video_suffix": p.OutputSuffix,
	}
}
