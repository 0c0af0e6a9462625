// Package pipeline defines the contract with the generative-model runtime and
// the single-slot cache that keeps one constructed pipeline alive between
// jobs. Model loading, adapter application, and the actual inference live
// behind the Builder and Handle interfaces.
package pipeline

import (
	"context"
	"errors"

	"genforge/internal/params"
)

// ErrUpstream marks failures inside the model runtime. Handlers map it to a
// 502 rather than a validation 400.
var ErrUpstream = errors.New("pipeline failure")

// Kind selects which pipeline family a Spec builds.
type Kind string

const (
	KindImage   Kind = "sdxl"
	KindUpscale Kind = "sdxl-upscale"
	KindVideo   Kind = "wan"
)

// Spec identifies a pipeline to construct: the model weights, the adapter
// set, and whether the image-to-image variant is needed.
type Spec struct {
	Kind         Kind
	ModelPath    string
	Loras        []params.Lora
	ImageToImage bool
}

// InvokeRequest carries the fully resolved arguments for one generation call.
// Exactly one artifact comes back per invocation.
type InvokeRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	Seed           int64

	// InitImage is a prepared PNG for image-to-image and upscale calls; nil
	// for pure text-to-image/video.
	InitImage []byte
	// Strength is the denoise strength fraction in (0, 1] when InitImage is
	// set.
	Strength float64
	// OriginalWidth/Height are the pre-scale source dimensions for upscale
	// conditioning.
	OriginalWidth  int
	OriginalHeight int

	// Video-only fields.
	Frames        int
	FPS           int
	GuidanceScale float64
}

// Handle is an opaque reference to a constructed, ready-to-invoke pipeline.
// Handles are not safe for concurrent invocation.
type Handle interface {
	// Invoke runs one generation and returns the encoded artifact (PNG or
	// MP4 bytes).
	Invoke(ctx context.Context, req InvokeRequest) ([]byte, error)

	// ReloadAdapters swaps the adapter set without reconstructing the whole
	// pipeline. Segment chaining relies on this.
	ReloadAdapters(ctx context.Context, loras []params.Lora) error

	// ReleaseMemory reclaims transient device memory. It runs after every
	// artifact and again at job end, on every exit path, and must be safe to
	// call repeatedly.
	ReleaseMemory()
}

// Builder constructs pipelines. Construction is expensive; callers go through
// the Cache to avoid redundant builds.
type Builder interface {
	Build(ctx context.Context, spec Spec) (Handle, error)
}
