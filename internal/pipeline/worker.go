package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"genforge/internal/params"
)

const releaseTimeout = 30 * time.Second

// WorkerClient implements Builder against the inference worker's HTTP API.
// The worker owns the GPU; this process only orchestrates it.
type WorkerClient struct {
	baseURL string
	client  *http.Client
}

// NewWorkerClient creates a new worker client.
func NewWorkerClient(baseURL string, timeout time.Duration) *WorkerClient {
	return &WorkerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type buildRequest struct {
	Kind         Kind          `json:"kind"`
	ModelPath    string        `json:"model_path"`
	Loras        []params.Lora `json:"loras,omitempty"`
	ImageToImage bool          `json:"image_to_image,omitempty"`
}

type buildResponse struct {
	ID string `json:"id"`
}

// Build asks the worker to construct a pipeline and returns a handle bound to
// the worker-side instance.
func (c *WorkerClient) Build(ctx context.Context, spec Spec) (Handle, error) {
	body, err := json.Marshal(buildRequest{
		Kind:         spec.Kind,
		ModelPath:    spec.ModelPath,
		Loras:        spec.Loras,
		ImageToImage: spec.ImageToImage,
	})
	if err != nil {
		return nil, fmt.Errorf("encode build request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/pipelines", c.baseURL)
	resp, err := c.post(ctx, u, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, workerStatusError(resp)
	}

	var built buildResponse
	if err := json.NewDecoder(resp.Body).Decode(&built); err != nil {
		return nil, fmt.Errorf("decode build response: %w", err)
	}
	if built.ID == "" {
		return nil, fmt.Errorf("%w: worker returned empty pipeline id", ErrUpstream)
	}

	return &workerHandle{client: c, id: built.ID}, nil
}

// workerHandle is a Handle bound to one worker-side pipeline instance.
type workerHandle struct {
	client *WorkerClient
	id     string
}

type invokeRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	Seed           int64   `json:"seed"`
	InitImage      string  `json:"init_image,omitempty"`
	Strength       float64 `json:"strength,omitempty"`
	OriginalWidth  int     `json:"original_width,omitempty"`
	OriginalHeight int     `json:"original_height,omitempty"`
	Frames         int     `json:"frames,omitempty"`
	FPS            int     `json:"fps,omitempty"`
	GuidanceScale  float64 `json:"guidance_scale,omitempty"`
}

func (h *workerHandle) Invoke(ctx context.Context, req InvokeRequest) ([]byte, error) {
	payload := invokeRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		Seed:           req.Seed,
		Strength:       req.Strength,
		OriginalWidth:  req.OriginalWidth,
		OriginalHeight: req.OriginalHeight,
		Frames:         req.Frames,
		FPS:            req.FPS,
		GuidanceScale:  req.GuidanceScale,
	}
	if len(req.InitImage) > 0 {
		payload.InitImage = base64.StdEncoding.EncodeToString(req.InitImage)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode invoke request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/pipelines/%s/invoke", h.client.baseURL, h.id)
	resp, err := h.client.post(ctx, u, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, workerStatusError(resp)
	}

	artifact, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if len(artifact) == 0 {
		return nil, fmt.Errorf("%w: worker returned empty artifact", ErrUpstream)
	}
	return artifact, nil
}

func (h *workerHandle) ReloadAdapters(ctx context.Context, loras []params.Lora) error {
	body, err := json.Marshal(struct {
		Loras []params.Lora `json:"loras"`
	}{Loras: loras})
	if err != nil {
		return fmt.Errorf("encode adapter request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/pipelines/%s/loras", h.client.baseURL, h.id)
	resp, err := h.client.post(ctx, u, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return workerStatusError(resp)
	}
	return nil
}

// ReleaseMemory tells the worker to drop transient device allocations. Errors
// are logged, never surfaced: reclamation must not mask the job's own error.
func (h *workerHandle) ReleaseMemory() {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/v1/pipelines/%s/release", h.client.baseURL, h.id)
	resp, err := h.client.post(ctx, u, nil)
	if err != nil {
		slog.Warn("release device memory failed", "pipeline", h.id, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("release device memory failed", "pipeline", h.id, "status", resp.StatusCode)
	}
}

func (c *WorkerClient) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyWorkerError(err)
	}
	return resp, nil
}

func workerStatusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(detail) > 0 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, detail)
	}
	return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
}

func classifyWorkerError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrUpstream, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout: %v", ErrUpstream, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
