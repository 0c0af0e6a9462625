// Package ollama is a client for the Ollama /api/generate endpoint, the
// completion capability behind prompt rewriting.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Sentinel errors for completion-host failures.
var (
	ErrHostUnreachable = errors.New("completion host unreachable")
	ErrHostError       = errors.New("completion host error")
	ErrHostTimeout     = errors.New("completion host timeout")
)

// DefaultTimeout bounds one completion call. Local models can take minutes on
// first load.
const DefaultTimeout = 300 * time.Second

// Client is the interface for text completion and model lifecycle control.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Unload(ctx context.Context, url, model string) error
}

// GenerateRequest defines one completion call.
type GenerateRequest struct {
	URL    string
	Model  string
	Prompt string
	// Format, when set, is a JSON schema the model must satisfy.
	Format any
}

// GenerateResponse is the parsed completion result. When a format schema was
// sent the host returns the structured object as a JSON string in the
// response field; Fields holds it decoded. Raw carries the response text when
// it was not valid JSON.
type GenerateResponse struct {
	Fields map[string]any
	Raw    string
}

// HTTPClient implements Client over Ollama's HTTP API.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a completion client with the given per-call timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	payload := map[string]any{
		"model":    req.Model,
		"prompt":   req.Prompt,
		"thinking": false,
		"stream":   false,
	}
	if req.Format != nil {
		payload["format"] = req.Format
	}

	body, err := c.post(ctx, req.URL, payload)
	if err != nil {
		return nil, err
	}

	var hostResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &hostResp); err != nil {
		return nil, fmt.Errorf("decoding completion response: %w", err)
	}

	resp := &GenerateResponse{Raw: hostResp.Response}
	var fields map[string]any
	if err := json.Unmarshal([]byte(hostResp.Response), &fields); err == nil {
		resp.Fields = fields
	}
	return resp, nil
}

// Unload asks the host to drop the model by sending a zero keep-alive. The
// response body is discarded.
func (c *HTTPClient) Unload(ctx context.Context, url, model string) error {
	_, err := c.post(ctx, url, map[string]any{
		"model":      model,
		"keep_alive": 0,
	})
	return err
}

func (c *HTTPClient) post(ctx context.Context, url string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrHostError, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("reading completion response: %w", err)
	}
	return buf.Bytes(), nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrHostTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrHostTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrHostUnreachable, err)
}
