// Package variation rephrases a base prompt N times through the completion
// capability.
package variation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"genforge/internal/ollama"
	"genforge/internal/params"
)

const promptTemplate = `Base prompt:
%s

Instruction:
%s

Return only a JSON object with a single string field named "variation".
The variation should be a rephrasing/alternative of the Base prompt suitable for image generation.
Do not include any extra commentary.`

// variationSchema forces the model to answer with one string field.
var variationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"variation": map[string]any{"type": "string"},
	},
	"required": []string{"variation"},
}

// Engine produces independent rephrasings of a base prompt.
type Engine struct {
	client ollama.Client
}

// NewEngine creates an Engine over the given completion client.
func NewEngine(client ollama.Client) *Engine {
	return &Engine{client: client}
}

// Generate issues count independent completion calls and returns one
// variation per call, in order. A call whose response yields no extractable
// text contributes an empty string rather than an error or an omission, so
// the result always has exactly max(count, 0) entries. After the loop the
// model is asked to unload; that call's outcome is ignored.
func (e *Engine) Generate(ctx context.Context, url, model, basePrompt, instruction string, count int) ([]string, error) {
	if basePrompt == "" {
		return nil, &params.MissingParameterError{Name: "base_prompt"}
	}

	variations := make([]string, 0, max(count, 0))
	for i := 0; i < count; i++ {
		resp, err := e.client.Generate(ctx, ollama.GenerateRequest{
			URL:    url,
			Model:  model,
			Prompt: fmt.Sprintf(promptTemplate, basePrompt, instruction),
			Format: variationSchema,
		})
		if err != nil {
			return nil, err
		}
		variations = append(variations, extractVariation(resp))
	}

	if err := e.client.Unload(ctx, url, model); err != nil {
		slog.Warn("model unload failed", "model", model, "error", err)
	}

	return variations, nil
}

// extractVariation pulls the rephrased text out of a structured response:
// the named field first, then the first string-valued field, then the raw
// response text, then the empty string.
func extractVariation(resp *ollama.GenerateResponse) string {
	if resp.Fields != nil {
		if v, ok := resp.Fields["variation"].(string); ok {
			return strings.TrimSpace(v)
		}
		keys := make([]string, 0, len(resp.Fields))
		for k := range resp.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := resp.Fields[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	return strings.TrimSpace(resp.Raw)
}
