package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"genforge/internal/api/response"
	"genforge/internal/params"
)

// VariationGenerator defines the interface the prompt-variation handler
// depends on.
type VariationGenerator interface {
	Generate(ctx context.Context, url, model, basePrompt, instruction string, count int) ([]string, error)
}

// VariationDefaults holds the fallback completion host settings from config.
type VariationDefaults struct {
	URL   string
	Model string
}

// NewVariationHandler returns an http.HandlerFunc for
// POST /api/ollama/prompt_variation.
func NewVariationHandler(svc VariationGenerator, defaults VariationDefaults, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BasePrompt      string `json:"base_prompt"`
			VariationPrompt string `json:"variation_prompt"`
			NumVariations   int    `json:"num_variations"`
			OllamaURL       string `json:"ollama_url"`
			OllamaModel     string `json:"ollama_model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if req.BasePrompt == "" {
			writeError(w, &params.MissingParameterError{Name: "base_prompt"})
			return
		}
		if req.VariationPrompt == "" {
			writeError(w, &params.MissingParameterError{Name: "variation_prompt"})
			return
		}

		count := req.NumVariations
		if count == 0 {
			count = 1
		}
		url := req.OllamaURL
		if url == "" {
			url = defaults.URL
		}
		model := req.OllamaModel
		if model == "" {
			model = defaults.Model
		}

		started := time.Now()
		variations, err := svc.Generate(r.Context(), url, model, req.BasePrompt, req.VariationPrompt, count)
		if err != nil {
			writeError(w, err)
			return
		}
		if variations == nil {
			variations = []string{}
		}

		recordJob(r.Context(), rec, "prompt-variation", map[string]any{
			"base_prompt":      req.BasePrompt,
			"variation_prompt": req.VariationPrompt,
			"num_variations":   count,
			"ollama_model":     model,
		}, nil, started)

		response.JSON(w, struct {
			BasePrompt      string   `json:"base_prompt"`
			VariationPrompt string   `json:"variation_prompt"`
			Variations      []string `json:"variations"`
		}{
			BasePrompt:      req.BasePrompt,
			VariationPrompt: req.VariationPrompt,
			Variations:      variations,
		})
	}
}
