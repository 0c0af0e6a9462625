package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"genforge/internal/api/response"
	"genforge/internal/params"
)

// Upscaler defines the interface the upscale handler depends on.
type Upscaler interface {
	Run(ctx context.Context, p *params.Upscale) ([]string, error)
}

// NewUpscaleHandler returns an http.HandlerFunc for POST /api/sdxl/upscale.
func NewUpscaleHandler(svc Upscaler, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req params.UpscaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		p, err := params.ResolveUpscale(req)
		if err != nil {
			writeError(w, err)
			return
		}

		started := time.Now()
		files, err := svc.Run(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}

		recordJob(r.Context(), rec, "sdxl-upscale", p.Snapshot(), files, started)
		response.JSON(w, savedFiles(files))
	}
}
