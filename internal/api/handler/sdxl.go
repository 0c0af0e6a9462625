package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"genforge/internal/api/response"
	"genforge/internal/params"
)

// ImageGenerator defines the interface the image handler depends on.
type ImageGenerator interface {
	Run(ctx context.Context, p *params.Image) ([]string, error)
}

// NewImageHandler returns an http.HandlerFunc for POST /api/sdxl.
func NewImageHandler(svc ImageGenerator, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req params.ImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		p, err := params.ResolveImage(req)
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

		recordJob(r.Context(), rec, "sdxl", p.Snapshot(), files, started)
		response.JSON(w, savedFiles(files))
	}
}
