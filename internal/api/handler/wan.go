package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"genforge/internal/api/response"
	"genforge/internal/params"
)

// VideoGenerator defines the interface the video handler depends on.
type VideoGenerator interface {
	Run(ctx context.Context, p *params.Video) ([]string, error)
}

// NewVideoHandler returns an http.HandlerFunc for POST /api/wan.
func NewVideoHandler(svc VideoGenerator, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req params.VideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		p, err := params.ResolveVideo(req)
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

		recordJob(r.Context(), rec, "wan", p.Snapshot(), files, started)
		response.JSON(w, savedFiles(files))
	}
}
