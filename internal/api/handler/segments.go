package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"genforge/internal/api/response"
)

// SegmentChainRunner defines the interface the segments handler depends on.
type SegmentChainRunner interface {
	Run(ctx context.Context, segments []map[string]any) ([]string, error)
}

// NewSegmentsHandler returns an http.HandlerFunc for POST /api/wan/segments.
func NewSegmentsHandler(svc SegmentChainRunner, rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Segments []map[string]any `json:"segments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		started := time.Now()
		files, err := svc.Run(r.Context(), req.Segments)
		if err != nil {
			writeError(w, err)
			return
		}

		recordJob(r.Context(), rec, "wan-segments",
			map[string]any{"segments": len(req.Segments)}, files, started)

		if files == nil {
			files = []string{}
		}
		response.JSON(w, struct {
			AllFiles []string `json:"all_files"`
		}{AllFiles: files})
	}
}
