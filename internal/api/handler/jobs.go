package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"genforge/internal/api/response"
	"genforge/internal/store"
)

const defaultJobsLimit = 50

// JobLister defines the interface the jobs handler depends on.
type JobLister interface {
	ListRecentJobs(ctx context.Context, limit int) ([]*store.JobRecord, error)
}

// NewJobsHandler returns an http.HandlerFunc for GET /api/jobs.
func NewJobsHandler(svc JobLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJobsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 500 {
				response.Error(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
				return
			}
			limit = n
		}

		jobs, err := svc.ListRecentJobs(r.Context(), limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "an unexpected error occurred")
			return
		}

		out := make([]jobEntry, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, jobEntry{
				ID:         j.ID.String(),
				Kind:       j.Kind,
				Params:     j.Params,
				SavedFiles: j.SavedFiles,
				DurationMS: j.DurationMS,
				CreatedAt:  j.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		response.JSON(w, struct {
			Jobs []jobEntry `json:"jobs"`
		}{Jobs: out})
	}
}

type jobEntry struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Params     map[string]any `json:"params"`
	SavedFiles []string       `json:"saved_files"`
	DurationMS int64          `json:"duration_ms"`
	CreatedAt  string         `json:"created_at"`
}
