package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"genforge/internal/api/response"
	"genforge/internal/ollama"
	"genforge/internal/params"
	"genforge/internal/pipeline"
	"genforge/internal/store"
	"genforge/internal/video"
)

// Recorder persists completed jobs. Recording is best-effort: failures are
// logged and never surfaced to the client.
type Recorder interface {
	RecordJob(ctx context.Context, job *store.JobRecord) error
}

func recordJob(ctx context.Context, rec Recorder, kind string, jobParams map[string]any, files []string, started time.Time) {
	if rec == nil {
		return
	}
	err := rec.RecordJob(ctx, &store.JobRecord{
		ID:         uuid.New(),
		Kind:       kind,
		Params:     jobParams,
		SavedFiles: files,
		DurationMS: time.Since(started).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to record job", "kind", kind, "error", err)
	}
}

// writeError translates a job error into the client-facing response.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, params.ErrValidation),
		errors.Is(err, video.ErrNoReadableFrame):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrUpstream),
		errors.Is(err, ollama.ErrHostUnreachable),
		errors.Is(err, ollama.ErrHostError),
		errors.Is(err, ollama.ErrHostTimeout):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

type savedFilesResponse struct {
	SavedFiles []string `json:"saved_files"`
}

func savedFiles(files []string) savedFilesResponse {
	if files == nil {
		files = []string{}
	}
	return savedFilesResponse{SavedFiles: files}
}
