package handler

import (
	"context"
	"net/http"

	"genforge/internal/api/response"
)

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/health.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		healthy := true

		if db != nil {
			checks["postgres"] = "ok"
			if err := db.Ping(r.Context()); err != nil {
				checks["postgres"] = "unreachable"
				healthy = false
			}
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		body := struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}{Status: "ok", Checks: checks}

		if !healthy {
			body.Status = "degraded"
			response.Status(w, http.StatusServiceUnavailable, body)
			return
		}
		response.JSON(w, body)
	}
}
