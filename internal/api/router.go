package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "genforge/internal/api/middleware"
	"genforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	ImageHandler     http.HandlerFunc
	UpscaleHandler   http.HandlerFunc
	VideoHandler     http.HandlerFunc
	SegmentsHandler  http.HandlerFunc
	VariationHandler http.HandlerFunc
	JobsHandler      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/sdxl", orNotImplemented(deps.ImageHandler))
		r.Post("/api/sdxl/upscale", orNotImplemented(deps.UpscaleHandler))
		r.Post("/api/wan", orNotImplemented(deps.VideoHandler))
		r.Post("/api/wan/segments", orNotImplemented(deps.SegmentsHandler))
		r.Post("/api/ollama/prompt_variation", orNotImplemented(deps.VariationHandler))

		r.Get("/api/jobs", orNotImplemented(deps.JobsHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "endpoint not yet implemented")
	}
}
