package extractapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts all endpoints on a chi router with standard middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Post("/api/extract", h.HandleExtract)
	r.Post("/api/structure", h.HandleStructure)
	r.Get("/api/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
		h.HandleReport(w, req, chi.URLParam(req, "id"))
	})
	return r
}
