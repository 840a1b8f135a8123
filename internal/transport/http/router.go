package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/datasets/{domain}", h.HandleIngest)
	r.Post("/quality/run", h.HandleRun)
	r.Get("/quality/report", h.HandleReport)
	r.Get("/quality/report/{domain}", h.HandleDomainReport)
	r.Get("/quality/flags/{domain}", h.HandleFlags)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
