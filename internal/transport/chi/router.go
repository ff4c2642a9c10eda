package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/metrics"
)

// NewRouter mounts the API on a chi router with the standard middleware
// chain: JSON recoverer, request id, wide-event log, bearer auth, metrics.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/general", s.ChatGeneral)
			r.Post("/code-assistant", s.ChatCodeAssistant)
			r.Get("/ws", s.ChatWS)
		})
		r.Route("/code-assistant", func(r chi.Router) {
			r.Get("/status", s.Status)
			r.Delete("/documents", s.ClearDocuments)
		})
		r.Post("/ingest", s.Ingest)
		r.Get("/ingest/stats", s.IngestStats)
		r.Post("/documents", s.AddDocument)
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Get("/history", s.History)
			r.Delete("/history", s.ClearHistory)
			r.Post("/clear", s.ClearHistory)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/documents", s.ListDocuments)
			r.Get("/search", s.Search)
			r.Get("/explain", s.Explain)
		})
	})

	return r
}
