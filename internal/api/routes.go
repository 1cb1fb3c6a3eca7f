package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// requestTimeout bounds API handlers. Session control never waits for audio,
// so only catalog and clip reads come near it.
const requestTimeout = 15 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/levels", s.handleLevels)
		r.Get("/levels/{group}/batches", s.handleBatches)
		r.Get("/levels/{group}/batches/{batch}/sentences", s.handleBatchSentences)

		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleOpenSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Put("/batch", s.handleSwitchBatch)
			r.Post("/{control:play|pause|next|prev}", s.handleControl)
			r.Put("/index", s.handleSetIndex)
			r.Patch("/settings", s.handleSettings)
		})

		r.Get("/clips/{key}", s.handleClip)
		r.Get("/clips", s.handleClipStats)
	})
	return r
}
