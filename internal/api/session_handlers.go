package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/hanziflash/internal/errors"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/services"
	"github.com/vytor/hanziflash/internal/session"
)

type batchRequest struct {
	Group string `json:"group"`
	Batch int    `json:"batch"`
}

type indexRequest struct {
	Index *int `json:"index"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.SessionService.Open(r.Context(), req.Group, req.Batch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("opened session %s on %s batch %d", snap.ID, snap.Group, snap.Batch)

	w.Header().Set("Location", "/api/sessions/"+snap.ID)
	writeJSON(w, r, http.StatusCreated, snap)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.SessionService.List(r.Context()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.SessionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.SessionService.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSwitchBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.SessionService.SwitchBatch(r.Context(), chi.URLParam(r, "id"), req.Group, req.Batch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	control := services.Control(chi.URLParam(r, "control"))

	snap, err := s.SessionService.Control(r.Context(), chi.URLParam(r, "id"), control)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSetIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Index == nil {
		handleError(w, r, errors.NewValidationError("index", "is required"))
		return
	}

	snap, err := s.SessionService.SetIndex(r.Context(), chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req session.Settings
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.SessionService.ApplySettings(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}
