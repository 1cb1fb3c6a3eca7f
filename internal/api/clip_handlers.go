package api

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSuffix(chi.URLParam(r, "key"), ".mp3")

	clip, err := s.ClipService.Clip(r.Context(), key)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, key+".mp3", time.Time{}, bytes.NewReader(clip.Data))
}

func (s *Server) handleClipStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ClipService.Stats())
}
