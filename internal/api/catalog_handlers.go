package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/hanziflash/internal/models"
)

type batchResponse struct {
	Group     string            `json:"group"`
	Batch     int               `json:"batch"`
	Sentences []models.Sentence `json:"sentences"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.CatalogService.ListLevels(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, levels)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.CatalogService.ListBatches(r.Context(), chi.URLParam(r, "group"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, batches)
}

func (s *Server) handleBatchSentences(w http.ResponseWriter, r *http.Request) {
	batch, err := intParam(r, "batch")
	if err != nil {
		handleError(w, r, err)
		return
	}

	sentences, err := s.CatalogService.BatchSentences(r.Context(), chi.URLParam(r, "group"), batch)
	if err != nil {
		handleError(w, r, err)
		return
	}

	group := chi.URLParam(r, "group")
	if len(sentences) > 0 {
		group = sentences[0].Group
	}
	writeJSON(w, r, http.StatusOK, batchResponse{Group: group, Batch: batch, Sentences: sentences})
}
