package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("suggest request", zap.String("question", req.Question))
	response, err := s.engine.Suggest(r.Context(), &req)
	if err != nil {
		s.logger.Error("suggest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListIntents(w http.ResponseWriter, r *http.Request) {
	intents := s.catalog.All()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"intents": intents,
		"count":   len(intents),
	})
}

func (s *Server) handleGetIntent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	intent, ok := s.catalog.ByID(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "intent not found")
		return
	}
	s.respondJSON(w, http.StatusOK, intent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "suggestion log not enabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	records, err := s.storage.RecentSuggestions(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*models.SuggestionRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"intents": s.catalog.Len(),
	}
	if s.storage != nil {
		count, err := s.storage.CountSuggestions(r.Context())
		if err != nil {
			s.logger.Error("status: count suggestions failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["suggestions_logged"] = count
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Reload(); err != nil {
		s.logger.Error("catalog reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("catalog reloaded", zap.Int("intents", s.catalog.Len()))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"intents": s.catalog.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
