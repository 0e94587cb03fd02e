package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/intellinews/newsrec/internal/content"
	"github.com/intellinews/newsrec/internal/models"
)

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(s.config.Recommend.DefaultLimit, s.config.Recommend.MaxLimit); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("similar request",
		zap.Int64("news_id", req.NewsID),
		zap.Int("limit", req.Limit),
		zap.String("category_filter", req.CategoryFilter),
	)

	items, cached, err := s.service.GetSimilar(r.Context(), req.NewsID, req.Limit, req.CategoryFilter)
	if err != nil {
		s.logger.Error("similarity query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := &models.SimilarResponse{
		Success:         true,
		SourceNewsID:    req.NewsID,
		Recommendations: items,
		Cached:          cached,
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []models.RecommendedItem{}
	}
	if len(items) == 0 {
		resp.Message = "no similar articles found"
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req models.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("index request", zap.Int64("news_id", req.NewsID))

	indexed, err := s.service.IndexOne(r.Context(), req.NewsID)
	if err != nil {
		s.respondIndexError(w, req.NewsID, err)
		return
	}

	resp := &models.IndexResponse{Success: true}
	if indexed {
		resp.IndexedCount = 1
		resp.Message = "article indexed"
	} else {
		resp.SkippedCount = 1
		resp.Message = "article skipped"
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndexBatch(w http.ResponseWriter, r *http.Request) {
	var req models.IndexBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(s.config.Recommend.DefaultBatchSize, s.config.Recommend.MaxBatchSize); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("batch index request",
		zap.Int("page", req.Page),
		zap.Int("size", req.Size),
		zap.String("category", req.Category),
	)

	indexed, skipped, err := s.service.IndexBatch(r.Context(), req.Page, req.Size, req.Category)
	if err != nil {
		s.respondIndexError(w, 0, err)
		return
	}

	s.respondJSON(w, http.StatusOK, &models.IndexResponse{
		Success:      true,
		IndexedCount: indexed,
		SkippedCount: skipped,
		Message:      fmt.Sprintf("indexed %d, skipped %d", indexed, skipped),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondIndexError maps news-service failures onto the right status codes:
// an unknown article is a client error, an unreachable news service is an
// upstream error.
func (s *Server) respondIndexError(w http.ResponseWriter, newsID int64, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("article %d not found", newsID))
	case errors.Is(err, content.ErrUnavailable):
		s.logger.Error("news service unavailable", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "news service unavailable")
	default:
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
