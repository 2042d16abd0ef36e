package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// ResultsStore reads persisted best-K rows for the results endpoint
type ResultsStore interface {
	GetAnalyses(ctx context.Context, periodType, ticker string, limit int) ([]*breakout.Analysis, error)
}

// AnalysisHandler handles best-K analysis endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	orchestrator *analysis.Orchestrator
	results      ResultsStore
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(orchestrator *analysis.Orchestrator, results ResultsStore, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		results:      results,
		logger:       log,
	}
}

// AnalysisResponse is the envelope for the analysis endpoint
type AnalysisResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *analysis.Report `json:"data,omitempty"`
}

// RunAnalysis runs a best-K batch synchronously and returns its report
// POST /api/analysis/best-k
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analysis.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 기간 검증 실패는 400, 실행 실패는 500으로 구분한다
	if _, err := breakout.ResolvePeriod(req.Period, req.StartDate, req.EndDate, time.Now()); err != nil {
		respondJSON(w, http.StatusBadRequest, AnalysisResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"period": req.Period,
		"market": req.Market,
	}).Info("Best-K analysis triggered")

	report, err := h.orchestrator.Run(ctx, req)
	if err != nil {
		h.logger.WithError(err).Error("Best-K analysis failed")
		respondJSON(w, http.StatusInternalServerError, AnalysisResponse{
			Success: false,
			Message: "Best-K analysis failed: " + err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, AnalysisResponse{
		Success: true,
		Message: "Best-K analysis completed",
		Data:    report,
	})
}

const (
	defaultResultsLimit = 100
	maxResultsLimit     = 500
)

// GetResults returns persisted best-K rows
// GET /api/analysis/results?period_type=month_1&ticker=005930&limit=50
func (h *AnalysisHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := defaultResultsLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		if n > maxResultsLimit {
			n = maxResultsLimit
		}
		limit = n
	}

	rows, err := h.results.GetAnalyses(ctx, q.Get("period_type"), q.Get("ticker"), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get analysis results")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve analysis results")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(rows),
		"results": rows,
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
