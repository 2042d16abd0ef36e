package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/bestk/backend/internal/collector"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// CollectHandler handles data collection endpoints
type CollectHandler struct {
	collector *collector.Collector
	logger    *logger.Logger
}

// NewCollectHandler creates a new collect handler
func NewCollectHandler(c *collector.Collector, log *logger.Logger) *CollectHandler {
	return &CollectHandler{
		collector: c,
		logger:    log,
	}
}

// CollectRequest is a data collection request
type CollectRequest struct {
	Type string `json:"type"` // "all", "prices", "market_caps"
	From string `json:"from"` // Optional: YYYY-MM-DD
	To   string `json:"to"`   // Optional: YYYY-MM-DD
}

// CollectResponse is a data collection response
type CollectResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Results interface{} `json:"results,omitempty"`
}

// Collect triggers data collection
// POST /api/collect
func (h *CollectHandler) Collect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = "all"
	}

	var from, to time.Time
	var err error

	if req.From != "" {
		from, err = time.Parse("2006-01-02", req.From)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
			return
		}
	} else {
		from = time.Now().AddDate(0, 0, -30)
	}

	if req.To != "" {
		to, err = time.Parse("2006-01-02", req.To)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
			return
		}
	} else {
		to = time.Now()
	}

	h.logger.WithFields(map[string]interface{}{
		"type": req.Type,
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	}).Info("Data collection triggered")

	switch req.Type {
	case "market_caps":
		count, err := h.collector.CollectMarketCaps(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to collect market caps")
			respondError(w, http.StatusInternalServerError, "Failed to collect market caps")
			return
		}
		respondJSON(w, http.StatusOK, CollectResponse{
			Status:  "success",
			Message: "Market cap data collected",
			Type:    req.Type,
			Results: map[string]int{"count": count},
		})

	case "prices":
		results, err := h.collector.CollectPrices(ctx, from, to)
		if err != nil {
			h.logger.WithError(err).Error("Failed to collect prices")
			respondError(w, http.StatusInternalServerError, "Failed to collect prices")
			return
		}
		respondJSON(w, http.StatusOK, CollectResponse{
			Status:  "success",
			Message: "Price data collected",
			Type:    req.Type,
			Results: results,
		})

	case "all":
		// 시가총액을 먼저 갱신해야 가격 수집 유니버스가 오늘 랭킹을 반영한다
		if _, err := h.collector.CollectMarketCaps(ctx); err != nil {
			h.logger.WithError(err).Error("Failed to collect market caps")
			respondError(w, http.StatusInternalServerError, "Failed to collect market caps")
			return
		}
		results, err := h.collector.CollectPrices(ctx, from, to)
		if err != nil {
			h.logger.WithError(err).Error("Failed to collect prices")
			respondError(w, http.StatusInternalServerError, "Failed to collect prices")
			return
		}
		respondJSON(w, http.StatusOK, CollectResponse{
			Status:  "success",
			Message: "All data collected",
			Type:    req.Type,
			Results: results,
		})

	default:
		respondError(w, http.StatusBadRequest, "Invalid collection type (valid: all, prices, market_caps)")
	}
}
