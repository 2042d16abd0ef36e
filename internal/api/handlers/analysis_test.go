package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/logger"
)

type stubStore struct {
	universe []analysis.Security
	rows     []*breakout.Analysis
}

func (s *stubStore) TopByMarketCap(_ context.Context, _ int) ([]analysis.Security, error) {
	return s.universe, nil
}

func (s *stubStore) UpsertAnalysis(_ context.Context, row *breakout.Analysis) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *stubStore) GetAnalyses(_ context.Context, periodType, ticker string, limit int) ([]*breakout.Analysis, error) {
	var out []*breakout.Analysis
	for _, row := range s.rows {
		if periodType != "" && row.PeriodType != periodType {
			continue
		}
		if ticker != "" && row.Ticker != ticker {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type stubPrices struct {
	bars []breakout.PriceBar
}

func (p *stubPrices) FetchPrices(_ context.Context, _ string, _, _ time.Time) ([]breakout.PriceBar, error) {
	return p.bars, nil
}

func risingBars() []breakout.PriceBar {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]breakout.PriceBar, 0, 6)
	open := 100.0
	for i := 0; i < 6; i++ {
		bars = append(bars, breakout.PriceBar{
			Date:  base.AddDate(0, 0, i),
			Open:  open,
			High:  open * 1.3,
			Low:   open * 0.99,
			Close: open * 1.25,
		})
		open *= 1.25
	}
	return bars
}

func newTestHandler(store *stubStore, prices *stubPrices) *AnalysisHandler {
	cfg := config.AnalysisConfig{UniverseSize: 10, Workers: 2}
	log := logger.NewWriter(io.Discard)
	orch := analysis.NewOrchestrator(store, prices, nil, nil, cfg, log)
	return NewAnalysisHandler(orch, store, log)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/best-k", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRunAnalysis(t *testing.T) {
	store := &stubStore{
		universe: []analysis.Security{{Ticker: "005930", Name: "삼성전자", Market: "KOSPI"}},
	}
	h := newTestHandler(store, &stubPrices{bars: risingBars()})

	rec := postJSON(t, h.RunAnalysis, analysis.RunRequest{Period: "month_1"})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 1, resp.Data.UpdatedSymbols)
	assert.Equal(t, "month_1", resp.Data.PeriodType)
	assert.Len(t, store.rows, 1)
}

func TestRunAnalysis_InvalidBody(t *testing.T) {
	h := newTestHandler(&stubStore{}, &stubPrices{})

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/best-k", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.RunAnalysis(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunAnalysis_CustomWithoutBounds(t *testing.T) {
	h := newTestHandler(&stubStore{}, &stubPrices{})

	rec := postJSON(t, h.RunAnalysis, analysis.RunRequest{Period: "custom"})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "startDate")
}

func TestGetResults(t *testing.T) {
	store := &stubStore{
		rows: []*breakout.Analysis{
			{Ticker: "005930", PeriodType: "month_1", BestK: 0.4},
			{Ticker: "000660", PeriodType: "week_1", BestK: 0.2},
		},
	}
	h := newTestHandler(store, &stubPrices{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/results?period_type=month_1", nil)
	rec := httptest.NewRecorder()
	h.GetResults(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int                  `json:"count"`
		Results []*breakout.Analysis `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "005930", resp.Results[0].Ticker)
}

func TestGetResults_InvalidLimit(t *testing.T) {
	h := newTestHandler(&stubStore{}, &stubPrices{})

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/results?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.GetResults(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
