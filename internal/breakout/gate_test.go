package breakout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccept_InsufficientData(t *testing.T) {
	// Profitable candidate, but only 4 bars of history
	cand := &KCandidate{
		K:      0.3,
		Sharpe: 5.0,
		Metrics: Metrics{
			AvgReturnPct: 2.5,
			WinRatePct:   75,
			MDDPct:       0.5,
			TradeCount:   3,
		},
	}

	outcome, row := Accept(cand, "005930", "삼성전자", PeriodMonth1, 4, time.Now())

	assert.Equal(t, OutcomeInsufficientData, outcome)
	assert.Nil(t, row)
	assert.True(t, outcome.Filtered())
}

func TestAccept_NonProfitable(t *testing.T) {
	tests := []struct {
		name string
		cand *KCandidate
	}{
		{name: "negative return", cand: &KCandidate{K: 0.1, Metrics: Metrics{AvgReturnPct: -1.2, TradeCount: 10}}},
		{name: "zero return", cand: &KCandidate{K: 0.1, Metrics: Metrics{AvgReturnPct: 0, TradeCount: 0}}},
		{name: "nil candidate", cand: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, row := Accept(tt.cand, "000660", "SK하이닉스", PeriodWeek1, 20, time.Now())

			assert.Equal(t, OutcomeNonProfitable, outcome)
			assert.Nil(t, row)
			assert.True(t, outcome.Filtered())
		})
	}
}

func TestAccept_Accepted(t *testing.T) {
	analysisDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	cand := &KCandidate{
		K:      0.4,
		Sharpe: 3.2,
		Metrics: Metrics{
			AvgReturnPct: 1.6,
			WinRatePct:   60,
			MDDPct:       0.5,
			TradeCount:   18,
		},
	}

	outcome, row := Accept(cand, "005930", "삼성전자", PeriodMonth3, 62, analysisDate)

	assert.Equal(t, OutcomeAccepted, outcome)
	require.NotNil(t, row)

	assert.Equal(t, "005930", row.Ticker)
	assert.Equal(t, "삼성전자", row.CompanyName)
	assert.Equal(t, PeriodMonth3, row.PeriodType)
	assert.Equal(t, 62, row.PeriodDays)
	assert.InDelta(t, 0.4, row.BestK, 1e-12)
	assert.InDelta(t, 1.6, row.AvgReturnPct, 1e-12)
	assert.InDelta(t, 60.0, row.WinRatePct, 1e-12)
	assert.InDelta(t, 0.5, row.MDDPct, 1e-12)
	assert.Equal(t, 18, row.TotalTrades)
	assert.InDelta(t, 3.2, row.SharpeRatio, 1e-12)
	assert.Equal(t, analysisDate, row.AnalysisDate)
	assert.Greater(t, row.AvgReturnPct, 0.0)
	assert.False(t, outcome.Filtered())
}

func TestAccept_FourBarProfitableHistoryStillRejected(t *testing.T) {
	// A 4-bar history below the floor is rejected even when a profitable K
	// exists for it
	history := []PriceBar{
		bar(0, 100, 110, 90, 108),
		bar(1, 108, 140, 107, 135),
		bar(2, 135, 175, 134, 170),
		bar(3, 170, 220, 169, 210),
	}

	best := Optimize(history)
	require.NotNil(t, best)
	require.Greater(t, best.AvgReturnPct, 0.0)

	outcome, row := Accept(best, "035420", "NAVER", PeriodDays3, len(history), time.Now())

	assert.Equal(t, OutcomeInsufficientData, outcome)
	assert.Nil(t, row)
}
