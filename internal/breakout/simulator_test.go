package breakout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func bar(offset int, o, h, l, c float64) PriceBar {
	return PriceBar{Date: day(offset), Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

func TestSimulate_ShortHistoryIsZeroed(t *testing.T) {
	histories := [][]PriceBar{
		nil,
		{},
		{bar(0, 100, 105, 95, 102)},
	}

	for _, history := range histories {
		for _, k := range KGrid() {
			metrics := Simulate(history, k)
			assert.Equal(t, Metrics{}, metrics, "history of %d bars, k=%.1f", len(history), k)
		}
	}
}

func TestSimulate_Breakout(t *testing.T) {
	// 전일 변동폭 10, K=0.5 → 돌파가 103 + 5 = 108
	history := []PriceBar{
		bar(0, 100, 105, 95, 102),
		bar(1, 103, 110, 101, 108),
	}

	metrics := Simulate(history, 0.5)

	assert.InDelta(t, (108.0-103.0)/103.0*100, metrics.AvgReturnPct, 1e-9)
	assert.InDelta(t, 100.0, metrics.WinRatePct, 1e-9)
	assert.InDelta(t, 0.0, metrics.MDDPct, 1e-9)
	assert.Equal(t, 1, metrics.TradeCount)
}

func TestSimulate_NoBreakoutUsesOpenToCloseReturn(t *testing.T) {
	// High never reaches the target → pass-through return, not a win
	history := []PriceBar{
		bar(0, 100, 105, 95, 102),
		bar(1, 103, 104, 101, 101),
	}

	metrics := Simulate(history, 0.9)

	assert.InDelta(t, (101.0-103.0)/103.0*100, metrics.AvgReturnPct, 1e-9)
	assert.InDelta(t, 0.0, metrics.WinRatePct, 1e-9)
	assert.Equal(t, 1, metrics.TradeCount)
}

func TestSimulate_FlatDaysAreSkipped(t *testing.T) {
	// prev.high == prev.low on every transition → no trades, no returns
	history := []PriceBar{
		bar(0, 100, 100, 100, 100),
		bar(1, 100, 100, 100, 100),
		bar(2, 100, 100, 100, 100),
	}

	metrics := Simulate(history, 0.5)

	assert.Equal(t, Metrics{}, metrics)
}

func TestSimulate_MDDNeverNegative(t *testing.T) {
	tests := []struct {
		name    string
		history []PriceBar
	}{
		{
			name: "monotonic gains",
			history: []PriceBar{
				bar(0, 100, 110, 90, 105),
				bar(1, 105, 130, 104, 120),
				bar(2, 120, 150, 119, 140),
			},
		},
		{
			name: "losing days",
			history: []PriceBar{
				bar(0, 100, 110, 90, 105),
				bar(1, 105, 106, 95, 96),
				bar(2, 96, 97, 85, 86),
			},
		},
		{
			name: "mixed",
			history: []PriceBar{
				bar(0, 100, 110, 90, 105),
				bar(1, 105, 140, 104, 130),
				bar(2, 130, 131, 110, 111),
				bar(3, 111, 150, 110, 145),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range KGrid() {
				metrics := Simulate(tt.history, k)
				assert.GreaterOrEqual(t, metrics.MDDPct, 0.0, "k=%.1f", k)
			}
		})
	}
}

func TestSimulate_MDDTracksCumulativeCurve(t *testing.T) {
	// Losing pass-through days build a drawdown on the cumulative curve:
	// day2 -10%, day3 -10% → cumulative -10, -20, peak 0 → MDD 20
	history := []PriceBar{
		bar(0, 100, 101, 99, 100),
		bar(1, 100, 100.5, 89, 90),
		bar(2, 90, 90.5, 80, 81),
	}

	metrics := Simulate(history, 0.9)

	require.Equal(t, 2, metrics.TradeCount)
	assert.InDelta(t, 20.0, metrics.MDDPct, 1e-6)
}

func TestNormalize(t *testing.T) {
	bars := []PriceBar{
		bar(2, 3, 4, 2, 3),
		bar(0, 1, 2, 1, 1),
		bar(1, 2, 3, 1, 2),
		bar(0, 9, 9, 9, 9), // duplicate date, later entry wins
	}

	out := Normalize(bars)

	require.Len(t, out, 3)
	assert.True(t, out[0].Date.Before(out[1].Date))
	assert.True(t, out[1].Date.Before(out[2].Date))
	assert.Equal(t, 9.0, out[0].Open)
}
