package breakout

import "sort"

// MinHistoryBars is the minimum history length the quality gate accepts
const MinHistoryBars = 5

// MDDFloor keeps near-zero drawdowns from inflating the risk-adjusted score
const MDDFloor = 0.1

// Simulate replays the volatility-breakout rule over a daily price history
// for a single K and aggregates the outcome.
// ⭐ SSOT: 변동성 돌파 시뮬레이션은 이 함수에서만
//
// 전일 변동폭 * K 만큼 시가 위로 돌파하면 돌파가격에 진입한 것으로 본다.
// Fewer than two bars is a defined degenerate case and returns zeroed metrics.
func Simulate(history []PriceBar, k float64) Metrics {
	if len(history) < 2 {
		return Metrics{}
	}

	var returns []float64
	wins := 0
	trades := 0

	for i := 1; i < len(history); i++ {
		prev := history[i-1]
		today := history[i]

		// No-range day carries no signal and no trade
		if prev.High <= prev.Low {
			continue
		}

		dailyRange := prev.High - prev.Low
		targetPrice := today.Open + dailyRange*k

		if today.High >= targetPrice && targetPrice > today.Open {
			// Breakout: long entry at the target price
			returns = append(returns, (targetPrice-today.Open)/today.Open*100)
			wins++
		} else if today.Close > 0 && today.Open > 0 {
			// No breakout: the day still contributes its open-to-close move,
			// but not as a win
			returns = append(returns, (today.Close-today.Open)/today.Open*100)
		}

		trades++
	}

	if len(returns) == 0 || trades == 0 {
		return Metrics{}
	}

	sum := 0.0
	for _, r := range returns {
		sum += r
	}

	return Metrics{
		AvgReturnPct: sum / float64(len(returns)),
		WinRatePct:   float64(wins) / float64(trades) * 100,
		MDDPct:       maxDrawdown(returns),
		TradeCount:   trades,
	}
}

// maxDrawdown returns the largest peak-to-trough decline of the
// cumulative-return curve built from the returns in order. Never negative.
func maxDrawdown(returns []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	mdd := 0.0

	for _, r := range returns {
		cumulative += r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > mdd {
			mdd = dd
		}
	}

	return mdd
}

// Normalize sorts bars ascending by date and drops duplicate dates,
// keeping the last bar seen for each date. Providers는 순서를 보장하지 않는다.
func Normalize(bars []PriceBar) []PriceBar {
	if len(bars) == 0 {
		return bars
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	out := bars[:1]
	for _, b := range bars[1:] {
		if b.Date.Equal(out[len(out)-1].Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
