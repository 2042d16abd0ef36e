package breakout

// KGrid returns the candidate K values 0.1 .. 0.9 in ascending order.
// 정수 분할로 생성해 부동소수 누적 오차를 피한다
func KGrid() []float64 {
	grid := make([]float64, 0, 9)
	for i := 1; i <= 9; i++ {
		grid = append(grid, float64(i)/10)
	}
	return grid
}

// Sweep simulates every K in the grid and scores each candidate with the
// risk-adjusted ratio avg_return / max(mdd, MDDFloor).
func Sweep(history []PriceBar) []KCandidate {
	grid := KGrid()
	candidates := make([]KCandidate, 0, len(grid))

	for _, k := range grid {
		metrics := Simulate(history, k)

		mdd := metrics.MDDPct
		if mdd < MDDFloor {
			mdd = MDDFloor
		}

		candidates = append(candidates, KCandidate{
			K:       k,
			Sharpe:  metrics.AvgReturnPct / mdd,
			Metrics: metrics,
		})
	}

	return candidates
}

// Optimize runs the K sweep and selects the best-scoring candidate.
// ⭐ SSOT: Best K 선정은 이 함수에서만
//
// Ties keep the first (smallest) K encountered; downstream consumers rely
// on this deterministic tie resolution.
func Optimize(history []PriceBar) *KCandidate {
	candidates := Sweep(history)
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.Sharpe > best.Sharpe {
			best = cand
		}
	}

	return &best
}
