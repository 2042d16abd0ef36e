package breakout

import "time"

// Accept applies the result quality rules to the optimizer's chosen
// candidate and, when accepted, assembles the persisted row.
// ⭐ SSOT: 결과 품질 게이트는 이 함수에서만
//
// The three gate outcomes (insufficient data / non-profitable / accepted)
// are mutually exclusive and exhaustive.
func Accept(cand *KCandidate, ticker, companyName, periodType string, historyLen int, analysisDate time.Time) (Outcome, *Analysis) {
	// 데이터 부족: 수익률과 무관하게 제외
	if historyLen < MinHistoryBars {
		return OutcomeInsufficientData, nil
	}

	if cand == nil || cand.AvgReturnPct <= 0 {
		return OutcomeNonProfitable, nil
	}

	return OutcomeAccepted, &Analysis{
		Ticker:       ticker,
		CompanyName:  companyName,
		PeriodType:   periodType,
		PeriodDays:   historyLen,
		BestK:        cand.K,
		AvgReturnPct: cand.AvgReturnPct,
		WinRatePct:   cand.WinRatePct,
		MDDPct:       cand.MDDPct,
		TotalTrades:  cand.TradeCount,
		SharpeRatio:  cand.Sharpe,
		AnalysisDate: analysisDate,
	}
}
