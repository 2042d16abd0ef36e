package breakout

import "time"

// PriceBar is one daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Metrics aggregates one simulation run for a single K value
type Metrics struct {
	AvgReturnPct float64 `json:"avg_return_pct"`
	WinRatePct   float64 `json:"win_rate_pct"`
	MDDPct       float64 `json:"mdd_pct"`
	TradeCount   int     `json:"trades"`
}

// KCandidate is one candidate from the K sweep, scored risk-adjusted
type KCandidate struct {
	K      float64 `json:"k"`
	Sharpe float64 `json:"sharpe"`
	Metrics
}

// Analysis is the persisted best-K result for one (ticker, period)
type Analysis struct {
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name"`
	PeriodType   string    `json:"period_type"`
	PeriodDays   int       `json:"period_days"`
	BestK        float64   `json:"best_k"`
	AvgReturnPct float64   `json:"avg_return_pct"`
	WinRatePct   float64   `json:"win_rate_pct"`
	MDDPct       float64   `json:"mdd_pct"`
	TotalTrades  int       `json:"total_trades"`
	SharpeRatio  float64   `json:"sharpe_ratio"`
	AnalysisDate time.Time `json:"analysis_date"`
}

// Outcome classifies one (security, period) evaluation.
// 평가 결과는 반드시 넷 중 하나로 끝난다
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeInsufficientData
	OutcomeNonProfitable
	OutcomeErrored
)

// String returns the outcome label used in logs and progress events
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeInsufficientData:
		return "insufficient_data"
	case OutcomeNonProfitable:
		return "non_profitable"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Filtered reports whether the outcome is a quality-gate rejection
// (expected, not an error)
func (o Outcome) Filtered() bool {
	return o == OutcomeInsufficientData || o == OutcomeNonProfitable
}
