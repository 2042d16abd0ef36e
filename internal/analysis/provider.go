package analysis

import (
	"context"
	"time"

	"github.com/wonny/bestk/backend/internal/breakout"
)

// Security is one universe entry selected by market capitalization
type Security struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// PriceProvider supplies daily price bars for one ticker.
// Bars may arrive out of order or partially populated; callers normalize.
type PriceProvider interface {
	FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]breakout.PriceBar, error)
}

// AnalysisStore is the persistence surface the orchestrator depends on
type AnalysisStore interface {
	// TopByMarketCap returns the top-N securities by market cap as of the
	// most recent snapshot date
	TopByMarketCap(ctx context.Context, limit int) ([]Security, error)

	// UpsertAnalysis replaces the row keyed by
	// (ticker, analysis_date, period_type)
	UpsertAnalysis(ctx context.Context, row *breakout.Analysis) error
}
