package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/internal/external/krx"
	"github.com/wonny/bestk/backend/internal/external/naver"
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// CapSource fetches full-market capitalization snapshots
type CapSource interface {
	FetchAllMarketCaps(ctx context.Context) ([]krx.MarketCapItem, error)
}

// CapFallback scrapes market cap ranking pages when the primary source fails
type CapFallback interface {
	FetchMarketCapPage(ctx context.Context, market string, page int) ([]naver.MarketCapEntry, error)
}

// Store is the persistence surface the collector writes through
type Store interface {
	TopByMarketCap(ctx context.Context, limit int) ([]analysis.Security, error)
	SavePrices(ctx context.Context, sec analysis.Security, bars []breakout.PriceBar) error
	SaveMarketCaps(ctx context.Context, caps []analysis.MarketCapRow) error
}

// Collector orchestrates price and market cap collection
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	prices      analysis.PriceProvider
	capSource   CapSource
	capFallback CapFallback
	store       Store
	cfg         config.AnalysisConfig
	logger      *logger.Logger
}

// NewCollector creates a new Collector. capFallback may be nil.
func NewCollector(prices analysis.PriceProvider, capSource CapSource, capFallback CapFallback, store Store, cfg config.AnalysisConfig, log *logger.Logger) *Collector {
	return &Collector{
		prices:      prices,
		capSource:   capSource,
		capFallback: capFallback,
		store:       store,
		cfg:         cfg,
		logger:      log.WithField("module", "collector"),
	}
}

// FetchResult is the outcome of one security's price collection
type FetchResult struct {
	Ticker     string
	PriceCount int
	Error      error
}

// CollectPrices fetches daily bars for the market cap universe and persists
// them. Per-security failures are reported in the results, never fatal.
func (c *Collector) CollectPrices(ctx context.Context, from, to time.Time) ([]FetchResult, error) {
	securities, err := c.store.TopByMarketCap(ctx, c.cfg.UniverseSize)
	if err != nil {
		return nil, fmt.Errorf("get universe: %w", err)
	}
	if len(securities) == 0 {
		return nil, fmt.Errorf("market cap universe is empty")
	}

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"security_count": len(securities),
		"from":           from.Format("2006-01-02"),
		"to":             to.Format("2006-01-02"),
		"workers":        workers,
	}).Info("Starting price collection")

	secCh := make(chan analysis.Security, len(securities))
	resultCh := make(chan FetchResult, len(securities))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.priceWorker(ctx, secCh, resultCh, from, to)
		}()
	}

	for _, sec := range securities {
		secCh <- sec
	}
	close(secCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]FetchResult, 0, len(securities))
	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price collection completed")

	return results, nil
}

// priceWorker drains the security channel, fetching and saving bars
func (c *Collector) priceWorker(ctx context.Context, secCh <-chan analysis.Security, resultCh chan<- FetchResult, from, to time.Time) {
	for sec := range secCh {
		if err := ctx.Err(); err != nil {
			resultCh <- FetchResult{Ticker: sec.Ticker, Error: err}
			continue
		}

		bars, err := c.prices.FetchPrices(ctx, sec.Ticker, from, to)
		if err != nil {
			resultCh <- FetchResult{Ticker: sec.Ticker, Error: fmt.Errorf("fetch prices: %w", err)}
			continue
		}

		bars = breakout.Normalize(bars)
		if err := c.store.SavePrices(ctx, sec, bars); err != nil {
			resultCh <- FetchResult{Ticker: sec.Ticker, Error: fmt.Errorf("save prices: %w", err)}
			continue
		}

		resultCh <- FetchResult{Ticker: sec.Ticker, PriceCount: len(bars)}
	}
}

// CollectMarketCaps refreshes the daily market cap snapshot. KRX is the
// primary source; the Naver ranking pages fill in when KRX fails.
func (c *Collector) CollectMarketCaps(ctx context.Context) (int, error) {
	items, err := c.capSource.FetchAllMarketCaps(ctx)
	if err != nil || len(items) == 0 {
		if err != nil {
			c.logger.WithError(err).Warn("KRX market cap fetch failed, trying fallback")
		}
		return c.collectMarketCapsFallback(ctx)
	}

	rows := make([]analysis.MarketCapRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, analysis.MarketCapRow{
			Date:       item.TradeDate,
			Ticker:     item.Ticker,
			Name:       item.Name,
			Market:     item.Market,
			MarketCap:  item.MarketCap,
			ClosePrice: item.ClosePrice,
		})
	}

	if err := c.store.SaveMarketCaps(ctx, rows); err != nil {
		return 0, fmt.Errorf("save market caps: %w", err)
	}

	c.logger.WithField("count", len(rows)).Info("Market cap snapshot saved")
	return len(rows), nil
}

// collectMarketCapsFallback scrapes enough Naver ranking pages to cover the
// configured universe size (50 rows per page)
func (c *Collector) collectMarketCapsFallback(ctx context.Context) (int, error) {
	if c.capFallback == nil {
		return 0, fmt.Errorf("market cap fallback source not configured")
	}

	pages := (c.cfg.UniverseSize + 49) / 50
	if pages < 1 {
		pages = 1
	}

	today := time.Now().Truncate(24 * time.Hour)
	var rows []analysis.MarketCapRow

	for _, market := range []string{"KOSPI", "KOSDAQ"} {
		for page := 1; page <= pages; page++ {
			entries, err := c.capFallback.FetchMarketCapPage(ctx, market, page)
			if err != nil {
				return 0, fmt.Errorf("fallback market cap page %s/%d: %w", market, page, err)
			}
			for _, e := range entries {
				rows = append(rows, analysis.MarketCapRow{
					Date:       today,
					Ticker:     e.Ticker,
					Name:       e.Name,
					Market:     e.Market,
					MarketCap:  e.MarketCap,
					ClosePrice: e.ClosePrice,
				})
			}
		}
	}

	if len(rows) == 0 {
		return 0, fmt.Errorf("fallback market cap scrape returned no rows")
	}

	if err := c.store.SaveMarketCaps(ctx, rows); err != nil {
		return 0, fmt.Errorf("save market caps: %w", err)
	}

	c.logger.WithField("count", len(rows)).Info("Market cap snapshot saved from fallback")
	return len(rows), nil
}
