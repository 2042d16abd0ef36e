package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// RunRequest describes one batch analysis invocation
type RunRequest struct {
	Period    string `json:"period"`
	StartDate string `json:"startDate,omitempty"` // custom 전용, YYYY-MM-DD
	EndDate   string `json:"endDate,omitempty"`   // custom 전용, YYYY-MM-DD
	Market    string `json:"market,omitempty"`    // KOSPI, KOSDAQ, ALL
}

// Report summarizes one completed batch run
type Report struct {
	UpdatedSymbols  int    `json:"updated_symbols"`
	FailedSymbols   int    `json:"failed_symbols"`
	FilteredSymbols int    `json:"filtered_symbols"`
	TotalSymbols    int    `json:"total_symbols"`
	Period          string `json:"period"`
	PeriodType      string `json:"period_type"`
	Market          string `json:"market"`

	// Results is populated for custom-period runs only, where nothing is
	// persisted and the caller gets the rows directly
	Results []*breakout.Analysis `json:"results,omitempty"`
}

// Orchestrator runs the whole best-K batch: universe selection, per-security
// evaluation across a worker pool, quality gating and persistence.
// ⭐ SSOT: 배치 실행 흐름은 여기서만
type Orchestrator struct {
	store    AnalysisStore
	primary  PriceProvider
	fallback PriceProvider // nil이면 fallback 없음
	tracker  *ProgressTracker
	cfg      config.AnalysisConfig
	logger   *logger.Logger

	now func() time.Time
}

// NewOrchestrator creates a batch orchestrator. fallback may be nil.
func NewOrchestrator(store AnalysisStore, primary, fallback PriceProvider, tracker *ProgressTracker, cfg config.AnalysisConfig, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		primary:  primary,
		fallback: fallback,
		tracker:  tracker,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// evalResult carries one security's evaluation back to the reducer
type evalResult struct {
	security Security
	outcome  breakout.Outcome
	row      *breakout.Analysis
	err      error
}

// Run executes one batch for the requested period and returns its report.
// Per-security failures are counted, never fatal; only period validation,
// universe selection, or an empty universe abort the run.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*Report, error) {
	period := req.Period
	if period == "" {
		period = breakout.PeriodMonth1
	}
	market := strings.ToUpper(req.Market)
	if market == "" {
		market = "ALL"
	}

	pr, err := breakout.ResolvePeriod(period, req.StartDate, req.EndDate, o.now())
	if err != nil {
		return nil, err
	}
	isCustom := pr.DBType == breakout.PeriodCustom

	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	universe, err := o.store.TopByMarketCap(ctx, o.cfg.UniverseSize)
	if err != nil {
		return nil, fmt.Errorf("top securities query failed: %w", err)
	}
	if len(universe) == 0 {
		return nil, fmt.Errorf("market cap universe is empty")
	}

	// 시장 필터는 시총 랭킹 이후에 적용한다. 필터 결과가 UniverseSize보다
	// 작아져도 랭킹을 다시 채우지 않는다.
	if market != "ALL" {
		filtered := make([]Security, 0, len(universe))
		for _, sec := range universe {
			if strings.EqualFold(sec.Market, market) {
				filtered = append(filtered, sec)
			}
		}
		universe = filtered
	}

	log := o.logger.WithFields(map[string]interface{}{
		"period":      pr.String(),
		"period_type": pr.DBType,
		"market":      market,
		"securities":  len(universe),
	})
	log.Info("best-K batch started")

	report := &Report{
		TotalSymbols: len(universe),
		Period:       pr.String(),
		PeriodType:   pr.DBType,
		Market:       market,
	}
	if len(universe) == 0 {
		log.Warn("no securities left after market filter")
		return report, nil
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(universe) {
		workers = len(universe)
	}

	secCh := make(chan Security, len(universe))
	resCh := make(chan evalResult, len(universe))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sec := range secCh {
				resCh <- o.evaluateSecurity(ctx, sec, pr, isCustom)
			}
		}()
	}

	for _, sec := range universe {
		secCh <- sec
	}
	close(secCh)

	go func() {
		wg.Wait()
		close(resCh)
	}()

	// 카운터 집계는 이 고루틴 하나에서만 수행
	processed := 0
	for res := range resCh {
		processed++

		switch res.outcome {
		case breakout.OutcomeAccepted:
			report.UpdatedSymbols++
			if isCustom {
				report.Results = append(report.Results, res.row)
			}
		case breakout.OutcomeInsufficientData, breakout.OutcomeNonProfitable:
			report.FilteredSymbols++
		default:
			report.FailedSymbols++
			log.WithError(res.err).WithField("ticker", res.security.Ticker).Warn("security evaluation failed")
		}

		if o.tracker != nil {
			o.tracker.Publish(Progress{
				Ticker:     res.security.Ticker,
				Name:       res.security.Name,
				PeriodType: pr.DBType,
				Outcome:    res.outcome.String(),
				Current:    processed,
				Total:      len(universe),
			})
		}
	}

	log.WithFields(map[string]interface{}{
		"updated":  report.UpdatedSymbols,
		"filtered": report.FilteredSymbols,
		"failed":   report.FailedSymbols,
	}).Info("best-K batch finished")

	return report, nil
}

// evaluateSecurity runs the full pipeline for one security. A panic inside
// the pipeline is converted into an errored result so one security can never
// take down the batch.
func (o *Orchestrator) evaluateSecurity(ctx context.Context, sec Security, pr breakout.PeriodRange, isCustom bool) (res evalResult) {
	res = evalResult{security: sec, outcome: breakout.OutcomeErrored}

	defer func() {
		if r := recover(); r != nil {
			res.outcome = breakout.OutcomeErrored
			res.row = nil
			res.err = fmt.Errorf("panic while evaluating %s: %v", sec.Ticker, r)
		}
	}()

	if o.cfg.SecurityTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SecurityTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	bars, err := o.fetchHistory(ctx, sec.Ticker, pr.From, pr.To)
	if err != nil {
		res.err = fmt.Errorf("price history fetch failed: %w", err)
		return res
	}

	bars = breakout.Normalize(bars)

	best := breakout.Optimize(bars)
	outcome, row := breakout.Accept(best, sec.Ticker, sec.Name, pr.DBType, len(bars), o.analysisDate())
	res.outcome = outcome
	res.row = row

	if outcome == breakout.OutcomeAccepted && !isCustom {
		if err := o.store.UpsertAnalysis(ctx, row); err != nil {
			res.outcome = breakout.OutcomeErrored
			res.err = fmt.Errorf("persist analysis for %s: %w", sec.Ticker, err)
		}
	}
	return res
}

// fetchHistory tries the primary provider first and falls back to the
// secondary when the primary errors or returns nothing
func (o *Orchestrator) fetchHistory(ctx context.Context, ticker string, from, to time.Time) ([]breakout.PriceBar, error) {
	bars, err := o.primary.FetchPrices(ctx, ticker, from, to)
	if err == nil && len(bars) > 0 {
		return bars, nil
	}

	if o.fallback == nil {
		return bars, err
	}

	if err != nil {
		o.logger.WithError(err).WithField("ticker", ticker).Debug("primary price source failed, trying fallback")
	}
	return o.fallback.FetchPrices(ctx, ticker, from, to)
}

// analysisDate is the run execution date, truncated to a calendar day
func (o *Orchestrator) analysisDate() time.Time {
	return o.now().Truncate(24 * time.Hour)
}
