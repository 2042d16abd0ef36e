package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/bestk/backend/internal/breakout"
)

// Repository implements AnalysisStore and the DB-backed PriceProvider
// ⭐ SSOT: Best-K 분석 저장소는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new analysis repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TopByMarketCap returns the top-N securities by market capitalization,
// snapshot as of the most recent collection date
func (r *Repository) TopByMarketCap(ctx context.Context, limit int) ([]Security, error) {
	query := `
		SELECT ticker, name, market
		FROM daily_market_cap
		WHERE date = (SELECT MAX(date) FROM daily_market_cap)
		ORDER BY market_cap DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var securities []Security
	for rows.Next() {
		var s Security
		if err := rows.Scan(&s.Ticker, &s.Name, &s.Market); err != nil {
			return nil, err
		}
		securities = append(securities, s)
	}
	return securities, rows.Err()
}

// UpsertAnalysis replaces the best-K row keyed by
// (ticker, analysis_date, period_type).
//
// delete + insert 를 한 트랜잭션으로 묶는다: 부분 실패 시 기존 행이
// 지워진 채 남거나 중복되면 안 된다
func (r *Repository) UpsertAnalysis(ctx context.Context, row *breakout.Analysis) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
		DELETE FROM best_k_analysis
		WHERE ticker = $1 AND analysis_date = $2 AND period_type = $3
	`
	if _, err := tx.Exec(ctx, deleteQuery, row.Ticker, row.AnalysisDate, row.PeriodType); err != nil {
		return fmt.Errorf("delete existing analysis: %w", err)
	}

	insertQuery := `
		INSERT INTO best_k_analysis (
			ticker, company_name, analysis_date, period_type, period_days,
			best_k, avg_return_pct, win_rate_pct, mdd_pct,
			total_trades, sharpe_ratio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		row.Ticker, row.CompanyName, row.AnalysisDate, row.PeriodType, row.PeriodDays,
		row.BestK, row.AvgReturnPct, row.WinRatePct, row.MDDPct,
		row.TotalTrades, row.SharpeRatio,
	); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	return tx.Commit(ctx)
}

// GetAnalyses returns persisted best-K rows, optionally filtered by period
// type and ticker, newest first then by score
func (r *Repository) GetAnalyses(ctx context.Context, periodType, ticker string, limit int) ([]*breakout.Analysis, error) {
	query := `
		SELECT ticker, company_name, analysis_date, period_type, period_days,
		       best_k, avg_return_pct, win_rate_pct, mdd_pct,
		       total_trades, sharpe_ratio
		FROM best_k_analysis
		WHERE ($1 = '' OR period_type = $1)
		  AND ($2 = '' OR ticker = $2)
		ORDER BY analysis_date DESC, sharpe_ratio DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, periodType, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*breakout.Analysis
	for rows.Next() {
		var a breakout.Analysis
		if err := rows.Scan(
			&a.Ticker, &a.CompanyName, &a.AnalysisDate, &a.PeriodType, &a.PeriodDays,
			&a.BestK, &a.AvgReturnPct, &a.WinRatePct, &a.MDDPct,
			&a.TotalTrades, &a.SharpeRatio,
		); err != nil {
			return nil, err
		}
		analyses = append(analyses, &a)
	}
	return analyses, rows.Err()
}

// FetchPrices reads daily bars from daily_stock_data, the fallback price
// source when the external provider returns nothing
func (r *Repository) FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]breakout.PriceBar, error) {
	query := `
		SELECT date, open_price, high_price, low_price, close_price, volume
		FROM daily_stock_data
		WHERE ticker = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []breakout.PriceBar
	for rows.Next() {
		var b breakout.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// SavePrices upserts collected daily bars for one security
func (r *Repository) SavePrices(ctx context.Context, sec Security, bars []breakout.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_stock_data
			(ticker, name, date, open_price, high_price, low_price, close_price, volume, market)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ticker, date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			market = EXCLUDED.market
	`

	for _, b := range bars {
		if _, err := r.pool.Exec(ctx, query,
			sec.Ticker, sec.Name, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, sec.Market,
		); err != nil {
			return err
		}
	}
	return nil
}

// MarketCapRow is one market capitalization snapshot entry
type MarketCapRow struct {
	Date       time.Time
	Ticker     string
	Name       string
	Market     string
	MarketCap  int64
	ClosePrice int64
}

// SaveMarketCaps upserts a market capitalization snapshot
func (r *Repository) SaveMarketCaps(ctx context.Context, caps []MarketCapRow) error {
	if len(caps) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_market_cap (date, ticker, name, market, market_cap, close_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, ticker) DO UPDATE SET
			name = EXCLUDED.name,
			market = EXCLUDED.market,
			market_cap = EXCLUDED.market_cap,
			close_price = EXCLUDED.close_price
	`

	for _, c := range caps {
		if _, err := r.pool.Exec(ctx, query,
			c.Date, c.Ticker, c.Name, c.Market, c.MarketCap, c.ClosePrice,
		); err != nil {
			return err
		}
	}
	return nil
}

// CleanupOldPrices deletes price rows older than the retention cutoff and
// returns the number of deleted rows
func (r *Repository) CleanupOldPrices(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM daily_stock_data WHERE date < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var (
	_ AnalysisStore = (*Repository)(nil)
	_ PriceProvider = (*Repository)(nil)
)
