package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bestk/backend/internal/collector"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// CollectionJob refreshes the market cap snapshot and the daily price bars
// right after market close
type CollectionJob struct {
	collector    *collector.Collector
	lookbackDays int
	logger       *logger.Logger
}

// NewCollectionJob creates the daily collection job
func NewCollectionJob(c *collector.Collector, lookbackDays int, log *logger.Logger) *CollectionJob {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &CollectionJob{
		collector:    c,
		lookbackDays: lookbackDays,
		logger:       log.WithField("job", "data_collection"),
	}
}

// Name returns the job name
func (j *CollectionJob) Name() string {
	return "data_collection"
}

// Schedule returns the cron expression (평일 16:10)
// KRX 마감 데이터는 16시 이후에 확정된다
func (j *CollectionJob) Schedule() string {
	return "0 10 16 * * 1-5"
}

// Run refreshes the market cap snapshot first so the price universe reflects
// today's ranking, then fetches the recent price window
func (j *CollectionJob) Run(ctx context.Context) error {
	capCount, err := j.collector.CollectMarketCaps(ctx)
	if err != nil {
		return fmt.Errorf("collect market caps: %w", err)
	}
	j.logger.WithField("count", capCount).Info("Market cap collection completed")

	to := time.Now()
	from := to.AddDate(0, 0, -j.lookbackDays)

	results, err := j.collector.CollectPrices(ctx, from, to)
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	failCount := 0
	for _, r := range results {
		if r.Error != nil {
			failCount++
		}
	}
	j.logger.WithFields(map[string]interface{}{
		"total":  len(results),
		"failed": failCount,
	}).Info("Price collection completed")

	// 일부 실패는 다음 수집에서 보충되므로 작업 자체는 성공으로 본다
	return nil
}
