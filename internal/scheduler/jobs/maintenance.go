package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bestk/backend/pkg/logger"
)

// PriceCleaner deletes price rows older than a cutoff
type PriceCleaner interface {
	CleanupOldPrices(ctx context.Context, before time.Time) (int64, error)
}

// MaintenanceJob enforces the price history retention window
type MaintenanceJob struct {
	cleaner       PriceCleaner
	retentionDays int
	logger        *logger.Logger
}

// NewMaintenanceJob creates the weekly maintenance job
func NewMaintenanceJob(cleaner PriceCleaner, retentionDays int, log *logger.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		cleaner:       cleaner,
		retentionDays: retentionDays,
		logger:        log.WithField("job", "maintenance"),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Schedule returns the cron expression (일요일 새벽 3시)
func (j *MaintenanceJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run deletes price history older than the retention window
func (j *MaintenanceJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.cleaner.CleanupOldPrices(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup old prices: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cutoff":  cutoff.Format("2006-01-02"),
		"deleted": deleted,
	}).Info("Price retention cleanup completed")
	return nil
}
