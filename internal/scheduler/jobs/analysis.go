package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/pkg/logger"
)

// AnalysisJob runs the best-K batch for every configured period after the
// daily data collection has finished
type AnalysisJob struct {
	orchestrator *analysis.Orchestrator
	periods      []string
	logger       *logger.Logger
}

// NewAnalysisJob creates the daily analysis job
func NewAnalysisJob(orchestrator *analysis.Orchestrator, periods []string, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		orchestrator: orchestrator,
		periods:      periods,
		logger:       log.WithField("job", "best_k_analysis"),
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "best_k_analysis"
}

// Schedule returns the cron expression
// 장 마감 데이터 수집(16:10) 이후 여유를 두고 실행
func (j *AnalysisJob) Schedule() string {
	return "0 0 17 * * *"
}

// Run executes the batch once per configured period. A failing period does
// not stop the remaining periods; the job fails if any period failed.
func (j *AnalysisJob) Run(ctx context.Context) error {
	var failed []string

	for _, period := range j.periods {
		report, err := j.orchestrator.Run(ctx, analysis.RunRequest{Period: period})
		if err != nil {
			j.logger.WithError(err).WithField("period", period).Error("Period analysis failed")
			failed = append(failed, period)
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"period":   period,
			"updated":  report.UpdatedSymbols,
			"filtered": report.FilteredSymbols,
			"failed":   report.FailedSymbols,
			"total":    report.TotalSymbols,
		}).Info("Period analysis completed")
	}

	if len(failed) > 0 {
		return fmt.Errorf("analysis failed for periods: %v", failed)
	}
	return nil
}
