package jobs

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bestk/backend/pkg/logger"
)

type fakeCleaner struct {
	deleted int64
	cutoff  time.Time
	err     error
}

func (f *fakeCleaner) CleanupOldPrices(_ context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return f.deleted, f.err
}

func TestMaintenanceJob_Run(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 1234}
	job := NewMaintenanceJob(cleaner, 365, logger.NewWriter(io.Discard))

	require.NoError(t, job.Run(context.Background()))

	// cutoff은 대략 보존기간만큼 과거여야 한다
	wantCutoff := time.Now().AddDate(0, 0, -365)
	assert.WithinDuration(t, wantCutoff, cleaner.cutoff, time.Minute)
}

func TestMaintenanceJob_RunError(t *testing.T) {
	cleaner := &fakeCleaner{err: fmt.Errorf("table locked")}
	job := NewMaintenanceJob(cleaner, 30, logger.NewWriter(io.Discard))

	assert.Error(t, job.Run(context.Background()))
}
