package breakout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod_Lookbacks(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		periodType string
		wantDays   int
		wantDBType string
	}{
		{PeriodDays3, 3, PeriodDays3},
		{PeriodWeek1, 7, PeriodWeek1},
		{PeriodMonth1, 30, PeriodMonth1},
		{PeriodMonth3, 90, PeriodMonth3},
		{PeriodQuarter, 90, PeriodMonth3}, // quarter aliases to month_3
		{PeriodHalfYear, 180, PeriodHalfYear},
		{PeriodYear1, 365, PeriodYear1},
		{"unknown_period", 30, PeriodMonth1}, // fallback
	}

	for _, tt := range tests {
		t.Run(tt.periodType, func(t *testing.T) {
			pr, err := ResolvePeriod(tt.periodType, "", "", now)
			require.NoError(t, err)

			assert.Equal(t, today, pr.To)
			assert.Equal(t, today.AddDate(0, 0, -tt.wantDays), pr.From)
			assert.Equal(t, tt.wantDBType, pr.DBType)
		})
	}
}

func TestResolvePeriod_Custom(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	pr, err := ResolvePeriod(PeriodCustom, "2026-01-01", "2026-03-31", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), pr.From)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), pr.To)
	assert.Equal(t, PeriodCustom, pr.DBType)
	assert.Equal(t, "2026-01-01 ~ 2026-03-31", pr.String())
}

func TestResolvePeriod_CustomMissingBounds(t *testing.T) {
	now := time.Now()

	_, err := ResolvePeriod(PeriodCustom, "", "2026-03-31", now)
	assert.Error(t, err)

	_, err = ResolvePeriod(PeriodCustom, "2026-01-01", "", now)
	assert.Error(t, err)
}

func TestResolvePeriod_CustomBadDate(t *testing.T) {
	_, err := ResolvePeriod(PeriodCustom, "01/01/2026", "2026-03-31", time.Now())
	assert.Error(t, err)
}
