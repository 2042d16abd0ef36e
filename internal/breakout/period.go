package breakout

import (
	"fmt"
	"time"
)

// Period type identifiers accepted by the batch
const (
	PeriodDays3    = "days_3"
	PeriodWeek1    = "week_1"
	PeriodMonth1   = "month_1"
	PeriodMonth3   = "month_3"
	PeriodQuarter  = "quarter" // month_3의 별칭, 저장은 month_3로
	PeriodHalfYear = "half_year"
	PeriodYear1    = "year_1"
	PeriodCustom   = "custom"
)

// PeriodSpec maps a period type to its lookback window and the period type
// it is persisted under
type PeriodSpec struct {
	Days   int
	DBType string
}

var periodSpecs = map[string]PeriodSpec{
	PeriodDays3:    {Days: 3, DBType: PeriodDays3},
	PeriodWeek1:    {Days: 7, DBType: PeriodWeek1},
	PeriodMonth1:   {Days: 30, DBType: PeriodMonth1},
	PeriodMonth3:   {Days: 90, DBType: PeriodMonth3},
	PeriodQuarter:  {Days: 90, DBType: PeriodMonth3},
	PeriodHalfYear: {Days: 180, DBType: PeriodHalfYear},
	PeriodYear1:    {Days: 365, DBType: PeriodYear1},
}

// PeriodRange is the resolved absolute window for one batch run
type PeriodRange struct {
	From   time.Time
	To     time.Time
	DBType string // period type rows are persisted under ("custom" is never persisted)
}

// String formats the range the way run reports present it
func (p PeriodRange) String() string {
	return fmt.Sprintf("%s ~ %s", p.From.Format("2006-01-02"), p.To.Format("2006-01-02"))
}

// ResolvePeriod converts a period type (or a custom date pair) into an
// absolute date range ending at now.
//
// A custom period without both bounds is a validation error. Unknown period
// types fall back to the 30-day month_1 window.
func ResolvePeriod(periodType, startDate, endDate string, now time.Time) (PeriodRange, error) {
	if periodType == PeriodCustom {
		if startDate == "" || endDate == "" {
			return PeriodRange{}, fmt.Errorf("custom period requires both startDate and endDate")
		}

		from, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return PeriodRange{}, fmt.Errorf("invalid startDate %q: %w", startDate, err)
		}

		to, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return PeriodRange{}, fmt.Errorf("invalid endDate %q: %w", endDate, err)
		}

		return PeriodRange{From: from, To: to, DBType: PeriodCustom}, nil
	}

	today := now.Truncate(24 * time.Hour)

	spec, ok := periodSpecs[periodType]
	if !ok {
		// 기본값: 1개월
		spec = periodSpecs[PeriodMonth1]
	}

	return PeriodRange{
		From:   today.AddDate(0, 0, -spec.Days),
		To:     today,
		DBType: spec.DBType,
	}, nil
}
