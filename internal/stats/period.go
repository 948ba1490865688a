package stats

import (
	"time"

	"github.com/claude/ironlog/internal/models"
)

// Period is a bounded calendar window used to scope statistics.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// endOfDayOffset makes range ends inclusive through 23:59:59.999.
const endOfDayOffset = -time.Millisecond

// PeriodRange returns the calendar window of the given period containing
// ref. Weeks run Sunday 00:00:00.000 through Saturday 23:59:59.999; months
// and years cover the full calendar month/year of ref.
func PeriodRange(period Period, ref time.Time) (start, end time.Time, err error) {
	loc := ref.Location()
	switch period {
	case PeriodWeek:
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
		start = day.AddDate(0, 0, -int(day.Weekday()))
		end = start.AddDate(0, 0, 7).Add(endOfDayOffset)
	case PeriodMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0).Add(endOfDayOffset)
	case PeriodYear:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0).Add(endOfDayOffset)
	default:
		return time.Time{}, time.Time{}, models.Invalid("period", "unknown period %q, want week, month, or year", period)
	}
	return start, end, nil
}

// previousRange returns the comparison window for trend computation. The
// shift is a fixed 7 days before the current start regardless of period
// granularity, preserving the observable week-anchored comparison behavior
// even for month and year periods.
func previousRange(start, end time.Time) (time.Time, time.Time) {
	prevStart := start.AddDate(0, 0, -7)
	return prevStart, prevStart.Add(end.Sub(start))
}
