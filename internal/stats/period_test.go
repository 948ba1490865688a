package stats

import (
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// TestPeriodRangeWeek verifies weeks run Sunday 00:00:00.000 through
// Saturday 23:59:59.999 in the reference time's location.
func TestPeriodRangeWeek(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time // expected start (Sunday)
	}{
		{"midweek", time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"sunday itself", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"saturday", time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"month boundary", time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC), time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := PeriodRange(PeriodWeek, tt.ref)
			if err != nil {
				t.Fatalf("PeriodRange: %v", err)
			}
			if !start.Equal(tt.want) {
				t.Errorf("start = %v, want %v", start, tt.want)
			}
			wantEnd := tt.want.AddDate(0, 0, 7).Add(-time.Millisecond)
			if !end.Equal(wantEnd) {
				t.Errorf("end = %v, want %v", end, wantEnd)
			}
			if start.Weekday() != time.Sunday {
				t.Errorf("start weekday = %v, want Sunday", start.Weekday())
			}
			if end.Weekday() != time.Saturday {
				t.Errorf("end weekday = %v, want Saturday", end.Weekday())
			}
		})
	}
}

// TestPeriodRangeMonth verifies the full calendar month window, including
// February.
func TestPeriodRangeMonth(t *testing.T) {
	start, end, err := PeriodRange(PeriodMonth, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PeriodRange: %v", err)
	}
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want Feb 1", start)
	}
	wantEnd := time.Date(2026, 2, 28, 23, 59, 59, 999000000, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

// TestPeriodRangeYear verifies the calendar year window.
func TestPeriodRangeYear(t *testing.T) {
	start, end, err := PeriodRange(PeriodYear, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PeriodRange: %v", err)
	}
	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want Jan 1", start)
	}
	if !end.Equal(time.Date(2026, 12, 31, 23, 59, 59, 999000000, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

// TestPeriodRangeUnknown verifies an unknown period is a validation error.
func TestPeriodRangeUnknown(t *testing.T) {
	_, _, err := PeriodRange("fortnight", time.Now())
	if !models.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

// TestPreviousRange verifies the comparison window is shifted a fixed seven
// days back and keeps the current window's length.
func TestPreviousRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)

	prevStart, prevEnd := previousRange(start, end)
	if !prevStart.Equal(time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("prevStart = %v, want Feb 22", prevStart)
	}
	if prevEnd.Sub(prevStart) != end.Sub(start) {
		t.Errorf("previous window length %v, want %v", prevEnd.Sub(prevStart), end.Sub(start))
	}
}
