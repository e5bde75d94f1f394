// Package analytics provides the read-only reporting layer over rollups,
// goals and sessions.
package analytics

import (
	"time"

	"github.com/mshibata/studyledger/internal/rollup"
)

// TimeRange selects the lookback window for aggregate queries.
type TimeRange string

const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
)

// ParseTimeRange maps a query-string value to a TimeRange. Unknown or empty
// input defaults to week.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return TimeRange(s)
	}
	return RangeWeek
}

// Window returns the [start, end] day keys of the range ending at now.
// Month, quarter and year use calendar arithmetic, not fixed day counts.
func (r TimeRange) Window(now time.Time) (start, end time.Time) {
	end = rollup.DayKey(now)
	switch r {
	case RangeMonth:
		start = end.AddDate(0, -1, 0)
	case RangeQuarter:
		start = end.AddDate(0, -3, 0)
	case RangeYear:
		start = end.AddDate(-1, 0, 0)
	default:
		start = end.AddDate(0, 0, -7)
	}
	return start, end
}

// PreviousWindow returns the symmetric window immediately before the current
// one, for delta comparisons. Both windows are queried with inclusive bounds,
// so the previous window ends the day before the current one starts.
func (r TimeRange) PreviousWindow(now time.Time) (start, end time.Time) {
	currentStart, _ := r.Window(now)
	end = currentStart.AddDate(0, 0, -1)
	switch r {
	case RangeMonth:
		start = end.AddDate(0, -1, 0)
	case RangeQuarter:
		start = end.AddDate(0, -3, 0)
	case RangeYear:
		start = end.AddDate(-1, 0, 0)
	default:
		start = end.AddDate(0, 0, -7)
	}
	return start, end
}
