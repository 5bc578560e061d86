package view

import (
	"time"
)

type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisWeek

	timeframeCount
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisWeek:
		return "This Week"
	}

	return "Unknown"
}

// Next cycles through the timeframes.
func (t Timeframe) Next() Timeframe {
	return (t + 1) % timeframeCount
}

// DateRange returns the inclusive day range of the timeframe relative to now.
// TimeframeAll has no range.
func (t Timeframe) DateRange(now time.Time) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = today
	case TimeframeLastMonth:
		end = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	case TimeframeThisWeek:
		// Weeks start on Monday.
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7
		}

		start = today.AddDate(0, 0, -offset+1)
		end = today
	default:
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}
