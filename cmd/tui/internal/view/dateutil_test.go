package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframe_DateRange(t *testing.T) {
	// A Wednesday.
	now := time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
		wantOK    bool
	}{
		{name: "All", tf: TimeframeAll},
		{name: "ThisMonth", tf: TimeframeThisMonth, wantStart: day(time.March, 1), wantEnd: day(time.March, 18), wantOK: true},
		{name: "LastMonth", tf: TimeframeLastMonth, wantStart: day(time.February, 1), wantEnd: day(time.February, 28), wantOK: true},
		{name: "ThisWeek", tf: TimeframeThisWeek, wantStart: day(time.March, 16), wantEnd: day(time.March, 18), wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := tt.tf.DateRange(now)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTimeframe_Next(t *testing.T) {
	assert.Equal(t, TimeframeThisMonth, TimeframeAll.Next())
	assert.Equal(t, TimeframeAll, TimeframeThisWeek.Next())
}
