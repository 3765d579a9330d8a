package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreset_Period(t *testing.T) {
	// A Thursday.
	now := time.Date(2024, time.September, 12, 15, 30, 0, 0, time.UTC)
	d := func(m time.Month, day int) time.Time { return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		preset     Preset
		start, end time.Time
	}{
		{PresetToday, d(time.September, 12), d(time.September, 12)},
		{PresetThisWeek, d(time.September, 9), d(time.September, 12)},
		{PresetThisMonth, d(time.September, 1), d(time.September, 12)},
		{PresetLastMonth, d(time.August, 1), d(time.August, 31)},
		{PresetAll, time.Time{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			p := tt.preset.Period(now)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}
}

func TestPreset_ThisWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, time.September, 15, 9, 0, 0, 0, time.UTC)

	p := PresetThisWeek.Period(sunday)
	assert.Equal(t, time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC), p.Start)
}

func TestCustomPeriod(t *testing.T) {
	sel, err := customPeriod("2024-09-01", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), sel.Period.Start)
	assert.True(t, sel.Period.End.IsZero())

	_, err = customPeriod("01/09/2024", "")
	assert.Error(t, err)

	_, err = customPeriod("2024-09-10", "2024-09-01")
	assert.Error(t, err)
}
