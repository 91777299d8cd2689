package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	year, month, err := ParsePeriod("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.February, month)

	for _, bad := range []string{"2026", "2026-13", "2026-2", "Feb 2026", ""} {
		_, _, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestLastDayOfMonth(t *testing.T) {
	d, err := LastDayOfMonth("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 28, d.Day())

	d, err = LastDayOfMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	d, err = LastDayOfMonth("2026-12")
	require.NoError(t, err)
	assert.Equal(t, 31, d.Day())
}

func TestPeriodBefore(t *testing.T) {
	assert.True(t, PeriodBefore("2025-12", "2026-01"))
	assert.True(t, PeriodBefore("", "2026-01"))
	assert.False(t, PeriodBefore("2026-01", "2026-01"))
	assert.False(t, PeriodBefore("2026-02", "2026-01"))
}
