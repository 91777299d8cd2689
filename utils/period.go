package utils

import (
	"fmt"
	"time"
)

// ParsePeriod validates a "YYYY-MM" billing period and returns its year/month.
func ParsePeriod(period string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return 0, 0, fmt.Errorf("period must be YYYY-MM: %w", err)
	}
	return t.Year(), t.Month(), nil
}

// LastDayOfMonth returns the final calendar day of a "YYYY-MM" period.
func LastDayOfMonth(period string) (time.Time, error) {
	year, month, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1), nil
}

// PeriodBefore reports whether period a precedes period b.
// Lexicographic comparison is correct for zero-padded YYYY-MM strings.
func PeriodBefore(a, b string) bool {
	return a < b
}
