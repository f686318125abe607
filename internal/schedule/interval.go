// Package schedule computes occurrence dates for recurring transactions.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"finwise/internal/models"
)

var ErrInvalidInterval = errors.New("invalid recurring interval")

// Next returns the occurrence that follows ref for the given interval.
// MONTHLY and YEARLY use calendar arithmetic, so the day of month is
// preserved where valid (Jan 31 + 1 month normalizes per time.AddDate).
func Next(ref time.Time, interval models.RecurringInterval) (time.Time, error) {
	switch interval {
	case models.IntervalDaily:
		return ref.AddDate(0, 0, 1), nil
	case models.IntervalWeekly:
		return ref.AddDate(0, 0, 7), nil
	case models.IntervalMonthly:
		return ref.AddDate(0, 1, 0), nil
	case models.IntervalYearly:
		return ref.AddDate(1, 0, 0), nil
	default:
		return ref, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
}

// MonthBounds returns the first instant of the month containing t and the
// first instant of the following month, in t's location.
func MonthBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
