// Package schedule answers two calendar questions: which open intervals a
// date has, and whether a date is blocked outright.
package schedule

import (
	"github.com/pawsnclaws/groomtime/internal/availability"
	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
)

type HoursResolver struct {
	cal *clock.Calendar
}

func NewHoursResolver(cal *clock.Calendar) *HoursResolver {
	return &HoursResolver{cal: cal}
}

// IntervalsFor maps a date to its open intervals as concrete instants in the
// business timezone. Closed or unconfigured days yield nothing; split shifts
// yield one interval each.
func (r *HoursResolver) IntervalsFor(date string, hours model.BusinessHours) []availability.Interval {
	weekday := r.cal.DayOfWeek(date)
	if weekday < 0 {
		return nil
	}
	day, ok := hours[weekday]
	if !ok || day.IsClosed {
		return nil
	}

	var intervals []availability.Interval
	for _, iv := range day.Intervals {
		openMin, err := model.ParseClock(iv.Open)
		if err != nil {
			continue
		}
		closeMin, err := model.ParseClock(iv.Close)
		if err != nil || closeMin <= openMin {
			continue
		}
		start, err := r.cal.At(date, openMin)
		if err != nil {
			continue
		}
		end, err := r.cal.At(date, closeMin)
		if err != nil {
			continue
		}
		intervals = append(intervals, availability.Interval{Start: start, End: end})
	}
	return intervals
}

type BlockedMatcher struct {
	cal *clock.Calendar
}

func NewBlockedMatcher(cal *clock.Calendar) *BlockedMatcher {
	return &BlockedMatcher{cal: cal}
}

// IsBlocked reports whether the date is wholly closed, either by an explicit
// blocked date or range, or by a standing weekly closure. Blocking is
// absolute: callers short-circuit to an empty slot list.
func (m *BlockedMatcher) IsBlocked(date string, settings model.BookingSettings) bool {
	weekday := m.cal.DayOfWeek(date)
	for _, d := range settings.RecurringBlockedDays {
		if weekday >= 0 && d == weekday {
			return true
		}
	}
	// Normalized ISO dates compare lexicographically in calendar order.
	for _, b := range settings.BlockedDates {
		start, end := b.Span()
		if date >= start && date <= end {
			return true
		}
	}
	return false
}
