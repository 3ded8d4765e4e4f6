package model

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// HoursInterval is one open span within a day, wall-clock HH:MM.
type HoursInterval struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// DayHours describes one weekday. A closed day carries no intervals; an open
// day carries one interval per shift (split shifts are multiple intervals).
type DayHours struct {
	IsClosed  bool            `json:"is_closed"`
	Intervals []HoursInterval `json:"intervals,omitempty"`
}

// BusinessHours maps weekday (0=Sunday..6=Saturday) to that day's hours.
// Weekdays absent from the map are treated as closed.
type BusinessHours map[int]DayHours

// BlockedDate is a whole-day closure: a single date when EndDate is empty,
// an inclusive [Date, EndDate] range otherwise.
type BlockedDate struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date"`
	EndDate string `json:"end_date,omitempty"`
	Reason  string `json:"reason"`
}

// Span normalizes the single-date and range forms into one inclusive range.
func (b BlockedDate) Span() (start, end string) {
	if b.EndDate == "" {
		return b.Date, b.Date
	}
	return b.Date, b.EndDate
}

type BookingSettings struct {
	MinAdvanceHours         int           `json:"min_advance_hours"`
	MaxAdvanceDays          int           `json:"max_advance_days"`
	CancellationCutoffHours int           `json:"cancellation_cutoff_hours"`
	BufferMinutes           int           `json:"buffer_minutes"`
	BlockedDates            []BlockedDate `json:"blocked_dates,omitempty"`
	RecurringBlockedDays    []int         `json:"recurring_blocked_days,omitempty"`
}

// Service is a catalog entry. The engine only reads its duration.
type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// TimeSlot is the per-slot availability answer. It is computed per query and
// never persisted.
type TimeSlot struct {
	Time          string `json:"time"`
	Available     bool   `json:"available"`
	WaitlistCount int    `json:"waitlist_count"`
}

// ParseClock converts a strict HH:MM string to minutes since midnight.
// Unpadded forms like "9:30" are rejected so stored hours and booking
// requests always use the same labels the slot grid emits.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse(ClockLayout, raw)
	if err != nil || t.Format(ClockLayout) != raw {
		return 0, fmt.Errorf("invalid time %q: must be HH:MM", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateBusinessHours rejects malformed configuration at the storage
// boundary so the engine never sees it.
func ValidateBusinessHours(hours BusinessHours) error {
	for weekday, day := range hours {
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("weekday %d out of range 0..6", weekday)
		}
		if day.IsClosed {
			if len(day.Intervals) > 0 {
				return fmt.Errorf("weekday %d marked closed but has intervals", weekday)
			}
			continue
		}
		for _, iv := range day.Intervals {
			open, err := ParseClock(iv.Open)
			if err != nil {
				return fmt.Errorf("weekday %d: %w", weekday, err)
			}
			closeMin, err := ParseClock(iv.Close)
			if err != nil {
				return fmt.Errorf("weekday %d: %w", weekday, err)
			}
			if open >= closeMin {
				return fmt.Errorf("weekday %d: open %s must be before close %s", weekday, iv.Open, iv.Close)
			}
		}
	}
	return nil
}

func ValidateBlockedDate(b BlockedDate) error {
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return fmt.Errorf("blocked date %q: must be YYYY-MM-DD", b.Date)
	}
	if b.EndDate != "" {
		if _, err := time.Parse(DateLayout, b.EndDate); err != nil {
			return fmt.Errorf("blocked end date %q: must be YYYY-MM-DD", b.EndDate)
		}
		if b.EndDate < b.Date {
			return fmt.Errorf("blocked range end %s before start %s", b.EndDate, b.Date)
		}
	}
	if n := len(b.Reason); n < 1 || n > 200 {
		return fmt.Errorf("blocked date reason must be 1-200 characters")
	}
	return nil
}

func ValidateBookingSettings(s BookingSettings) error {
	if s.MinAdvanceHours < 0 || s.MinAdvanceHours > 168 {
		return fmt.Errorf("min_advance_hours must be 0..168")
	}
	if s.MaxAdvanceDays < 1 || s.MaxAdvanceDays > 365 {
		return fmt.Errorf("max_advance_days must be 1..365")
	}
	if s.CancellationCutoffHours < 0 || s.CancellationCutoffHours > 168 {
		return fmt.Errorf("cancellation_cutoff_hours must be 0..168")
	}
	if s.BufferMinutes < 0 || s.BufferMinutes > 120 || s.BufferMinutes%5 != 0 {
		return fmt.Errorf("buffer_minutes must be 0..120 and divisible by 5")
	}
	seen := map[int]bool{}
	for _, d := range s.RecurringBlockedDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("recurring blocked day %d out of range 0..6", d)
		}
		if seen[d] {
			return fmt.Errorf("recurring blocked day %d listed twice", d)
		}
		seen[d] = true
	}
	for _, b := range s.BlockedDates {
		if err := ValidateBlockedDate(b); err != nil {
			return err
		}
	}
	return nil
}
