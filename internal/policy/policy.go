// Package policy enforces the booking window and cancellation cutoff.
package policy

import (
	"fmt"
	"time"

	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

// Violation is a user-facing policy rejection, distinct from malformed
// input: the request was well-formed but the rules say no.
type Violation struct {
	Message string
}

func (e *Violation) Error() string { return e.Message }

type Window struct {
	cal *clock.Calendar
}

func NewWindow(cal *clock.Calendar) *Window {
	return &Window{cal: cal}
}

// ValidateRequestDate rejects dates outside the booking window: past dates,
// dates whose entire day sits inside the minimum-advance period, and dates
// beyond the maximum advance horizon. A same-day date that is only partially
// inside the minimum-advance period passes here; the affected slots are
// marked unavailable individually.
func (w *Window) ValidateRequestDate(date string, settings model.BookingSettings) error {
	today := w.cal.Today()
	if date < today {
		return validate.Errorf("date", "Date cannot be in the past")
	}

	if settings.MinAdvanceHours > 0 {
		dayEnd, err := w.cal.NextMidnight(date)
		if err != nil {
			return validate.Errorf("date", "Invalid date format")
		}
		earliest := w.cal.Now().Add(time.Duration(settings.MinAdvanceHours) * time.Hour)
		if !dayEnd.After(earliest) {
			return validate.Errorf("date", "Date must be at least %d hours in advance", settings.MinAdvanceHours)
		}
	}

	todayStart, err := w.cal.StartOfDay(today)
	if err != nil {
		return validate.Errorf("date", "Invalid date format")
	}
	horizon := todayStart.AddDate(0, 0, settings.MaxAdvanceDays).Format(model.DateLayout)
	if date > horizon {
		return validate.Errorf("date", "Date cannot be more than %d days in advance", settings.MaxAdvanceDays)
	}
	return nil
}

// ValidateCancellation rejects cancellations inside the cutoff period before
// the appointment's start.
func (w *Window) ValidateCancellation(appt model.Appointment, settings model.BookingSettings) error {
	cutoff := time.Duration(settings.CancellationCutoffHours) * time.Hour
	if appt.StartTime.Sub(w.cal.Now()) < cutoff {
		return &Violation{Message: fmt.Sprintf("Cannot cancel within %d hours of appointment", settings.CancellationCutoffHours)}
	}
	return nil
}
