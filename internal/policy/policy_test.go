package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

func testWindow(t *testing.T, now time.Time) *Window {
	t.Helper()
	cal, err := clock.NewCalendar(clock.FixedAt(now), "UTC")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return NewWindow(cal)
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Message
}

func TestValidateRequestDate_Past(t *testing.T) {
	w := testWindow(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	settings := model.BookingSettings{MinAdvanceHours: 2, MaxAdvanceDays: 90}

	err := w.ValidateRequestDate("2026-04-30", settings)
	if got := validationMessage(t, err); got != "Date cannot be in the past" {
		t.Fatalf("message = %q", got)
	}
}

func TestValidateRequestDate_WholeDayInsideMinimumAdvance(t *testing.T) {
	// At 23:30 with a 2-hour minimum advance, every remaining slot today is
	// too soon, so the whole date is rejected.
	w := testWindow(t, time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC))
	settings := model.BookingSettings{MinAdvanceHours: 2, MaxAdvanceDays: 90}

	err := w.ValidateRequestDate("2026-05-01", settings)
	if got := validationMessage(t, err); got != "Date must be at least 2 hours in advance" {
		t.Fatalf("message = %q", got)
	}

	// Tomorrow still has bookable time and passes the date-level check.
	if err := w.ValidateRequestDate("2026-05-02", settings); err != nil {
		t.Fatalf("next day should pass: %v", err)
	}
}

func TestValidateRequestDate_SameDayPartiallyInsideAdvancePasses(t *testing.T) {
	w := testWindow(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	settings := model.BookingSettings{MinAdvanceHours: 2, MaxAdvanceDays: 90}

	if err := w.ValidateRequestDate("2026-05-01", settings); err != nil {
		t.Fatalf("same-day date with bookable time left should pass: %v", err)
	}
}

func TestValidateRequestDate_Horizon(t *testing.T) {
	w := testWindow(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	settings := model.BookingSettings{MaxAdvanceDays: 90}

	if err := w.ValidateRequestDate("2026-07-30", settings); err != nil {
		t.Fatalf("exactly 90 days out should pass: %v", err)
	}
	err := w.ValidateRequestDate("2026-07-31", settings)
	if got := validationMessage(t, err); got != "Date cannot be more than 90 days in advance" {
		t.Fatalf("message = %q", got)
	}
}

func TestValidateCancellation(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	w := testWindow(t, now)
	settings := model.BookingSettings{CancellationCutoffHours: 24}

	appt := model.Appointment{StartTime: now.Add(23*time.Hour + 59*time.Minute)}
	err := w.ValidateCancellation(appt, settings)
	var violation *Violation
	if !errors.As(err, &violation) {
		t.Fatalf("expected Violation, got %v", err)
	}
	if violation.Message != "Cannot cancel within 24 hours of appointment" {
		t.Fatalf("message = %q", violation.Message)
	}

	appt.StartTime = now.Add(24*time.Hour + time.Minute)
	if err := w.ValidateCancellation(appt, settings); err != nil {
		t.Fatalf("outside the cutoff should pass: %v", err)
	}

	// Zero cutoff allows cancelling right up to the start.
	appt.StartTime = now.Add(time.Minute)
	if err := w.ValidateCancellation(appt, model.BookingSettings{}); err != nil {
		t.Fatalf("zero cutoff should pass: %v", err)
	}
}
