// Package booking is the write side of the engine: it re-validates the
// requested slot and hands the insert to storage, which finishes the job
// under a transaction plus the table's exclusion constraint. Together they
// close the race between a client's last availability read and its booking
// submission.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawsnclaws/groomtime/internal/availability"
	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/internal/policy"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

// SlotConflictError means the slot was taken (or the date blocked) between
// the caller's availability read and this commit. Callers are expected to
// refetch availability and retry a different slot, not to show a hard error.
type SlotConflictError struct {
	Date string
	Time string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s %s is no longer available", e.Date, e.Time)
}

// ErrNotCancellable is returned when an appointment's status does not permit
// cancellation (already completed, no-show, or in the chair).
var ErrNotCancellable = errors.New("appointment cannot be cancelled")

// Store is the storage contract the guard commits through.
type Store interface {
	InsertIfFree(ctx context.Context, appt model.Appointment, bufferMinutes int, events []outbox.Event) (model.Appointment, error)
	Cancel(ctx context.Context, appointmentID, reason string, authorize func(model.Appointment) error, events func(model.Appointment) []outbox.Event) (model.Appointment, error)
	UpdateStatus(ctx context.Context, appointmentID, status string, authorize func(model.Appointment) error) (model.Appointment, error)
}

// Catalog resolves service durations.
type Catalog interface {
	GetDuration(ctx context.Context, serviceID string) (int, error)
}

// SettingsSource reads the administrator-owned configuration.
type SettingsSource interface {
	GetBookingSettings(ctx context.Context) (model.BookingSettings, error)
	GetBusinessHours(ctx context.Context) (model.BusinessHours, error)
}

type Request struct {
	Date          string
	Time          string
	ServiceID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type Guard struct {
	cal         *clock.Calendar
	validator   *validate.Validator
	window      *policy.Window
	blocked     availability.BlockedSource
	hours       availability.HoursSource
	store       Store
	catalog     Catalog
	settings    SettingsSource
	stepMinutes int
}

func NewGuard(cal *clock.Calendar, validator *validate.Validator, window *policy.Window, blocked availability.BlockedSource, hours availability.HoursSource, store Store, catalog Catalog, settings SettingsSource, stepMinutes int) *Guard {
	if stepMinutes <= 0 {
		stepMinutes = availability.MinStepMinutes
	}
	return &Guard{
		cal:         cal,
		validator:   validator,
		window:      window,
		blocked:     blocked,
		hours:       hours,
		store:       store,
		catalog:     catalog,
		settings:    settings,
		stepMinutes: stepMinutes,
	}
}

// Create books a slot. Validation order: input shape, booking window,
// blocked date, slot legality against business hours, minimum advance, and
// finally the storage-level insert-if-free. A lost race surfaces as
// SlotConflictError, never as a silent overwrite.
func (g *Guard) Create(ctx context.Context, req Request) (model.Appointment, error) {
	if _, err := g.validator.ParseDate(req.Date, "date"); err != nil {
		return model.Appointment{}, err
	}
	minuteOfDay, err := model.ParseClock(req.Time)
	if err != nil {
		return model.Appointment{}, validate.Errorf("time", "Invalid time format")
	}
	if req.CustomerName == "" {
		return model.Appointment{}, validate.Errorf("customer_name", "customer_name is required")
	}

	durationMinutes, err := g.catalog.GetDuration(ctx, req.ServiceID)
	if err != nil {
		return model.Appointment{}, err
	}

	settings, err := g.settings.GetBookingSettings(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	hours, err := g.settings.GetBusinessHours(ctx)
	if err != nil {
		return model.Appointment{}, err
	}

	if err := g.window.ValidateRequestDate(req.Date, settings); err != nil {
		return model.Appointment{}, err
	}
	if g.blocked.IsBlocked(req.Date, settings) {
		return model.Appointment{}, &SlotConflictError{Date: req.Date, Time: req.Time}
	}

	start, err := g.cal.At(req.Date, minuteOfDay)
	if err != nil {
		return model.Appointment{}, validate.Errorf("date", "Invalid date format")
	}
	duration := time.Duration(durationMinutes) * time.Minute
	if !g.onSlotGrid(req.Date, start, duration, hours, settings) {
		return model.Appointment{}, validate.Errorf("time", "Time is not a bookable slot")
	}

	earliest := g.cal.Now().Add(time.Duration(settings.MinAdvanceHours) * time.Hour)
	if start.Before(earliest) {
		return model.Appointment{}, validate.Errorf("time", "Time must be at least %d hours in advance", settings.MinAdvanceHours)
	}

	appt := model.Appointment{
		ID:              uuid.NewString(),
		ServiceID:       req.ServiceID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		SlotDate:        req.Date,
		StartTime:       start,
		EndTime:         start.Add(duration),
		DurationMinutes: durationMinutes,
		Status:          model.StatusPending,
	}

	created, err := g.store.InsertIfFree(ctx, appt, settings.BufferMinutes, []outbox.Event{bookedEvent(appt)})
	if err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			return model.Appointment{}, &SlotConflictError{Date: req.Date, Time: req.Time}
		}
		return model.Appointment{}, err
	}
	return created, nil
}

// onSlotGrid reports whether start is one of the candidates the generator
// would produce for this date, so bookings cannot land between slots or
// outside business hours.
func (g *Guard) onSlotGrid(date string, start time.Time, duration time.Duration, hours model.BusinessHours, settings model.BookingSettings) bool {
	step := availability.StepFor(g.stepMinutes, settings.BufferMinutes)
	for _, interval := range g.hours.IntervalsFor(date, hours) {
		for _, candidate := range availability.CandidateStarts(interval, duration, step) {
			if candidate.Equal(start) {
				return true
			}
		}
	}
	return false
}

// Cancel transitions an appointment to cancelled, enforcing the cutoff
// against the locked row.
func (g *Guard) Cancel(ctx context.Context, appointmentID, reason string) (model.Appointment, error) {
	settings, err := g.settings.GetBookingSettings(ctx)
	if err != nil {
		return model.Appointment{}, err
	}

	return g.store.Cancel(ctx, appointmentID, reason,
		func(appt model.Appointment) error {
			switch appt.Status {
			case model.StatusPending, model.StatusConfirmed:
			default:
				return ErrNotCancellable
			}
			return g.window.ValidateCancellation(appt, settings)
		},
		func(appt model.Appointment) []outbox.Event {
			return []outbox.Event{cancelledEvent(appt, reason)}
		})
}

// statusTransitions is the groomer workflow. Cancellation has its own path
// and is deliberately absent here.
var statusTransitions = map[string][]string{
	model.StatusPending:    {model.StatusConfirmed},
	model.StatusConfirmed:  {model.StatusCheckedIn, model.StatusNoShow},
	model.StatusCheckedIn:  {model.StatusInProgress, model.StatusNoShow},
	model.StatusInProgress: {model.StatusReady},
	model.StatusReady:      {model.StatusCompleted},
}

// UpdateStatus applies a workflow transition.
func (g *Guard) UpdateStatus(ctx context.Context, appointmentID, status string) (model.Appointment, error) {
	if !model.ValidStatus(status) {
		return model.Appointment{}, validate.Errorf("status", "Invalid status")
	}
	return g.store.UpdateStatus(ctx, appointmentID, status, func(appt model.Appointment) error {
		for _, next := range statusTransitions[appt.Status] {
			if next == status {
				return nil
			}
		}
		return validate.Errorf("status", "Cannot change status from %s to %s", appt.Status, status)
	})
}

func bookedEvent(appt model.Appointment) outbox.Event {
	payload, _ := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"service_id":     appt.ServiceID,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"date":           appt.SlotDate,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	})
	return outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	}
}

func cancelledEvent(appt model.Appointment, reason string) outbox.Event {
	cancelledAt := ""
	if appt.CancelledAt != nil {
		cancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
	}
	payload, _ := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"service_id":     appt.ServiceID,
		"customer_email": appt.CustomerEmail,
		"date":           appt.SlotDate,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt,
		"reason":         reason,
	})
	return outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       payload,
	}
}
