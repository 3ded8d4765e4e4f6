package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/internal/policy"
	"github.com/pawsnclaws/groomtime/internal/schedule"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

type fakeStore struct {
	taken    bool
	existing model.Appointment

	inserted *model.Appointment
	buffer   int
	events   []outbox.Event
}

func (s *fakeStore) InsertIfFree(_ context.Context, appt model.Appointment, bufferMinutes int, events []outbox.Event) (model.Appointment, error) {
	if s.taken {
		return model.Appointment{}, storage.ErrSlotTaken
	}
	appt.CreatedAt = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.inserted = &appt
	s.buffer = bufferMinutes
	s.events = events
	return appt, nil
}

func (s *fakeStore) Cancel(_ context.Context, _, reason string, authorize func(model.Appointment) error, events func(model.Appointment) []outbox.Event) (model.Appointment, error) {
	appt := s.existing
	if appt.Status == model.StatusCancelled {
		return appt, nil
	}
	if authorize != nil {
		if err := authorize(appt); err != nil {
			return model.Appointment{}, err
		}
	}
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	appt.Status = model.StatusCancelled
	appt.CancelledAt = &now
	appt.CancelReason = reason
	if events != nil {
		s.events = events(appt)
	}
	return appt, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, _, status string, authorize func(model.Appointment) error) (model.Appointment, error) {
	appt := s.existing
	if authorize != nil {
		if err := authorize(appt); err != nil {
			return model.Appointment{}, err
		}
	}
	appt.Status = status
	return appt, nil
}

type fakeCatalog map[string]int

func (c fakeCatalog) GetDuration(_ context.Context, serviceID string) (int, error) {
	minutes, ok := c[serviceID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return minutes, nil
}

type fakeSettings struct {
	settings model.BookingSettings
	hours    model.BusinessHours
}

func (f fakeSettings) GetBookingSettings(context.Context) (model.BookingSettings, error) {
	return f.settings, nil
}

func (f fakeSettings) GetBusinessHours(context.Context) (model.BusinessHours, error) {
	return f.hours, nil
}

func newTestGuard(t *testing.T, store *fakeStore, settings fakeSettings) *Guard {
	t.Helper()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	cal, err := clock.NewCalendar(clock.FixedAt(now), "UTC")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return NewGuard(cal,
		validate.NewValidator(cal),
		policy.NewWindow(cal),
		schedule.NewBlockedMatcher(cal),
		schedule.NewHoursResolver(cal),
		store,
		fakeCatalog{"svc-groom": 60, "svc-nails": 15},
		settings,
		15)
}

func defaultSettings() fakeSettings {
	open := model.DayHours{Intervals: []model.HoursInterval{{Open: "09:00", Close: "17:00"}}}
	return fakeSettings{
		settings: model.BookingSettings{
			MinAdvanceHours:         2,
			MaxAdvanceDays:          90,
			CancellationCutoffHours: 24,
			BufferMinutes:           15,
		},
		hours: model.BusinessHours{5: open, 6: open},
	}
}

func TestCreate_Success(t *testing.T) {
	store := &fakeStore{}
	g := newTestGuard(t, store, defaultSettings())

	created, err := g.Create(context.Background(), Request{
		Date:         "2026-05-02",
		Time:         "10:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wantStart := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	if !created.StartTime.Equal(wantStart) {
		t.Fatalf("start = %s, want %s", created.StartTime, wantStart)
	}
	if !created.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("end = %s", created.EndTime)
	}
	if created.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}
	if store.buffer != 15 {
		t.Fatalf("buffer passed to store = %d, want 15", store.buffer)
	}
	if len(store.events) != 1 || store.events[0].EventType != outbox.EventAppointmentBooked {
		t.Fatalf("expected one booked event, got %v", store.events)
	}
}

func TestCreate_LostRaceBecomesSlotConflict(t *testing.T) {
	store := &fakeStore{taken: true}
	g := newTestGuard(t, store, defaultSettings())

	_, err := g.Create(context.Background(), Request{
		Date:         "2026-05-02",
		Time:         "10:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	})
	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError, got %v", err)
	}
	if conflict.Date != "2026-05-02" || conflict.Time != "10:00" {
		t.Fatalf("conflict carries %s %s", conflict.Date, conflict.Time)
	}
}

func TestCreate_RejectsOffGridTime(t *testing.T) {
	g := newTestGuard(t, &fakeStore{}, defaultSettings())

	for _, clockTime := range []string{"10:07", "08:00", "16:15", "17:00"} {
		_, err := g.Create(context.Background(), Request{
			Date:         "2026-05-02",
			Time:         clockTime,
			ServiceID:    "svc-groom",
			CustomerName: "Dana",
		})
		var verr *validate.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("time %s: expected ValidationError, got %v", clockTime, err)
		}
	}

	// 16:00 is the last start that still fits a 60-minute service.
	if _, err := g.Create(context.Background(), Request{
		Date:         "2026-05-02",
		Time:         "16:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	}); err != nil {
		t.Fatalf("16:00 should be bookable: %v", err)
	}
}

func TestCreate_UnknownServicePassesThrough(t *testing.T) {
	g := newTestGuard(t, &fakeStore{}, defaultSettings())

	_, err := g.Create(context.Background(), Request{
		Date:         "2026-05-02",
		Time:         "10:00",
		ServiceID:    "svc-missing",
		CustomerName: "Dana",
	})
	if !storage.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCreate_BlockedDateConflicts(t *testing.T) {
	settings := defaultSettings()
	settings.settings.BlockedDates = []model.BlockedDate{{Date: "2026-05-02", Reason: "closed"}}
	g := newTestGuard(t, &fakeStore{}, settings)

	_, err := g.Create(context.Background(), Request{
		Date:         "2026-05-02",
		Time:         "10:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	})
	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError for a blocked date, got %v", err)
	}
}

func TestCreate_SlotInsideMinimumAdvance(t *testing.T) {
	// Now is 08:00 with a 2-hour minimum: 09:00 today is too soon, 10:00 is
	// the boundary and allowed.
	g := newTestGuard(t, &fakeStore{}, defaultSettings())

	_, err := g.Create(context.Background(), Request{
		Date:         "2026-05-01",
		Time:         "09:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	})
	var verr *validate.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Time must be at least 2 hours in advance" {
		t.Fatalf("expected min-advance rejection, got %v", err)
	}

	if _, err := g.Create(context.Background(), Request{
		Date:         "2026-05-01",
		Time:         "10:00",
		ServiceID:    "svc-groom",
		CustomerName: "Dana",
	}); err != nil {
		t.Fatalf("boundary slot should be bookable: %v", err)
	}
}

func TestCreate_MissingName(t *testing.T) {
	g := newTestGuard(t, &fakeStore{}, defaultSettings())

	_, err := g.Create(context.Background(), Request{
		Date:      "2026-05-02",
		Time:      "10:00",
		ServiceID: "svc-groom",
	})
	var verr *validate.ValidationError
	if !errors.As(err, &verr) || verr.Field != "customer_name" {
		t.Fatalf("expected customer_name error, got %v", err)
	}
}

func TestCancel_EnforcesCutoff(t *testing.T) {
	store := &fakeStore{existing: model.Appointment{
		ID:        "appt-1",
		Status:    model.StatusConfirmed,
		StartTime: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), // 12h away, cutoff 24h
	}}
	g := newTestGuard(t, store, defaultSettings())

	_, err := g.Cancel(context.Background(), "appt-1", "change of plans")
	var violation *policy.Violation
	if !errors.As(err, &violation) {
		t.Fatalf("expected cutoff violation, got %v", err)
	}
}

func TestCancel_OutsideCutoffEmitsEvent(t *testing.T) {
	store := &fakeStore{existing: model.Appointment{
		ID:        "appt-1",
		Status:    model.StatusConfirmed,
		StartTime: time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC),
	}}
	g := newTestGuard(t, store, defaultSettings())

	cancelled, err := g.Cancel(context.Background(), "appt-1", "change of plans")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != model.StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancel result = %+v", cancelled)
	}
	if len(store.events) != 1 || store.events[0].EventType != outbox.EventAppointmentCancelled {
		t.Fatalf("expected one cancelled event, got %v", store.events)
	}
}

func TestCancel_AlreadyCancelledIsIdempotent(t *testing.T) {
	store := &fakeStore{existing: model.Appointment{
		ID:     "appt-1",
		Status: model.StatusCancelled,
		// Inside the cutoff: idempotency must win before authorization runs.
		StartTime: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}}
	g := newTestGuard(t, store, defaultSettings())

	got, err := g.Cancel(context.Background(), "appt-1", "again")
	if err != nil {
		t.Fatalf("repeat cancel should succeed: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestCancel_CompletedIsNotCancellable(t *testing.T) {
	store := &fakeStore{existing: model.Appointment{
		ID:        "appt-1",
		Status:    model.StatusCompleted,
		StartTime: time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC),
	}}
	g := newTestGuard(t, store, defaultSettings())

	_, err := g.Cancel(context.Background(), "appt-1", "oops")
	if !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		from string
		to   string
		ok   bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusConfirmed, model.StatusCheckedIn, true},
		{model.StatusConfirmed, model.StatusNoShow, true},
		{model.StatusCheckedIn, model.StatusInProgress, true},
		{model.StatusInProgress, model.StatusReady, true},
		{model.StatusReady, model.StatusCompleted, true},
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusCompleted, model.StatusPending, false},
		{model.StatusPending, model.StatusCancelled, false}, // cancellation has its own path
	}

	for _, tc := range cases {
		store := &fakeStore{existing: model.Appointment{ID: "appt-1", Status: tc.from}}
		g := newTestGuard(t, store, defaultSettings())

		got, err := g.UpdateStatus(context.Background(), "appt-1", tc.to)
		if tc.ok {
			if err != nil {
				t.Errorf("%s -> %s should be allowed: %v", tc.from, tc.to, err)
				continue
			}
			if got.Status != tc.to {
				t.Errorf("%s -> %s: status = %s", tc.from, tc.to, got.Status)
			}
			continue
		}
		var verr *validate.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s -> %s should be rejected, got %v", tc.from, tc.to, err)
		}
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	g := newTestGuard(t, &fakeStore{}, defaultSettings())
	_, err := g.UpdateStatus(context.Background(), "appt-1", "teleported")
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
