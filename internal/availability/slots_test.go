package availability

import (
	"testing"
	"time"

	"github.com/pawsnclaws/groomtime/internal/model"
)

func TestStepFor(t *testing.T) {
	cases := []struct {
		granularity int
		buffer      int
		want        time.Duration
	}{
		{15, 0, 15 * time.Minute},
		{30, 0, 30 * time.Minute},
		{30, 20, 20 * time.Minute},
		{30, 10, 15 * time.Minute}, // buffer below the floor clamps up
		{15, 30, 15 * time.Minute}, // buffer larger than granularity is ignored
		{10, 0, 15 * time.Minute},
	}
	for _, tc := range cases {
		if got := StepFor(tc.granularity, tc.buffer); got != tc.want {
			t.Errorf("StepFor(%d, %d) = %s, want %s", tc.granularity, tc.buffer, got, tc.want)
		}
	}
}

func TestCandidateStarts_LastStartFitsBeforeClose(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	interval := Interval{Start: day.Add(9 * time.Hour), End: day.Add(17 * time.Hour)}

	starts := CandidateStarts(interval, 60*time.Minute, 15*time.Minute)
	if len(starts) != 29 {
		t.Fatalf("expected 29 candidates, got %d", len(starts))
	}
	if !starts[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected first start 09:00, got %s", starts[0].Format(time.RFC3339))
	}
	// 16:00 is the last start whose 60-minute service still ends by close;
	// 16:15 would run past 17:00.
	if !starts[len(starts)-1].Equal(day.Add(16 * time.Hour)) {
		t.Fatalf("expected last start 16:00, got %s", starts[len(starts)-1].Format(time.RFC3339))
	}
}

func TestCandidateStarts_ExactFit(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	interval := Interval{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}

	starts := CandidateStarts(interval, 60*time.Minute, 15*time.Minute)
	if len(starts) != 1 {
		t.Fatalf("expected exactly one candidate, got %d", len(starts))
	}
	if !starts[0].Equal(interval.Start) {
		t.Fatalf("expected 09:00, got %s", starts[0].Format(time.RFC3339))
	}
}

func TestOccupied_BufferExtendsBothSides(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	existing := []model.Appointment{{
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Status:    model.StatusConfirmed,
	}}
	duration := 60 * time.Minute
	buffer := 15 * time.Minute

	cases := []struct {
		start time.Time
		want  bool
	}{
		{day.Add(9*time.Hour + 45*time.Minute), true},  // ends 10:45+buffer, collides
		{day.Add(8*time.Hour + 45*time.Minute), false}, // ends exactly at 10:00 with its buffer
		{day.Add(11*time.Hour + 15*time.Minute), false},
		{day.Add(11 * time.Hour), true}, // inside the trailing buffer
		{day.Add(10*time.Hour + 30*time.Minute), true},
	}
	for _, tc := range cases {
		if got := Occupied(tc.start, duration, buffer, existing); got != tc.want {
			t.Errorf("Occupied(%s) = %v, want %v", tc.start.Format("15:04"), got, tc.want)
		}
	}
}

func TestOccupied_TouchingIsNotOverlapping(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	existing := []model.Appointment{{
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Status:    model.StatusPending,
	}}

	if Occupied(day.Add(9*time.Hour), 60*time.Minute, 0, existing) {
		t.Fatal("a booking ending exactly at another's start should be free")
	}
	if Occupied(day.Add(11*time.Hour), 60*time.Minute, 0, existing) {
		t.Fatal("a booking starting exactly at another's end should be free")
	}
}

func TestOccupied_CancelledDoesNotBlock(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	existing := []model.Appointment{
		{StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour), Status: model.StatusCancelled},
		{StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour), Status: model.StatusNoShow},
	}

	if Occupied(day.Add(10*time.Hour), 60*time.Minute, 0, existing) {
		t.Fatal("cancelled and no-show appointments must release their slot")
	}
}
