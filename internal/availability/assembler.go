package availability

import (
	"context"
	"sort"
	"time"

	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
)

// HoursSource resolves a date's open intervals.
type HoursSource interface {
	IntervalsFor(date string, hours model.BusinessHours) []Interval
}

// BlockedSource answers whether a date is wholly closed.
type BlockedSource interface {
	IsBlocked(date string, settings model.BookingSettings) bool
}

// AppointmentSource lists the active appointments occupying a date.
type AppointmentSource interface {
	ListActiveByDate(ctx context.Context, date string) ([]model.Appointment, error)
}

// WaitlistSource counts active waitlist entries requesting a date.
type WaitlistSource interface {
	CountActive(ctx context.Context, date string) (int, error)
}

// Assembler builds the final availability answer for one date. All of its
// computation is read-only; it can run on any number of requests in
// parallel.
type Assembler struct {
	cal          *clock.Calendar
	hours        HoursSource
	blocked      BlockedSource
	appointments AppointmentSource
	waitlist     WaitlistSource
	stepMinutes  int
}

func NewAssembler(cal *clock.Calendar, hours HoursSource, blocked BlockedSource, appointments AppointmentSource, waitlist WaitlistSource, stepMinutes int) *Assembler {
	if stepMinutes <= 0 {
		stepMinutes = MinStepMinutes
	}
	return &Assembler{
		cal:          cal,
		hours:        hours,
		blocked:      blocked,
		appointments: appointments,
		waitlist:     waitlist,
		stepMinutes:  stepMinutes,
	}
}

// Assemble returns the ordered slot list for a date. Blocked dates short
// circuit to an empty list before any other source is consulted. Slots that
// fall inside the minimum-advance period or collide with an existing
// appointment stay in the list marked unavailable, keeping the grid stable
// for display; occupied slots additionally carry the date's waitlist count.
func (a *Assembler) Assemble(ctx context.Context, date string, durationMinutes int, hours model.BusinessHours, settings model.BookingSettings) ([]model.TimeSlot, error) {
	if a.blocked.IsBlocked(date, settings) {
		return []model.TimeSlot{}, nil
	}

	intervals := a.hours.IntervalsFor(date, hours)
	if len(intervals) == 0 {
		return []model.TimeSlot{}, nil
	}

	existing, err := a.appointments.ListActiveByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	buffer := time.Duration(settings.BufferMinutes) * time.Minute
	step := StepFor(a.stepMinutes, settings.BufferMinutes)
	earliest := a.cal.Now().Add(time.Duration(settings.MinAdvanceHours) * time.Hour)

	waitlistCount := -1 // fetched once, only when some slot is occupied
	byTime := map[string]model.TimeSlot{}
	for _, interval := range intervals {
		for _, start := range CandidateStarts(interval, duration, step) {
			label := start.In(a.cal.Location()).Format(model.ClockLayout)
			if _, dup := byTime[label]; dup {
				continue
			}

			occupied := Occupied(start, duration, buffer, existing)
			tooSoon := start.Before(earliest)

			slot := model.TimeSlot{Time: label, Available: !occupied && !tooSoon}
			if occupied {
				if waitlistCount < 0 {
					waitlistCount, err = a.waitlist.CountActive(ctx, date)
					if err != nil {
						return nil, err
					}
				}
				slot.WaitlistCount = waitlistCount
			}
			byTime[label] = slot
		}
	}

	slots := make([]model.TimeSlot, 0, len(byTime))
	for _, slot := range byTime {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}
