package availability

import (
	"time"

	"github.com/pawsnclaws/groomtime/internal/model"
)

// Interval is a half-open [Start, End) span of open business time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// MinStepMinutes is the floor for the slot grid step. Buffer-derived steps
// never go below it.
const MinStepMinutes = 15

// StepFor picks the slot grid step: the smaller of the configured
// granularity and the buffer (when a buffer is set), clamped to the floor.
func StepFor(granularityMinutes, bufferMinutes int) time.Duration {
	step := granularityMinutes
	if bufferMinutes > 0 && bufferMinutes < step {
		step = bufferMinutes
	}
	if step < MinStepMinutes {
		step = MinStepMinutes
	}
	return time.Duration(step) * time.Minute
}

// CandidateStarts produces the ordered slot grid for one open interval:
// starts every step from interval.Start while the service itself still fits
// before close. The buffer does not shorten the closing edge; it only
// spaces bookings apart.
func CandidateStarts(interval Interval, duration, step time.Duration) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var starts []time.Time
	for t := interval.Start; !t.Add(duration).After(interval.End); t = t.Add(step) {
		starts = append(starts, t)
	}
	return starts
}

// Occupied reports whether a candidate booking would collide with any active
// appointment. Both sides extend by the buffer, so back-to-back bookings
// always leave the configured gap; intervals that merely touch do not
// collide.
func Occupied(start time.Time, duration, buffer time.Duration, existing []model.Appointment) bool {
	end := start.Add(duration + buffer)
	for _, appt := range existing {
		if !model.IsActiveStatus(appt.Status) {
			continue
		}
		apptEnd := appt.EndTime.Add(buffer)
		if start.Before(apptEnd) && appt.StartTime.Before(end) {
			return true
		}
	}
	return false
}
