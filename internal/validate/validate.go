package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
)

// ValidationError is a recoverable input error whose message is surfaced to
// the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Errorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

const (
	minYear      = 2020
	maxRangeDays = 730
)

// Validator parses and bounds date inputs. The upper year bound tracks the
// calendar so far-future placeholders like 9999-12-31 are rejected.
type Validator struct {
	cal *clock.Calendar
}

func NewValidator(cal *clock.Calendar) *Validator {
	return &Validator{cal: cal}
}

// ParseDate parses a strict YYYY-MM-DD string into business-local midnight.
// Years outside [2020, currentYear+1] are rejected.
func (v *Validator) ParseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, Errorf(field, "%s is required", field)
	}
	t, err := time.ParseInLocation(model.DateLayout, raw, v.cal.Location())
	if err != nil {
		return time.Time{}, Errorf(field, "Invalid %s format", field)
	}
	// time.Parse tolerates some re-renderable inputs; require the canonical
	// form so "2024-1-2" and zero-padded year tricks never slip through.
	if t.Format(model.DateLayout) != raw {
		return time.Time{}, Errorf(field, "Invalid %s format", field)
	}
	maxYear := v.cal.Now().In(v.cal.Location()).Year() + 1
	if year := t.Year(); year < minYear || year > maxYear {
		return time.Time{}, Errorf(field, "%s must be between %d and %d", field, minYear, maxYear)
	}
	return t, nil
}

// ValidateRange enforces start <= end and a maximum span of 730 days,
// boundary inclusive.
func (v *Validator) ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return Errorf("date_range", "Start date must be before or equal to end date")
	}
	// Calendar days, not elapsed hours, so DST-transition days don't shift
	// the boundary.
	if end.After(start.AddDate(0, 0, maxRangeDays)) {
		return Errorf("date_range", "Date range cannot exceed %d days", maxRangeDays)
	}
	return nil
}
