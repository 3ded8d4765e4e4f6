package clock

import (
	"strings"
	"time"

	"github.com/pawsnclaws/groomtime/internal/model"
)

// Calendar resolves calendar questions in the business's fixed IANA
// timezone, so "today" and day-of-week answers do not depend on the host
// machine's zone and stay stable across DST transitions.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

func NewCalendar(c Clock, timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Calendar{clock: c, loc: loc}, nil
}

func (c *Calendar) Now() time.Time {
	return c.clock.Now()
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the current business-local calendar date.
func (c *Calendar) Today() string {
	return c.clock.Now().In(c.loc).Format(model.DateLayout)
}

// DayOfWeek maps a YYYY-MM-DD date to 0=Sunday..6=Saturday, or -1 for an
// empty or unparseable date so callers can treat "no date" without a panic
// path.
func (c *Calendar) DayOfWeek(date string) int {
	if strings.TrimSpace(date) == "" {
		return -1
	}
	t, err := time.ParseInLocation(model.DateLayout, date, c.loc)
	if err != nil {
		return -1
	}
	return int(t.Weekday())
}

// StartOfDay returns business-local midnight of the given date.
func (c *Calendar) StartOfDay(date string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, date, c.loc)
}

// NextMidnight returns business-local midnight of the day after date,
// following wall-clock rules (a DST-transition day may be 23 or 25 hours).
func (c *Calendar) NextMidnight(date string) (time.Time, error) {
	start, err := c.StartOfDay(date)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, 1), nil
}

// At pins a wall-clock minute-of-day on the given date to a concrete
// instant in the business timezone.
func (c *Calendar) At(date string, minuteOfDay int) (time.Time, error) {
	day, err := c.StartOfDay(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, c.loc), nil
}

// TodayInterval returns the UTC half-open [start, end) window used to scope
// "appointments today" queries. It spans exactly 24 hours.
func (c *Calendar) TodayInterval() (time.Time, time.Time) {
	start, _ := c.StartOfDay(c.Today())
	startUTC := start.UTC()
	return startUTC, startUTC.Add(24 * time.Hour)
}
