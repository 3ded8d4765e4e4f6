package clock

import (
	"testing"
	"time"
)

func TestCalendar_TodayInBusinessTimezone(t *testing.T) {
	// 03:30 UTC is still the previous evening in New York.
	now := time.Date(2026, 1, 28, 3, 30, 0, 0, time.UTC)
	cal, err := NewCalendar(FixedAt(now), "America/New_York")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	if got := cal.Today(); got != "2026-01-27" {
		t.Fatalf("Today() = %s, want 2026-01-27", got)
	}
}

func TestCalendar_DayOfWeek(t *testing.T) {
	cal, err := NewCalendar(FixedAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), "America/New_York")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	cases := []struct {
		date string
		want int
	}{
		{"2026-01-28", 3}, // Wednesday
		{"2026-05-03", 0}, // Sunday
		{"2026-05-02", 6}, // Saturday
		{"", -1},
		{"  ", -1},
		{"not-a-date", -1},
	}
	for _, tc := range cases {
		if got := cal.DayOfWeek(tc.date); got != tc.want {
			t.Errorf("DayOfWeek(%q) = %d, want %d", tc.date, got, tc.want)
		}
	}
}

func TestCalendar_TodayIntervalIsExactly24Hours(t *testing.T) {
	// 2026-03-08 is the US spring-forward date; the wall-clock day is 23
	// hours, but the query window stays a fixed 24.
	now := time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC)
	cal, err := NewCalendar(FixedAt(now), "America/New_York")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	start, end := cal.TodayInterval()
	if start.Location() != time.UTC || end.Location() != time.UTC {
		t.Fatal("TodayInterval must return UTC instants")
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Fatalf("TodayInterval span = %s, want 24h", got)
	}
}

func TestCalendar_NextMidnightFollowsWallClock(t *testing.T) {
	cal, err := NewCalendar(FixedAt(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)), "America/New_York")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	start, err := cal.StartOfDay("2026-03-08")
	if err != nil {
		t.Fatalf("StartOfDay failed: %v", err)
	}
	next, err := cal.NextMidnight("2026-03-08")
	if err != nil {
		t.Fatalf("NextMidnight failed: %v", err)
	}
	// Spring-forward day: only 23 elapsed hours between midnights.
	if got := next.Sub(start); got != 23*time.Hour {
		t.Fatalf("spring-forward day length = %s, want 23h", got)
	}
}

func TestCalendar_AtPinsWallClockMinute(t *testing.T) {
	cal, err := NewCalendar(FixedAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), "America/New_York")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}

	got, err := cal.At("2026-01-28", 9*60+30)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	want := time.Date(2026, 1, 28, 9, 30, 0, 0, cal.Location())
	if !got.Equal(want) {
		t.Fatalf("At = %s, want %s", got, want)
	}
}
