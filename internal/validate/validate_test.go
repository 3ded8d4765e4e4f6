package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/pawsnclaws/groomtime/internal/clock"
)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cal, err := clock.NewCalendar(clock.FixedAt(now), "UTC")
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return NewValidator(cal)
}

func TestParseDate(t *testing.T) {
	v := testValidator(t)

	cases := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"valid", "2026-05-02", ""},
		{"empty", "", "date is required"},
		{"whitespace", "   ", "date is required"},
		{"wrong layout", "05/02/2026", "Invalid date format"},
		{"non canonical", "2026-5-2", "Invalid date format"},
		{"garbage", "not-a-date", "Invalid date format"},
		{"below year floor", "2019-12-31", "date must be between 2020 and 2027"},
		{"above year ceiling", "2028-01-01", "date must be between 2020 and 2027"},
		{"far future placeholder", "9999-12-31", "date must be between 2020 and 2027"},
		{"ceiling year ok", "2027-12-31", ""},
		{"floor year ok", "2020-01-01", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ParseDate(tc.raw, "date")
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("ParseDate(%q) failed: %v", tc.raw, err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseDate(%q) returned %T, want ValidationError", tc.raw, err)
			}
			if verr.Message != tc.wantErr {
				t.Fatalf("ParseDate(%q) message = %q, want %q", tc.raw, verr.Message, tc.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	v := testValidator(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := v.ValidateRange(start, start); err != nil {
		t.Fatalf("equal start and end should be valid: %v", err)
	}
	if err := v.ValidateRange(start, start.AddDate(0, 0, 730)); err != nil {
		t.Fatalf("exactly 730 days should be valid: %v", err)
	}

	err := v.ValidateRange(start, start.AddDate(0, 0, 731))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "Date range cannot exceed 730 days" {
		t.Fatalf("expected range-too-long error, got %v", err)
	}

	err = v.ValidateRange(start.AddDate(0, 0, 1), start)
	if !errors.As(err, &verr) || verr.Message != "Start date must be before or equal to end date" {
		t.Fatalf("expected inverted-range error, got %v", err)
	}
}
