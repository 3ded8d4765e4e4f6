package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSettingsPutRejectsBlockedDates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewAdminHandler(nil, nil, logger)

	body := `{
		"min_advance_hours": 2,
		"max_advance_days": 90,
		"cancellation_cutoff_hours": 24,
		"buffer_minutes": 15,
		"blocked_dates": [{"date": "2026-07-04", "reason": "holiday"}]
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Settings(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if got := rec.Body.String(); !strings.Contains(got, "blocked-dates") {
		t.Fatalf("body = %q, want a pointer at the blocked-dates operations", got)
	}
}
