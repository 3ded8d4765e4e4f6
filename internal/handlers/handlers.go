// Package handlers exposes the scheduling engine over HTTP JSON. Handlers
// own wire parsing and status-code mapping; all scheduling semantics live in
// the packages below them.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pawsnclaws/groomtime/internal/booking"
	"github.com/pawsnclaws/groomtime/internal/policy"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps domain errors onto status codes. Validation and policy
// messages are user-facing and pass through verbatim; anything unexpected is
// logged and hidden behind a 500.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Message, http.StatusUnprocessableEntity)
		return
	}
	var violation *policy.Violation
	if errors.As(err, &violation) {
		http.Error(w, violation.Message, http.StatusUnprocessableEntity)
		return
	}
	var conflict *booking.SlotConflictError
	if errors.As(err, &conflict) {
		http.Error(w, "time slot is no longer available", http.StatusConflict)
		return
	}
	if errors.Is(err, booking.ErrNotCancellable) {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}
	if storage.IsNotFound(err) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	logger.Error("request failed", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
