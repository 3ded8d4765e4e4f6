package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

// AdminHandler owns the settings lifecycle: booking policy, weekly hours,
// blocked dates, and the service catalog. Configuration is validated here
// and again at the storage boundary.
type AdminHandler struct {
	settings *storage.SettingsRepository
	catalog  *storage.ServiceCatalog
	logger   *slog.Logger
}

func NewAdminHandler(settings *storage.SettingsRepository, catalog *storage.ServiceCatalog, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{settings: settings, catalog: catalog, logger: logger}
}

func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.settings.GetBookingSettings(r.Context())
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var settings model.BookingSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if len(settings.BlockedDates) > 0 {
			http.Error(w, "blocked_dates are managed via the blocked-dates endpoints", http.StatusUnprocessableEntity)
			return
		}
		if err := model.ValidateBookingSettings(settings); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := h.settings.UpdateBookingSettings(r.Context(), settings); err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) BusinessHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	hours, err := h.settings.GetBusinessHours(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// BusinessHoursByWeekday replaces one weekday's hours:
// PUT /api/v1/admin/business-hours/{weekday}.
func (h *AdminHandler) BusinessHoursByWeekday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/business-hours/")
	weekday, err := strconv.Atoi(raw)
	if err != nil || weekday < 0 || weekday > 6 {
		http.Error(w, "weekday must be 0..6", http.StatusBadRequest)
		return
	}

	var day model.DayHours
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := model.ValidateBusinessHours(model.BusinessHours{weekday: day}); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := h.settings.UpsertBusinessHours(r.Context(), weekday, day); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weekday": weekday, "hours": day})
}

func (h *AdminHandler) BlockedDates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		blocked, err := h.settings.ListBlockedDates(r.Context())
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		if blocked == nil {
			blocked = []model.BlockedDate{}
		}
		writeJSON(w, http.StatusOK, blocked)
	case http.MethodPost:
		var b model.BlockedDate
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if err := model.ValidateBlockedDate(b); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		created, err := h.settings.AddBlockedDate(r.Context(), b)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// BlockedDateByID removes a closure:
// DELETE /api/v1/admin/blocked-dates/{id}.
func (h *AdminHandler) BlockedDateByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/blocked-dates/")
	if id == "" {
		http.Error(w, "blocked date id is required", http.StatusBadRequest)
		return
	}

	if err := h.settings.DeleteBlockedDate(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createServiceRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *AdminHandler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		services, err := h.catalog.List(r.Context())
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		if services == nil {
			services = []model.Service{}
		}
		writeJSON(w, http.StatusOK, services)
	case http.MethodPost:
		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			respondError(w, h.logger, validate.Errorf("name", "name is required"))
			return
		}
		if req.DurationMinutes < 5 || req.DurationMinutes > 480 || req.DurationMinutes%5 != 0 {
			respondError(w, h.logger, validate.Errorf("duration_minutes", "duration_minutes must be 5..480 and divisible by 5"))
			return
		}
		created, err := h.catalog.Create(r.Context(), req.Name, req.DurationMinutes)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
