package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawsnclaws/groomtime/internal/availability"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/policy"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

type AvailabilityHandler struct {
	assembler *availability.Assembler
	validator *validate.Validator
	window    *policy.Window
	settings  *storage.SettingsRepository
	catalog   *storage.ServiceCatalog
	logger    *slog.Logger
}

func NewAvailabilityHandler(assembler *availability.Assembler, validator *validate.Validator, window *policy.Window, settings *storage.SettingsRepository, catalog *storage.ServiceCatalog, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		assembler: assembler,
		validator: validator,
		window:    window,
		settings:  settings,
		catalog:   catalog,
		logger:    logger,
	}
}

type availabilityResponse struct {
	Date      string           `json:"date"`
	ServiceID string           `json:"service_id"`
	Slots     []model.TimeSlot `json:"slots"`
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))

	if _, err := h.validator.ParseDate(date, "date"); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if serviceID == "" {
		respondError(w, h.logger, validate.Errorf("service_id", "service_id is required"))
		return
	}

	ctx := r.Context()
	durationMinutes, err := h.catalog.GetDuration(ctx, serviceID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	settings, err := h.settings.GetBookingSettings(ctx)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.window.ValidateRequestDate(date, settings); err != nil {
		respondError(w, h.logger, err)
		return
	}

	hours, err := h.settings.GetBusinessHours(ctx)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	slots, err := h.assembler.Assemble(ctx, date, durationMinutes, hours, settings)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{Date: date, ServiceID: serviceID, Slots: slots})
}
