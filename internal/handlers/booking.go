package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pawsnclaws/groomtime/internal/booking"
	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/model"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

type BookingHandler struct {
	guard     *booking.Guard
	repo      *storage.AppointmentRepository
	validator *validate.Validator
	cal       *clock.Calendar
	logger    *slog.Logger
}

func NewBookingHandler(guard *booking.Guard, repo *storage.AppointmentRepository, validator *validate.Validator, cal *clock.Calendar, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		guard:     guard,
		repo:      repo,
		validator: validator,
		cal:       cal,
		logger:    logger,
	}
}

type createBookingRequest struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	ServiceID     string `json:"service_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type updateStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type updateStatusResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type appointmentItem struct {
	AppointmentID   string `json:"appointment_id"`
	ServiceID       string `json:"service_id"`
	CustomerName    string `json:"customer_name"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	CancelledAt     string `json:"cancelled_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type listAppointmentsResponse struct {
	Appointments []appointmentItem `json:"appointments"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	created, err := h.guard.Create(r.Context(), booking.Request{
		Date:          strings.TrimSpace(req.Date),
		Time:          strings.TrimSpace(req.Time),
		ServiceID:     strings.TrimSpace(req.ServiceID),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createBookingResponse{AppointmentID: created.ID})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}

	cancelled, err := h.guard.Cancel(r.Context(), req.AppointmentID, strings.TrimSpace(req.Reason))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp := cancelBookingResponse{AppointmentID: cancelled.ID, Status: cancelled.Status}
	if cancelled.CancelledAt != nil {
		resp.CancelledAt = cancelled.CancelledAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}

	updated, err := h.guard.UpdateStatus(r.Context(), req.AppointmentID, strings.TrimSpace(req.Status))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updateStatusResponse{AppointmentID: updated.ID, Status: updated.Status})
}

// List returns appointments for ?date=YYYY-MM-DD, or for an inclusive
// ?start_date=&end_date= range capped at the validator's maximum span.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	q := r.URL.Query()

	if date := strings.TrimSpace(q.Get("date")); date != "" {
		if _, err := h.validator.ParseDate(date, "date"); err != nil {
			respondError(w, h.logger, err)
			return
		}
		appts, err := h.repo.ListByDate(ctx, date)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse(appts))
		return
	}

	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))
	start, err := h.validator.ParseDate(startDate, "start_date")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	end, err := h.validator.ParseDate(endDate, "end_date")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.validator.ValidateRange(start, end); err != nil {
		respondError(w, h.logger, err)
		return
	}

	// Half-open [start of first day, midnight after last day).
	until, err := h.cal.NextMidnight(endDate)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	appts, err := h.repo.ListBetween(ctx, start, until)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(appts))
}

func (h *BookingHandler) Today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, end := h.cal.TodayInterval()
	appts, err := h.repo.ListBetween(r.Context(), start, end)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(appts))
}

func listResponse(appts []model.Appointment) listAppointmentsResponse {
	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := appointmentItem{
			AppointmentID:   appt.ID,
			ServiceID:       appt.ServiceID,
			CustomerName:    appt.CustomerName,
			Date:            appt.SlotDate,
			StartTime:       appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:         appt.EndTime.UTC().Format(time.RFC3339),
			DurationMinutes: appt.DurationMinutes,
			Status:          appt.Status,
			CreatedAt:       appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return listAppointmentsResponse{Appointments: items}
}
