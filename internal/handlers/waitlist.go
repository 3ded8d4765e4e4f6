package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
)

type WaitlistHandler struct {
	repo      *storage.WaitlistRepository
	validator *validate.Validator
	logger    *slog.Logger
}

func NewWaitlistHandler(repo *storage.WaitlistRepository, validator *validate.Validator, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{repo: repo, validator: validator, logger: logger}
}

type joinWaitlistRequest struct {
	Date          string `json:"date"`
	ServiceID     string `json:"service_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type joinWaitlistResponse struct {
	WaitlistID string `json:"waitlist_id"`
	Date       string `json:"date"`
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.Date = strings.TrimSpace(req.Date)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if _, err := h.validator.ParseDate(req.Date, "date"); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.CustomerName == "" {
		respondError(w, h.logger, validate.Errorf("customer_name", "customer_name is required"))
		return
	}

	payload, _ := json.Marshal(map[string]any{
		"date":           req.Date,
		"service_id":     req.ServiceID,
		"customer_name":  req.CustomerName,
		"customer_email": req.CustomerEmail,
		"customer_phone": req.CustomerPhone,
	})
	events := []outbox.Event{{
		AggregateType: "waitlist_entry",
		EventType:     outbox.EventWaitlistJoined,
		Payload:       payload,
	}}

	entry, err := h.repo.Join(r.Context(), storage.WaitlistEntry{
		RequestedDate: req.Date,
		ServiceID:     strings.TrimSpace(req.ServiceID),
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	}, events)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, joinWaitlistResponse{WaitlistID: entry.ID, Date: entry.RequestedDate})
}
