package model

import "time"

// Appointment statuses. Cancelled and no-show appointments release their
// slot; every other status keeps it occupied.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

func IsActiveStatus(status string) bool {
	return status != StatusCancelled && status != StatusNoShow
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusReady, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID              string
	ServiceID       string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	SlotDate        string // business-local calendar date, YYYY-MM-DD
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	Status          string
	CancelledAt     *time.Time
	CancelReason    string
	CreatedAt       time.Time
}
