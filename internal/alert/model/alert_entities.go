package model

import (
	"errors"
	"time"

	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type AlertStatus string

const (
	AlertPending   AlertStatus = "PENDING"
	AlertContacted AlertStatus = "CONTACTED"
	AlertResolved  AlertStatus = "RESOLVED"
)

// Alert is keyed by order: one escalation record per overdue order,
// accumulating reminders and penalties across sweeps.
type Alert struct {
	OrderID       uuid.UUID   `json:"order_id" db:"order_id"`
	GuideID       uuid.UUID   `json:"guide_id" db:"guide_id"`
	ReminderCount int         `json:"reminder_count" db:"reminder_count"`
	TotalPenalty  float64     `json:"total_penalty" db:"total_penalty"`
	Status        AlertStatus `json:"status" db:"status"`
	Notes         string      `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

var (
	ErrNotFound = errors.New("alert not found")

	// ErrInvalidTransition guards the forward-only status flow
	// PENDING -> CONTACTED -> RESOLVED.
	ErrInvalidTransition = errors.New("alert status may only move forward")
)

// CanTransition reports whether from -> to is a legal forward move.
func CanTransition(from, to AlertStatus) bool {
	switch from {
	case AlertPending:
		return to == AlertContacted || to == AlertResolved
	case AlertContacted:
		return to == AlertResolved
	default:
		return false
	}
}
