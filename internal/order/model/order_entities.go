package model

import (
	"encoding/json"
	"time"

	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	Origin        OrderOrigin     `json:"origin" db:"origin"`
	State         OrderState      `json:"state" db:"state"`
	RequesterID   uuid.UUID       `json:"requester_id" db:"requester_id"`
	TargetGuideID *uuid.UUID      `json:"target_guide_id,omitempty" db:"target_guide_id"`
	ScheduleDate  time.Time       `json:"schedule_date" db:"schedule_date"`
	TimeSlot      string          `json:"time_slot" db:"time_slot"`
	Hours         float64         `json:"hours" db:"hours"`
	ServiceEnd    time.Time       `json:"service_end" db:"service_end"`
	PartySize     int             `json:"party_size" db:"party_size"`
	Filters       json.RawMessage `json:"filters,omitempty" db:"filters"`
	HourlyPrice   float64         `json:"hourly_price" db:"hourly_price"`
	ClaimedBy     *uuid.UUID      `json:"claimed_by,omitempty" db:"claimed_by"`
	ClaimedAt     *time.Time      `json:"claimed_at,omitempty" db:"claimed_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// GrossAmount is the agreed order price, snapshotted at creation so a later
// price change by the guide never touches an in-flight order.
func (o *Order) GrossAmount() float64 {
	return o.HourlyPrice * o.Hours
}
