package dto

import (
	"encoding/json"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/order/model"
	"github.com/LP1295055597/Lvban-sub000/internal/order/service"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type CreateOrderRequest struct {
	Origin        string          `json:"origin"`
	RequesterID   string          `json:"requester_id"`
	TargetGuideID string          `json:"target_guide_id,omitempty"`
	ScheduleDate  string          `json:"schedule_date"`
	TimeSlot      string          `json:"time_slot"`
	PartySize     int             `json:"party_size"`
	Filters       json.RawMessage `json:"filters,omitempty"`
}

func (r CreateOrderRequest) ToService() service.CreateOrderRequest {
	req := service.CreateOrderRequest{
		Origin:       model.OrderOrigin(r.Origin),
		RequesterID:  uuid.UUID(r.RequesterID),
		ScheduleDate: r.ScheduleDate,
		TimeSlot:     r.TimeSlot,
		PartySize:    r.PartySize,
		Filters:      r.Filters,
	}
	if r.TargetGuideID != "" {
		target := uuid.UUID(r.TargetGuideID)
		req.TargetGuideID = &target
	}
	return req
}

type ClaimRequest struct {
	GuideID string `json:"guide_id"`
}

type RespondRequest struct {
	GuideID  string `json:"guide_id"`
	Decision string `json:"decision"`
}

type OrderResponse struct {
	OrderID      string     `json:"order_id"`
	Origin       string     `json:"origin"`
	State        string     `json:"state"`
	RequesterID  string     `json:"requester_id"`
	ScheduleDate string     `json:"schedule_date"`
	TimeSlot     string     `json:"time_slot"`
	Hours        float64    `json:"hours"`
	PartySize    int        `json:"party_size"`
	HourlyPrice  float64    `json:"hourly_price"`
	GrossAmount  float64    `json:"gross_amount"`
	ClaimedBy    string     `json:"claimed_by,omitempty"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func FromOrder(o *model.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:      o.ID.String(),
		Origin:       string(o.Origin),
		State:        string(o.State),
		RequesterID:  o.RequesterID.String(),
		ScheduleDate: o.ScheduleDate.Format("2006-01-02"),
		TimeSlot:     o.TimeSlot,
		Hours:        o.Hours,
		PartySize:    o.PartySize,
		HourlyPrice:  o.HourlyPrice,
		GrossAmount:  o.GrossAmount(),
		ClaimedAt:    o.ClaimedAt,
		CreatedAt:    o.CreatedAt,
	}
	if o.ClaimedBy != nil {
		resp.ClaimedBy = o.ClaimedBy.String()
	}
	return resp
}
