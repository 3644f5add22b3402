package service

import (
	"encoding/json"
	"strings"
	"time"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/order/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type CreateOrderRequest struct {
	Origin        model.OrderOrigin
	RequesterID   uuid.UUID
	TargetGuideID *uuid.UUID
	ScheduleDate  string // "2006-01-02"
	TimeSlot      string // "15:00-19:00"
	PartySize     int
	Filters       json.RawMessage
}

func (req CreateOrderRequest) toOrder(now time.Time) (*model.Order, error) {
	if req.RequesterID == "" {
		return nil, commonmodel.Invalid("requester_id", "is required")
	}
	if req.PartySize < 1 {
		return nil, commonmodel.Invalid("party_size", "must be at least 1")
	}

	var state model.OrderState
	switch req.Origin {
	case model.OriginGrab:
		if req.TargetGuideID != nil {
			return nil, commonmodel.Invalid("target_guide_id", "must be empty for grab orders")
		}
		state = model.OrderOpen
	case model.OriginBooking:
		if req.TargetGuideID == nil {
			return nil, commonmodel.Invalid("target_guide_id", "is required for bookings")
		}
		state = model.OrderBookingPending
	default:
		return nil, commonmodel.Invalid("origin", "must be GRAB or BOOKING")
	}

	date, err := time.Parse("2006-01-02", req.ScheduleDate)
	if err != nil {
		return nil, commonmodel.Invalid("schedule_date", "must be YYYY-MM-DD")
	}

	start, end, err := parseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	serviceEnd := date.Add(end)
	if serviceEnd.Before(now) {
		return nil, commonmodel.Invalid("schedule_date", "service window is in the past")
	}

	return &model.Order{
		ID:            uuid.New(),
		Origin:        req.Origin,
		State:         state,
		RequesterID:   req.RequesterID,
		TargetGuideID: req.TargetGuideID,
		ScheduleDate:  date,
		TimeSlot:      req.TimeSlot,
		Hours:         (end - start).Hours(),
		ServiceEnd:    serviceEnd,
		PartySize:     req.PartySize,
		Filters:       req.Filters,
	}, nil
}

// parseTimeSlot reads a "HH:MM-HH:MM" slot into offsets from midnight. Each
// half must be a full clock time; partial matches and trailing text are
// rejected so the stored slot stays canonical.
func parseTimeSlot(slot string) (start, end time.Duration, err error) {
	from, to, found := strings.Cut(slot, "-")
	if !found {
		return 0, 0, commonmodel.Invalid("time_slot", "must be HH:MM-HH:MM")
	}

	startClock, err := time.Parse("15:04", from)
	if err != nil {
		return 0, 0, commonmodel.Invalid("time_slot", "must be HH:MM-HH:MM")
	}
	endClock, err := time.Parse("15:04", to)
	if err != nil {
		return 0, 0, commonmodel.Invalid("time_slot", "must be HH:MM-HH:MM")
	}

	start = time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute
	end = time.Duration(endClock.Hour())*time.Hour + time.Duration(endClock.Minute())*time.Minute
	if end <= start {
		return 0, 0, commonmodel.Invalid("time_slot", "end must be after start")
	}
	return start, end, nil
}
