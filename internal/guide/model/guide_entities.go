package model

import (
	"time"

	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type Guide struct {
	ID              uuid.UUID `json:"id" db:"id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	Name            string    `json:"name" db:"name"`
	CompletedOrders int       `json:"completed_orders" db:"completed_orders"`
	GoodReviews     int       `json:"good_reviews" db:"good_reviews"`
	HasPhotography  bool      `json:"has_photography" db:"has_photography"`
	HasVehicle      bool      `json:"has_vehicle" db:"has_vehicle"`
	Verified        bool      `json:"verified" db:"verified"`
	HourlyPrice     float64   `json:"hourly_price" db:"hourly_price"`
}

// Profile is the guide record plus everything derived from it. Derived
// values are recomputed on read, never stored.
type Profile struct {
	Guide             Guide   `json:"guide"`
	Points            int     `json:"points"`
	Level             Level   `json:"level"`
	LevelProgress     float64 `json:"level_progress"`
	PointsToNextLevel *int    `json:"points_to_next_level,omitempty"`
	CommissionRate    float64 `json:"commission_rate"`
	PriceFloor        float64 `json:"price_floor"`
	PriceCeiling      float64 `json:"price_ceiling"`
}
