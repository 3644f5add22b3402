package service

import "github.com/LP1295055597/Lvban-sub000/internal/guide/model"

// PriceFloor is the same for every guide regardless of tier.
const PriceFloor = 30.0

// unverifiedPriceCap applies to every unverified guide, even a gold one.
const unverifiedPriceCap = 80.0

// PriceCeiling returns the hourly price ceiling for a guide. Verification
// unlocks the tier ceiling; without it the flat cap wins.
func PriceCeiling(level model.Level, verified bool) float64 {
	if !verified {
		return unverifiedPriceCap
	}
	return tierFor(level).priceMax
}

// ValidatePrice checks a requested hourly price against the guide's bounds.
func ValidatePrice(price float64, level model.Level, verified bool) error {
	ceiling := PriceCeiling(level, verified)
	if price < PriceFloor || price > ceiling {
		return &model.PriceOutOfRangeError{Floor: PriceFloor, Ceiling: ceiling}
	}
	return nil
}
