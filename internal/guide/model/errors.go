package model

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("guide not found")

// PriceOutOfRangeError carries the current bounds so the guide app can show
// them next to the rejected price.
type PriceOutOfRangeError struct {
	Floor   float64
	Ceiling float64
}

func (e *PriceOutOfRangeError) Error() string {
	return fmt.Sprintf("price out of range: allowed %.0f-%.0f per hour", e.Floor, e.Ceiling)
}
