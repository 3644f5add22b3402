package model

import "errors"

var (
	ErrNotFound = errors.New("order not found")

	// ErrAlreadyClaimed is returned to every loser of a claim race.
	ErrAlreadyClaimed = errors.New("order no longer available")

	ErrInvalidState  = errors.New("operation not allowed in current order state")
	ErrNotAuthorized = errors.New("guide is not the target of this booking")
)
