package model

import "errors"

var (
	// ErrInsufficientFunds rejects a withdrawal beyond the available balance.
	ErrInsufficientFunds = errors.New("insufficient available balance")

	// ErrInsufficientLockedFunds rejects a deduction beyond the locked balance.
	ErrInsufficientLockedFunds = errors.New("insufficient locked balance")
)
