package model

import (
	"time"

	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"
)

type EntryType string

const (
	EntryIncome   EntryType = "INCOME"
	EntryLocked   EntryType = "LOCKED"
	EntryUnlocked EntryType = "UNLOCKED"
	EntryWithdraw EntryType = "WITHDRAW"
	EntryDeducted EntryType = "DEDUCTED"
)

type EntryStatus string

const (
	StatusActive   EntryStatus = "ACTIVE"
	StatusResolved EntryStatus = "RESOLVED"
)

// LedgerEntry is append-only. The only mutations ever applied are the
// unlock flip (LOCKED -> UNLOCKED, resolved) and the oldest-first
// consumption of LOCKED amounts by a deduction.
type LedgerEntry struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	GuideID   uuid.UUID   `json:"guide_id" db:"guide_id"`
	OrderID   *uuid.UUID  `json:"order_id,omitempty" db:"order_id"`
	Type      EntryType   `json:"entry_type" db:"entry_type"`
	Amount    float64     `json:"amount" db:"amount"`
	Status    EntryStatus `json:"status" db:"status"`
	UnlockAt  *time.Time  `json:"unlock_at,omitempty" db:"unlock_at"`
	Reason    string      `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// Balances is the wallet screen summary for one guide.
type Balances struct {
	Available float64 `json:"available"`
	Locked    float64 `json:"locked"`
}
