package service

import (
	"context"
	"fmt"
	"time"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	"github.com/LP1295055597/Lvban-sub000/internal/wallet/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type LedgerRepository interface {
	PostSettlement(ctx context.Context, income, locked model.LedgerEntry) (bool, error)
	AvailableBalance(ctx context.Context, guideID uuid.UUID, now time.Time) (float64, error)
	LockedBalance(ctx context.Context, guideID uuid.UUID, now time.Time) (float64, error)
	ListEntries(ctx context.Context, guideID uuid.UUID) ([]model.LedgerEntry, error)
	UnlockDue(ctx context.Context, now time.Time) ([]model.LedgerEntry, error)
	Deduct(ctx context.Context, deduction model.LedgerEntry, now time.Time) error
	Withdraw(ctx context.Context, withdrawal model.LedgerEntry, now time.Time) error
}

type EventPublisher interface {
	FundsUnlocked(ctx context.Context, ev notify.FundsUnlockedEvent) error
}

type WalletService struct {
	repo       LedgerRepository
	events     EventPublisher
	log        *logrus.Entry
	lockPeriod time.Duration

	// now is swappable so time-driven behavior is testable.
	now func() time.Time
}

func NewWalletService(repo LedgerRepository, events EventPublisher, lockPeriod time.Duration, log *logrus.Entry) *WalletService {
	return &WalletService{
		repo:       repo,
		events:     events,
		log:        log,
		lockPeriod: lockPeriod,
		now:        time.Now,
	}
}

// PostOrderSettlement records the guide's earnings for a completed order: one
// INCOME entry and one LOCKED hold of the same net amount, releasing after
// the lock period. Posting is idempotent per order, so completion retries
// cannot double-pay.
func (s *WalletService) PostOrderSettlement(ctx context.Context, orderID, guideID uuid.UUID, gross, commissionRate float64) (float64, error) {
	if gross <= 0 {
		return 0, commonmodel.Invalid("gross_amount", "must be positive")
	}
	if commissionRate < 0 || commissionRate >= 1 {
		return 0, commonmodel.Invalid("commission_rate", "must be in [0,1)")
	}

	now := s.now().UTC()
	net := gross - gross*commissionRate
	unlockAt := now.Add(s.lockPeriod)

	income := model.LedgerEntry{
		ID:        uuid.New(),
		GuideID:   guideID,
		OrderID:   &orderID,
		Type:      model.EntryIncome,
		Amount:    net,
		Status:    model.StatusActive,
		Reason:    "order settlement",
		CreatedAt: now,
	}
	locked := model.LedgerEntry{
		ID:        uuid.New(),
		GuideID:   guideID,
		OrderID:   &orderID,
		Type:      model.EntryLocked,
		Amount:    net,
		Status:    model.StatusActive,
		UnlockAt:  &unlockAt,
		Reason:    "order settlement hold",
		CreatedAt: now,
	}

	posted, err := s.repo.PostSettlement(ctx, income, locked)
	if err != nil {
		return 0, fmt.Errorf("failed to post settlement: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"action":   "post_settlement",
		"order_id": orderID,
		"guide_id": guideID,
		"gross":    gross,
		"net":      net,
		"posted":   posted,
	}).Info("order settlement processed")
	return net, nil
}

func (s *WalletService) Balances(ctx context.Context, guideID uuid.UUID) (model.Balances, error) {
	now := s.now().UTC()
	available, err := s.repo.AvailableBalance(ctx, guideID, now)
	if err != nil {
		return model.Balances{}, err
	}
	locked, err := s.repo.LockedBalance(ctx, guideID, now)
	if err != nil {
		return model.Balances{}, err
	}
	return model.Balances{Available: available, Locked: locked}, nil
}

func (s *WalletService) Statement(ctx context.Context, guideID uuid.UUID) ([]model.LedgerEntry, error) {
	return s.repo.ListEntries(ctx, guideID)
}

// UnlockSweep resolves every lock whose hold period has passed. Safe to run
// on any schedule: a failed run leaves entries untouched for the next tick,
// and a rerun finds nothing left to flip.
func (s *WalletService) UnlockSweep(ctx context.Context) (int, error) {
	flipped, err := s.repo.UnlockDue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("unlock sweep failed: %w", err)
	}

	for _, e := range flipped {
		if err := s.events.FundsUnlocked(ctx, notify.FundsUnlockedEvent{
			EntryID: e.ID.String(),
			GuideID: e.GuideID.String(),
			Amount:  e.Amount,
		}); err != nil {
			s.log.WithError(err).WithField("entry_id", e.ID).Warn("funds unlocked event not delivered")
		}
	}

	if len(flipped) > 0 {
		s.log.WithFields(logrus.Fields{
			"action":  "unlock_sweep",
			"flipped": len(flipped),
		}).Info("locked entries released")
	}
	return len(flipped), nil
}

// Deduct applies a penalty against the guide's locked balance. It never
// drives the locked balance negative: the repository rejects the whole
// deduction if the locked funds cannot cover it.
func (s *WalletService) Deduct(ctx context.Context, guideID uuid.UUID, amount float64, reason string) error {
	if amount <= 0 {
		return commonmodel.Invalid("amount", "must be positive")
	}
	if reason == "" {
		return commonmodel.Invalid("reason", "is required")
	}

	deduction := model.LedgerEntry{
		ID:        uuid.New(),
		GuideID:   guideID,
		Type:      model.EntryDeducted,
		Amount:    -amount,
		Status:    model.StatusResolved,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Deduct(ctx, deduction, s.now().UTC()); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"action":   "deduct",
		"guide_id": guideID,
		"amount":   amount,
		"reason":   reason,
	}).Info("penalty deducted from locked funds")
	return nil
}

// Withdraw posts the withdrawal entry; the actual payout is handled by the
// external settlement system and takes 1-3 business days.
func (s *WalletService) Withdraw(ctx context.Context, guideID uuid.UUID, amount float64) error {
	if amount < 1 {
		return commonmodel.Invalid("amount", "must be at least 1")
	}

	withdrawal := model.LedgerEntry{
		ID:        uuid.New(),
		GuideID:   guideID,
		Type:      model.EntryWithdraw,
		Amount:    -amount,
		Status:    model.StatusResolved,
		Reason:    "payout request",
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Withdraw(ctx, withdrawal, s.now().UTC()); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"action":   "withdraw",
		"guide_id": guideID,
		"amount":   amount,
	}).Info("withdrawal requested")
	return nil
}

// LockedBalance is used by the alert escalation sweep to size penalties.
func (s *WalletService) LockedBalance(ctx context.Context, guideID uuid.UUID) (float64, error) {
	return s.repo.LockedBalance(ctx, guideID, s.now().UTC())
}

// SetClock overrides the service clock in tests.
func (s *WalletService) SetClock(now func() time.Time) {
	s.now = now
}
