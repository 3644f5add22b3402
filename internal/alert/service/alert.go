package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/alert/model"
	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	ordermodel "github.com/LP1295055597/Lvban-sub000/internal/order/model"
	walletmodel "github.com/LP1295055597/Lvban-sub000/internal/wallet/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type AlertRepository interface {
	UpsertReminder(ctx context.Context, orderID, guideID uuid.UUID, penalty float64, now time.Time) (*model.Alert, error)
	GetAlert(ctx context.Context, orderID uuid.UUID) (*model.Alert, error)
	ListAlerts(ctx context.Context, status *model.AlertStatus) ([]model.Alert, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.AlertStatus, notes string, now time.Time) (bool, error)
}

type OverdueSource interface {
	ListOverdue(ctx context.Context, now time.Time) ([]ordermodel.Order, error)
}

type Penalizer interface {
	LockedBalance(ctx context.Context, guideID uuid.UUID) (float64, error)
	Deduct(ctx context.Context, guideID uuid.UUID, amount float64, reason string) error
}

type EventPublisher interface {
	AlertRaised(ctx context.Context, ev notify.AlertRaisedEvent) error
}

type Broadcaster interface {
	Broadcast(message []byte)
}

type AlertService struct {
	repo    AlertRepository
	orders  OverdueSource
	wallet  Penalizer
	events  EventPublisher
	feed    Broadcaster
	penalty float64
	log     *logrus.Entry

	now func() time.Time
}

func NewAlertService(repo AlertRepository, orders OverdueSource, wallet Penalizer, events EventPublisher, feed Broadcaster, penalty float64, log *logrus.Entry) *AlertService {
	return &AlertService{
		repo:    repo,
		orders:  orders,
		wallet:  wallet,
		events:  events,
		feed:    feed,
		penalty: penalty,
		log:     log,
		now:     time.Now,
	}
}

// OverdueSweep escalates every confirmed order whose service window ended
// without a completion check-in: one reminder and one penalty per sweep
// occurrence. The penalty is capped by the guide's locked balance; a guide
// with nothing locked still gets the alert, just no deduction.
func (s *AlertService) OverdueSweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	overdue, err := s.orders.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("overdue sweep failed: %w", err)
	}

	raised := 0
	for _, o := range overdue {
		if o.ClaimedBy == nil {
			continue
		}
		guideID := *o.ClaimedBy

		penalty, err := s.applyPenalty(ctx, o.ID, guideID)
		if err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Error("failed to apply overdue penalty")
			continue
		}

		alert, err := s.repo.UpsertReminder(ctx, o.ID, guideID, penalty, now)
		if err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Error("failed to upsert alert")
			continue
		}
		raised++

		ev := notify.AlertRaisedEvent{
			OrderID:       alert.OrderID.String(),
			GuideID:       alert.GuideID.String(),
			ReminderCount: alert.ReminderCount,
			TotalPenalty:  alert.TotalPenalty,
		}
		if err := s.events.AlertRaised(ctx, ev); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("alert raised event not delivered")
		}
		if payload, err := json.Marshal(alert); err == nil {
			s.feed.Broadcast(payload)
		}

		s.log.WithFields(logrus.Fields{
			"action":         "overdue_alert",
			"order_id":       o.ID,
			"guide_id":       guideID,
			"reminder_count": alert.ReminderCount,
			"penalty":        penalty,
		}).Warn("overdue order escalated")
	}
	return raised, nil
}

func (s *AlertService) applyPenalty(ctx context.Context, orderID, guideID uuid.UUID) (float64, error) {
	locked, err := s.wallet.LockedBalance(ctx, guideID)
	if err != nil {
		return 0, err
	}

	penalty := s.penalty
	if locked < penalty {
		penalty = locked
	}
	if penalty <= 0 {
		return 0, nil
	}

	reason := fmt.Sprintf("overdue service penalty for order %s", orderID)
	if err := s.wallet.Deduct(ctx, guideID, penalty, reason); err != nil {
		// Lost a race against the unlock sweep; the alert still goes out.
		if errors.Is(err, walletmodel.ErrInsufficientLockedFunds) {
			return 0, nil
		}
		return 0, err
	}
	return penalty, nil
}

func (s *AlertService) ListAlerts(ctx context.Context, statusFilter string) ([]model.Alert, error) {
	if statusFilter == "" {
		return s.repo.ListAlerts(ctx, nil)
	}

	status := model.AlertStatus(statusFilter)
	switch status {
	case model.AlertPending, model.AlertContacted, model.AlertResolved:
	default:
		return nil, commonmodel.Invalid("status", "must be PENDING, CONTACTED or RESOLVED")
	}
	return s.repo.ListAlerts(ctx, &status)
}

// UpdateStatus applies a staff transition. Status only ever moves forward;
// resolving requires notes, contacting may carry them.
func (s *AlertService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to model.AlertStatus, notes string) (*model.Alert, error) {
	switch to {
	case model.AlertContacted, model.AlertResolved:
	default:
		return nil, commonmodel.Invalid("status", "must be CONTACTED or RESOLVED")
	}
	if to == model.AlertResolved && notes == "" {
		return nil, commonmodel.Invalid("notes", "are required to resolve an alert")
	}

	alert, err := s.repo.GetAlert(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(alert.Status, to) {
		return nil, model.ErrInvalidTransition
	}

	ok, err := s.repo.UpdateStatus(ctx, orderID, alert.Status, to, notes, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else moved the alert first; re-read would show the new state.
		return nil, model.ErrInvalidTransition
	}

	s.log.WithFields(logrus.Fields{
		"action":   "update_alert_status",
		"order_id": orderID,
		"status":   to,
	}).Info("alert status updated")
	return s.repo.GetAlert(ctx, orderID)
}

// SetClock overrides the service clock in tests.
func (s *AlertService) SetClock(now func() time.Time) {
	s.now = now
}
