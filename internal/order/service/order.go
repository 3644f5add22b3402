package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	guidemodel "github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	"github.com/LP1295055597/Lvban-sub000/internal/order/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type OrderRepository interface {
	InsertOrder(ctx context.Context, o model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListOpen(ctx context.Context) ([]model.Order, error)
	ClaimOrder(ctx context.Context, orderID, guideID uuid.UUID, hourlyPrice float64, now time.Time) (bool, error)
	ConfirmClaim(ctx context.Context, orderID, guideID uuid.UUID, now time.Time) (bool, error)
	ResolveBooking(ctx context.Context, orderID uuid.UUID, accept bool, now time.Time) (bool, error)
	CompleteOrder(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error)
	ExpireClaims(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error)
	ExpireStaleOpen(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type GuideDirectory interface {
	Profile(ctx context.Context, guideID uuid.UUID) (*guidemodel.Profile, error)
	RecordCompletedOrder(ctx context.Context, guideID uuid.UUID) error
}

type Settlement interface {
	PostOrderSettlement(ctx context.Context, orderID, guideID uuid.UUID, gross, commissionRate float64) (float64, error)
}

type EventPublisher interface {
	OrderClaimed(ctx context.Context, ev notify.OrderClaimedEvent) error
	BookingAccepted(ctx context.Context, ev notify.BookingAcceptedEvent) error
}

type OrderService struct {
	repo        OrderRepository
	guides      GuideDirectory
	settlement  Settlement
	events      EventPublisher
	claimWindow time.Duration
	log         *logrus.Entry

	now func() time.Time
}

func NewOrderService(repo OrderRepository, guides GuideDirectory, settlement Settlement, events EventPublisher, claimWindow time.Duration, log *logrus.Entry) *OrderService {
	return &OrderService{
		repo:        repo,
		guides:      guides,
		settlement:  settlement,
		events:      events,
		claimWindow: claimWindow,
		log:         log,
		now:         time.Now,
	}
}

// Create validates and stores a new order. Grab orders enter the open pool;
// bookings go straight to the target guide's pending list with the guide's
// current price locked in.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	o, err := req.toOrder(s.now().UTC())
	if err != nil {
		return nil, err
	}

	if o.Origin == model.OriginBooking {
		profile, err := s.guides.Profile(ctx, *o.TargetGuideID)
		if err != nil {
			return nil, err
		}
		o.HourlyPrice = profile.Guide.HourlyPrice
	}

	created, err := s.repo.InsertOrder(ctx, *o)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"action":   "create_order",
		"order_id": created.ID,
		"origin":   created.Origin,
		"state":    created.State,
	}).Info("order created")
	return created, nil
}

// Claim arbitrates a guide grab. Under concurrent claims on one order
// exactly one caller wins; every loser gets ErrAlreadyClaimed and leaves no
// trace on the order.
func (s *OrderService) Claim(ctx context.Context, orderID, guideID uuid.UUID) (*model.Order, error) {
	profile, err := s.guides.Profile(ctx, guideID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	won, err := s.repo.ClaimOrder(ctx, orderID, guideID, profile.Guide.HourlyPrice, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Distinguish a missing order from a lost race.
		if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{
			"action":   "claim",
			"order_id": orderID,
			"guide_id": guideID,
		}).Info("claim lost arbitration")
		return nil, model.ErrAlreadyClaimed
	}

	if err := s.events.OrderClaimed(ctx, notify.OrderClaimedEvent{
		OrderID:   orderID.String(),
		GuideID:   guideID.String(),
		ClaimedAt: now,
	}); err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Warn("order claimed event not delivered")
	}

	s.log.WithFields(logrus.Fields{
		"action":   "claim",
		"order_id": orderID,
		"guide_id": guideID,
	}).Info("claim won")
	return s.repo.GetOrder(ctx, orderID)
}

// RespondToBooking lets only the targeted guide accept or reject a pending
// booking. A rejected booking is terminal; it does not return to the pool.
func (s *OrderService) RespondToBooking(ctx context.Context, orderID, guideID uuid.UUID, decision model.BookingDecision) (*model.Order, error) {
	if decision != model.DecisionAccept && decision != model.DecisionReject {
		return nil, fmt.Errorf("unknown booking decision %q", decision)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.State != model.OrderBookingPending {
		return nil, model.ErrInvalidState
	}
	if o.TargetGuideID == nil || *o.TargetGuideID != guideID {
		return nil, model.ErrNotAuthorized
	}

	accept := decision == model.DecisionAccept
	ok, err := s.repo.ResolveBooking(ctx, orderID, accept, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// State moved between the read and the swap.
		return nil, model.ErrInvalidState
	}

	if accept {
		if err := s.events.BookingAccepted(ctx, notify.BookingAcceptedEvent{
			OrderID:   orderID.String(),
			GuideID:   guideID.String(),
			TouristID: o.RequesterID.String(),
		}); err != nil {
			s.log.WithError(err).WithField("order_id", orderID).Warn("booking accepted event not delivered")
		}
	}

	s.log.WithFields(logrus.Fields{
		"action":   "respond_to_booking",
		"order_id": orderID,
		"guide_id": guideID,
		"decision": decision,
	}).Info("booking resolved")
	return s.repo.GetOrder(ctx, orderID)
}

// ConfirmClaim finalizes a grab before the claim window runs out.
func (s *OrderService) ConfirmClaim(ctx context.Context, orderID, guideID uuid.UUID) (*model.Order, error) {
	ok, err := s.repo.ConfirmClaim(ctx, orderID, guideID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		o, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if o.State == model.OrderClaimed && (o.ClaimedBy == nil || *o.ClaimedBy != guideID) {
			return nil, model.ErrNotAuthorized
		}
		return nil, model.ErrInvalidState
	}
	return s.repo.GetOrder(ctx, orderID)
}

// Complete marks the service done and settles the guide's earnings. The
// settlement posting is idempotent per order, so re-running Complete on an
// already completed order only retries the settlement.
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	done, err := s.repo.CompleteOrder(ctx, orderID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	// The claimer must come from the post-swap row: a snapshot taken before
	// the swap can predate a racing claim and carry no claimed_by at all.
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !done && o.State != model.OrderCompleted {
		return nil, model.ErrInvalidState
	}
	if o.ClaimedBy == nil {
		return nil, model.ErrInvalidState
	}

	if done {
		if err := s.guides.RecordCompletedOrder(ctx, *o.ClaimedBy); err != nil {
			s.log.WithError(err).WithField("order_id", orderID).Warn("failed to bump completed order count")
		}
	}

	profile, err := s.guides.Profile(ctx, *o.ClaimedBy)
	if err != nil {
		return nil, err
	}

	net, err := s.settlement.PostOrderSettlement(ctx, orderID, *o.ClaimedBy, o.GrossAmount(), profile.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("failed to settle order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"action":   "complete_order",
		"order_id": orderID,
		"guide_id": *o.ClaimedBy,
		"gross":    o.GrossAmount(),
		"net":      net,
	}).Info("order completed and settled")
	return s.repo.GetOrder(ctx, orderID)
}

// ExpireSweep reopens timed-out claims and closes open orders whose service
// window has passed. Runs on a timer; every transition is CAS-guarded so a
// failed run can simply retry next tick.
func (s *OrderService) ExpireSweep(ctx context.Context) error {
	now := s.now().UTC()

	reopened, err := s.repo.ExpireClaims(ctx, now.Add(-s.claimWindow), now)
	if err != nil {
		return fmt.Errorf("expire sweep failed: %w", err)
	}
	for _, id := range reopened {
		s.log.WithFields(logrus.Fields{
			"action":   "expire_claim",
			"order_id": id,
		}).Info("claim expired, order reopened")
	}

	expired, err := s.repo.ExpireStaleOpen(ctx, now)
	if err != nil {
		return fmt.Errorf("expire sweep failed: %w", err)
	}
	for _, id := range expired {
		s.log.WithFields(logrus.Fields{
			"action":   "expire_order",
			"order_id": id,
		}).Info("open order expired")
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *OrderService) ListOpen(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOpen(ctx)
}

// SetClock overrides the service clock in tests.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// IsConflict reports whether err is one of the no-partial-state conflict
// errors surfaced to callers.
func IsConflict(err error) bool {
	return errors.Is(err, model.ErrAlreadyClaimed) || errors.Is(err, model.ErrInvalidState)
}
