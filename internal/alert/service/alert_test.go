package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/alert/model"
	"github.com/LP1295055597/Lvban-sub000/internal/notify"
	ordermodel "github.com/LP1295055597/Lvban-sub000/internal/order/model"
	walletmodel "github.com/LP1295055597/Lvban-sub000/internal/wallet/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type memAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*model.Alert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: make(map[uuid.UUID]*model.Alert)}
}

func (r *memAlertRepo) UpsertReminder(_ context.Context, orderID, guideID uuid.UUID, penalty float64, now time.Time) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[orderID]
	if !ok {
		a = &model.Alert{
			OrderID:   orderID,
			GuideID:   guideID,
			Status:    model.AlertPending,
			CreatedAt: now,
		}
		r.alerts[orderID] = a
	}
	a.ReminderCount++
	a.TotalPenalty += penalty
	a.UpdatedAt = now
	copied := *a
	return &copied, nil
}

func (r *memAlertRepo) GetAlert(_ context.Context, orderID uuid.UUID) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[orderID]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memAlertRepo) ListAlerts(_ context.Context, status *model.AlertStatus) ([]model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Alert
	for _, a := range r.alerts {
		if status == nil || a.Status == *status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAlertRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, from, to model.AlertStatus, notes string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[orderID]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	if notes != "" {
		a.Notes = notes
	}
	a.UpdatedAt = now
	return true, nil
}

type stubOverdue struct {
	mu     sync.Mutex
	orders []ordermodel.Order
}

func (s *stubOverdue) ListOverdue(context.Context, time.Time) ([]ordermodel.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ordermodel.Order(nil), s.orders...), nil
}

type stubPenalizer struct {
	mu        sync.Mutex
	locked    map[uuid.UUID]float64
	deducted  map[uuid.UUID]float64
	deductErr error
}

func newStubPenalizer() *stubPenalizer {
	return &stubPenalizer{
		locked:   make(map[uuid.UUID]float64),
		deducted: make(map[uuid.UUID]float64),
	}
}

func (s *stubPenalizer) LockedBalance(_ context.Context, guideID uuid.UUID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked[guideID], nil
}

func (s *stubPenalizer) Deduct(_ context.Context, guideID uuid.UUID, amount float64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deductErr != nil {
		return s.deductErr
	}
	s.locked[guideID] -= amount
	s.deducted[guideID] += amount
	return nil
}

type nopAlertEvents struct{}

func (nopAlertEvents) AlertRaised(context.Context, notify.AlertRaisedEvent) error { return nil }

type recordingFeed struct {
	mu       sync.Mutex
	messages [][]byte
}

func (r *recordingFeed) Broadcast(message []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

const overduePenalty = 50.0

func overdueOrder(guideID uuid.UUID) ordermodel.Order {
	return ordermodel.Order{
		ID:        uuid.New(),
		State:     ordermodel.OrderConfirmed,
		ClaimedBy: &guideID,
	}
}

func newTestAlertService(repo *memAlertRepo, orders *stubOverdue, wallet *stubPenalizer, feed *recordingFeed) *AlertService {
	return NewAlertService(repo, orders, wallet, nopAlertEvents{}, feed, overduePenalty, testLogger())
}

func TestOverdueSweepRaisesAndPenalizes(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	feed := &recordingFeed{}
	svc := newTestAlertService(repo, orders, wallet, feed)

	guideID := uuid.New()
	wallet.locked[guideID] = 500
	o := overdueOrder(guideID)
	orders.orders = []ordermodel.Order{o}

	raised, err := svc.OverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if raised != 1 {
		t.Fatalf("raised = %d, want 1", raised)
	}

	alert, err := repo.GetAlert(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if alert.ReminderCount != 1 || alert.TotalPenalty != overduePenalty {
		t.Fatalf("alert = %+v, want 1 reminder and %.0f penalty", alert, overduePenalty)
	}
	if alert.Status != model.AlertPending {
		t.Fatalf("new alert status = %s, want PENDING", alert.Status)
	}
	if wallet.deducted[guideID] != overduePenalty {
		t.Fatalf("deducted = %v, want %v", wallet.deducted[guideID], overduePenalty)
	}
	if len(feed.messages) != 1 {
		t.Fatalf("expected 1 staff feed broadcast, got %d", len(feed.messages))
	}

	// A second sweep finds the order still overdue and escalates again.
	if _, err := svc.OverdueSweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	alert, _ = repo.GetAlert(context.Background(), o.ID)
	if alert.ReminderCount != 2 || alert.TotalPenalty != 2*overduePenalty {
		t.Fatalf("after second sweep: %+v, want 2 reminders and %.0f penalty", alert, 2*overduePenalty)
	}
}

func TestOverdueSweepCapsPenaltyAtLockedBalance(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	svc := newTestAlertService(repo, orders, wallet, &recordingFeed{})

	guideID := uuid.New()
	wallet.locked[guideID] = 30
	o := overdueOrder(guideID)
	orders.orders = []ordermodel.Order{o}

	if _, err := svc.OverdueSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if wallet.deducted[guideID] != 30 {
		t.Fatalf("deducted = %v, want the full locked balance of 30", wallet.deducted[guideID])
	}
	alert, _ := repo.GetAlert(context.Background(), o.ID)
	if alert.TotalPenalty != 30 {
		t.Fatalf("total penalty = %v, want 30", alert.TotalPenalty)
	}
}

func TestOverdueSweepWithNothingLocked(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	svc := newTestAlertService(repo, orders, wallet, &recordingFeed{})

	guideID := uuid.New()
	o := overdueOrder(guideID)
	orders.orders = []ordermodel.Order{o}

	raised, err := svc.OverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if raised != 1 {
		t.Fatalf("the alert must still go out with nothing to deduct")
	}
	if wallet.deducted[guideID] != 0 {
		t.Fatalf("deducted %v from an empty hold", wallet.deducted[guideID])
	}
	alert, _ := repo.GetAlert(context.Background(), o.ID)
	if alert.TotalPenalty != 0 {
		t.Fatalf("total penalty = %v, want 0", alert.TotalPenalty)
	}
}

func TestOverdueSweepSurvivesUnlockRace(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	svc := newTestAlertService(repo, orders, wallet, &recordingFeed{})

	guideID := uuid.New()
	wallet.locked[guideID] = 500
	wallet.deductErr = walletmodel.ErrInsufficientLockedFunds
	o := overdueOrder(guideID)
	orders.orders = []ordermodel.Order{o}

	raised, err := svc.OverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if raised != 1 {
		t.Fatalf("losing the deduction race must not drop the alert")
	}
	alert, _ := repo.GetAlert(context.Background(), o.ID)
	if alert.TotalPenalty != 0 {
		t.Fatalf("total penalty = %v, want 0 after a lost race", alert.TotalPenalty)
	}
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	svc := newTestAlertService(repo, orders, wallet, &recordingFeed{})

	guideID := uuid.New()
	o := overdueOrder(guideID)
	orders.orders = []ordermodel.Order{o}
	if _, err := svc.OverdueSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	alert, err := svc.UpdateStatus(context.Background(), o.ID, model.AlertContacted, "")
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if alert.Status != model.AlertContacted {
		t.Fatalf("status = %s, want CONTACTED", alert.Status)
	}

	// Resolving needs an outcome note.
	if _, err := svc.UpdateStatus(context.Background(), o.ID, model.AlertResolved, ""); err == nil {
		t.Fatalf("resolve without notes accepted")
	}

	alert, err = svc.UpdateStatus(context.Background(), o.ID, model.AlertResolved, "guide confirmed, order closed manually")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if alert.Status != model.AlertResolved || alert.Notes == "" {
		t.Fatalf("resolved alert = %+v", alert)
	}

	// Nothing moves backwards out of RESOLVED.
	if _, err := svc.UpdateStatus(context.Background(), o.ID, model.AlertContacted, ""); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	svc := newTestAlertService(newMemAlertRepo(), &stubOverdue{}, newStubPenalizer(), &recordingFeed{})

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), model.AlertPending, ""); err == nil {
		t.Fatalf("moving an alert back to PENDING accepted")
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), "ESCALATED", ""); err == nil {
		t.Fatalf("unknown status accepted")
	}
}

func TestListAlertsFilter(t *testing.T) {
	repo := newMemAlertRepo()
	orders := &stubOverdue{}
	wallet := newStubPenalizer()
	svc := newTestAlertService(repo, orders, wallet, &recordingFeed{})

	g1, g2 := uuid.New(), uuid.New()
	o1, o2 := overdueOrder(g1), overdueOrder(g2)
	orders.orders = []ordermodel.Order{o1, o2}
	if _, err := svc.OverdueSweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), o1.ID, model.AlertResolved, "done"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	pending, err := svc.ListAlerts(context.Background(), "PENDING")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].OrderID != o2.ID {
		t.Fatalf("pending filter returned %+v", pending)
	}

	all, err := svc.ListAlerts(context.Background(), "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(all))
	}

	if _, err := svc.ListAlerts(context.Background(), "BROKEN"); err == nil {
		t.Fatalf("unknown filter accepted")
	}
}
