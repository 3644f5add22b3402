package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type memGuideRepo struct {
	guides map[uuid.UUID]*model.Guide
}

func newMemGuideRepo() *memGuideRepo {
	return &memGuideRepo{guides: make(map[uuid.UUID]*model.Guide)}
}

func (r *memGuideRepo) GetGuide(_ context.Context, guideID uuid.UUID) (*model.Guide, error) {
	g, ok := r.guides[guideID]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *memGuideRepo) UpdateHourlyPrice(_ context.Context, guideID uuid.UUID, price float64) error {
	g, ok := r.guides[guideID]
	if !ok {
		return model.ErrNotFound
	}
	g.HourlyPrice = price
	return nil
}

func (r *memGuideRepo) SetVerified(_ context.Context, guideID uuid.UUID, verified bool) error {
	g, ok := r.guides[guideID]
	if !ok {
		return model.ErrNotFound
	}
	g.Verified = verified
	return nil
}

func (r *memGuideRepo) RecordCompletedOrder(_ context.Context, guideID uuid.UUID) error {
	g, ok := r.guides[guideID]
	if !ok {
		return model.ErrNotFound
	}
	g.CompletedOrders++
	return nil
}

func TestSetPriceGovernor(t *testing.T) {
	repo := newMemGuideRepo()
	svc := NewGuideService(repo, testLogger())

	guideID := uuid.New()
	repo.guides[guideID] = &model.Guide{ID: guideID, HourlyPrice: 50}

	// An unverified junior is boxed into 30-80.
	if err := svc.SetPrice(context.Background(), guideID, 90); err == nil {
		t.Fatalf("price above the unverified cap accepted")
	}
	var rangeErr *model.PriceOutOfRangeError
	err := svc.SetPrice(context.Background(), guideID, 20)
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected PriceOutOfRangeError, got %v", err)
	}
	if err := svc.SetPrice(context.Background(), guideID, -5); err == nil {
		t.Fatalf("negative price accepted")
	}

	if err := svc.SetPrice(context.Background(), guideID, 75); err != nil {
		t.Fatalf("in-range price rejected: %v", err)
	}
	if repo.guides[guideID].HourlyPrice != 75 {
		t.Fatalf("price not persisted: %v", repo.guides[guideID].HourlyPrice)
	}
}

func TestSetPriceCeilingFollowsVerification(t *testing.T) {
	repo := newMemGuideRepo()
	svc := NewGuideService(repo, testLogger())

	guideID := uuid.New()
	// 80 completed orders put the guide into the senior tier.
	repo.guides[guideID] = &model.Guide{ID: guideID, CompletedOrders: 80, HourlyPrice: 60}

	if err := svc.SetPrice(context.Background(), guideID, 180); err == nil {
		t.Fatalf("tier ceiling applied without verification")
	}

	if err := svc.SetVerified(context.Background(), guideID, true); err != nil {
		t.Fatalf("set verified: %v", err)
	}
	if err := svc.SetPrice(context.Background(), guideID, 180); err != nil {
		t.Fatalf("verified senior price rejected: %v", err)
	}
}

func TestProfileDerivation(t *testing.T) {
	repo := newMemGuideRepo()
	svc := NewGuideService(repo, testLogger())

	guideID := uuid.New()
	repo.guides[guideID] = &model.Guide{ID: guideID, CompletedOrders: 10, GoodReviews: 5, HourlyPrice: 40}

	p, err := svc.Profile(context.Background(), guideID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Points != 65 || p.Level != model.LevelJunior {
		t.Fatalf("profile = %d points %s, want 65 JUNIOR", p.Points, p.Level)
	}

	// Completions feed straight back into the next read.
	for i := 0; i < 8; i++ {
		if err := svc.RecordCompletedOrder(context.Background(), guideID); err != nil {
			t.Fatalf("record completion: %v", err)
		}
	}
	p, err = svc.Profile(context.Background(), guideID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Points != 105 || p.Level != model.LevelIntermediate {
		t.Fatalf("profile = %d points %s, want 105 INTERMEDIATE", p.Points, p.Level)
	}

	if _, err := svc.Profile(context.Background(), uuid.New()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
