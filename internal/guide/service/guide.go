package service

import (
	"context"
	"fmt"

	commonmodel "github.com/LP1295055597/Lvban-sub000/internal/common/model"
	"github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/sirupsen/logrus"
)

type GuideRepository interface {
	GetGuide(ctx context.Context, guideID uuid.UUID) (*model.Guide, error)
	UpdateHourlyPrice(ctx context.Context, guideID uuid.UUID, price float64) error
	SetVerified(ctx context.Context, guideID uuid.UUID, verified bool) error
	RecordCompletedOrder(ctx context.Context, guideID uuid.UUID) error
}

type GuideService struct {
	repo GuideRepository
	log  *logrus.Entry
}

func NewGuideService(repo GuideRepository, log *logrus.Entry) *GuideService {
	return &GuideService{repo: repo, log: log}
}

// Profile returns the stored guide record with its derived tier data.
func (s *GuideService) Profile(ctx context.Context, guideID uuid.UUID) (*model.Profile, error) {
	g, err := s.repo.GetGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}
	profile := BuildProfile(*g)
	return &profile, nil
}

// SetPrice enforces the floor/ceiling bounds before persisting. In-flight
// orders keep the price snapshotted at their creation.
func (s *GuideService) SetPrice(ctx context.Context, guideID uuid.UUID, price float64) error {
	if price <= 0 {
		return commonmodel.Invalid("price", "must be positive")
	}

	g, err := s.repo.GetGuide(ctx, guideID)
	if err != nil {
		return err
	}

	level := LevelFor(Points(*g))
	if err := ValidatePrice(price, level, g.Verified); err != nil {
		s.log.WithFields(logrus.Fields{
			"action":   "set_price",
			"guide_id": guideID,
			"price":    price,
		}).Warn("price rejected by governor")
		return err
	}

	if err := s.repo.UpdateHourlyPrice(ctx, guideID, price); err != nil {
		return fmt.Errorf("failed to update hourly price: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"action":   "set_price",
		"guide_id": guideID,
		"price":    price,
	}).Info("hourly price updated")
	return nil
}

// RecordCompletedOrder bumps the guide's completed order count, which feeds
// straight into the points formula on the next profile read.
func (s *GuideService) RecordCompletedOrder(ctx context.Context, guideID uuid.UUID) error {
	return s.repo.RecordCompletedOrder(ctx, guideID)
}

// SetVerified records the outcome of the external certification review.
func (s *GuideService) SetVerified(ctx context.Context, guideID uuid.UUID, verified bool) error {
	if err := s.repo.SetVerified(ctx, guideID, verified); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"action":   "set_verified",
		"guide_id": guideID,
		"verified": verified,
	}).Info("verification flag updated")
	return nil
}
