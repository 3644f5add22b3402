package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LP1295055597/Lvban-sub000/internal/guide/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuideRepository struct {
	db *pgxpool.Pool
}

func NewGuideRepository(db *pgxpool.Pool) *GuideRepository {
	return &GuideRepository{db: db}
}

func (r *GuideRepository) GetGuide(ctx context.Context, guideID uuid.UUID) (*model.Guide, error) {
	query := `
		SELECT id, created_at, updated_at, name, completed_orders, good_reviews,
		       has_photography, has_vehicle, verified, hourly_price
		FROM guides
		WHERE id = $1
	`

	var g model.Guide
	err := r.db.QueryRow(ctx, query, guideID).Scan(
		&g.ID, &g.CreatedAt, &g.UpdatedAt, &g.Name, &g.CompletedOrders, &g.GoodReviews,
		&g.HasPhotography, &g.HasVehicle, &g.Verified, &g.HourlyPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get guide: %w", err)
	}

	return &g, nil
}

func (r *GuideRepository) UpdateHourlyPrice(ctx context.Context, guideID uuid.UUID, price float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE guides
		SET hourly_price = $1, updated_at = NOW()
		WHERE id = $2
	`, price, guideID)
	if err != nil {
		return fmt.Errorf("failed to update hourly price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *GuideRepository) SetVerified(ctx context.Context, guideID uuid.UUID, verified bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE guides
		SET verified = $1, updated_at = NOW()
		WHERE id = $2
	`, verified, guideID)
	if err != nil {
		return fmt.Errorf("failed to update verified flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *GuideRepository) RecordCompletedOrder(ctx context.Context, guideID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE guides
		SET completed_orders = completed_orders + 1, updated_at = NOW()
		WHERE id = $1
	`, guideID)
	if err != nil {
		return fmt.Errorf("failed to record completed order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
