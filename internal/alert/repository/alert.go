package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/alert/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertRepository struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db}
}

// UpsertReminder creates or bumps the alert for an overdue order. The status
// of an existing alert is left alone so staff progress survives later sweeps.
func (r *AlertRepository) UpsertReminder(ctx context.Context, orderID, guideID uuid.UUID, penalty float64, now time.Time) (*model.Alert, error) {
	query := `
		INSERT INTO alerts (order_id, guide_id, reminder_count, total_penalty, status, created_at, updated_at)
		VALUES ($1, $2, 1, $3, 'PENDING', $4, $4)
		ON CONFLICT (order_id) DO UPDATE SET
			reminder_count = alerts.reminder_count + 1,
			total_penalty = alerts.total_penalty + EXCLUDED.total_penalty,
			updated_at = EXCLUDED.updated_at
		RETURNING order_id, guide_id, reminder_count, total_penalty, status, notes, created_at, updated_at
	`

	var a model.Alert
	err := r.db.QueryRow(ctx, query, orderID, guideID, penalty, now).Scan(
		&a.OrderID, &a.GuideID, &a.ReminderCount, &a.TotalPenalty, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert alert: %w", err)
	}
	return &a, nil
}

func (r *AlertRepository) GetAlert(ctx context.Context, orderID uuid.UUID) (*model.Alert, error) {
	var a model.Alert
	err := r.db.QueryRow(ctx, `
		SELECT order_id, guide_id, reminder_count, total_penalty, status, notes, created_at, updated_at
		FROM alerts
		WHERE order_id = $1
	`, orderID).Scan(
		&a.OrderID, &a.GuideID, &a.ReminderCount, &a.TotalPenalty, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &a, nil
}

func (r *AlertRepository) ListAlerts(ctx context.Context, status *model.AlertStatus) ([]model.Alert, error) {
	query := `
		SELECT order_id, guide_id, reminder_count, total_penalty, status, notes, created_at, updated_at
		FROM alerts
	`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.OrderID, &a.GuideID, &a.ReminderCount, &a.TotalPenalty, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// UpdateStatus swaps the status only if the row still carries the expected
// previous status, so two staff members cannot cross each other's updates.
func (r *AlertRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.AlertStatus, notes string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE alerts
		SET status = $1, notes = COALESCE(NULLIF($2, ''), notes), updated_at = $3
		WHERE order_id = $4 AND status = $5
	`, to, notes, now, orderID, from)
	if err != nil {
		return false, fmt.Errorf("failed to update alert status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
