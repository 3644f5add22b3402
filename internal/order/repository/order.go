package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/order/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, created_at, updated_at, origin, state, requester_id, target_guide_id,
	schedule_date, time_slot, hours, service_end, party_size, filters,
	hourly_price, claimed_by, claimed_at, completed_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.Origin, &o.State, &o.RequesterID, &o.TargetGuideID,
		&o.ScheduleDate, &o.TimeSlot, &o.Hours, &o.ServiceEnd, &o.PartySize, &o.Filters,
		&o.HourlyPrice, &o.ClaimedBy, &o.ClaimedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) InsertOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	query := `
		INSERT INTO orders (
			id, origin, state, requester_id, target_guide_id, schedule_date,
			time_slot, hours, service_end, party_size, filters, hourly_price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		o.ID, o.Origin, o.State, o.RequesterID, o.TargetGuideID, o.ScheduleDate,
		o.TimeSlot, o.Hours, o.ServiceEnd, o.PartySize, o.Filters, o.HourlyPrice,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return scanOrder(r.db.QueryRow(ctx, query, orderID))
}

func (r *OrderRepository) ListOpen(ctx context.Context) ([]model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE state = 'OPEN'
		ORDER BY created_at
	`, orderColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ClaimOrder is the arbitration point: the state guard in the WHERE clause is
// a compare-and-swap, so of N concurrent claims exactly one update hits a row
// still in OPEN. The winning guide's current price is snapshotted as the
// agreed order price.
func (r *OrderRepository) ClaimOrder(ctx context.Context, orderID, guideID uuid.UUID, hourlyPrice float64, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET state = 'CLAIMED', claimed_by = $1, claimed_at = $2, hourly_price = $3, updated_at = $2
		WHERE id = $4 AND state = 'OPEN'
	`, guideID, now, hourlyPrice, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to claim order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ConfirmClaim moves a claimed order to CONFIRMED, but only for the guide
// that holds the claim.
func (r *OrderRepository) ConfirmClaim(ctx context.Context, orderID, guideID uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET state = 'CONFIRMED', updated_at = $1
		WHERE id = $2 AND state = 'CLAIMED' AND claimed_by = $3
	`, now, orderID, guideID)
	if err != nil {
		return false, fmt.Errorf("failed to confirm claim: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResolveBooking settles a BOOKING_PENDING order. Accepting binds the target
// guide as the claimer; rejecting is terminal.
func (r *OrderRepository) ResolveBooking(ctx context.Context, orderID uuid.UUID, accept bool, now time.Time) (bool, error) {
	var tagQuery string
	if accept {
		tagQuery = `
			UPDATE orders
			SET state = 'CONFIRMED', claimed_by = target_guide_id, claimed_at = $1, updated_at = $1
			WHERE id = $2 AND state = 'BOOKING_PENDING'
		`
	} else {
		tagQuery = `
			UPDATE orders
			SET state = 'REJECTED', updated_at = $1
			WHERE id = $2 AND state = 'BOOKING_PENDING'
		`
	}

	tag, err := r.db.Exec(ctx, tagQuery, now, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve booking: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) CompleteOrder(ctx context.Context, orderID uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET state = 'COMPLETED', completed_at = $1, updated_at = $1
		WHERE id = $2 AND state = 'CONFIRMED'
	`, now, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to complete order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ExpireClaims drops every claim older than the cutoff back to OPEN. The
// same CAS guard protects a racing late confirmation: once a row reaches
// CONFIRMED this update no longer matches it.
func (r *OrderRepository) ExpireClaims(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE orders
		SET state = 'OPEN', claimed_by = NULL, claimed_at = NULL, hourly_price = 0, updated_at = $1
		WHERE state = 'CLAIMED' AND claimed_at < $2
		RETURNING id
	`, now, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to expire claims: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ExpireStaleOpen closes open orders whose service window already passed.
func (r *OrderRepository) ExpireStaleOpen(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE orders
		SET state = 'EXPIRED', updated_at = $1
		WHERE state = 'OPEN' AND service_end < $1
		RETURNING id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire stale orders: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// ListOverdue returns confirmed orders whose service ended without a
// completion check-in; the alert escalation sweep feeds on it.
func (r *OrderRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE state = 'CONFIRMED' AND service_end < $1
		ORDER BY service_end
	`, orderColumns)

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
