package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LP1295055597/Lvban-sub000/internal/wallet/model"
	"github.com/LP1295055597/Lvban-sub000/pkg/uuid"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// balanceQuery folds the whole ledger of one guide into the available
// balance: earnings count in, withdrawals and deductions count out, and
// every still-active lock holds its amount back until it is due.
const balanceQuery = `
	SELECT COALESCE(SUM(CASE
		WHEN entry_type IN ('INCOME', 'WITHDRAW', 'DEDUCTED') THEN amount
		WHEN entry_type = 'LOCKED' AND status = 'ACTIVE' AND unlock_at > $2 THEN -amount
		ELSE 0
	END), 0)
	FROM ledger_entries
	WHERE guide_id = $1
`

func (r *LedgerRepository) AvailableBalance(ctx context.Context, guideID uuid.UUID, now time.Time) (float64, error) {
	var balance float64
	if err := r.db.QueryRow(ctx, balanceQuery, guideID, now).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to compute available balance: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) LockedBalance(ctx context.Context, guideID uuid.UUID, now time.Time) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE guide_id = $1 AND entry_type = 'LOCKED' AND status = 'ACTIVE' AND unlock_at > $2
	`, guideID, now).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to compute locked balance: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) ListEntries(ctx context.Context, guideID uuid.UUID) ([]model.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guide_id, order_id, entry_type, amount, status, unlock_at, reason, created_at
		FROM ledger_entries
		WHERE guide_id = $1
		ORDER BY created_at DESC
	`, guideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.GuideID, &e.OrderID, &e.Type, &e.Amount, &e.Status, &e.UnlockAt, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PostSettlement inserts the income+locked pair for a completed order in one
// transaction. The partial unique index on (guide_id, order_id, entry_type)
// makes a retry a no-op; the bool reports whether anything was posted.
func (r *LedgerRepository) PostSettlement(ctx context.Context, income, locked model.LedgerEntry) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, guide_id, order_id, entry_type, amount, status, unlock_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (guide_id, order_id, entry_type) DO NOTHING
	`, income.ID, income.GuideID, income.OrderID, income.Type, income.Amount, income.Status, income.UnlockAt, income.Reason, income.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert income entry: %w", err)
	}
	posted := tag.RowsAffected() > 0

	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, guide_id, order_id, entry_type, amount, status, unlock_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (guide_id, order_id, entry_type) DO NOTHING
	`, locked.ID, locked.GuideID, locked.OrderID, locked.Type, locked.Amount, locked.Status, locked.UnlockAt, locked.Reason, locked.CreatedAt); err != nil {
		return false, fmt.Errorf("failed to insert locked entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return posted, nil
}

// UnlockDue flips every due active lock in one statement. The state guard in
// the WHERE clause makes concurrent sweeps and a racing deduction resolve
// deterministically: whoever commits first wins, the other sees no rows.
func (r *LedgerRepository) UnlockDue(ctx context.Context, now time.Time) ([]model.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE ledger_entries
		SET entry_type = 'UNLOCKED', status = 'RESOLVED'
		WHERE entry_type = 'LOCKED' AND status = 'ACTIVE' AND unlock_at <= $1
		RETURNING id, guide_id, order_id, amount
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock due entries: %w", err)
	}
	defer rows.Close()

	var flipped []model.LedgerEntry
	for rows.Next() {
		e := model.LedgerEntry{Type: model.EntryUnlocked, Status: model.StatusResolved}
		if err := rows.Scan(&e.ID, &e.GuideID, &e.OrderID, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked entry: %w", err)
		}
		flipped = append(flipped, e)
	}
	return flipped, rows.Err()
}

// Deduct consumes locked funds oldest-first and records one DEDUCTED entry,
// all inside a single transaction. Row locks on the selected entries
// serialize a race with the unlock sweep.
func (r *LedgerRepository) Deduct(ctx context.Context, deduction model.LedgerEntry, now time.Time) error {
	amount := -deduction.Amount
	if amount <= 0 {
		return fmt.Errorf("deduction amount must be negative, got %.2f", deduction.Amount)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, amount
		FROM ledger_entries
		WHERE guide_id = $1 AND entry_type = 'LOCKED' AND status = 'ACTIVE' AND unlock_at > $2
		ORDER BY created_at
		FOR UPDATE
	`, deduction.GuideID, now)
	if err != nil {
		return fmt.Errorf("failed to select locked entries: %w", err)
	}

	type lockedRow struct {
		id     uuid.UUID
		amount float64
	}
	var locks []lockedRow
	var total float64
	for rows.Next() {
		var lr lockedRow
		if err := rows.Scan(&lr.id, &lr.amount); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked entry: %w", err)
		}
		locks = append(locks, lr)
		total += lr.amount
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if total < amount {
		return model.ErrInsufficientLockedFunds
	}

	remaining := amount
	for _, lr := range locks {
		if remaining <= 0 {
			break
		}
		consume := lr.amount
		if consume > remaining {
			consume = remaining
		}
		if consume == lr.amount {
			// Fully consumed locks resolve so the sweep never flips them.
			_, err = tx.Exec(ctx, `
				UPDATE ledger_entries SET amount = 0, status = 'RESOLVED' WHERE id = $1
			`, lr.id)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE ledger_entries SET amount = amount - $1 WHERE id = $2
			`, consume, lr.id)
		}
		if err != nil {
			return fmt.Errorf("failed to consume locked entry: %w", err)
		}
		remaining -= consume
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, guide_id, order_id, entry_type, amount, status, unlock_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8)
	`, deduction.ID, deduction.GuideID, deduction.OrderID, deduction.Type, deduction.Amount, deduction.Status, deduction.Reason, deduction.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert deducted entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deduction: %w", err)
	}
	return nil
}

// Withdraw re-checks the available balance inside the transaction so two
// concurrent withdrawals cannot both pass the check against stale state.
func (r *LedgerRepository) Withdraw(ctx context.Context, withdrawal model.LedgerEntry, now time.Time) error {
	amount := -withdrawal.Amount
	if amount <= 0 {
		return fmt.Errorf("withdrawal amount must be negative, got %.2f", withdrawal.Amount)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var available float64
	if err := tx.QueryRow(ctx, balanceQuery, withdrawal.GuideID, now).Scan(&available); err != nil {
		return fmt.Errorf("failed to compute available balance: %w", err)
	}
	if available < amount {
		return model.ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, guide_id, order_id, entry_type, amount, status, unlock_at, reason, created_at)
		VALUES ($1, $2, NULL, $3, $4, $5, NULL, $6, $7)
	`, withdrawal.ID, withdrawal.GuideID, withdrawal.Type, withdrawal.Amount, withdrawal.Status, withdrawal.Reason, withdrawal.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert withdraw entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit withdrawal: %w", err)
	}
	return nil
}
