package openslot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotOpened = errors.New("slot is not opened")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Open(ctx context.Context, date time.Time, slotID string, openedBy int, target string) (*OpenedSlot, error) {
	query := `
		INSERT INTO opened_slots (date, slot_id, opened_by, target)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, slot_id) DO NOTHING
		RETURNING id, date, slot_id, opened_by, target, created_at
	`

	var slot OpenedSlot
	err := r.db.GetContext(ctx, &slot, query, date, slotID, openedBy, target)
	if err == nil {
		return &slot, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Conflict: the slot was already opened, return the existing row.
	return r.Get(ctx, date, slotID)
}

func (r *repository) Get(ctx context.Context, date time.Time, slotID string) (*OpenedSlot, error) {
	query := `
		SELECT id, date, slot_id, opened_by, target, created_at
		FROM opened_slots
		WHERE date = $1 AND slot_id = $2
	`

	var slot OpenedSlot
	if err := r.db.GetContext(ctx, &slot, query, date, slotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &slot, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]OpenedSlot, error) {
	query := `
		SELECT id, date, slot_id, opened_by, target, created_at
		FROM opened_slots
		WHERE date = $1
		ORDER BY slot_id
	`

	var slots []OpenedSlot
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time) ([]OpenedSlot, error) {
	query := `
		SELECT id, date, slot_id, opened_by, target, created_at
		FROM opened_slots
		WHERE date >= $1 AND date <= $2
		ORDER BY date, slot_id
	`

	var slots []OpenedSlot
	if err := r.db.SelectContext(ctx, &slots, query, from, to); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) Close(ctx context.Context, date time.Time, slotID string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin close: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM reservations WHERE date = $1 AND slot_id = $2`, date, slotID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reservations: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	result, err = tx.ExecContext(ctx,
		`DELETE FROM opened_slots WHERE date = $1 AND slot_id = $2`, date, slotID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete opened slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ErrNotOpened
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit close: %w", err)
	}

	return deleted, nil
}
