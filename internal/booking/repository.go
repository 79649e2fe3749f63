package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pingslot/internal/availability"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RegisterBatch(ctx context.Context, rows []Reservation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin registration: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reservations (slot_id, start_min, date, user_id, user_name, user_email, duration, overbooked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slot_id, date, user_id) DO NOTHING
	`

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, query,
			row.SlotID, row.StartMin, row.Date, row.UserID, row.UserName, row.UserEmail, row.Duration, row.Overbooked)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

func (r *repository) GetReservation(ctx context.Context, date time.Time, slotID string, userID int) (*Reservation, error) {
	query := `
		SELECT id, slot_id, start_min, date, user_id, user_name, user_email, duration, overbooked, created_at
		FROM reservations
		WHERE date = $1 AND slot_id = $2 AND user_id = $3
	`

	var res Reservation
	if err := r.db.GetContext(ctx, &res, query, date, slotID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetReservationsForSlot(ctx context.Context, date time.Time, slotID string) ([]Reservation, error) {
	query := `
		SELECT id, slot_id, start_min, date, user_id, user_name, user_email, duration, overbooked, created_at
		FROM reservations
		WHERE date = $1 AND slot_id = $2
		ORDER BY created_at
	`

	var out []Reservation
	if err := r.db.SelectContext(ctx, &out, query, date, slotID); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repository) DeleteUserReservations(ctx context.Context, date time.Time, slotIDs []string, userID int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reservations WHERE date = $1 AND user_id = $2 AND slot_id = ANY($3)`,
		date, userID, pq.Array(slotIDs))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) CreateInvitations(ctx context.Context, invitations []Invitation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin invitations: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO slot_invitations (slot_id, date, user_id, user_name, status, invited_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slot_id, date, user_id) DO NOTHING
	`

	for _, inv := range invitations {
		_, err := tx.ExecContext(ctx, query,
			inv.SlotID, inv.Date, inv.UserID, inv.UserName, inv.Status, inv.InvitedBy)
		if err != nil {
			return fmt.Errorf("failed to insert invitation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invitations: %w", err)
	}

	return nil
}

func (r *repository) GetInvitationsForSlot(ctx context.Context, date time.Time, slotID string) ([]Invitation, error) {
	query := `
		SELECT id, slot_id, date, user_id, user_name, status, invited_by, created_at
		FROM slot_invitations
		WHERE date = $1 AND slot_id = $2
		ORDER BY created_at
	`

	var out []Invitation
	if err := r.db.SelectContext(ctx, &out, query, date, slotID); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *repository) SetInvitationStatus(ctx context.Context, date time.Time, slotID string, userID int, status string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE slot_invitations SET status = $1 WHERE date = $2 AND slot_id = $3 AND user_id = $4`,
		status, date, slotID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) DeleteInvitation(ctx context.Context, date time.Time, slotID string, userID int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM slot_invitations WHERE date = $1 AND slot_id = $2 AND user_id = $3`,
		date, slotID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) OwnersForSlot(ctx context.Context, date time.Time, slotID string) ([]availability.Owner, error) {
	query := `
		SELECT user_id, user_name AS name, duration
		FROM reservations
		WHERE date = $1 AND slot_id = $2
		ORDER BY created_at
	`

	var owners []availability.Owner
	if err := r.db.SelectContext(ctx, &owners, query, date, slotID); err != nil {
		return nil, err
	}

	return owners, nil
}

func (r *repository) GuestsForSlot(ctx context.Context, date time.Time, slotID string) ([]availability.Guest, error) {
	query := `
		SELECT user_id, user_name AS name, status, invited_by
		FROM slot_invitations
		WHERE date = $1 AND slot_id = $2
		ORDER BY created_at
	`

	var guests []availability.Guest
	if err := r.db.SelectContext(ctx, &guests, query, date, slotID); err != nil {
		return nil, err
	}

	return guests, nil
}
