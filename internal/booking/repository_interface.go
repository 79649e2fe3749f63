package booking

import (
	"context"
	"time"

	"pingslot/internal/availability"
)

type Repository interface {
	// RegisterBatch inserts a booking's rows in one transaction. Rows whose
	// (slot_id, date, user_id) already exist are silently skipped: repeating
	// a registration is idempotent, not an error.
	RegisterBatch(ctx context.Context, rows []Reservation) error
	// GetReservation returns nil (no error) when the user holds no
	// reservation on that base slot.
	GetReservation(ctx context.Context, date time.Time, slotID string, userID int) (*Reservation, error)
	GetReservationsForSlot(ctx context.Context, date time.Time, slotID string) ([]Reservation, error)
	// DeleteUserReservations removes the user's rows on the given base slots
	// in one statement.
	DeleteUserReservations(ctx context.Context, date time.Time, slotIDs []string, userID int) (int64, error)

	// CreateInvitations inserts pending invitations, skipping duplicates.
	CreateInvitations(ctx context.Context, invitations []Invitation) error
	GetInvitationsForSlot(ctx context.Context, date time.Time, slotID string) ([]Invitation, error)
	SetInvitationStatus(ctx context.Context, date time.Time, slotID string, userID int, status string) (int64, error)
	DeleteInvitation(ctx context.Context, date time.Time, slotID string, userID int) (int64, error)

	// Roster projections consumed by the availability engine.
	OwnersForSlot(ctx context.Context, date time.Time, slotID string) ([]availability.Owner, error)
	GuestsForSlot(ctx context.Context, date time.Time, slotID string) ([]availability.Guest, error)
}
