package openslot

import (
	"context"
	"time"
)

type Repository interface {
	// Open creates the opened-slot row; opening an already-opened slot
	// returns the existing row unchanged.
	Open(ctx context.Context, date time.Time, slotID string, openedBy int, target string) (*OpenedSlot, error)
	// Get returns nil (no error) when the slot is not opened.
	Get(ctx context.Context, date time.Time, slotID string) (*OpenedSlot, error)
	ListByDate(ctx context.Context, date time.Time) ([]OpenedSlot, error)
	ListRange(ctx context.Context, from, to time.Time) ([]OpenedSlot, error)
	// Close removes the opened slot and, destructively, every reservation
	// sitting on it, in one transaction. Returns the reservation count
	// removed.
	Close(ctx context.Context, date time.Time, slotID string) (int64, error)
}
