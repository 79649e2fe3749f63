package schedule

import (
	"context"
	"time"
)

type Repository interface {
	CreateTemplate(ctx context.Context, name string) (*Template, error)
	GetTemplate(ctx context.Context, id int) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	DeleteTemplate(ctx context.Context, id int) error

	AddTemplateSlot(ctx context.Context, slot TemplateSlot) (*TemplateSlot, error)
	DeleteTemplateSlot(ctx context.Context, templateID, slotID int) error
	GetTemplateSlots(ctx context.Context, templateID int) ([]TemplateSlot, error)

	AddTemplateHour(ctx context.Context, hour TemplateHour) (*TemplateHour, error)
	DeleteTemplateHour(ctx context.Context, templateID, hourID int) error
	GetTemplateHours(ctx context.Context, templateID int) ([]TemplateHour, error)

	// GetWeekConfig returns nil (no error) when the week has no config.
	GetWeekConfig(ctx context.Context, weekStart time.Time) (*WeekConfig, error)
	GetWeekSlots(ctx context.Context, weekConfigID int) ([]WeekSlot, error)
	GetWeekHours(ctx context.Context, weekConfigID int) ([]WeekHour, error)
	GetWeekSlotsByDate(ctx context.Context, date time.Time) ([]WeekSlot, error)
	GetWeekHoursByDate(ctx context.Context, date time.Time) ([]WeekHour, error)
	DeleteWeekConfig(ctx context.Context, weekStart time.Time) error
	DeleteWeekSlot(ctx context.Context, weekConfigID, slotID int) error

	// ApplyWeekWrite executes one week's materialization plan in a single
	// transaction and returns the number of reservations evicted by newly
	// written blocking slots.
	ApplyWeekWrite(ctx context.Context, plan WeekWrite) (int64, error)
}

// EvictRange marks a blocking span whose member reservations must be removed.
type EvictRange struct {
	Date     time.Time
	StartMin int
	EndMin   int
}

// WeekWrite is the batch of writes one template application performs on one
// week. The service computes it; the repository executes it atomically.
type WeekWrite struct {
	WeekStart    time.Time
	TemplateName string

	// CreateConfig inserts a fresh week config row; otherwise ConfigID must
	// reference the existing one.
	CreateConfig bool
	ConfigID     int

	// DeleteAllExisting clears every current slot and hour first (overwrite
	// mode). DeleteSlotIDs/DeleteHourIDs remove individual losers of a
	// merge_keep_new conflict.
	DeleteAllExisting bool
	DeleteSlotIDs     []int
	DeleteHourIDs     []int

	InsertSlots []WeekSlot
	InsertHours []WeekHour

	EvictRanges []EvictRange
}
