package openslot

import "time"

// Target restricts who may book an ad-hoc opened slot.
const (
	TargetAll         = "all"
	TargetLoisir      = "loisir"
	TargetCompetition = "competition"
)

func ValidTarget(t string) bool {
	switch t {
	case TargetAll, TargetLoisir, TargetCompetition:
		return true
	}
	return false
}

// OpenedSlot is an ad-hoc booking window granted outside any recurring
// configuration. At most one exists per (date, slot).
type OpenedSlot struct {
	ID        int       `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	OpenedBy  int       `db:"opened_by" json:"opened_by"`
	Target    string    `db:"target" json:"target"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type OpenSlotRequest struct {
	Date   string `json:"date" binding:"required"`
	SlotID string `json:"slot_id" binding:"required"`
	Target string `json:"target" binding:"required"`
}

type CloseSlotRequest struct {
	Date   string `json:"date" binding:"required"`
	SlotID string `json:"slot_id" binding:"required"`
}
