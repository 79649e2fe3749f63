package schedule

import "time"

// Mode selects how a template's entries interact with a week's pre-existing
// configuration when applied.
type Mode string

const (
	// ModeOverwrite wipes the week's entries and writes the template's.
	ModeOverwrite Mode = "overwrite"
	// ModeMerge keeps existing entries on conflict and skips the new ones.
	ModeMerge Mode = "merge"
	// ModeMergeKeepNew deletes conflicting existing entries and writes the
	// new ones.
	ModeMergeKeepNew Mode = "merge_keep_new"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeOverwrite, ModeMerge, ModeMergeKeepNew:
		return true
	}
	return false
}

// Template is a reusable, day-of-week based weekly schedule definition.
type Template struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TemplateSlot is a recurring slot owned by a template. DayOfWeek follows the
// 0=Sunday convention; times are minutes since midnight, half-open.
type TemplateSlot struct {
	ID         int    `db:"id" json:"id"`
	TemplateID int    `db:"template_id" json:"template_id"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
	StartMin   int    `db:"start_min" json:"start_min"`
	EndMin     int    `db:"end_min" json:"end_min"`
	Name       string `db:"name" json:"name"`
	Coach      string `db:"coach" json:"coach"`
	SlotGroup  string `db:"slot_group" json:"slot_group,omitempty"`
	IsBlocking bool   `db:"is_blocking" json:"is_blocking"`
}

// TemplateHour is an opening-hour window owned by a template.
type TemplateHour struct {
	ID         int `db:"id" json:"id"`
	TemplateID int `db:"template_id" json:"template_id"`
	DayOfWeek  int `db:"day_of_week" json:"day_of_week"`
	StartMin   int `db:"start_min" json:"start_min"`
	EndMin     int `db:"end_min" json:"end_min"`
}

// WeekConfig is the materialization of one or more templates onto a concrete
// Monday-start week. At most one exists per week.
type WeekConfig struct {
	ID           int       `db:"id" json:"id"`
	WeekStart    time.Time `db:"week_start" json:"week_start"`
	TemplateName string    `db:"template_name" json:"template_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// WeekSlot is a date-stamped recurring slot inside a week config.
type WeekSlot struct {
	ID           int       `db:"id" json:"id"`
	WeekConfigID int       `db:"week_config_id" json:"week_config_id"`
	Date         time.Time `db:"date" json:"date"`
	StartMin     int       `db:"start_min" json:"start_min"`
	EndMin       int       `db:"end_min" json:"end_min"`
	Name         string    `db:"name" json:"name"`
	Coach        string    `db:"coach" json:"coach"`
	SlotGroup    string    `db:"slot_group" json:"slot_group,omitempty"`
	IsBlocking   bool      `db:"is_blocking" json:"is_blocking"`
}

// WeekHour is a date-stamped opening-hour window inside a week config.
type WeekHour struct {
	ID           int       `db:"id" json:"id"`
	WeekConfigID int       `db:"week_config_id" json:"week_config_id"`
	Date         time.Time `db:"date" json:"date"`
	StartMin     int       `db:"start_min" json:"start_min"`
	EndMin       int       `db:"end_min" json:"end_min"`
}

// ApplyResult aggregates what a template application did across weeks.
// Skipped/replaced counts come from merge conflicts; they are reported, not
// treated as failures.
type ApplyResult struct {
	Mode                Mode   `json:"mode"`
	WeeksApplied        int    `json:"weeks_applied"`
	CreatedWeeks        int    `json:"created_weeks"`
	InsertedSlots       int    `json:"inserted_slots"`
	InsertedHours       int    `json:"inserted_hours"`
	SkippedEntries      int    `json:"skipped_entries"`
	ReplacedEntries     int    `json:"replaced_entries"`
	DeletedReservations int    `json:"deleted_reservations"`
	TemplateName        string `json:"template_name"`
}

// add folds a later chain step into the running total. WeeksApplied is not
// summed: every step covers the same weeks.
func (r *ApplyResult) add(other *ApplyResult) {
	r.CreatedWeeks += other.CreatedWeeks
	r.InsertedSlots += other.InsertedSlots
	r.InsertedHours += other.InsertedHours
	r.SkippedEntries += other.SkippedEntries
	r.ReplacedEntries += other.ReplacedEntries
	r.DeletedReservations += other.DeletedReservations
}

// ConflictKind discriminates what kind of week entry a conflict involves.
type ConflictKind string

const (
	ConflictKindSlot ConflictKind = "slot"
	ConflictKindHour ConflictKind = "hour"
)

// Conflict reports one colliding (candidate, existing) pair found by a
// dry-run analysis.
type Conflict struct {
	Kind          ConflictKind `json:"kind"`
	WeekStart     time.Time    `json:"week_start"`
	Date          time.Time    `json:"date"`
	NewName       string       `json:"new_name,omitempty"`
	NewStartMin   int          `json:"new_start_min"`
	NewEndMin     int          `json:"new_end_min"`
	ExistingName  string       `json:"existing_name,omitempty"`
	ExistingStart int          `json:"existing_start_min"`
	ExistingEnd   int          `json:"existing_end_min"`
}

// AnalysisResult is the read-only preview of a template application.
type AnalysisResult struct {
	TemplateName    string      `json:"template_name"`
	ConfiguredWeeks []time.Time `json:"configured_weeks"`
	Conflicts       []Conflict  `json:"conflicts"`
}
