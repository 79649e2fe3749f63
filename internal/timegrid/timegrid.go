package timegrid

import (
	"fmt"
	"time"
)

// The booking day runs 08:00-23:00 on a half-hour grid. The last bookable
// start time is 22:30.
const (
	OpeningHour = 8
	ClosingHour = 23
	SlotMinutes = 30

	// MaxDurationUnits is 4 hours expressed in half-hour units.
	MaxDurationUnits = 8

	// DefaultOpeningMin and DefaultClosingMin bound days with no configured
	// opening hours, in minutes since midnight.
	DefaultOpeningMin = OpeningHour * 60
	DefaultClosingMin = ClosingHour * 60
)

type Slot struct {
	ID     string `json:"id"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

// Minutes returns the slot's start as minutes since midnight.
func (s Slot) Minutes() int {
	return s.Hour*60 + s.Minute
}

// EndMinutes returns the end of the base slot, half-open.
func (s Slot) EndMinutes() int {
	return s.Minutes() + SlotMinutes
}

var (
	slots   []Slot
	byID    map[string]int
	DateFmt = "2006-01-02"
)

func init() {
	count := (ClosingHour - OpeningHour) * 60 / SlotMinutes
	slots = make([]Slot, 0, count)
	byID = make(map[string]int, count)
	for i := 0; i < count; i++ {
		m := OpeningHour*60 + i*SlotMinutes
		s := Slot{
			ID:     fmt.Sprintf("%d:%02d", m/60, m%60),
			Hour:   m / 60,
			Minute: m % 60,
		}
		byID[s.ID] = len(slots)
		slots = append(slots, s)
	}
}

// Slots returns the full catalog in day order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

func Count() int {
	return len(slots)
}

func SlotByID(id string) (Slot, bool) {
	idx, ok := byID[id]
	if !ok {
		return Slot{}, false
	}
	return slots[idx], true
}

func SlotAt(index int) (Slot, bool) {
	if index < 0 || index >= len(slots) {
		return Slot{}, false
	}
	return slots[index], true
}

// Index returns the catalog position of a slot ID, or -1 if unknown.
func Index(id string) int {
	idx, ok := byID[id]
	if !ok {
		return -1
	}
	return idx
}

// DurationMinutes converts a duration in half-hour units to minutes.
func DurationMinutes(units int) int {
	return units * SlotMinutes
}

// DurationUnits lists the selectable booking durations, ascending.
func DurationUnits() []int {
	out := make([]int, 0, MaxDurationUnits)
	for d := 1; d <= MaxDurationUnits; d++ {
		out = append(out, d)
	}
	return out
}

// WeekdayIndex maps a 0=Sunday day-of-week onto the Monday-anchored week
// array used by week configs (0=Monday..6=Sunday). Keep this as the single
// place the convention lives: an off-by-one here shifts every template slot
// by a day.
func WeekdayIndex(dayOfWeek int) int {
	if dayOfWeek == 0 {
		return 6
	}
	return dayOfWeek - 1
}

// MondayOf truncates t to the Monday of its ISO week, at midnight in t's
// location.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := WeekdayIndex(int(day.Weekday()))
	return day.AddDate(0, 0, -offset)
}
