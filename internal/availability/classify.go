// Package availability decides, for a slot and a member, whether and how a
// booking can happen: classification, valid durations, license gating and the
// participant roster with its advisory overbooking flag.
package availability

import (
	"errors"
	"time"

	"pingslot/internal/openslot"
	"pingslot/internal/schedule"
	"pingslot/internal/timegrid"
)

var ErrUnknownSlot = errors.New("unknown slot")

type Category string

const (
	// CategoryTraining blocks booking entirely.
	CategoryTraining Category = "training"
	// CategoryCourse is informational; booking stays allowed.
	CategoryCourse Category = "course"
	// CategoryOpened covers both ad-hoc opened slots and slots inside the
	// day's opening hours.
	CategoryOpened Category = "opened"
	CategoryClosed Category = "closed"
)

const (
	ReasonBlocked      = "blocked"
	ReasonAdHoc        = "ad_hoc"
	ReasonOpeningHours = "opening_hours"
	ReasonNotOpened    = "not_opened"
	ReasonCourse       = "course"
)

type Classification struct {
	Category Category              `json:"category"`
	Bookable bool                  `json:"bookable"`
	Target   string                `json:"target,omitempty"`
	Reason   string                `json:"reason"`
	WeekSlot *schedule.WeekSlot    `json:"week_slot,omitempty"`
	Opened   *openslot.OpenedSlot  `json:"opened_slot,omitempty"`
}

// Classify places one catalog slot into exactly one category. Priority, first
// match wins: containing week slot (blocking, then indicative), ad-hoc opened
// slot, opening hours, closed. weekSlots, opened and hours must all belong to
// date.
func Classify(slot timegrid.Slot, date time.Time, weekSlots []schedule.WeekSlot, opened []openslot.OpenedSlot, hours []schedule.WeekHour) Classification {
	m := slot.Minutes()

	for i := range weekSlots {
		ws := &weekSlots[i]
		if m >= ws.StartMin && m < ws.EndMin {
			if ws.IsBlocking {
				return Classification{
					Category: CategoryTraining,
					Bookable: false,
					Reason:   ReasonBlocked,
					WeekSlot: ws,
				}
			}
			return Classification{
				Category: CategoryCourse,
				Bookable: true,
				Target:   openslot.TargetAll,
				Reason:   ReasonCourse,
				WeekSlot: ws,
			}
		}
	}

	for i := range opened {
		os := &opened[i]
		if os.SlotID == slot.ID {
			return Classification{
				Category: CategoryOpened,
				Bookable: true,
				Target:   os.Target,
				Reason:   ReasonAdHoc,
				Opened:   os,
			}
		}
	}

	if withinOpeningHours(m, hours) {
		return Classification{
			Category: CategoryOpened,
			Bookable: true,
			Target:   openslot.TargetAll,
			Reason:   ReasonOpeningHours,
		}
	}

	return Classification{
		Category: CategoryClosed,
		Bookable: false,
		Reason:   ReasonNotOpened,
	}
}

// withinOpeningHours falls back to the full 08:00-23:00 day when the date has
// no configured windows.
func withinOpeningHours(minute int, hours []schedule.WeekHour) bool {
	if len(hours) == 0 {
		return minute >= timegrid.DefaultOpeningMin && minute < timegrid.DefaultClosingMin
	}
	for _, h := range hours {
		if minute >= h.StartMin && minute < h.EndMin {
			return true
		}
	}
	return false
}

// LicenseMatches reports whether a member's license type may book a slot
// with the given target. An empty license never matches a restricted target.
func LicenseMatches(license, target string) bool {
	switch target {
	case openslot.TargetAll:
		return true
	case openslot.TargetLoisir:
		return license == "L"
	case openslot.TargetCompetition:
		return license == "C"
	}
	return false
}

// targetCompatible reports whether a booking span starting on a slot with
// startTarget may extend over a slot with target. The span may not drift into
// a more restricted audience.
func targetCompatible(startTarget, target string) bool {
	return target == openslot.TargetAll || target == startTarget
}
