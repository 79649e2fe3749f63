package availability

import (
	"time"

	"pingslot/internal/openslot"
	"pingslot/internal/schedule"
	"pingslot/internal/timegrid"
)

// AvailableDurations returns the booking durations (in half-hour units,
// ascending) valid from startID on date. A duration is rejected when it runs
// past the catalog or when any base slot of its span is blocked by training.
// Spans starting on an ad-hoc opened slot must additionally stay bookable and
// target-compatible for their whole length.
func AvailableDurations(startID string, date time.Time, weekSlots []schedule.WeekSlot, opened []openslot.OpenedSlot, hours []schedule.WeekHour) []int {
	startIdx := timegrid.Index(startID)
	if startIdx < 0 {
		return nil
	}

	startSlot, _ := timegrid.SlotAt(startIdx)
	startCls := Classify(startSlot, date, weekSlots, opened, hours)
	openedStart := startCls.Category == CategoryOpened && startCls.Reason == ReasonAdHoc

	var durations []int
	for d := 1; d <= timegrid.MaxDurationUnits; d++ {
		if startIdx+d > timegrid.Count() {
			break
		}

		valid := true
		for i := 0; i < d; i++ {
			slot, _ := timegrid.SlotAt(startIdx + i)
			cls := Classify(slot, date, weekSlots, opened, hours)

			if cls.Category == CategoryTraining {
				valid = false
				break
			}
			if openedStart && i > 0 {
				if !cls.Bookable || !targetCompatible(startCls.Target, cls.Target) {
					valid = false
					break
				}
			}
		}

		if valid {
			durations = append(durations, d)
		}
	}

	return durations
}

func containsDuration(durations []int, d int) bool {
	for _, v := range durations {
		if v == d {
			return true
		}
	}
	return false
}
