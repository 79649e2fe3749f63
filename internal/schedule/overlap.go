package schedule

import (
	"time"

	"pingslot/internal/timegrid"
)

// RangesOverlap reports whether two half-open minute ranges [s1,e1) and
// [s2,e2) intersect. A range ending at 19:00 does not conflict with one
// starting at 19:00.
func RangesOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// WeekSlotsOverlap applies the shared overlap predicate to two date-stamped
// slots. Both the merger and the analyzer must go through this function.
func WeekSlotsOverlap(a, b WeekSlot) bool {
	return sameDate(a.Date, b.Date) && RangesOverlap(a.StartMin, a.EndMin, b.StartMin, b.EndMin)
}

func WeekHoursOverlap(a, b WeekHour) bool {
	return sameDate(a.Date, b.Date) && RangesOverlap(a.StartMin, a.EndMin, b.StartMin, b.EndMin)
}

// TemplateSlotsOverlap compares template-native entries by day of week.
func TemplateSlotsOverlap(a, b TemplateSlot) bool {
	return a.DayOfWeek == b.DayOfWeek && RangesOverlap(a.StartMin, a.EndMin, b.StartMin, b.EndMin)
}

// MaterializeSlots stamps a template's recurring slots onto the 7 concrete
// dates of a Monday-start week.
func MaterializeSlots(tplSlots []TemplateSlot, weekStart time.Time) []WeekSlot {
	out := make([]WeekSlot, 0, len(tplSlots))
	for _, ts := range tplSlots {
		out = append(out, WeekSlot{
			Date:       weekStart.AddDate(0, 0, timegrid.WeekdayIndex(ts.DayOfWeek)),
			StartMin:   ts.StartMin,
			EndMin:     ts.EndMin,
			Name:       ts.Name,
			Coach:      ts.Coach,
			SlotGroup:  ts.SlotGroup,
			IsBlocking: ts.IsBlocking,
		})
	}
	return out
}

// MaterializeHours stamps a template's opening-hour windows onto a week.
func MaterializeHours(tplHours []TemplateHour, weekStart time.Time) []WeekHour {
	out := make([]WeekHour, 0, len(tplHours))
	for _, th := range tplHours {
		out = append(out, WeekHour{
			Date:     weekStart.AddDate(0, 0, timegrid.WeekdayIndex(th.DayOfWeek)),
			StartMin: th.StartMin,
			EndMin:   th.EndMin,
		})
	}
	return out
}
