package availability

import (
	"context"
	"time"

	"pingslot/internal/openslot"
	"pingslot/internal/schedule"
	"pingslot/internal/settings"
	"pingslot/internal/timegrid"
)

// User carries the member identity the engine needs; it comes from the
// identity provider's token claims.
type User struct {
	ID      int
	Name    string
	Email   string
	License string
}

type WeekSource interface {
	GetWeekConfig(ctx context.Context, weekStart time.Time) (*schedule.WeekConfig, error)
	GetWeekSlotsByDate(ctx context.Context, date time.Time) ([]schedule.WeekSlot, error)
	GetWeekHoursByDate(ctx context.Context, date time.Time) ([]schedule.WeekHour, error)
}

type OpenedSource interface {
	ListByDate(ctx context.Context, date time.Time) ([]openslot.OpenedSlot, error)
}

type RosterSource interface {
	OwnersForSlot(ctx context.Context, date time.Time, slotID string) ([]Owner, error)
	GuestsForSlot(ctx context.Context, date time.Time, slotID string) ([]Guest, error)
}

type CapacitySource interface {
	TotalTables(ctx context.Context) (int, error)
}

type Service struct {
	weeks    WeekSource
	opened   OpenedSource
	roster   RosterSource
	capacity CapacitySource
	now      func() time.Time
}

func NewService(weeks WeekSource, opened OpenedSource, roster RosterSource, capacity CapacitySource) *Service {
	return &Service{
		weeks:    weeks,
		opened:   opened,
		roster:   roster,
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock pins the service's notion of now; tests use it to fix the
// current week.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) dayContext(ctx context.Context, date time.Time) ([]schedule.WeekSlot, []openslot.OpenedSlot, []schedule.WeekHour, error) {
	weekSlots, err := s.weeks.GetWeekSlotsByDate(ctx, date)
	if err != nil {
		return nil, nil, nil, err
	}
	opened, err := s.opened.ListByDate(ctx, date)
	if err != nil {
		return nil, nil, nil, err
	}
	hours, err := s.weeks.GetWeekHoursByDate(ctx, date)
	if err != nil {
		return nil, nil, nil, err
	}
	return weekSlots, opened, hours, nil
}

// Classify is the query form of the pure classifier.
func (s *Service) Classify(ctx context.Context, date time.Time, slotID string) (*Classification, error) {
	slot, ok := timegrid.SlotByID(slotID)
	if !ok {
		return nil, ErrUnknownSlot
	}

	weekSlots, opened, hours, err := s.dayContext(ctx, date)
	if err != nil {
		return nil, err
	}

	cls := Classify(slot, date, weekSlots, opened, hours)
	return &cls, nil
}

// WeekReservable reports whether members may book in the week containing
// date: the week has an explicit config, or it is the current calendar week
// (grace default before any configuration exists).
func (s *Service) WeekReservable(ctx context.Context, date time.Time) (bool, error) {
	weekStart := timegrid.MondayOf(date)

	cfg, err := s.weeks.GetWeekConfig(ctx, weekStart)
	if err != nil {
		return false, err
	}
	if cfg != nil {
		return true, nil
	}

	// Compare calendar days, not instants: request dates are UTC midnights
	// while the clock runs in server-local time.
	current := timegrid.MondayOf(s.now())
	return weekStart.Format(timegrid.DateFmt) == current.Format(timegrid.DateFmt), nil
}

// CanUserRegister runs the full registration gate and, when refused, names
// the reason.
func (s *Service) CanUserRegister(ctx context.Context, user User, date time.Time, slotID string) (bool, string, error) {
	reservable, err := s.WeekReservable(ctx, date)
	if err != nil {
		return false, "", err
	}
	if !reservable {
		return false, "week_not_open", nil
	}

	cls, err := s.Classify(ctx, date, slotID)
	if err != nil {
		return false, "", err
	}
	if !cls.Bookable {
		return false, cls.Reason, nil
	}

	if !LicenseMatches(user.License, cls.Target) {
		return false, "license_mismatch", nil
	}

	return true, "", nil
}

func (s *Service) AvailableDurations(ctx context.Context, date time.Time, slotID string) ([]int, error) {
	if _, ok := timegrid.SlotByID(slotID); !ok {
		return nil, ErrUnknownSlot
	}

	weekSlots, opened, hours, err := s.dayContext(ctx, date)
	if err != nil {
		return nil, err
	}

	return AvailableDurations(slotID, date, weekSlots, opened, hours), nil
}

func (s *Service) Roster(ctx context.Context, date time.Time, slotID string) (*Roster, error) {
	owners, err := s.roster.OwnersForSlot(ctx, date, slotID)
	if err != nil {
		return nil, err
	}
	guests, err := s.roster.GuestsForSlot(ctx, date, slotID)
	if err != nil {
		return nil, err
	}

	tables, err := s.capacity.TotalTables(ctx)
	if err != nil {
		return nil, err
	}

	return BuildRoster(owners, guests, settings.MaxPersons(tables)), nil
}

// SlotInfo bundles everything the calendar UI needs for one slot.
type SlotInfo struct {
	Slot           timegrid.Slot  `json:"slot"`
	Classification Classification `json:"classification"`
	CanRegister    bool           `json:"can_register"`
	RefusalReason  string         `json:"refusal_reason,omitempty"`
	Durations      []int          `json:"durations"`
	Roster         *Roster        `json:"roster"`
}

func (s *Service) SlotInfo(ctx context.Context, user User, date time.Time, slotID string) (*SlotInfo, error) {
	slot, ok := timegrid.SlotByID(slotID)
	if !ok {
		return nil, ErrUnknownSlot
	}

	weekSlots, opened, hours, err := s.dayContext(ctx, date)
	if err != nil {
		return nil, err
	}

	return s.slotInfo(ctx, user, date, slot, weekSlots, opened, hours)
}

// DaySheet computes SlotInfo for the whole catalog on one date, reusing one
// set of day queries.
func (s *Service) DaySheet(ctx context.Context, user User, date time.Time) ([]SlotInfo, error) {
	weekSlots, opened, hours, err := s.dayContext(ctx, date)
	if err != nil {
		return nil, err
	}

	infos := make([]SlotInfo, 0, timegrid.Count())
	for _, slot := range timegrid.Slots() {
		info, err := s.slotInfo(ctx, user, date, slot, weekSlots, opened, hours)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

func (s *Service) slotInfo(ctx context.Context, user User, date time.Time, slot timegrid.Slot, weekSlots []schedule.WeekSlot, opened []openslot.OpenedSlot, hours []schedule.WeekHour) (*SlotInfo, error) {
	cls := Classify(slot, date, weekSlots, opened, hours)

	canRegister := false
	reason := cls.Reason
	if cls.Bookable {
		reservable, err := s.WeekReservable(ctx, date)
		if err != nil {
			return nil, err
		}
		switch {
		case !reservable:
			reason = "week_not_open"
		case !LicenseMatches(user.License, cls.Target):
			reason = "license_mismatch"
		default:
			canRegister = true
			reason = ""
		}
	}

	roster, err := s.Roster(ctx, date, slot.ID)
	if err != nil {
		return nil, err
	}

	var durations []int
	if canRegister {
		durations = AvailableDurations(slot.ID, date, weekSlots, opened, hours)
	}

	return &SlotInfo{
		Slot:           slot,
		Classification: cls,
		CanRegister:    canRegister,
		RefusalReason:  reason,
		Durations:      durations,
		Roster:         roster,
	}, nil
}
