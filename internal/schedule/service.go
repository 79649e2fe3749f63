package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pingslot/internal/logger"
	"pingslot/internal/metrics"
)

var (
	ErrInvalidMode     = errors.New("invalid merge mode")
	ErrNoTemplates     = errors.New("at least one template is required")
	ErrNotMondayAnchor = errors.New("week start must be a Monday")
)

type Service interface {
	ApplyTemplateToWeeks(ctx context.Context, templateID int, weekStarts []time.Time, mode Mode) (*ApplyResult, error)
	ApplyTemplatesToWeeks(ctx context.Context, templateIDs []int, weekStarts []time.Time) (*ApplyResult, error)
	Analyze(ctx context.Context, templateID int, weekStarts []time.Time) (*AnalysisResult, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ApplyTemplateToWeeks materializes one template onto each given week,
// resolving conflicts with any pre-existing configuration per mode.
func (s *service) ApplyTemplateToWeeks(ctx context.Context, templateID int, weekStarts []time.Time, mode Mode) (*ApplyResult, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	tpl, tplSlots, tplHours, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	total := &ApplyResult{Mode: mode, TemplateName: tpl.Name}
	for _, weekStart := range weekStarts {
		if err := checkMonday(weekStart); err != nil {
			return nil, err
		}

		res, err := s.applyToWeek(ctx, tpl, tplSlots, tplHours, weekStart, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %q to week %s: %w",
				tpl.Name, weekStart.Format("2006-01-02"), err)
		}
		total.add(res)
	}
	total.WeeksApplied = len(weekStarts)

	metrics.RecordTemplateApplication(string(mode), total.SkippedEntries+total.ReplacedEntries, total.DeletedReservations)
	logger.Info("template applied",
		"template", tpl.Name,
		"mode", string(mode),
		"weeks", len(weekStarts),
		"skipped", total.SkippedEntries,
		"replaced", total.ReplacedEntries,
		"deleted_reservations", total.DeletedReservations,
	)

	return total, nil
}

// ApplyTemplatesToWeeks applies a priority-ordered chain: the first template
// overwrites the week, every following one merges. Since merge keeps what is
// already written, earlier templates win every conflict transitively.
func (s *service) ApplyTemplatesToWeeks(ctx context.Context, templateIDs []int, weekStarts []time.Time) (*ApplyResult, error) {
	if len(templateIDs) == 0 {
		return nil, ErrNoTemplates
	}

	total, err := s.ApplyTemplateToWeeks(ctx, templateIDs[0], weekStarts, ModeOverwrite)
	if err != nil {
		return nil, err
	}

	for _, id := range templateIDs[1:] {
		res, err := s.ApplyTemplateToWeeks(ctx, id, weekStarts, ModeMerge)
		if err != nil {
			return nil, err
		}
		total.add(res)
	}

	return total, nil
}

// Analyze previews a template application without writing anything. It uses
// the same materialization and overlap predicate as the merger, so the two
// can never disagree on what counts as a conflict.
func (s *service) Analyze(ctx context.Context, templateID int, weekStarts []time.Time) (*AnalysisResult, error) {
	tpl, tplSlots, tplHours, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		TemplateName:    tpl.Name,
		ConfiguredWeeks: []time.Time{},
		Conflicts:       []Conflict{},
	}

	for _, weekStart := range weekStarts {
		if err := checkMonday(weekStart); err != nil {
			return nil, err
		}

		cfg, err := s.repo.GetWeekConfig(ctx, weekStart)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			continue
		}
		result.ConfiguredWeeks = append(result.ConfiguredWeeks, weekStart)

		existingSlots, err := s.repo.GetWeekSlots(ctx, cfg.ID)
		if err != nil {
			return nil, err
		}
		existingHours, err := s.repo.GetWeekHours(ctx, cfg.ID)
		if err != nil {
			return nil, err
		}

		for _, newSlot := range MaterializeSlots(tplSlots, weekStart) {
			for _, existing := range existingSlots {
				if WeekSlotsOverlap(newSlot, existing) {
					result.Conflicts = append(result.Conflicts, Conflict{
						Kind:          ConflictKindSlot,
						WeekStart:     weekStart,
						Date:          newSlot.Date,
						NewName:       newSlot.Name,
						NewStartMin:   newSlot.StartMin,
						NewEndMin:     newSlot.EndMin,
						ExistingName:  existing.Name,
						ExistingStart: existing.StartMin,
						ExistingEnd:   existing.EndMin,
					})
				}
			}
		}

		for _, newHour := range MaterializeHours(tplHours, weekStart) {
			for _, existing := range existingHours {
				if WeekHoursOverlap(newHour, existing) {
					result.Conflicts = append(result.Conflicts, Conflict{
						Kind:          ConflictKindHour,
						WeekStart:     weekStart,
						Date:          newHour.Date,
						NewStartMin:   newHour.StartMin,
						NewEndMin:     newHour.EndMin,
						ExistingStart: existing.StartMin,
						ExistingEnd:   existing.EndMin,
					})
				}
			}
		}
	}

	return result, nil
}

func (s *service) loadTemplate(ctx context.Context, templateID int) (*Template, []TemplateSlot, []TemplateHour, error) {
	tpl, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, nil, nil, err
	}

	slots, err := s.repo.GetTemplateSlots(ctx, templateID)
	if err != nil {
		return nil, nil, nil, err
	}

	hours, err := s.repo.GetTemplateHours(ctx, templateID)
	if err != nil {
		return nil, nil, nil, err
	}

	return tpl, slots, hours, nil
}

func (s *service) applyToWeek(ctx context.Context, tpl *Template, tplSlots []TemplateSlot, tplHours []TemplateHour, weekStart time.Time, mode Mode) (*ApplyResult, error) {
	newSlots := MaterializeSlots(tplSlots, weekStart)
	newHours := MaterializeHours(tplHours, weekStart)

	res := &ApplyResult{Mode: mode, TemplateName: tpl.Name}

	cfg, err := s.repo.GetWeekConfig(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	plan := WeekWrite{
		WeekStart:    weekStart,
		TemplateName: tpl.Name,
	}

	if cfg == nil {
		// Fresh week: no conflicts possible regardless of mode.
		plan.CreateConfig = true
		plan.InsertSlots = newSlots
		plan.InsertHours = newHours
		res.CreatedWeeks = 1
	} else {
		plan.ConfigID = cfg.ID
		plan.TemplateName = mergedTemplateName(cfg.TemplateName, tpl.Name, mode)

		switch mode {
		case ModeOverwrite:
			plan.DeleteAllExisting = true
			plan.InsertSlots = newSlots
			plan.InsertHours = newHours

		case ModeMerge, ModeMergeKeepNew:
			existingSlots, err := s.repo.GetWeekSlots(ctx, cfg.ID)
			if err != nil {
				return nil, err
			}
			existingHours, err := s.repo.GetWeekHours(ctx, cfg.ID)
			if err != nil {
				return nil, err
			}

			for _, newSlot := range newSlots {
				losers := overlappingSlotIDs(newSlot, existingSlots)
				if len(losers) == 0 {
					plan.InsertSlots = append(plan.InsertSlots, newSlot)
					continue
				}
				if mode == ModeMerge {
					res.SkippedEntries++
					continue
				}
				plan.DeleteSlotIDs = append(plan.DeleteSlotIDs, losers...)
				plan.InsertSlots = append(plan.InsertSlots, newSlot)
				res.ReplacedEntries += len(losers)
			}

			for _, newHour := range newHours {
				losers := overlappingHourIDs(newHour, existingHours)
				if len(losers) == 0 {
					plan.InsertHours = append(plan.InsertHours, newHour)
					continue
				}
				if mode == ModeMerge {
					res.SkippedEntries++
					continue
				}
				plan.DeleteHourIDs = append(plan.DeleteHourIDs, losers...)
				plan.InsertHours = append(plan.InsertHours, newHour)
				res.ReplacedEntries += len(losers)
			}

		default:
			return nil, ErrInvalidMode
		}
	}

	// A training slot cannot coexist with member reservations inside its
	// span. Courses never evict.
	for _, slot := range plan.InsertSlots {
		if slot.IsBlocking {
			plan.EvictRanges = append(plan.EvictRanges, EvictRange{
				Date:     slot.Date,
				StartMin: slot.StartMin,
				EndMin:   slot.EndMin,
			})
		}
	}

	deleted, err := s.repo.ApplyWeekWrite(ctx, plan)
	if err != nil {
		return nil, err
	}

	res.InsertedSlots = len(plan.InsertSlots)
	res.InsertedHours = len(plan.InsertHours)
	res.DeletedReservations = int(deleted)
	return res, nil
}

func overlappingSlotIDs(newSlot WeekSlot, existing []WeekSlot) []int {
	var ids []int
	for _, e := range existing {
		if WeekSlotsOverlap(newSlot, e) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func overlappingHourIDs(newHour WeekHour, existing []WeekHour) []int {
	var ids []int
	for _, e := range existing {
		if WeekHoursOverlap(newHour, e) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// mergedTemplateName keeps track of every template contributing to a week.
// Overwrite resets the list; merge modes append.
func mergedTemplateName(current, applied string, mode Mode) string {
	if mode == ModeOverwrite || current == "" {
		return applied
	}
	for _, part := range strings.Split(current, ", ") {
		if part == applied {
			return current
		}
	}
	return current + ", " + applied
}

func checkMonday(weekStart time.Time) error {
	if weekStart.Weekday() != time.Monday {
		return ErrNotMondayAnchor
	}
	return nil
}
