package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrTemplateNotFound = errors.New("template not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTemplate(ctx context.Context, name string) (*Template, error) {
	query := `
		INSERT INTO templates (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`

	var tpl Template
	if err := r.db.GetContext(ctx, &tpl, query, name); err != nil {
		return nil, err
	}

	return &tpl, nil
}

func (r *repository) GetTemplate(ctx context.Context, id int) (*Template, error) {
	query := `SELECT id, name, created_at FROM templates WHERE id = $1`

	var tpl Template
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &tpl, nil
}

func (r *repository) ListTemplates(ctx context.Context) ([]Template, error) {
	query := `SELECT id, name, created_at FROM templates ORDER BY name`

	var templates []Template
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *repository) DeleteTemplate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func (r *repository) AddTemplateSlot(ctx context.Context, slot TemplateSlot) (*TemplateSlot, error) {
	query := `
		INSERT INTO template_slots (template_id, day_of_week, start_min, end_min, name, coach, slot_group, is_blocking)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, template_id, day_of_week, start_min, end_min, name, coach, slot_group, is_blocking
	`

	var out TemplateSlot
	err := r.db.GetContext(ctx, &out, query,
		slot.TemplateID, slot.DayOfWeek, slot.StartMin, slot.EndMin,
		slot.Name, slot.Coach, slot.SlotGroup, slot.IsBlocking)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *repository) DeleteTemplateSlot(ctx context.Context, templateID, slotID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM template_slots WHERE id = $1 AND template_id = $2`, slotID, templateID)
	return err
}

func (r *repository) GetTemplateSlots(ctx context.Context, templateID int) ([]TemplateSlot, error) {
	query := `
		SELECT id, template_id, day_of_week, start_min, end_min, name, coach, slot_group, is_blocking
		FROM template_slots
		WHERE template_id = $1
		ORDER BY day_of_week, start_min
	`

	var slots []TemplateSlot
	if err := r.db.SelectContext(ctx, &slots, query, templateID); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) AddTemplateHour(ctx context.Context, hour TemplateHour) (*TemplateHour, error) {
	query := `
		INSERT INTO template_hours (template_id, day_of_week, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, template_id, day_of_week, start_min, end_min
	`

	var out TemplateHour
	err := r.db.GetContext(ctx, &out, query, hour.TemplateID, hour.DayOfWeek, hour.StartMin, hour.EndMin)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r *repository) DeleteTemplateHour(ctx context.Context, templateID, hourID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM template_hours WHERE id = $1 AND template_id = $2`, hourID, templateID)
	return err
}

func (r *repository) GetTemplateHours(ctx context.Context, templateID int) ([]TemplateHour, error) {
	query := `
		SELECT id, template_id, day_of_week, start_min, end_min
		FROM template_hours
		WHERE template_id = $1
		ORDER BY day_of_week, start_min
	`

	var hours []TemplateHour
	if err := r.db.SelectContext(ctx, &hours, query, templateID); err != nil {
		return nil, err
	}

	return hours, nil
}

func (r *repository) GetWeekConfig(ctx context.Context, weekStart time.Time) (*WeekConfig, error) {
	query := `SELECT id, week_start, template_name, created_at FROM week_configs WHERE week_start = $1`

	var cfg WeekConfig
	if err := r.db.GetContext(ctx, &cfg, query, weekStart); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &cfg, nil
}

func (r *repository) GetWeekSlots(ctx context.Context, weekConfigID int) ([]WeekSlot, error) {
	query := `
		SELECT id, week_config_id, date, start_min, end_min, name, coach, slot_group, is_blocking
		FROM week_slots
		WHERE week_config_id = $1
		ORDER BY date, start_min
	`

	var slots []WeekSlot
	if err := r.db.SelectContext(ctx, &slots, query, weekConfigID); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) GetWeekHours(ctx context.Context, weekConfigID int) ([]WeekHour, error) {
	query := `
		SELECT id, week_config_id, date, start_min, end_min
		FROM week_hours
		WHERE week_config_id = $1
		ORDER BY date, start_min
	`

	var hours []WeekHour
	if err := r.db.SelectContext(ctx, &hours, query, weekConfigID); err != nil {
		return nil, err
	}

	return hours, nil
}

func (r *repository) GetWeekSlotsByDate(ctx context.Context, date time.Time) ([]WeekSlot, error) {
	query := `
		SELECT id, week_config_id, date, start_min, end_min, name, coach, slot_group, is_blocking
		FROM week_slots
		WHERE date = $1
		ORDER BY start_min
	`

	var slots []WeekSlot
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) GetWeekHoursByDate(ctx context.Context, date time.Time) ([]WeekHour, error) {
	query := `
		SELECT id, week_config_id, date, start_min, end_min
		FROM week_hours
		WHERE date = $1
		ORDER BY start_min
	`

	var hours []WeekHour
	if err := r.db.SelectContext(ctx, &hours, query, date); err != nil {
		return nil, err
	}

	return hours, nil
}

func (r *repository) DeleteWeekConfig(ctx context.Context, weekStart time.Time) error {
	// week_slots and week_hours cascade on the config row.
	_, err := r.db.ExecContext(ctx, `DELETE FROM week_configs WHERE week_start = $1`, weekStart)
	return err
}

func (r *repository) DeleteWeekSlot(ctx context.Context, weekConfigID, slotID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM week_slots WHERE id = $1 AND week_config_id = $2`, slotID, weekConfigID)
	return err
}

func (r *repository) ApplyWeekWrite(ctx context.Context, plan WeekWrite) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin week write: %w", err)
	}
	defer tx.Rollback()

	configID := plan.ConfigID
	if plan.CreateConfig {
		err := tx.GetContext(ctx, &configID,
			`INSERT INTO week_configs (week_start, template_name) VALUES ($1, $2) RETURNING id`,
			plan.WeekStart, plan.TemplateName)
		if err != nil {
			return 0, fmt.Errorf("failed to create week config: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`UPDATE week_configs SET template_name = $1 WHERE id = $2`,
			plan.TemplateName, configID)
		if err != nil {
			return 0, fmt.Errorf("failed to update week config: %w", err)
		}
	}

	if plan.DeleteAllExisting {
		if _, err := tx.ExecContext(ctx, `DELETE FROM week_slots WHERE week_config_id = $1`, configID); err != nil {
			return 0, fmt.Errorf("failed to clear week slots: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM week_hours WHERE week_config_id = $1`, configID); err != nil {
			return 0, fmt.Errorf("failed to clear week hours: %w", err)
		}
	}

	if len(plan.DeleteSlotIDs) > 0 {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM week_slots WHERE week_config_id = $1 AND id = ANY($2)`,
			configID, pq.Array(plan.DeleteSlotIDs))
		if err != nil {
			return 0, fmt.Errorf("failed to delete conflicting slots: %w", err)
		}
	}

	if len(plan.DeleteHourIDs) > 0 {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM week_hours WHERE week_config_id = $1 AND id = ANY($2)`,
			configID, pq.Array(plan.DeleteHourIDs))
		if err != nil {
			return 0, fmt.Errorf("failed to delete conflicting hours: %w", err)
		}
	}

	for _, slot := range plan.InsertSlots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO week_slots (week_config_id, date, start_min, end_min, name, coach, slot_group, is_blocking)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			configID, slot.Date, slot.StartMin, slot.EndMin, slot.Name, slot.Coach, slot.SlotGroup, slot.IsBlocking)
		if err != nil {
			return 0, fmt.Errorf("failed to insert week slot: %w", err)
		}
	}

	for _, hour := range plan.InsertHours {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO week_hours (week_config_id, date, start_min, end_min)
			 VALUES ($1, $2, $3, $4)`,
			configID, hour.Date, hour.StartMin, hour.EndMin)
		if err != nil {
			return 0, fmt.Errorf("failed to insert week hour: %w", err)
		}
	}

	var deleted int64
	for _, ev := range plan.EvictRanges {
		// A reservation's slot start in [StartMin, EndMin) falls inside the
		// blocking span.
		result, err := tx.ExecContext(ctx,
			`DELETE FROM reservations WHERE date = $1 AND start_min >= $2 AND start_min < $3`,
			ev.Date, ev.StartMin, ev.EndMin)
		if err != nil {
			return 0, fmt.Errorf("failed to evict reservations: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		deleted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit week write: %w", err)
	}

	return deleted, nil
}
