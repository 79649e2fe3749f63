// Package settings holds the club's key-value configuration rows. The only
// key the booking engine reads is total_tables.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
)

const (
	KeyTotalTables = "total_tables"

	DefaultTotalTables = 8

	// PersonsPerTable converts table capacity into the advisory person
	// limit used by overbooking detection.
	PersonsPerTable = 2
)

type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// TotalTables reads the capacity setting, falling back to the default
	// when unset.
	TotalTables(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return err
}

func (r *repository) TotalTables(ctx context.Context) (int, error) {
	value, found, err := r.Get(ctx, KeyTotalTables)
	if err != nil {
		return 0, err
	}
	if !found {
		return DefaultTotalTables, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return DefaultTotalTables, nil
	}
	return n, nil
}

// MaxPersons is the advisory participant ceiling for a slot.
func MaxPersons(totalTables int) int {
	return totalTables * PersonsPerTable
}
