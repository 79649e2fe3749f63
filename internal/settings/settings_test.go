package settings

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestTotalTablesConfigured(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")).
		WithArgs(KeyTotalTables).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("12"))

	n, err := repo.TotalTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestTotalTablesDefaultWhenUnset(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")).
		WithArgs(KeyTotalTables).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	n, err := repo.TotalTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTotalTables, n)
}

func TestTotalTablesDefaultOnGarbage(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings")).
		WithArgs(KeyTotalTables).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("-3"))

	n, err := repo.TotalTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTotalTables, n)
}

func TestSetUpserts(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings (key, value)")).
		WithArgs(KeyTotalTables, "10").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(context.Background(), KeyTotalTables, "10"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxPersons(t *testing.T) {
	assert.Equal(t, 16, MaxPersons(8))
	assert.Equal(t, 2, MaxPersons(1))
}
