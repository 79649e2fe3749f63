package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

var tuesday = time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)

func TestRegisterBatchInsertsAllRowsInOneTx(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	insert := regexp.QuoteMeta(`INSERT INTO reservations (slot_id, start_min, date, user_id, user_name, user_email, duration, overbooked)`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs("18:00", 1080, tuesday, 1, "Alice", "alice@club.example", 2, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).
		WithArgs("18:30", 1110, tuesday, 1, "Alice", "alice@club.example", 2, false).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.RegisterBatch(context.Background(), []Reservation{
		{SlotID: "18:00", StartMin: 1080, Date: tuesday, UserID: 1, UserName: "Alice", UserEmail: "alice@club.example", Duration: 2},
		{SlotID: "18:30", StartMin: 1110, Date: tuesday, UserID: 1, UserName: "Alice", UserEmail: "alice@club.example", Duration: 2},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterBatchDuplicateRowIsNoOp(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	// ON CONFLICT DO NOTHING reports zero affected rows; the batch still
	// commits.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs("18:00", 1080, tuesday, 1, "Alice", "", 1, false).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.RegisterBatch(context.Background(), []Reservation{
		{SlotID: "18:00", StartMin: 1080, Date: tuesday, UserID: 1, UserName: "Alice", Duration: 1},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterBatchRollsBackOnError(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs("18:00", 1080, tuesday, 1, "Alice", "", 1, false).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.RegisterBatch(context.Background(), []Reservation{
		{SlotID: "18:00", StartMin: 1080, Date: tuesday, UserID: 1, UserName: "Alice", Duration: 1},
	})
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationAbsentReturnsNil(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations")).
		WithArgs(tuesday, "18:00", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "start_min", "date", "user_id", "user_name", "user_email", "duration", "overbooked", "created_at"}))

	res, err := repo.GetReservation(context.Background(), tuesday, "18:00", 1)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGetReservationsForSlotOrdersByCreation(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations")).
		WithArgs(tuesday, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "start_min", "date", "user_id", "user_name", "user_email", "duration", "overbooked", "created_at"}).
			AddRow(1, "18:00", 1080, tuesday, 1, "Alice", "alice@club.example", 1, false, now).
			AddRow(2, "18:00", 1080, tuesday, 2, "Bob", "", 2, false, now))

	rows, err := repo.GetReservationsForSlot(context.Background(), tuesday, "18:00")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice@club.example", rows[0].UserEmail)
	assert.Equal(t, "Bob", rows[1].UserName)
}

func TestDeleteUserReservationsSpansSlots(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE date = $1 AND user_id = $2 AND slot_id = ANY($3)")).
		WithArgs(tuesday, 1, pq.Array([]string{"18:00", "18:30"})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteUserReservations(context.Background(), tuesday, []string{"18:00", "18:30"}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestOwnersForSlotProjection(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, user_name AS name, duration")).
		WithArgs(tuesday, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "duration"}).
			AddRow(1, "Alice", 2).
			AddRow(2, "Bob", 1))

	owners, err := repo.OwnersForSlot(context.Background(), tuesday, "18:00")
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, "Alice", owners[0].Name)
	assert.Equal(t, 2, owners[0].Duration)
}

func TestGuestsForSlotProjection(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, user_name AS name, status, invited_by")).
		WithArgs(tuesday, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "status", "invited_by"}).
			AddRow(3, "Carol", "accepted", 1))

	guests, err := repo.GuestsForSlot(context.Background(), tuesday, "18:00")
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "accepted", guests[0].Status)
	assert.Equal(t, 1, guests[0].InvitedBy)
}

func TestSetInvitationStatus(t *testing.T) {
	repo, mock, closer := setupMockRepo(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE slot_invitations SET status = $1")).
		WithArgs("accepted", tuesday, "18:00", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.SetInvitationStatus(context.Background(), tuesday, "18:00", 3, "accepted")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
