package openslot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingslot/internal/notify"
)

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) NotifySlotClosed(_ context.Context, date time.Time, slotID string) {
	n.calls = append(n.calls, date.Format("2006-01-02")+" "+slotID)
}

func TestCloseSlotNotifiesHoldersBeforeDeleting(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, slot_id, opened_by, target, created_at")).
		WithArgs(saturday, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "slot_id", "opened_by", "target", "created_at"}).
			AddRow(1, saturday, "18:00", 9, TargetAll, time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations")).
		WithArgs(saturday, "18:00").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM opened_slots")).
		WithArgs(saturday, "18:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	notifier := &recordingNotifier{}
	h := NewHandler(sqlxDB, notify.NopPublisher{}, notifier)

	router := gin.New()
	router.DELETE("/opened-slots", h.CloseSlot)

	body := `{"date":"2026-09-12","slot_id":"18:00"}`
	req := httptest.NewRequest(http.MethodDelete, "/opened-slots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2026-09-12 18:00"}, notifier.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSlotNotOpenedSkipsNotices(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, slot_id, opened_by, target, created_at")).
		WithArgs(saturday, "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "slot_id", "opened_by", "target", "created_at"}))

	notifier := &recordingNotifier{}
	h := NewHandler(sqlxDB, notify.NopPublisher{}, notifier)

	router := gin.New()
	router.DELETE("/opened-slots", h.CloseSlot)

	body := `{"date":"2026-09-12","slot_id":"18:00"}`
	req := httptest.NewRequest(http.MethodDelete, "/opened-slots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, notifier.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}
