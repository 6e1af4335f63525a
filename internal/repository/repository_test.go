package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/alumni-connect/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	require.True(t, isDuplicateKey(dup))
	require.True(t, isDuplicateKey(fmt.Errorf("insert: %w", dup)))
	require.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
	require.False(t, isDuplicateKey(errors.New("row 1062 failed")))
	require.False(t, isDuplicateKey(nil))
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "", placeholders(0))
	require.Equal(t, "?", placeholders(1))
	require.Equal(t, "?,?,?", placeholders(3))
	require.Equal(t, []any{uint64(1), uint64(2)}, idArgs([]uint64{1, 2}))
}

func TestApplicationCreateMapsDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO applications")).
		WithArgs(uint64(3), uint64(9), model.StatusPending).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := NewApplicationRepo(db).Create(context.Background(), &model.Application{OpportunityID: 3, StudentID: 9})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMentorshipReopenOnlyFromRejected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMentorshipRepo(db)

	mock.ExpectExec(q("UPDATE mentorship_requests")+".*"+q("WHERE id = ? AND status = ?")).
		WithArgs(model.StatusPending, "again", uint64(5), model.StatusRejected).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Reopen(context.Background(), 5, "again"), ErrConflict)

	mock.ExpectExec(q("UPDATE mentorship_requests")).
		WithArgs(model.StatusPending, nil, uint64(5), model.StatusRejected).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Reopen(context.Background(), 5, ""))
}

func TestMentorshipUpdateStatusIsConditional(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE mentorship_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?")).
		WithArgs(model.StatusAccepted, uint64(2), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := NewMentorshipRepo(db).UpdateStatus(context.Background(), 2, model.StatusPending, model.StatusAccepted)
	require.ErrorIs(t, err, ErrConflict)
}

// With clientFoundRows the driver reports matched rows, so re-marking a read
// notification affects one row and only a foreign or missing id yields zero.
func TestNotificationMarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepo(db)

	mock.ExpectExec(q("UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?")).
		WithArgs(uint64(4), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), 4, 1))

	mock.ExpectExec(q("UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?")).
		WithArgs(uint64(4), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkRead(context.Background(), 4, 2), ErrNotificationNotFound)
}

func TestAddRegistration(t *testing.T) {
	lockCapacity := q("SELECT capacity FROM workshops WHERE id = ? FOR UPDATE")
	countSeats := q("SELECT COUNT(*) FROM workshop_registrations WHERE workshop_id = ?")
	insert := q("INSERT INTO workshop_registrations (workshop_id, user_id) VALUES (?, ?)")

	t.Run("full", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCapacity).WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
		mock.ExpectQuery(countSeats).WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectRollback()
		err := NewWorkshopRepo(db).AddRegistration(context.Background(), 7, 1)
		require.ErrorIs(t, err, ErrCapacityReached)
	})

	t.Run("unlimited", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCapacity).WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(0))
		mock.ExpectExec(insert).WithArgs(uint64(7), uint64(1)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
		require.NoError(t, NewWorkshopRepo(db).AddRegistration(context.Background(), 7, 1))
	})

	t.Run("already registered", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCapacity).WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(5))
		mock.ExpectQuery(countSeats).WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(insert).WithArgs(uint64(7), uint64(1)).
			WillReturnError(&mysql.MySQLError{Number: 1062})
		mock.ExpectRollback()
		err := NewWorkshopRepo(db).AddRegistration(context.Background(), 7, 1)
		require.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("missing workshop", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockCapacity).WithArgs(uint64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"capacity"}))
		mock.ExpectRollback()
		err := NewWorkshopRepo(db).AddRegistration(context.Background(), 8, 1)
		require.ErrorIs(t, err, ErrWorkshopNotFound)
	})
}
