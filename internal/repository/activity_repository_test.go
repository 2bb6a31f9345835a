package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yueban/activity-board/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGormActivityRepository_Join_LocksActivityRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	// the activity row must be locked for the whole join transaction
	mock.ExpectQuery("SELECT \\* FROM `activities` WHERE .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "max_participants"}).AddRow(1, 2))
	mock.ExpectQuery("SELECT \\* FROM `participations` WHERE activity_id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "activity_id"}))
	mock.ExpectExec("INSERT INTO `participations`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `participations` WHERE activity_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Join(&models.Participation{
		UserID:     7,
		ActivityID: 1,
		JoinedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormActivityRepository_Join_CapacityRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `activities` WHERE .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "max_participants"}).AddRow(1, 1))
	mock.ExpectQuery("SELECT \\* FROM `participations` WHERE activity_id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "activity_id"}))
	mock.ExpectExec("INSERT INTO `participations`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// the post-insert re-count sees the limit breached, so the insert is undone
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `participations` WHERE activity_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Join(&models.Participation{
		UserID:     8,
		ActivityID: 1,
		JoinedAt:   time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormActivityRepository_Join_ExistingParticipant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `activities` WHERE .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "max_participants"}).AddRow(1, 5))
	mock.ExpectQuery("SELECT \\* FROM `participations` WHERE activity_id = \\? AND user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "activity_id"}).AddRow(7, 1))
	mock.ExpectRollback()

	err := repo.Join(&models.Participation{
		UserID:     7,
		ActivityID: 1,
		JoinedAt:   time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrAlreadyParticipant)
	require.NoError(t, mock.ExpectationsWereMet())
}
