package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/repository"
	"gorm.io/gorm"
)

func newTestSweeper(db *gorm.DB) *Sweeper {
	return NewSweeper(repository.NewActivityRepository(db), time.Hour, zerolog.Nop())
}

func TestSweeper_Sweep(t *testing.T) {
	db := setupTestDB(t)
	sweeper := newTestSweeper(db)

	creator := createTestUser(t, db, "creator")
	member := createTestUser(t, db, "member")

	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	futureEnd := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)

	expired := createTestActivity(t, db, creator.ID, 5, &pastEnd)
	upcoming := createTestActivity(t, db, creator.ID, 5, &futureEnd)
	openEnded := createTestActivity(t, db, creator.ID, 5, nil)

	// dependents of the expired activity must go with it
	require.NoError(t, db.Create(&models.Participation{
		UserID:     member.ID,
		ActivityID: expired.ID,
		JoinedAt:   now,
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		SenderID:       member.ID,
		ReceiverID:     creator.ID,
		ActivityID:     expired.ID,
		ConversationID: "1-1-2",
		Content:        "is this still on?",
		Timestamp:      now,
	}).Error)

	deleted := sweeper.Sweep(now)
	require.Equal(t, 1, deleted)

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Where("id = ?", expired.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Participation{}).Where("activity_id = ?", expired.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Message{}).Where("activity_id = ?", expired.ID).Count(&count).Error)
	require.Zero(t, count)

	// activities still in the future, or without an end time, survive
	require.NoError(t, db.Model(&models.Activity{}).Where("id = ?", upcoming.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&models.Activity{}).Where("id = ?", openEnded.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSweeper_Sweep_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	sweeper := newTestSweeper(db)

	creator := createTestUser(t, db, "creator")
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := now.Add(-time.Hour)
	createTestActivity(t, db, creator.ID, 5, &pastEnd)

	require.Equal(t, 1, sweeper.Sweep(now))
	require.Equal(t, 0, sweeper.Sweep(now))
}

func TestSweeper_Sweep_EndTimeBoundary(t *testing.T) {
	db := setupTestDB(t)
	sweeper := newTestSweeper(db)

	creator := createTestUser(t, db, "creator")
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	// strictly-before comparison: ending exactly now is not yet expired
	endsNow := now
	createTestActivity(t, db, creator.ID, 5, &endsNow)

	require.Equal(t, 0, sweeper.Sweep(now))
}
