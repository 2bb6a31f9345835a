package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/yueban/activity-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAlreadyParticipant is returned when the (user, activity) pair
	// already has a participation row.
	ErrAlreadyParticipant = errors.New("activity repository: participation already exists")
	// ErrCapacityExceeded is returned when inserting the participation
	// would push the activity over its participant limit.
	ErrCapacityExceeded = errors.New("activity repository: activity is full")
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create creates a new activity
func (r *GormActivityRepository) Create(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// FindByID finds an activity by ID with optional preloading
func (r *GormActivityRepository) FindByID(id uint64, preload ...string) (*models.Activity, error) {
	var activity models.Activity
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&activity, id).Error; err != nil {
		return nil, err
	}

	return &activity, nil
}

// List retrieves activities with filtering and pagination
func (r *GormActivityRepository) List(filter ActivityFilter) ([]models.Activity, int64, error) {
	var activities []models.Activity

	query := r.db.Model(&models.Activity{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.SortByEventTime {
		query = query.Order("event_time ASC")
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Preload("Creator").Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

// ListByCreator lists activities created by a user
func (r *GormActivityRepository) ListByCreator(creatorID uint64) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// ListJoined lists activities a user participates in
func (r *GormActivityRepository) ListJoined(userID uint64) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.
		Joins("JOIN participations ON participations.activity_id = activities.id").
		Where("participations.user_id = ?", userID).
		Order("participations.joined_at DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Update updates an activity
func (r *GormActivityRepository) Update(activity *models.Activity) error {
	return r.db.Save(activity).Error
}

// Delete removes an activity and all related data in a transaction
func (r *GormActivityRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("activity_id = ?", id).Delete(&models.Participation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Activity{}, id).Error
	})
}

// Join inserts the participation inside one transaction. The activity row
// is locked for the duration, so the existence check, the insert and the
// capacity re-count cannot interleave with a concurrent join. A duplicate
// key from the composite primary key maps to ErrAlreadyParticipant; a
// post-insert count above the limit rolls the transaction back with
// ErrCapacityExceeded.
func (r *GormActivityRepository) Join(participation *models.Participation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		activityQuery := tx
		if tx.Dialector.Name() != "sqlite" {
			// sqlite has no FOR UPDATE; its single-writer lock already
			// serializes the transaction.
			activityQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var activity models.Activity
		if err := activityQuery.First(&activity, participation.ActivityID).Error; err != nil {
			return err
		}

		var existing models.Participation
		err := tx.Where("activity_id = ? AND user_id = ?", participation.ActivityID, participation.UserID).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyParticipant
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check participation: %w", err)
		}

		if err := tx.Create(participation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyParticipant
			}
			return fmt.Errorf("create participation: %w", err)
		}

		var count int64
		if err := tx.Model(&models.Participation{}).
			Where("activity_id = ?", participation.ActivityID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if count > int64(activity.MaxParticipants) {
			return ErrCapacityExceeded
		}

		return nil
	})
}

// Leave removes a participation
func (r *GormActivityRepository) Leave(activityID, userID uint64) error {
	return r.db.Where("activity_id = ? AND user_id = ?", activityID, userID).
		Delete(&models.Participation{}).Error
}

// FindParticipation finds a specific participation
func (r *GormActivityRepository) FindParticipation(activityID, userID uint64) (*models.Participation, error) {
	var participation models.Participation
	if err := r.db.Where("activity_id = ? AND user_id = ?", activityID, userID).
		First(&participation).Error; err != nil {
		return nil, err
	}
	return &participation, nil
}

// ListParticipants lists participations of an activity with users preloaded
func (r *GormActivityRepository) ListParticipants(activityID uint64) ([]models.Participation, error) {
	var participants []models.Participation
	if err := r.db.Preload("User").
		Where("activity_id = ?", activityID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// CountParticipants counts participations of an activity
func (r *GormActivityRepository) CountParticipants(activityID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participation{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}

// ListExpired lists activities whose end time lies strictly before now
func (r *GormActivityRepository) ListExpired(now time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.Where("end_time IS NOT NULL AND end_time < ?", now).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
