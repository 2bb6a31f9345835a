package repository

import (
	"fmt"

	"github.com/yueban/activity-board/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes the user and all dependent rows in one transaction:
// messages and participations of activities they created, the activities
// themselves, their own participations, and every message they sent or
// received.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ownedActivities := tx.Model(&models.Activity{}).Select("id").Where("creator_id = ?", id)

		if err := tx.Where("activity_id IN (?)", ownedActivities).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages of owned activities: %w", err)
		}
		if err := tx.Where("activity_id IN (?)", ownedActivities).Delete(&models.Participation{}).Error; err != nil {
			return fmt.Errorf("delete participations of owned activities: %w", err)
		}
		if err := tx.Where("creator_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return fmt.Errorf("delete owned activities: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Participation{}).Error; err != nil {
			return fmt.Errorf("delete participations: %w", err)
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", id, id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		return nil
	})
}
