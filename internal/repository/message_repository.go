package repository

import (
	"github.com/yueban/activity-board/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new message
func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns all messages of a conversation ordered by
// timestamp ascending, with senders preloaded
func (r *GormMessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// ListRecentConversations returns the latest message per conversation the
// user is part of, ordered by that message's timestamp descending.
func (r *GormMessageRepository) ListRecentConversations(userID uint64, limit int) ([]models.Message, error) {
	latest := r.db.Model(&models.Message{}).
		Select("conversation_id, MAX(timestamp) AS max_timestamp").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("conversation_id")

	var messages []models.Message
	if err := r.db.Model(&models.Message{}).
		Joins("JOIN (?) AS latest ON messages.conversation_id = latest.conversation_id AND messages.timestamp = latest.max_timestamp", latest).
		Order("latest.max_timestamp DESC").
		Limit(limit).
		Preload("Activity").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
