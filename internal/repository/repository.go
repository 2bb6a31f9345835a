package repository

import (
	"time"

	"github.com/yueban/activity-board/internal/models"
)

// ActivityFilter holds filtering options for listing activities
type ActivityFilter struct {
	// Search matches against title or description
	Search string

	// SortByEventTime orders ascending by event time instead of the
	// default newest-first by creation time
	SortByEventTime bool

	Page     int
	PageSize int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete removes a user together with every activity they created,
	// every participation they hold, and every message they sent or
	// received, in a single transaction.
	Delete(id uint64) error
}

// ActivityRepository defines the interface for activity data access
type ActivityRepository interface {
	// Create creates a new activity
	Create(activity *models.Activity) error

	// FindByID finds an activity by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Activity, error)

	// List retrieves activities with filtering and pagination
	List(filter ActivityFilter) ([]models.Activity, int64, error)

	// ListByCreator lists activities created by a user
	ListByCreator(creatorID uint64) ([]models.Activity, error)

	// ListJoined lists activities a user participates in
	ListJoined(userID uint64) ([]models.Activity, error)

	// Update updates an activity
	Update(activity *models.Activity) error

	// Delete removes an activity and its participations and messages
	// in a single transaction.
	Delete(id uint64) error

	// Join atomically inserts the participation, enforcing both the
	// one-row-per-(user,activity) constraint and the capacity limit.
	Join(participation *models.Participation) error

	// Leave removes a participation
	Leave(activityID, userID uint64) error

	// FindParticipation finds a specific participation
	FindParticipation(activityID, userID uint64) (*models.Participation, error)

	// ListParticipants lists participations of an activity with users
	ListParticipants(activityID uint64) ([]models.Participation, error)

	// CountParticipants counts participations of an activity
	CountParticipants(activityID uint64) (int64, error)

	// ListExpired lists activities whose end time has passed
	ListExpired(now time.Time) ([]models.Activity, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// Create persists a new message
	Create(message *models.Message) error

	// ListByConversation returns all messages of a conversation ordered
	// by timestamp ascending
	ListByConversation(conversationID string) ([]models.Message, error)

	// ListRecentConversations returns the latest message of each
	// conversation the user takes part in, newest conversation first,
	// capped at limit. Activities are preloaded.
	ListRecentConversations(userID uint64, limit int) ([]models.Message, error)
}
