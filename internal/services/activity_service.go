package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrNotCreator       = errors.New("only the creator can modify this activity")
	ErrInvalidTimeRange = errors.New("end time must be after the event time")
	ErrInvalidCapacity  = errors.New("max participants must be at least 1")
	ErrInvalidTitle     = errors.New("title cannot be empty")
	ErrAlreadyJoined    = errors.New("user has already joined this activity")
	ErrActivityFull     = errors.New("activity is full")
	ErrNotParticipant   = errors.New("user has not joined this activity")
)

// ActivityService provides business logic for activity operations.
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

// NewActivityService creates a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
	}
}

// ActivityInput represents the editable fields of an activity.
type ActivityInput struct {
	Title           string
	Description     string
	EventTime       time.Time
	EndTime         *time.Time
	Location        string
	MaxParticipants int
}

func validateActivityInput(input ActivityInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrInvalidTitle
	}
	if input.MaxParticipants < 1 {
		return ErrInvalidCapacity
	}
	if input.EndTime != nil && !input.EndTime.After(input.EventTime) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Create validates and persists a new activity for the creator.
func (s *ActivityService) Create(creatorID uint64, input ActivityInput) (*models.Activity, error) {
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Title:           input.Title,
		Description:     input.Description,
		CreatorID:       creatorID,
		CreatedAt:       time.Now().UTC(),
		EventTime:       input.EventTime,
		EndTime:         input.EndTime,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
	}

	if err := s.activityRepo.Create(activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return activity, nil
}

// Get returns an activity with its creator.
func (s *ActivityService) Get(activityID uint64) (*models.Activity, error) {
	activity, err := s.activityRepo.FindByID(activityID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	return activity, nil
}

// List returns activities matching the filter plus the unpaged total.
func (s *ActivityService) List(filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	activities, total, err := s.activityRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

// Participants returns the join records of an activity with their users.
func (s *ActivityService) Participants(activityID uint64) ([]models.Participation, error) {
	if _, err := s.Get(activityID); err != nil {
		return nil, err
	}

	participants, err := s.activityRepo.ListParticipants(activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// Update applies edits to an activity. Only the creator may edit.
func (s *ActivityService) Update(actorID, activityID uint64, input ActivityInput) (*models.Activity, error) {
	activity, err := s.Get(activityID)
	if err != nil {
		return nil, err
	}
	if activity.CreatorID != actorID {
		return nil, ErrNotCreator
	}
	if err := validateActivityInput(input); err != nil {
		return nil, err
	}

	activity.Title = input.Title
	activity.Description = input.Description
	activity.EventTime = input.EventTime
	activity.EndTime = input.EndTime
	activity.Location = input.Location
	activity.MaxParticipants = input.MaxParticipants

	if err := s.activityRepo.Update(activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	return activity, nil
}

// Delete removes an activity and everything attached to it. Only the
// creator may delete.
func (s *ActivityService) Delete(actorID, activityID uint64) error {
	activity, err := s.Get(activityID)
	if err != nil {
		return err
	}
	if activity.CreatorID != actorID {
		return ErrNotCreator
	}

	if err := s.activityRepo.Delete(activityID); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	return nil
}

// Join adds the user to the activity, subject to the capacity limit. The
// repository performs the whole check inside one locked transaction, so
// concurrent joins cannot oversubscribe the activity.
func (s *ActivityService) Join(activityID, userID uint64) error {
	participation := &models.Participation{
		UserID:     userID,
		ActivityID: activityID,
		JoinedAt:   time.Now().UTC(),
	}

	err := s.activityRepo.Join(participation)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrActivityNotFound
	case errors.Is(err, repository.ErrAlreadyParticipant):
		return ErrAlreadyJoined
	case errors.Is(err, repository.ErrCapacityExceeded):
		return ErrActivityFull
	default:
		return fmt.Errorf("failed to join activity: %w", err)
	}
}

// Leave removes the user's participation.
func (s *ActivityService) Leave(activityID, userID uint64) error {
	if _, err := s.Get(activityID); err != nil {
		return err
	}

	if _, err := s.activityRepo.FindParticipation(activityID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotParticipant
		}
		return fmt.Errorf("failed to find participation: %w", err)
	}

	if err := s.activityRepo.Leave(activityID, userID); err != nil {
		return fmt.Errorf("failed to leave activity: %w", err)
	}

	return nil
}

// Manage returns the activities the user created and the ones they joined.
func (s *ActivityService) Manage(userID uint64) (created, joined []models.Activity, err error) {
	created, err = s.activityRepo.ListByCreator(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list created activities: %w", err)
	}

	joined, err = s.activityRepo.ListJoined(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list joined activities: %w", err)
	}

	return created, joined, nil
}
