package dto

import (
	"time"

	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/utils"
)

// ActivityDTO represents an activity in API responses
type ActivityDTO struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorID       uint64     `json:"creator_id"`
	Creator         *UserDTO   `json:"creator,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	EventTime       time.Time  `json:"event_time"`
	EndTime         *time.Time `json:"end_time"`
	Location        string     `json:"location"`
	MaxParticipants int        `json:"max_participants"`
}

// ParticipantDTO represents one join record of an activity
type ParticipantDTO struct {
	User     UserDTO   `json:"user"`
	JoinedAt time.Time `json:"joined_at"`
}

// ActivityDetailDTO is an activity plus its participants
type ActivityDetailDTO struct {
	ActivityDTO
	Participants     []ParticipantDTO `json:"participants"`
	ParticipantCount int              `json:"participant_count"`
}

// ActivityListResponse represents a paginated list of activities
type ActivityListResponse struct {
	Activities []ActivityDTO `json:"activities"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
}

// ManagedActivitiesDTO groups a user's created and joined activities
type ManagedActivitiesDTO struct {
	Created []ActivityDTO `json:"created"`
	Joined  []ActivityDTO `json:"joined"`
}

// ActivityEventDTO is the payload of the new_activity broadcast. Times are
// rendered in the display timezone, matching what the feed shows.
type ActivityEventDTO struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Creator   string  `json:"creator"`
	EventTime string  `json:"event_time"`
	EndTime   *string `json:"end_time"`
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	d := ActivityDTO{
		ID:              activity.ID,
		Title:           activity.Title,
		Description:     activity.Description,
		CreatorID:       activity.CreatorID,
		CreatedAt:       activity.CreatedAt,
		EventTime:       activity.EventTime,
		EndTime:         activity.EndTime,
		Location:        activity.Location,
		MaxParticipants: activity.MaxParticipants,
	}
	if activity.Creator.ID != 0 {
		creator := ToUserDTO(activity.Creator)
		d.Creator = &creator
	}
	return d
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, activity := range activities {
		dtos[i] = ToActivityDTO(activity)
	}
	return dtos
}

// ToActivityDetailDTO converts an activity and its participations
func ToActivityDetailDTO(activity models.Activity, participants []models.Participation) ActivityDetailDTO {
	participantDTOs := make([]ParticipantDTO, len(participants))
	for i, p := range participants {
		participantDTOs[i] = ParticipantDTO{
			User:     ToUserDTO(p.User),
			JoinedAt: p.JoinedAt,
		}
	}

	return ActivityDetailDTO{
		ActivityDTO:      ToActivityDTO(activity),
		Participants:     participantDTOs,
		ParticipantCount: len(participantDTOs),
	}
}

// ToActivityEventDTO builds the new_activity broadcast payload
func ToActivityEventDTO(activity models.Activity, creator string, loc *time.Location) ActivityEventDTO {
	event := ActivityEventDTO{
		ID:        activity.ID,
		Title:     activity.Title,
		Creator:   creator,
		EventTime: utils.FormatLocal(activity.EventTime, loc),
	}
	if activity.EndTime != nil {
		endTime := utils.FormatLocal(*activity.EndTime, loc)
		event.EndTime = &endTime
	}
	return event
}
