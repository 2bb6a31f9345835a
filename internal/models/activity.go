package models

import (
	"time"
)

type Activity struct {
	ID              uint64     `gorm:"primarykey" json:"id"`
	Title           string     `gorm:"type:varchar(100);not null" json:"title"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	CreatorID       uint64     `gorm:"not null;index" json:"creator_id"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	EventTime       time.Time  `gorm:"not null;index" json:"event_time"`
	EndTime         *time.Time `gorm:"index" json:"end_time"`
	Location        string     `gorm:"type:varchar(100);not null" json:"location"`
	MaxParticipants int        `gorm:"not null" json:"max_participants"`

	// Relations
	Creator        User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Participations []Participation `gorm:"foreignKey:ActivityID" json:"participations,omitempty"`
	Messages       []Message       `gorm:"foreignKey:ActivityID" json:"-"`
}
