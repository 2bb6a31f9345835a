package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Activities       []Activity      `gorm:"foreignKey:CreatorID" json:"-"`
	Participations   []Participation `gorm:"foreignKey:UserID" json:"-"`
	MessagesSent     []Message       `gorm:"foreignKey:SenderID" json:"-"`
	MessagesReceived []Message       `gorm:"foreignKey:ReceiverID" json:"-"`
}
