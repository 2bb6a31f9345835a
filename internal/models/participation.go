package models

import "time"

// Participation records one user having joined one activity. The composite
// primary key doubles as the uniqueness constraint that keeps concurrent
// joins from inserting the same pair twice.
type Participation struct {
	UserID     uint64    `gorm:"primarykey" json:"user_id"`
	ActivityID uint64    `gorm:"primarykey" json:"activity_id"`
	JoinedAt   time.Time `json:"joined_at"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
}
