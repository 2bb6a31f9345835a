package models

import (
	"time"
)

// Message is one chat line inside a conversation. Messages are immutable
// after creation and only disappear through cascade when their sender,
// receiver or activity is deleted.
type Message struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	SenderID       uint64    `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint64    `gorm:"not null;index" json:"receiver_id"`
	ActivityID     uint64    `gorm:"not null;index" json:"activity_id"`
	ConversationID string    `gorm:"type:varchar(100);not null;index" json:"conversation_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`

	// Relations
	Sender   User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver User     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
}
