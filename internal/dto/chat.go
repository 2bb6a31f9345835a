package dto

import (
	"time"

	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/services"
	"github.com/yueban/activity-board/internal/utils"
)

// MessageDTO represents one chat message. Timestamp stays UTC; the local
// rendering is added for display only.
type MessageDTO struct {
	ID             uint64    `json:"id"`
	SenderID       uint64    `json:"sender_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	LocalTimestamp string    `json:"local_timestamp"`
}

// ConversationDTO is a full conversation history with its context
type ConversationDTO struct {
	ConversationID string       `json:"conversation_id"`
	Activity       ActivityDTO  `json:"activity"`
	OtherUser      UserDTO      `json:"other_user"`
	Messages       []MessageDTO `json:"messages"`
}

// RecentChatDTO is one entry of the recent-conversations summary
type RecentChatDTO struct {
	ConversationID string `json:"conversation_id"`
	ActivityID     uint64 `json:"activity_id"`
	ActivityTitle  string `json:"activity_title"`
	OtherUser      string `json:"other_user"`
	LastMessage    string `json:"last_message"`
	Timestamp      string `json:"timestamp"`
}

// MessageEventDTO is the payload of the in-room new_message broadcast
type MessageEventDTO struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ToMessageDTO converts a Message model, localizing the timestamp
func ToMessageDTO(message models.Message, loc *time.Location) MessageDTO {
	return MessageDTO{
		ID:             message.ID,
		SenderID:       message.SenderID,
		Sender:         message.Sender.Username,
		Content:        message.Content,
		Timestamp:      message.Timestamp,
		LocalTimestamp: utils.FormatLocal(message.Timestamp, loc),
	}
}

// ToConversationDTO converts a conversation with localized timestamps
func ToConversationDTO(conversation services.Conversation, loc *time.Location) ConversationDTO {
	messages := make([]MessageDTO, len(conversation.Messages))
	for i, message := range conversation.Messages {
		messages[i] = ToMessageDTO(message, loc)
	}

	return ConversationDTO{
		ConversationID: conversation.ConversationID,
		Activity:       ToActivityDTO(conversation.Activity),
		OtherUser:      ToUserDTO(conversation.OtherUser),
		Messages:       messages,
	}
}

// ToRecentChatDTO converts one recent-conversation entry
func ToRecentChatDTO(chat services.RecentChat, loc *time.Location) RecentChatDTO {
	return RecentChatDTO{
		ConversationID: chat.ConversationID,
		ActivityID:     chat.Activity.ID,
		ActivityTitle:  chat.Activity.Title,
		OtherUser:      chat.OtherUser.Username,
		LastMessage:    chat.LastMessage.Content,
		Timestamp:      utils.FormatLocal(chat.LastMessage.Timestamp, loc),
	}
}

// ToRecentChatDTOs converts a slice of recent-conversation entries
func ToRecentChatDTOs(chats []services.RecentChat, loc *time.Location) []RecentChatDTO {
	dtos := make([]RecentChatDTO, len(chats))
	for i, chat := range chats {
		dtos[i] = ToRecentChatDTO(chat, loc)
	}
	return dtos
}

// ToChatMessageEvent builds the global new_chat_message payload that
// refreshes recent-chat summaries for the receiver.
func ToChatMessageEvent(sent services.SentMessage, loc *time.Location) RecentChatDTO {
	return RecentChatDTO{
		ConversationID: sent.Message.ConversationID,
		ActivityID:     sent.Activity.ID,
		ActivityTitle:  sent.Activity.Title,
		OtherUser:      sent.Receiver.Username,
		LastMessage:    sent.Message.Content,
		Timestamp:      utils.FormatLocal(sent.Message.Timestamp, loc),
	}
}
