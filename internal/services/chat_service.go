package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yueban/activity-board/internal/chat"
	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidConversationKey = errors.New("invalid conversation key")
	ErrConversationForbidden  = errors.New("not a participant of this conversation")
	ErrEmptyMessage           = errors.New("message content cannot be empty")
)

// ChatService bridges persisted messages with conversation identity.
type ChatService struct {
	messageRepo  repository.MessageRepository
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	displayZone  *time.Location
}

// NewChatService creates a new ChatService. displayZone is the timezone
// used for human-facing timestamps; storage stays UTC.
func NewChatService(
	messageRepo repository.MessageRepository,
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	displayZone *time.Location,
) *ChatService {
	if displayZone == nil {
		displayZone = time.UTC
	}
	return &ChatService{
		messageRepo:  messageRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		displayZone:  displayZone,
	}
}

// DisplayZone returns the timezone used for presentation timestamps.
func (s *ChatService) DisplayZone() *time.Location {
	return s.displayZone
}

// SentMessage is the result of sending a message, carrying everything the
// transport needs for fan-out.
type SentMessage struct {
	Message  models.Message
	Activity models.Activity
	Receiver models.User
}

// SendMessage persists a message in the conversation derived from the
// activity and the two participants. The timestamp is server-assigned UTC.
func (s *ChatService) SendMessage(senderID, receiverID, activityID uint64, content string) (*SentMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	activity, err := s.activityRepo.FindByID(activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}

	receiver, err := s.userRepo.FindByID(receiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find receiver: %w", err)
	}

	message := &models.Message{
		SenderID:       senderID,
		ReceiverID:     receiverID,
		ActivityID:     activityID,
		ConversationID: chat.Key(activityID, senderID, receiverID),
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return &SentMessage{
		Message:  *message,
		Activity: *activity,
		Receiver: *receiver,
	}, nil
}

// Conversation is a full message history plus its context.
type Conversation struct {
	ConversationID string
	Activity       models.Activity
	OtherUser      models.User
	Messages       []models.Message
}

// History returns the persisted messages of a conversation in timestamp
// order. Only the two participants named by the key may read it.
func (s *ChatService) History(conversationID string, requesterID uint64) (*Conversation, error) {
	activityID, user1, user2, err := chat.Authorize(conversationID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidKey):
			return nil, ErrInvalidConversationKey
		case errors.Is(err, chat.ErrForbidden):
			return nil, ErrConversationForbidden
		default:
			return nil, err
		}
	}

	activity, err := s.activityRepo.FindByID(activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}

	otherID := chat.OtherParticipant(user1, user2, requesterID)
	otherUser, err := s.userRepo.FindByID(otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return &Conversation{
		ConversationID: conversationID,
		Activity:       *activity,
		OtherUser:      *otherUser,
		Messages:       messages,
	}, nil
}

// CanSubscribe reports whether the user may join the live room for the
// conversation. Same participant rule as History.
func (s *ChatService) CanSubscribe(conversationID string, userID uint64) error {
	if _, _, _, err := chat.Authorize(conversationID, userID); err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidKey):
			return ErrInvalidConversationKey
		default:
			return ErrConversationForbidden
		}
	}
	return nil
}

// RecentChat is one entry of the recent-conversations summary.
type RecentChat struct {
	ConversationID string
	Activity       models.Activity
	OtherUser      models.User
	LastMessage    models.Message
}

// RecentConversations returns the user's conversations ordered by the
// timestamp of their latest message, newest first, capped at limit.
func (s *ChatService) RecentConversations(userID uint64, limit int) ([]RecentChat, error) {
	messages, err := s.messageRepo.ListRecentConversations(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent conversations: %w", err)
	}

	chats := make([]RecentChat, 0, len(messages))
	for _, message := range messages {
		otherID := message.ReceiverID
		if message.SenderID != userID {
			otherID = message.SenderID
		}

		otherUser, err := s.userRepo.FindByID(otherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Counterpart deleted between query and lookup.
				continue
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}

		chats = append(chats, RecentChat{
			ConversationID: message.ConversationID,
			Activity:       message.Activity,
			OtherUser:      *otherUser,
			LastMessage:    message,
		})
	}

	return chats, nil
}
