package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yueban/activity-board/internal/constants"
	"github.com/yueban/activity-board/internal/dto"
	apierrors "github.com/yueban/activity-board/internal/errors"
	"github.com/yueban/activity-board/internal/middleware"
	"github.com/yueban/activity-board/internal/services"
)

// ChatHandler serves conversation history and the recent-chats summary.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// GetConversation returns the message history of one conversation.
// Participants only.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	conversationID := c.Param("conversation_id")

	conversation, err := h.chatService.History(conversationID, userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConversationDTO(*conversation, h.chatService.DisplayZone()))
}

// GetRecentConversations returns the latest message per conversation the
// user takes part in.
func (h *ChatHandler) GetRecentConversations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	limit := constants.DefaultRecentChatLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= constants.MaxPageSize {
			limit = n
		}
	}

	chats, err := h.chatService.RecentConversations(userID, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to list conversations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": dto.ToRecentChatDTOs(chats, h.chatService.DisplayZone()),
	})
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidConversationKey):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrConversationForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEmptyMessage):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
