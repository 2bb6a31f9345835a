package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yueban/activity-board/internal/dto"
	apierrors "github.com/yueban/activity-board/internal/errors"
	"github.com/yueban/activity-board/internal/middleware"
	"github.com/yueban/activity-board/internal/services"
	"github.com/yueban/activity-board/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Session cookie is the credential; same-origin policy is left to
		// the reverse proxy in front of the server.
		return true
	},
}

// WSHandler upgrades authenticated connections and dispatches their frames.
type WSHandler struct {
	hub         *ws.Hub
	chatService *services.ChatService
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, chatService *services.ChatService, authService *services.AuthService, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:         hub,
		chatService: chatService,
		authService: authService,
		logger:      logger,
	}
}

// Handle upgrades the connection and serves it until it drops. Must run
// behind RequireAuth.
func (h *WSHandler) Handle(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		apierrors.Unauthorized(c, "Unknown user")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	client := ws.NewClient(h.hub, conn, user.ID, user.Username)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump(h.handleFrame)
}

// handleFrame processes one inbound frame from a live client.
func (h *WSHandler) handleFrame(client *ws.Client, frame ws.Frame) {
	switch frame.Type {
	case ws.FrameJoin:
		h.handleJoin(client, frame)
	case ws.FrameSendMessage:
		h.handleSendMessage(client, frame)
	default:
		h.logger.Debug().Str("type", frame.Type).Uint64("user_id", client.UserID).
			Msg("ignoring unknown frame type")
	}
}

// handleJoin subscribes the client to a conversation room. Unlike history
// fetches, room joins are cheap to probe, so the same participant check
// runs here too: nobody listens in on a conversation by guessing its key.
func (h *WSHandler) handleJoin(client *ws.Client, frame ws.Frame) {
	if err := h.chatService.CanSubscribe(frame.Room, client.UserID); err != nil {
		h.logger.Warn().Uint64("user_id", client.UserID).Str("room", frame.Room).Err(err).
			Msg("rejected room join")
		return
	}
	h.hub.JoinRoom(client, frame.Room)
}

// handleSendMessage persists the message, then fans out: the in-room
// new_message event for anyone viewing the conversation, and the global
// new_chat_message event that refreshes recent-chat summaries.
func (h *WSHandler) handleSendMessage(client *ws.Client, frame ws.Frame) {
	sent, err := h.chatService.SendMessage(client.UserID, frame.ReceiverID, frame.ActivityID, frame.Content)
	if err != nil {
		h.logger.Warn().Uint64("user_id", client.UserID).Uint64("activity_id", frame.ActivityID).Err(err).
			Msg("failed to send message")
		return
	}

	h.hub.BroadcastRoom(sent.Message.ConversationID, ws.Event{
		Type: ws.EventNewMessage,
		Data: dto.MessageEventDTO{
			Sender:  client.Username,
			Content: sent.Message.Content,
		},
	})

	h.hub.BroadcastAll(ws.Event{
		Type: ws.EventNewChatMessage,
		Data: dto.ToChatMessageEvent(*sent, h.chatService.DisplayZone()),
	})
}
