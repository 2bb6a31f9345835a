package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yueban/activity-board/internal/chat"
	"github.com/yueban/activity-board/internal/constants"
	"github.com/yueban/activity-board/internal/dto"
	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/repository"
	"github.com/yueban/activity-board/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type chatTestEnv struct {
	db      *gorm.DB
	handler *ChatHandler
	service *services.ChatService
}

func setupChatTestEnv(t *testing.T) chatTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Participation{},
		&models.Message{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	service := services.NewChatService(
		repository.NewMessageRepository(db),
		repository.NewActivityRepository(db),
		repository.NewUserRepository(db),
		time.UTC,
	)

	return chatTestEnv{
		db:      db,
		handler: NewChatHandler(service),
		service: service,
	}
}

func createChatUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createChatActivity(t *testing.T, db *gorm.DB, creatorID uint64) *models.Activity {
	t.Helper()

	activity := &models.Activity{
		Title:           "Board games",
		Description:     "Casual evening",
		CreatorID:       creatorID,
		CreatedAt:       time.Now().UTC(),
		EventTime:       time.Now().UTC().Add(24 * time.Hour),
		Location:        "Community hall",
		MaxParticipants: 6,
	}
	require.NoError(t, db.Create(activity).Error)
	return activity
}

// asUser injects the authenticated user the way the session middleware does.
func asUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func TestChatHandler_GetConversation(t *testing.T) {
	env := setupChatTestEnv(t)

	alice := createChatUser(t, env.db, "alice")
	bob := createChatUser(t, env.db, "bob")
	activity := createChatActivity(t, env.db, alice.ID)

	_, err := env.service.SendMessage(alice.ID, bob.ID, activity.ID, "hello bob")
	require.NoError(t, err)
	_, err = env.service.SendMessage(bob.ID, alice.ID, activity.ID, "hi alice")
	require.NoError(t, err)

	key := chat.Key(activity.ID, alice.ID, bob.ID)

	r := gin.New()
	r.GET("/api/chats/:conversation_id", asUser(alice.ID), env.handler.GetConversation)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/"+key, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ConversationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, key, response.ConversationID)
	require.Equal(t, bob.Username, response.OtherUser.Username)
	require.Len(t, response.Messages, 2)
	require.Equal(t, "hello bob", response.Messages[0].Content)
}

func TestChatHandler_GetConversation_Forbidden(t *testing.T) {
	env := setupChatTestEnv(t)

	alice := createChatUser(t, env.db, "alice")
	bob := createChatUser(t, env.db, "bob")
	carol := createChatUser(t, env.db, "carol")
	activity := createChatActivity(t, env.db, alice.ID)

	_, err := env.service.SendMessage(alice.ID, bob.ID, activity.ID, "private")
	require.NoError(t, err)

	key := chat.Key(activity.ID, alice.ID, bob.ID)

	r := gin.New()
	r.GET("/api/chats/:conversation_id", asUser(carol.ID), env.handler.GetConversation)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/"+key, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatHandler_GetConversation_InvalidKey(t *testing.T) {
	env := setupChatTestEnv(t)
	alice := createChatUser(t, env.db, "alice")

	r := gin.New()
	r.GET("/api/chats/:conversation_id", asUser(alice.ID), env.handler.GetConversation)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/not-a-key", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_GetRecentConversations(t *testing.T) {
	env := setupChatTestEnv(t)

	alice := createChatUser(t, env.db, "alice")
	bob := createChatUser(t, env.db, "bob")
	activity := createChatActivity(t, env.db, alice.ID)

	_, err := env.service.SendMessage(bob.ID, alice.ID, activity.ID, "see you there")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/chats/recent", asUser(alice.ID), env.handler.GetRecentConversations)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/recent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Conversations []dto.RecentChatDTO `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Conversations, 1)
	require.Equal(t, "see you there", response.Conversations[0].LastMessage)
	require.Equal(t, bob.Username, response.Conversations[0].OtherUser)
	require.Equal(t, activity.Title, response.Conversations[0].ActivityTitle)
}
