package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yueban/activity-board/internal/dto"
	"github.com/yueban/activity-board/internal/models"
	"github.com/yueban/activity-board/internal/repository"
	"github.com/yueban/activity-board/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type activityTestEnv struct {
	db      *gorm.DB
	handler *ActivityHandler
	service *services.ActivityService
}

func setupActivityTestEnv(t *testing.T) activityTestEnv {
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

	activityService := services.NewActivityService(repository.NewActivityRepository(db))
	authService := services.NewAuthService(repository.NewUserRepository(db))

	return activityTestEnv{
		db:      db,
		handler: NewActivityHandler(activityService, authService, nil, time.UTC),
		service: activityService,
	}
}

func strconvID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func TestActivityHandler_CreateActivity(t *testing.T) {
	env := setupActivityTestEnv(t)
	creator := createChatUser(t, env.db, "creator")

	r := gin.New()
	r.POST("/api/activities", asUser(creator.ID), env.handler.CreateActivity)

	payload := map[string]interface{}{
		"title":            "Morning run",
		"description":      "Easy 5k along the river",
		"event_time":       time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
		"location":         "River path",
		"max_participants": 10,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ActivityDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Morning run", response.Title)
	require.NotZero(t, response.ID)
}

func TestActivityHandler_CreateActivity_InvalidTimeRange(t *testing.T) {
	env := setupActivityTestEnv(t)
	creator := createChatUser(t, env.db, "creator")

	r := gin.New()
	r.POST("/api/activities", asUser(creator.ID), env.handler.CreateActivity)

	eventTime := time.Now().UTC().Add(24 * time.Hour)
	endTime := eventTime.Add(-time.Hour)
	payload := map[string]interface{}{
		"title":            "Morning run",
		"description":      "Easy 5k along the river",
		"event_time":       eventTime.Format(time.RFC3339),
		"end_time":         endTime.Format(time.RFC3339),
		"location":         "River path",
		"max_participants": 10,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandler_JoinActivity_Statuses(t *testing.T) {
	env := setupActivityTestEnv(t)

	creator := createChatUser(t, env.db, "creator")
	alice := createChatUser(t, env.db, "alice")
	bob := createChatUser(t, env.db, "bob")

	activity := &models.Activity{
		Title:           "Tiny workshop",
		Description:     "One seat only",
		CreatorID:       creator.ID,
		CreatedAt:       time.Now().UTC(),
		EventTime:       time.Now().UTC().Add(24 * time.Hour),
		Location:        "Studio",
		MaxParticipants: 1,
	}
	require.NoError(t, env.db.Create(activity).Error)

	join := func(userID uint64) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/api/activities/:id/join", asUser(userID), env.handler.JoinActivity)
		req := httptest.NewRequest(http.MethodPost, "/api/activities/"+strconvID(activity.ID)+"/join", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, join(alice.ID).Code)
	require.Equal(t, http.StatusConflict, join(alice.ID).Code, "second join must conflict")
	require.Equal(t, http.StatusConflict, join(bob.ID).Code, "full activity must conflict")
}

func TestActivityHandler_DeleteActivity_Forbidden(t *testing.T) {
	env := setupActivityTestEnv(t)

	creator := createChatUser(t, env.db, "creator")
	intruder := createChatUser(t, env.db, "intruder")
	activity := createChatActivity(t, env.db, creator.ID)

	r := gin.New()
	r.DELETE("/api/activities/:id", asUser(intruder.ID), env.handler.DeleteActivity)

	req := httptest.NewRequest(http.MethodDelete, "/api/activities/"+strconvID(activity.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestActivityHandler_GetActivity_NotFound(t *testing.T) {
	env := setupActivityTestEnv(t)

	r := gin.New()
	r.GET("/api/activities/:id", env.handler.GetActivity)

	req := httptest.NewRequest(http.MethodGet, "/api/activities/9999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
