package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yueban/activity-board/internal/dto"
	apierrors "github.com/yueban/activity-board/internal/errors"
	"github.com/yueban/activity-board/internal/middleware"
	"github.com/yueban/activity-board/internal/repository"
	"github.com/yueban/activity-board/internal/services"
	"github.com/yueban/activity-board/internal/utils"
	"github.com/yueban/activity-board/internal/ws"
)

// ActivityHandler coordinates activity-related HTTP handlers.
type ActivityHandler struct {
	activityService *services.ActivityService
	authService     *services.AuthService
	hub             *ws.Hub
	displayZone     *time.Location
}

// NewActivityHandler creates a new ActivityHandler. hub may be nil when
// no realtime fan-out is wanted (tests).
func NewActivityHandler(
	activityService *services.ActivityService,
	authService *services.AuthService,
	hub *ws.Hub,
	displayZone *time.Location,
) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		authService:     authService,
		hub:             hub,
		displayZone:     displayZone,
	}
}

// ActivityRequest is the request body for create and update.
type ActivityRequest struct {
	Title           string     `json:"title" binding:"required,max=100"`
	Description     string     `json:"description" binding:"required"`
	EventTime       time.Time  `json:"event_time" binding:"required"`
	EndTime         *time.Time `json:"end_time"`
	Location        string     `json:"location" binding:"required,max=100"`
	MaxParticipants int        `json:"max_participants" binding:"required,min=1"`
}

func (r ActivityRequest) toInput() services.ActivityInput {
	return services.ActivityInput{
		Title:           r.Title,
		Description:     r.Description,
		EventTime:       r.EventTime.UTC(),
		EndTime:         utcPtr(r.EndTime),
		Location:        r.Location,
		MaxParticipants: r.MaxParticipants,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// ListActivities returns activities with optional search, sort and paging.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.ActivityFilter{
		Search:          c.Query("search"),
		SortByEventTime: c.Query("sort") == "event_time",
		Page:            params.Page,
		PageSize:        params.Limit,
	}

	activities, total, err := h.activityService.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list activities")
		return
	}

	c.JSON(http.StatusOK, dto.ActivityListResponse{
		Activities: dto.ToActivityDTOs(activities),
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// CreateActivity creates an activity and announces it to connected clients.
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.Create(userID, req.toInput())
	if err != nil {
		respondActivityError(c, err)
		return
	}

	if h.hub != nil {
		creator := ""
		if user, err := h.authService.GetUser(userID); err == nil {
			creator = user.Username
		}
		h.hub.BroadcastAll(ws.Event{
			Type: ws.EventNewActivity,
			Data: dto.ToActivityEventDTO(*activity, creator, h.displayZone),
		})
	}

	c.JSON(http.StatusCreated, dto.ToActivityDTO(*activity))
}

// GetActivity returns one activity with its participants.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	activity, err := h.activityService.Get(activityID)
	if err != nil {
		respondActivityError(c, err)
		return
	}

	participants, err := h.activityService.Participants(activityID)
	if err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDetailDTO(*activity, participants))
}

// UpdateActivity edits an activity. Creator only.
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	activityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.Update(userID, activityID, req.toInput())
	if err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTO(*activity))
}

// DeleteActivity removes an activity and broadcasts the removal. Creator only.
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	activityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.activityService.Delete(userID, activityID); err != nil {
		respondActivityError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastAll(ws.Event{
			Type: ws.EventDeleteActivity,
			Data: gin.H{"id": activityID},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Activity deleted",
	})
}

// JoinActivity adds the authenticated user as a participant.
func (h *ActivityHandler) JoinActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	activityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.activityService.Join(activityID, userID); err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Joined activity",
	})
}

// LeaveActivity removes the authenticated user's participation.
func (h *ActivityHandler) LeaveActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	activityID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.activityService.Leave(activityID, userID); err != nil {
		respondActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Left activity",
	})
}

// ManageActivities lists the user's created and joined activities.
func (h *ActivityHandler) ManageActivities(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	created, joined, err := h.activityService.Manage(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list activities")
		return
	}

	c.JSON(http.StatusOK, dto.ManagedActivitiesDTO{
		Created: dto.ToActivityDTOs(created),
		Joined:  dto.ToActivityDTOs(joined),
	})
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid activity ID")
		return 0, false
	}
	return id, true
}

func respondActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrActivityNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotCreator):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrInvalidCapacity),
		errors.Is(err, services.ErrInvalidTitle):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrActivityFull),
		errors.Is(err, services.ErrNotParticipant):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
